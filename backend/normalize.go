package backend

import (
	"fmt"
	"time"

	"github.com/c360/uploadguard/errors"
	"github.com/c360/uploadguard/types"
)

// Field alias tables. Every backend build the engine has seen is mapped
// here; a result matching none of these aliases is a hard validation
// fault, never a silently "safe" default.
var (
	riskAliases       = []string{"risk_score", "riskScore", "risk", "score"}
	decisionAliases   = []string{"decision", "verdict", "action"}
	reasonsAliases    = []string{"reasons", "reason"}
	topWordsAliases   = []string{"top_words", "topWords", "word_frequencies"}
	bannedAliases     = []string{"banned_phrases", "bannedPhrases", "phrase_matches"}
	piiAliases        = []string{"pii_patterns", "piiPatterns", "pii_matches", "pii"}
	entropyAliases    = []string{"entropy", "shannon_entropy"}
	obfuscatedAliases = []string{"is_obfuscated", "obfuscated"}
	fallbackAliases   = []string{"fallback", "degraded"}
)

// isTerminalShape reports whether a raw value returned from ProcessChunk
// is a complete result rather than a per-chunk acknowledgment.
func isTerminalShape(raw Raw) bool {
	if v, ok := raw["final"]; ok {
		if b, ok := v.(bool); ok && b {
			return true
		}
	}
	if _, ok := firstKey(raw, decisionAliases); ok {
		return true
	}
	if _, ok := firstKey(raw, riskAliases); ok {
		return true
	}
	return false
}

// Normalize maps a build-specific result shape to the canonical RiskResult.
//
// Defaults are explicit: decision defaults to allow, arrays default empty,
// and a missing risk score yields RiskScore 0 with Scored=false plus an
// "unscored" reason, so an artificially safe zero is always observable.
func Normalize(raw Raw) (types.RiskResult, error) {
	if raw == nil {
		return types.RiskResult{}, errors.WrapInvalid(errors.ErrBackendShape, "backend", "Normalize", "nil result")
	}

	result := types.RiskResult{
		Decision:      types.DecisionAllow,
		Reasons:       []string{},
		TopWords:      []types.WordCount{},
		BannedPhrases: []types.BannedPhraseMatch{},
		PIIMatches:    []types.PIIMatch{},
	}

	recognized := 0

	if v, ok := firstKey(raw, riskAliases); ok {
		score, err := asFloat(v)
		if err != nil {
			return types.RiskResult{}, errors.WrapInvalid(errors.ErrBackendShape, "backend", "Normalize",
				fmt.Sprintf("risk score: %v", err))
		}
		result.RiskScore = clamp01(score)
		result.Scored = true
		recognized++
	}

	if v, ok := firstKey(raw, decisionAliases); ok {
		if s, ok := v.(string); ok {
			d := types.Decision(s)
			if d.IsValid() {
				result.Decision = d
			}
		}
		recognized++
	}

	if v, ok := firstKey(raw, reasonsAliases); ok {
		result.Reasons = asStringSlice(v)
		recognized++
	}

	if v, ok := firstKey(raw, topWordsAliases); ok {
		result.TopWords = asWordCounts(v)
		recognized++
	}

	if v, ok := firstKey(raw, bannedAliases); ok {
		result.BannedPhrases = asBannedMatches(v)
		recognized++
	}

	if v, ok := firstKey(raw, piiAliases); ok {
		result.PIIMatches = asPIIMatches(v)
		recognized++
	}

	if v, ok := firstKey(raw, entropyAliases); ok {
		if e, err := asFloat(v); err == nil {
			result.Entropy = e
		}
		recognized++
	}

	if v, ok := firstKey(raw, obfuscatedAliases); ok {
		if b, ok := v.(bool); ok {
			result.IsObfuscated = b
		}
		recognized++
	}

	if v, ok := firstKey(raw, fallbackAliases); ok {
		if b, ok := v.(bool); ok {
			result.Fallback = b
		}
		recognized++
	}

	if v, ok := raw["stats"]; ok {
		if m, ok := v.(map[string]any); ok {
			result.Stats = NormalizeStats(m)
		}
		recognized++
	}

	if recognized == 0 {
		return types.RiskResult{}, errors.WrapInvalid(errors.ErrBackendShape, "backend", "Normalize",
			fmt.Sprintf("no recognized fields among %d keys", len(raw)))
	}

	if !result.Scored {
		result.Reasons = append(result.Reasons, "backend reported no risk score (unscored)")
	}

	return result, nil
}

// Stats field alias tables
var (
	statChunksAliases  = []string{"total_chunks", "totalChunks", "chunks"}
	statLengthAliases  = []string{"total_content_length", "totalContentLength", "content_length"}
	statUniqueAliases  = []string{"unique_words", "uniqueWords"}
	statBannedAliases  = []string{"banned_phrase_count", "bannedPhraseCount", "banned_phrases"}
	statPIIAliases     = []string{"pii_pattern_count", "piiPatternCount", "pii_count"}
	statElapsedAliases = []string{"elapsed_ms", "elapsedMs"}
	statProcAliases    = []string{"processing_time_ms", "processingTimeMs"}
)

// NormalizeStats maps a build-specific stats snapshot to the canonical
// shape. Missing fields stay zero; stats are advisory, not a contract.
func NormalizeStats(raw Raw) types.OperationStats {
	var stats types.OperationStats
	if raw == nil {
		return stats
	}

	if v, ok := firstKey(raw, statChunksAliases); ok {
		stats.TotalChunks, _ = asInt(v)
	}
	if v, ok := firstKey(raw, statLengthAliases); ok {
		n, _ := asInt(v)
		stats.TotalContentLength = int64(n)
	}
	if v, ok := firstKey(raw, statUniqueAliases); ok {
		stats.UniqueWords, _ = asInt(v)
	}
	if v, ok := firstKey(raw, statBannedAliases); ok {
		stats.BannedPhraseCount, _ = asInt(v)
	}
	if v, ok := firstKey(raw, statPIIAliases); ok {
		stats.PIICount, _ = asInt(v)
	}
	if v, ok := firstKey(raw, statElapsedAliases); ok {
		ms, _ := asInt(v)
		stats.Elapsed = time.Duration(ms) * time.Millisecond
	}
	if v, ok := firstKey(raw, statProcAliases); ok {
		ms, _ := asInt(v)
		stats.ProcessingTime = time.Duration(ms) * time.Millisecond
	}
	return stats
}

// firstKey returns the value of the first alias present in the map
func firstKey(raw Raw, aliases []string) (any, bool) {
	for _, key := range aliases {
		if v, ok := raw[key]; ok {
			return v, true
		}
	}
	return nil, false
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func asStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return append([]string(nil), s...)
	case string:
		if s == "" {
			return []string{}
		}
		return []string{s}
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return []string{}
	}
}

func asWordCounts(v any) []types.WordCount {
	switch words := v.(type) {
	case []types.WordCount:
		return append([]types.WordCount(nil), words...)
	case []any:
		out := make([]types.WordCount, 0, len(words))
		for _, item := range words {
			switch w := item.(type) {
			case map[string]any:
				wc := types.WordCount{}
				if s, ok := w["word"].(string); ok {
					wc.Word = s
				}
				if n, err := asInt(w["count"]); err == nil {
					wc.Count = n
				}
				if wc.Word != "" {
					out = append(out, wc)
				}
			case []any:
				// Tuple shape: [word, count]
				if len(w) == 2 {
					word, ok := w[0].(string)
					if !ok {
						continue
					}
					count, err := asInt(w[1])
					if err != nil {
						continue
					}
					out = append(out, types.WordCount{Word: word, Count: count})
				}
			}
		}
		return out
	default:
		return []types.WordCount{}
	}
}

func asBannedMatches(v any) []types.BannedPhraseMatch {
	switch matches := v.(type) {
	case []types.BannedPhraseMatch:
		return append([]types.BannedPhraseMatch(nil), matches...)
	case []any:
		out := make([]types.BannedPhraseMatch, 0, len(matches))
		for _, item := range matches {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			match := types.BannedPhraseMatch{Severity: "high"}
			if s, ok := m["phrase"].(string); ok {
				match.Phrase = s
			}
			if n, err := asInt(m["position"]); err == nil {
				match.Position = n
			}
			if s, ok := m["context"].(string); ok {
				match.Context = s
			}
			if s, ok := m["severity"].(string); ok {
				match.Severity = s
			}
			if match.Phrase != "" {
				out = append(out, match)
			}
		}
		return out
	default:
		return []types.BannedPhraseMatch{}
	}
}

func asPIIMatches(v any) []types.PIIMatch {
	switch matches := v.(type) {
	case []types.PIIMatch:
		return append([]types.PIIMatch(nil), matches...)
	case []any:
		out := make([]types.PIIMatch, 0, len(matches))
		for _, item := range matches {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			match := types.PIIMatch{}
			if s, ok := m["type"].(string); ok {
				match.Type = s
			} else if s, ok := m["type_"].(string); ok {
				match.Type = s
			}
			if s, ok := m["pattern"].(string); ok {
				match.Pattern = s
			}
			if n, err := asInt(m["position"]); err == nil {
				match.Position = n
			}
			if f, err := asFloat(m["confidence"]); err == nil {
				match.Confidence = f
			}
			if match.Type != "" {
				out = append(out, match)
			}
		}
		return out
	default:
		return []types.PIIMatch{}
	}
}

// Package legacy emulates the older analyzer build. It produces the same
// verdicts as the native build but speaks the old wire shape: camelCase
// and drifted field names, top words as [word, count] tuples, and a
// complete terminal result attached to the last chunk instead of waiting
// for an explicit finalize call.
package legacy

import (
	"github.com/c360/uploadguard/backend"
	"github.com/c360/uploadguard/backend/native"
	"github.com/c360/uploadguard/config"
	"github.com/c360/uploadguard/types"
)

// Analyzer is the legacy-shaped backend build
type Analyzer struct {
	inner backend.Backend
}

// New creates the legacy build, backed by the native pipeline
func New() *Analyzer {
	return &Analyzer{inner: native.New()}
}

// Name identifies the build
func (a *Analyzer) Name() string {
	return "legacy"
}

// NewAccumulator allocates legacy-shaped state for one operation
func (a *Analyzer) NewAccumulator(cfg config.AnalysisConfig) (backend.Accumulator, error) {
	acc, err := a.inner.NewAccumulator(cfg)
	if err != nil {
		return nil, err
	}
	return &accumulator{inner: acc}, nil
}

type accumulator struct {
	inner backend.Accumulator
}

// ProcessChunk feeds the chunk through and, on the last chunk, returns
// the complete terminal result the old build emitted inline.
func (l *accumulator) ProcessChunk(text string, isLast bool) (backend.Raw, error) {
	if _, err := l.inner.ProcessChunk(text, isLast); err != nil {
		return nil, err
	}
	if !isLast {
		return nil, nil
	}

	raw, err := l.inner.Finalize()
	if err != nil {
		return nil, err
	}
	return reshape(raw), nil
}

// Finalize exists for producers that never flag a last chunk
func (l *accumulator) Finalize() (backend.Raw, error) {
	raw, err := l.inner.Finalize()
	if err != nil {
		return nil, err
	}
	return reshape(raw), nil
}

// Stats returns the old build's stat field names
func (l *accumulator) Stats() backend.Raw {
	stats := l.inner.Stats()
	return backend.Raw{
		"totalChunks":        stats["total_chunks"],
		"totalContentLength": stats["total_content_length"],
		"uniqueWords":        stats["unique_words"],
		"bannedPhraseCount":  stats["banned_phrase_count"],
		"piiPatternCount":    stats["pii_pattern_count"],
		"elapsedMs":          stats["elapsed_ms"],
		"processingTimeMs":   stats["processing_time_ms"],
	}
}

// reshape maps canonical field names to the legacy wire shape
func reshape(raw backend.Raw) backend.Raw {
	out := backend.Raw{
		"final":     true,
		"riskScore": raw["risk_score"],
		"verdict":   raw["decision"],
		"reasons":   raw["reasons"],
		"topWords":  tuples(raw["top_words"]),
	}
	if v, ok := raw["banned_phrases"]; ok {
		out["bannedPhrases"] = v
	}
	if v, ok := raw["pii_patterns"]; ok {
		out["pii"] = v
	}
	if v, ok := raw["entropy"]; ok {
		out["shannon_entropy"] = v
	}
	if v, ok := raw["is_obfuscated"]; ok {
		out["obfuscated"] = v
	}
	if v, ok := raw["stats"]; ok {
		out["stats"] = v
	}
	return out
}

// tuples converts typed word counts to the [word, count] pair shape
func tuples(v any) []any {
	words, ok := v.([]types.WordCount)
	if !ok {
		return []any{}
	}
	out := make([]any, 0, len(words))
	for _, w := range words {
		out = append(out, []any{w.Word, w.Count})
	}
	return out
}

package native

import (
	"fmt"
	"sync"
	"time"

	"github.com/c360/uploadguard/backend"
	"github.com/c360/uploadguard/config"
	"github.com/c360/uploadguard/errors"
	"github.com/c360/uploadguard/types"
)

// maxStoredMatches caps how many full match records an accumulator keeps
// per category. Counts keep growing past the cap; only the retained
// evidence list is bounded, so a pathological file cannot balloon memory.
const maxStoredMatches = 256

// Risk score weights, tuned against the default thresholds
const (
	bannedWeight  = 0.4
	piiWeight     = 0.3
	entropyWeight = 0.2
)

// Analyzer is the built-in analysis backend. It streams chunks through
// incremental trackers so memory stays proportional to vocabulary and
// match counts, never to file size.
type Analyzer struct{}

// New creates the built-in analyzer backend
func New() *Analyzer {
	return &Analyzer{}
}

// Name identifies the build
func (a *Analyzer) Name() string {
	return "native"
}

// NewAccumulator allocates streaming state for one operation
func (a *Analyzer) NewAccumulator(cfg config.AnalysisConfig) (backend.Accumulator, error) {
	pii, err := newPIIDetector(cfg.PIIPatterns)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Analyzer", "NewAccumulator", "compiling pii patterns")
	}

	return &accumulator{
		cfg:     cfg,
		freq:    newFrequencyTracker(cfg.Stopwords, cfg.MaxTrackedWords),
		entropy: newEntropyTracker(),
		pii:     pii,
		started: time.Now(),
	}, nil
}

// accumulator is one operation's running analysis state
type accumulator struct {
	mu      sync.Mutex
	cfg     config.AnalysisConfig
	freq    *frequencyTracker
	entropy *entropyTracker
	pii     *piiDetector

	banned      []types.BannedPhraseMatch
	bannedCount int
	piiMatches  []types.PIIMatch
	piiCount    int

	totalChunks   int
	totalLength   int64
	offset        int
	started       time.Time
	processedTime time.Duration
}

// ProcessChunk folds one chunk into the running trackers. The built-in
// analyzer never emits a terminal result from a chunk; callers get the
// verdict from Finalize.
func (s *accumulator) ProcessChunk(text string, isLast bool) (backend.Raw, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()

	s.freq.add(text)
	s.entropy.add(text)
	s.keepBanned(detectBannedPhrases(text, s.cfg.BannedPhrases, s.offset))
	s.keepPII(s.pii.detect(text, s.offset))

	s.totalChunks++
	s.totalLength += int64(len(text))
	s.offset += len(text)
	s.processedTime += time.Since(start)

	return nil, nil
}

// Finalize computes the terminal risk result
func (s *accumulator) Finalize() (backend.Raw, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.totalLength == 0 {
		return nil, errors.WrapInvalid(errors.ErrNoContent, "Analyzer", "Finalize", "no content processed")
	}

	entropy := s.entropy.entropy()
	score := s.riskScore(entropy)

	decision := types.DecisionAllow
	if score >= s.cfg.RiskThreshold {
		decision = types.DecisionBlock
	}

	return backend.Raw{
		"risk_score":     score,
		"decision":       string(decision),
		"reasons":        s.reasons(entropy),
		"top_words":      s.freq.top(s.cfg.MaxWords),
		"banned_phrases": s.banned,
		"pii_patterns":   s.piiMatches,
		"entropy":        entropy,
		"is_obfuscated":  entropy > s.cfg.EntropyThreshold,
		"stats":          s.statsLocked(),
	}, nil
}

// Stats returns a progress snapshot
func (s *accumulator) Stats() backend.Raw {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked()
}

func (s *accumulator) statsLocked() backend.Raw {
	return backend.Raw{
		"total_chunks":         s.totalChunks,
		"total_content_length": int(s.totalLength),
		"unique_words":         s.freq.unique(),
		"banned_phrase_count":  s.bannedCount,
		"pii_pattern_count":    s.piiCount,
		"elapsed_ms":           int(time.Since(s.started).Milliseconds()),
		"processing_time_ms":   int(s.processedTime.Milliseconds()),
	}
}

// riskScore combines the three signals. Banned phrases and PII are binary
// contributors; entropy contributes proportionally below its threshold and
// saturates above it.
func (s *accumulator) riskScore(entropy float64) float64 {
	var bannedScore, piiScore float64
	if s.bannedCount > 0 {
		bannedScore = 1
	}
	if s.piiCount > 0 {
		piiScore = 1
	}

	entropyScore := entropy / s.cfg.EntropyThreshold
	if entropy > s.cfg.EntropyThreshold {
		entropyScore = 1
	}

	return bannedScore*bannedWeight + piiScore*piiWeight + entropyScore*entropyWeight
}

func (s *accumulator) reasons(entropy float64) []string {
	var reasons []string
	if s.bannedCount > 0 {
		reasons = append(reasons, fmt.Sprintf("Found %d banned phrase(s)", s.bannedCount))
	}
	if s.piiCount > 0 {
		reasons = append(reasons, fmt.Sprintf("Detected %d PII pattern(s)", s.piiCount))
	}
	if entropy > s.cfg.EntropyThreshold {
		reasons = append(reasons, "High entropy content detected (possible obfuscation)")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "No security concerns detected")
	}
	return reasons
}

func (s *accumulator) keepBanned(matches []types.BannedPhraseMatch) {
	s.bannedCount += len(matches)
	if room := maxStoredMatches - len(s.banned); room > 0 {
		if len(matches) > room {
			matches = matches[:room]
		}
		s.banned = append(s.banned, matches...)
	}
}

func (s *accumulator) keepPII(matches []types.PIIMatch) {
	s.piiCount += len(matches)
	if room := maxStoredMatches - len(s.piiMatches); room > 0 {
		if len(matches) > room {
			matches = matches[:room]
		}
		s.piiMatches = append(s.piiMatches, matches...)
	}
}

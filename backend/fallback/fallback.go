// Package fallback is the degraded analysis path used when a full backend
// build cannot be loaded or keeps failing. It only counts words: no phrase
// scanning, no PII detection, no entropy. Results carry a fixed neutral
// risk score and are always flagged as fallback output so a degraded
// verdict can never pass as a full analysis.
package fallback

import (
	"sync"

	"github.com/c360/uploadguard/backend"
	"github.com/c360/uploadguard/config"
	"github.com/c360/uploadguard/errors"
	"github.com/c360/uploadguard/types"
)

// NeutralRiskScore is reported for every fallback result. It sits below
// the default block threshold: degraded analysis allows rather than
// guessing at risk it cannot measure.
const NeutralRiskScore = 0.5

// Analyzer is the word-count-only backend build
type Analyzer struct{}

// New creates the fallback analyzer
func New() *Analyzer {
	return &Analyzer{}
}

// Name identifies the build
func (a *Analyzer) Name() string {
	return "fallback-wordcount"
}

// NewAccumulator allocates word-count state for one operation
func (a *Analyzer) NewAccumulator(cfg config.AnalysisConfig) (backend.Accumulator, error) {
	return &accumulator{
		cfg:  cfg,
		freq: newCounter(cfg.Stopwords, cfg.MaxTrackedWords),
	}, nil
}

type accumulator struct {
	mu          sync.Mutex
	cfg         config.AnalysisConfig
	freq        *counter
	totalChunks int
	totalLength int64
}

// ProcessChunk counts the chunk's words. Never emits a terminal result.
func (f *accumulator) ProcessChunk(text string, isLast bool) (backend.Raw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.freq.add(text)
	f.totalChunks++
	f.totalLength += int64(len(text))
	return nil, nil
}

// Finalize emits the neutral-score degraded result
func (f *accumulator) Finalize() (backend.Raw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.totalLength == 0 {
		return nil, errors.WrapInvalid(errors.ErrNoContent, "fallback", "Finalize", "no content processed")
	}

	return backend.Raw{
		"risk_score": NeutralRiskScore,
		"decision":   string(types.DecisionAllow),
		"reasons":    []string{"Degraded analysis: word counts only"},
		"top_words":  f.freq.top(f.cfg.MaxWords),
		"fallback":   true,
		"stats":      f.statsLocked(),
	}, nil
}

// Stats returns a progress snapshot
func (f *accumulator) Stats() backend.Raw {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statsLocked()
}

func (f *accumulator) statsLocked() backend.Raw {
	return backend.Raw{
		"total_chunks":         f.totalChunks,
		"total_content_length": int(f.totalLength),
		"unique_words":         f.freq.unique(),
	}
}

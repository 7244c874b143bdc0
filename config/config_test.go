package config

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAnalysisConfig(t *testing.T) {
	cfg := DefaultAnalysisConfig()

	assert.Equal(t, 4.8, cfg.EntropyThreshold)
	assert.Equal(t, 0.6, cfg.RiskThreshold)
	assert.Equal(t, 10, cfg.MaxWords)
	assert.Equal(t, int64(DefaultChunkSize), cfg.ChunkSize)
	assert.Contains(t, cfg.BannedPhrases, "confidential")
	assert.Contains(t, cfg.Stopwords, "the")
	require.NoError(t, cfg.Validate())
}

func TestPreset(t *testing.T) {
	t.Run("empty name is default", func(t *testing.T) {
		cfg, err := Preset("")
		require.NoError(t, err)
		assert.Equal(t, 0.6, cfg.RiskThreshold)
	})

	t.Run("high tightens thresholds", func(t *testing.T) {
		cfg, err := Preset("high")
		require.NoError(t, err)
		assert.Equal(t, 4.2, cfg.EntropyThreshold)
		assert.Equal(t, 0.4, cfg.RiskThreshold)
		assert.Contains(t, cfg.BannedPhrases, "trade secret")
		require.NoError(t, cfg.Validate())
	})

	t.Run("low loosens thresholds", func(t *testing.T) {
		cfg, err := Preset("low")
		require.NoError(t, err)
		assert.Equal(t, 5.5, cfg.EntropyThreshold)
		assert.Equal(t, 0.8, cfg.RiskThreshold)
		assert.Equal(t, []string{"confidential"}, cfg.BannedPhrases)
		require.NoError(t, cfg.Validate())
	})

	t.Run("unknown preset rejected", func(t *testing.T) {
		_, err := Preset("paranoid")
		assert.Error(t, err)
	})
}

func TestAnalysisConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AnalysisConfig)
	}{
		{"zero entropy threshold", func(c *AnalysisConfig) { c.EntropyThreshold = 0 }},
		{"risk threshold above one", func(c *AnalysisConfig) { c.RiskThreshold = 1.5 }},
		{"negative risk threshold", func(c *AnalysisConfig) { c.RiskThreshold = -0.1 }},
		{"zero max words", func(c *AnalysisConfig) { c.MaxWords = 0 }},
		{"tracked below max", func(c *AnalysisConfig) { c.MaxTrackedWords = 5 }},
		{"zero chunk size", func(c *AnalysisConfig) { c.ChunkSize = 0 }},
		{"pii pattern without type", func(c *AnalysisConfig) {
			c.PIIPatterns = []PIIPatternConfig{{Pattern: `\d+`, Confidence: 0.5}}
		}},
		{"pii pattern bad regex", func(c *AnalysisConfig) {
			c.PIIPatterns = []PIIPatternConfig{{Type: "x", Pattern: `[`, Confidence: 0.5}}
		}},
		{"pii confidence out of range", func(c *AnalysisConfig) {
			c.PIIPatterns = []PIIPatternConfig{{Type: "x", Pattern: `\d+`, Confidence: 2}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultAnalysisConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAnalysisConfig_Merge(t *testing.T) {
	base := DefaultAnalysisConfig()

	t.Run("nil overrides return copy", func(t *testing.T) {
		merged := base.Merge(nil)
		assert.Equal(t, base.RiskThreshold, merged.RiskThreshold)
		merged.BannedPhrases[0] = "changed"
		assert.Equal(t, "confidential", base.BannedPhrases[0])
	})

	t.Run("scalar overrides apply", func(t *testing.T) {
		merged := base.Merge(&AnalysisConfig{RiskThreshold: 0.3, MaxWords: 50})
		assert.Equal(t, 0.3, merged.RiskThreshold)
		assert.Equal(t, 50, merged.MaxWords)
		assert.Equal(t, base.EntropyThreshold, merged.EntropyThreshold)
	})

	t.Run("slices replace wholesale", func(t *testing.T) {
		merged := base.Merge(&AnalysisConfig{BannedPhrases: []string{"secret sauce"}})
		assert.Equal(t, []string{"secret sauce"}, merged.BannedPhrases)
		assert.Equal(t, base.Stopwords, merged.Stopwords)
	})

	t.Run("zero scalars keep base", func(t *testing.T) {
		merged := base.Merge(&AnalysisConfig{})
		assert.Equal(t, base.RiskThreshold, merged.RiskThreshold)
		assert.Equal(t, base.ChunkSize, merged.ChunkSize)
	})
}

func TestAnalysisConfig_Clone(t *testing.T) {
	base := DefaultAnalysisConfig()
	clone := base.Clone()

	clone.Stopwords[0] = "mutated"
	clone.BannedPhrases[0] = "mutated"

	assert.NotEqual(t, base.Stopwords[0], clone.Stopwords[0])
	assert.NotEqual(t, base.BannedPhrases[0], clone.BannedPhrases[0])
}

func TestDefaultEngineConfig(t *testing.T) {
	cfg := DefaultEngineConfig()

	assert.Equal(t, 3, cfg.MaxConcurrentOperations)
	assert.Equal(t, 10, cfg.MaxQueueSize)
	assert.Equal(t, int64(100<<20), cfg.MaxFileSize)
	assert.Equal(t, 30*time.Second, cfg.OperationTimeout)
	assert.Equal(t, 5*time.Minute, cfg.CleanupInterval)
	assert.Equal(t, 30*time.Minute, cfg.RetentionWindow)
	assert.Equal(t, 3, cfg.MaxConsecutiveFailures)
	assert.Equal(t, 50, cfg.ValveChunkInterval)
	require.NoError(t, cfg.Validate())
}

func TestEngineConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EngineConfig)
	}{
		{"zero concurrency", func(c *EngineConfig) { c.MaxConcurrentOperations = 0 }},
		{"queue below concurrency", func(c *EngineConfig) { c.MaxQueueSize = 1 }},
		{"zero file size", func(c *EngineConfig) { c.MaxFileSize = 0 }},
		{"zero timeout", func(c *EngineConfig) { c.OperationTimeout = 0 }},
		{"zero cleanup interval", func(c *EngineConfig) { c.CleanupInterval = 0 }},
		{"retention below timeout", func(c *EngineConfig) { c.RetentionWindow = time.Second }},
		{"zero failure limit", func(c *EngineConfig) { c.MaxConsecutiveFailures = 0 }},
		{"zero fault log", func(c *EngineConfig) { c.FaultLogSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultEngineConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	base := Default()
	clone := base.Clone()

	clone.Engine.MaxConcurrentOperations = 99
	clone.Analysis.BannedPhrases[0] = "mutated"

	assert.Equal(t, 3, base.Engine.MaxConcurrentOperations)
	assert.Equal(t, "confidential", base.Analysis.BannedPhrases[0])
}

func TestSafeConfig(t *testing.T) {
	t.Run("nil seeds defaults", func(t *testing.T) {
		sc := NewSafeConfig(nil)
		assert.Equal(t, 3, sc.Get().Engine.MaxConcurrentOperations)
	})

	t.Run("get returns copies", func(t *testing.T) {
		sc := NewSafeConfig(Default())
		got := sc.Get()
		got.Engine.MaxConcurrentOperations = 99
		assert.Equal(t, 3, sc.Get().Engine.MaxConcurrentOperations)
	})

	t.Run("update validates", func(t *testing.T) {
		sc := NewSafeConfig(Default())
		bad := Default()
		bad.Engine.MaxConcurrentOperations = 0
		assert.Error(t, sc.Update(bad))
		assert.Error(t, sc.Update(nil))
		assert.Equal(t, 3, sc.Get().Engine.MaxConcurrentOperations)
	})

	t.Run("update swaps atomically", func(t *testing.T) {
		sc := NewSafeConfig(Default())
		next := Default()
		next.Analysis.RiskThreshold = 0.4
		require.NoError(t, sc.Update(next))
		assert.Equal(t, 0.4, sc.Get().Analysis.RiskThreshold)
	})

	t.Run("concurrent access", func(t *testing.T) {
		sc := NewSafeConfig(Default())
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					_ = sc.Get()
					_ = sc.Update(Default())
				}
			}()
		}
		wg.Wait()
	})
}

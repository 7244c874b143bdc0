package config

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sync"
	"time"
)

// Size and timing defaults shared across the engine
const (
	// DefaultChunkSize is the chunk size producers should slice files into
	DefaultChunkSize = 1 << 20 // 1 MiB
	// DefaultMaxFileSize is the admission ceiling enforced at stream init
	DefaultMaxFileSize = 100 << 20 // 100 MiB
)

// AnalysisConfig is the per-operation analysis configuration. It is merged
// from defaults and overrides at operation init and immutable afterwards:
// CONFIG_UPDATE changes the defaults for future operations, never the
// snapshot held by an in-flight one.
type AnalysisConfig struct {
	Stopwords        []string           `json:"stopwords"`
	EntropyThreshold float64            `json:"entropy_threshold"`
	RiskThreshold    float64            `json:"risk_threshold"`
	MaxWords         int                `json:"max_words"`
	MaxTrackedWords  int                `json:"max_tracked_words"`
	BannedPhrases    []string           `json:"banned_phrases"`
	PIIPatterns      []PIIPatternConfig `json:"pii_patterns,omitempty"`
	ChunkSize        int64              `json:"chunk_size"`
}

// PIIPatternConfig declares a custom PII detector on top of the built-in set
type PIIPatternConfig struct {
	Type       string  `json:"type"`
	Pattern    string  `json:"pattern"`
	Confidence float64 `json:"confidence"`
}

// defaultStopwords excluded from word-frequency analysis
var defaultStopwords = []string{
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with",
	"by", "is", "are", "was", "were", "be", "been", "have", "has", "had", "do", "does",
	"did", "will", "would", "could", "should", "may", "might", "can", "this", "that",
	"these", "those", "i", "you", "he", "she", "it", "we", "they", "me", "him", "her",
	"us", "them", "my", "your", "his", "its", "our", "their", "mine", "yours",
	"hers", "ours", "theirs",
}

// DefaultAnalysisConfig returns the baseline analysis configuration
func DefaultAnalysisConfig() AnalysisConfig {
	stopwords := make([]string, len(defaultStopwords))
	copy(stopwords, defaultStopwords)

	return AnalysisConfig{
		Stopwords:        stopwords,
		EntropyThreshold: 4.8,
		RiskThreshold:    0.6,
		MaxWords:         10,
		MaxTrackedWords:  10000,
		BannedPhrases:    []string{"confidential", "do not share"},
		ChunkSize:        DefaultChunkSize,
	}
}

// HighSecurityConfig returns a preset tuned for aggressive blocking.
// Presets are ordinary validated configurations, not special-cased types.
func HighSecurityConfig() AnalysisConfig {
	cfg := DefaultAnalysisConfig()
	cfg.EntropyThreshold = 4.2
	cfg.RiskThreshold = 0.4
	cfg.MaxWords = 25
	cfg.BannedPhrases = append(cfg.BannedPhrases,
		"internal use only", "proprietary", "trade secret", "classified")
	return cfg
}

// LowSecurityConfig returns a preset tuned for permissive scanning
func LowSecurityConfig() AnalysisConfig {
	cfg := DefaultAnalysisConfig()
	cfg.EntropyThreshold = 5.5
	cfg.RiskThreshold = 0.8
	cfg.BannedPhrases = []string{"confidential"}
	return cfg
}

// Preset looks up a named preset configuration
func Preset(name string) (AnalysisConfig, error) {
	switch name {
	case "", "default":
		return DefaultAnalysisConfig(), nil
	case "high":
		return HighSecurityConfig(), nil
	case "low":
		return LowSecurityConfig(), nil
	default:
		return AnalysisConfig{}, fmt.Errorf("unknown config preset %q", name)
	}
}

// Validate checks the analysis configuration for errors
func (c *AnalysisConfig) Validate() error {
	if c.EntropyThreshold <= 0 {
		return fmt.Errorf("entropy_threshold must be positive, got %v", c.EntropyThreshold)
	}
	if c.RiskThreshold < 0 || c.RiskThreshold > 1 {
		return fmt.Errorf("risk_threshold must be in [0,1], got %v", c.RiskThreshold)
	}
	if c.MaxWords <= 0 {
		return fmt.Errorf("max_words must be positive, got %d", c.MaxWords)
	}
	if c.MaxTrackedWords > 0 && c.MaxTrackedWords < c.MaxWords {
		return fmt.Errorf("max_tracked_words (%d) cannot be below max_words (%d)",
			c.MaxTrackedWords, c.MaxWords)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	for _, p := range c.PIIPatterns {
		if p.Type == "" {
			return fmt.Errorf("pii pattern missing type")
		}
		if _, err := regexp.Compile(p.Pattern); err != nil {
			return fmt.Errorf("pii pattern %q: invalid regex: %w", p.Type, err)
		}
		if p.Confidence < 0 || p.Confidence > 1 {
			return fmt.Errorf("pii pattern %q: confidence must be in [0,1]", p.Type)
		}
	}
	return nil
}

// Merge applies non-zero override fields onto a copy of c and returns it.
// Slices in overrides replace wholesale; an absent slice keeps the base.
func (c AnalysisConfig) Merge(overrides *AnalysisConfig) AnalysisConfig {
	out := c.Clone()
	if overrides == nil {
		return out
	}
	if overrides.Stopwords != nil {
		out.Stopwords = append([]string(nil), overrides.Stopwords...)
	}
	if overrides.EntropyThreshold > 0 {
		out.EntropyThreshold = overrides.EntropyThreshold
	}
	if overrides.RiskThreshold > 0 {
		out.RiskThreshold = overrides.RiskThreshold
	}
	if overrides.MaxWords > 0 {
		out.MaxWords = overrides.MaxWords
	}
	if overrides.MaxTrackedWords > 0 {
		out.MaxTrackedWords = overrides.MaxTrackedWords
	}
	if overrides.BannedPhrases != nil {
		out.BannedPhrases = append([]string(nil), overrides.BannedPhrases...)
	}
	if overrides.PIIPatterns != nil {
		out.PIIPatterns = append([]PIIPatternConfig(nil), overrides.PIIPatterns...)
	}
	if overrides.ChunkSize > 0 {
		out.ChunkSize = overrides.ChunkSize
	}
	return out
}

// Clone creates a deep copy of the analysis configuration
func (c AnalysisConfig) Clone() AnalysisConfig {
	out := c
	out.Stopwords = append([]string(nil), c.Stopwords...)
	out.BannedPhrases = append([]string(nil), c.BannedPhrases...)
	out.PIIPatterns = append([]PIIPatternConfig(nil), c.PIIPatterns...)
	return out
}

// EngineConfig bounds the streaming operation engine
type EngineConfig struct {
	MaxConcurrentOperations int           `json:"max_concurrent_operations"`
	MaxQueueSize            int           `json:"max_queue_size"`
	MaxFileSize             int64         `json:"max_file_size"`
	OperationTimeout        time.Duration `json:"operation_timeout"`
	CleanupInterval         time.Duration `json:"cleanup_interval"`
	RetentionWindow         time.Duration `json:"retention_window"`
	MaxConsecutiveFailures  int           `json:"max_consecutive_failures"`
	StallThreshold          time.Duration `json:"stall_threshold"`
	ValveChunkInterval      int           `json:"valve_chunk_interval"`
	ValvePause              time.Duration `json:"valve_pause"`
	FaultLogSize            int           `json:"fault_log_size"`
	SniffFileTypes          bool          `json:"sniff_file_types"`
}

// DefaultEngineConfig returns the engine defaults
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxConcurrentOperations: 3,
		MaxQueueSize:            10,
		MaxFileSize:             DefaultMaxFileSize,
		OperationTimeout:        30 * time.Second,
		CleanupInterval:         5 * time.Minute,
		RetentionWindow:         30 * time.Minute,
		MaxConsecutiveFailures:  3,
		StallThreshold:          5 * time.Second,
		ValveChunkInterval:      50,
		ValvePause:              1 * time.Second,
		FaultLogSize:            100,
		SniffFileTypes:          true,
	}
}

// Validate checks engine limits for consistency
func (c *EngineConfig) Validate() error {
	if c.MaxConcurrentOperations <= 0 {
		return fmt.Errorf("max_concurrent_operations must be positive, got %d", c.MaxConcurrentOperations)
	}
	if c.MaxQueueSize < c.MaxConcurrentOperations {
		return fmt.Errorf("max_queue_size (%d) cannot be below max_concurrent_operations (%d)",
			c.MaxQueueSize, c.MaxConcurrentOperations)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", c.MaxFileSize)
	}
	if c.OperationTimeout <= 0 {
		return fmt.Errorf("operation_timeout must be positive, got %v", c.OperationTimeout)
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup_interval must be positive, got %v", c.CleanupInterval)
	}
	if c.RetentionWindow < c.OperationTimeout {
		return fmt.Errorf("retention_window (%v) cannot be below operation_timeout (%v)",
			c.RetentionWindow, c.OperationTimeout)
	}
	if c.MaxConsecutiveFailures <= 0 {
		return fmt.Errorf("max_consecutive_failures must be positive, got %d", c.MaxConsecutiveFailures)
	}
	if c.FaultLogSize <= 0 {
		return fmt.Errorf("fault_log_size must be positive, got %d", c.FaultLogSize)
	}
	return nil
}

// ServerConfig configures the daemon's transport surfaces
type ServerConfig struct {
	ListenAddr  string `json:"listen_addr"`
	MetricsAddr string `json:"metrics_addr"`
	NATSURL     string `json:"nats_url,omitempty"`
	NATSSubject string `json:"nats_subject,omitempty"`
}

// DefaultServerConfig returns local-only listener defaults. The daemon is
// reached by a browser extension on the same host, so it binds loopback.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddr:  "127.0.0.1:8745",
		MetricsAddr: "127.0.0.1:9745",
		NATSSubject: "uploadguard.scan",
	}
}

// Config is the complete daemon configuration
type Config struct {
	Engine   EngineConfig   `json:"engine"`
	Analysis AnalysisConfig `json:"analysis"`
	Server   ServerConfig   `json:"server"`
}

// Default returns the complete default configuration
func Default() *Config {
	return &Config{
		Engine:   DefaultEngineConfig(),
		Analysis: DefaultAnalysisConfig(),
		Server:   DefaultServerConfig(),
	}
}

// Validate checks the whole configuration tree
func (c *Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return Default()
	}

	// JSON round-trip for a deep copy
	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}
	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}
	return &clone
}

// SafeConfig provides thread-safe access to configuration. CONFIG_UPDATE
// requests swap the config through this wrapper; in-flight operations keep
// their merged snapshot.
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig creates a new thread-safe config wrapper
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = Default()
	}
	return &SafeConfig{config: cfg}
}

// Get returns a deep copy of the current configuration
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// Update atomically replaces the configuration after validation
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg
	return nil
}

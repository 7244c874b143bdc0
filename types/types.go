// Package types contains shared domain types used across the UploadGuard engine
package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Decision is the verdict for an upload
type Decision string

// Decision constants
const (
	DecisionAllow Decision = "allow"
	DecisionBlock Decision = "block"
)

// IsValid reports whether the decision is one of the closed set
func (d Decision) IsValid() bool {
	return d == DecisionAllow || d == DecisionBlock
}

// FileInfo describes the file a producer wants scanned
type FileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"` // declared MIME type
}

// Validate ensures the file description is usable
func (f FileInfo) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("file name cannot be empty")
	}
	if f.Size < 0 {
		return fmt.Errorf("file size cannot be negative, got %d", f.Size)
	}
	return nil
}

// WordCount is one entry of the top-words frequency table
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// BannedPhraseMatch records one occurrence of a banned phrase
type BannedPhraseMatch struct {
	Phrase   string `json:"phrase"`
	Position int    `json:"position"`
	Context  string `json:"context"`
	Severity string `json:"severity"`
}

// PIIMatch records one PII-like pattern occurrence
type PIIMatch struct {
	Type       string  `json:"type"`
	Pattern    string  `json:"pattern"`
	Position   int     `json:"position"`
	Confidence float64 `json:"confidence"`
}

// OperationStats is a running snapshot of one operation's progress. Its
// JSON shape is operationStatsWire: the durations cross the wire as
// integer milliseconds.
type OperationStats struct {
	TotalChunks        int
	TotalContentLength int64
	UniqueWords        int
	BannedPhraseCount  int
	PIICount           int
	Elapsed            time.Duration
	ProcessingTime     time.Duration
}

type operationStatsWire struct {
	TotalChunks        int   `json:"total_chunks"`
	TotalContentLength int64 `json:"total_content_length"`
	UniqueWords        int   `json:"unique_words"`
	BannedPhraseCount  int   `json:"banned_phrase_count"`
	PIICount           int   `json:"pii_count"`
	ElapsedMs          int64 `json:"elapsed_ms"`
	ProcessingTimeMs   int64 `json:"processing_time_ms"`
}

// MarshalJSON implements json.Marshaler
func (s OperationStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(operationStatsWire{
		TotalChunks:        s.TotalChunks,
		TotalContentLength: s.TotalContentLength,
		UniqueWords:        s.UniqueWords,
		BannedPhraseCount:  s.BannedPhraseCount,
		PIICount:           s.PIICount,
		ElapsedMs:          s.Elapsed.Milliseconds(),
		ProcessingTimeMs:   s.ProcessingTime.Milliseconds(),
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (s *OperationStats) UnmarshalJSON(data []byte) error {
	var w operationStatsWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = OperationStats{
		TotalChunks:        w.TotalChunks,
		TotalContentLength: w.TotalContentLength,
		UniqueWords:        w.UniqueWords,
		BannedPhraseCount:  w.BannedPhraseCount,
		PIICount:           w.PIICount,
		Elapsed:            time.Duration(w.ElapsedMs) * time.Millisecond,
		ProcessingTime:     time.Duration(w.ProcessingTimeMs) * time.Millisecond,
	}
	return nil
}

// RiskResult is the immutable output of a finalized operation.
//
// Scored distinguishes a genuine zero risk score from a backend build that
// never reported one: an unscored result keeps RiskScore at 0 but carries
// Scored=false and an "unscored" reason so callers can tell them apart.
// Fallback marks results produced by a degraded path; an unflagged fallback
// is a defect, not acceptable behavior.
type RiskResult struct {
	RiskScore     float64             `json:"risk_score"`
	Scored        bool                `json:"scored"`
	Decision      Decision            `json:"decision"`
	Reasons       []string            `json:"reasons"`
	TopWords      []WordCount         `json:"top_words"`
	BannedPhrases []BannedPhraseMatch `json:"banned_phrases"`
	PIIMatches    []PIIMatch          `json:"pii_matches"`
	Entropy       float64             `json:"entropy"`
	IsObfuscated  bool                `json:"is_obfuscated"`
	Fallback      bool                `json:"fallback"`
	Stats         OperationStats      `json:"stats"`
}

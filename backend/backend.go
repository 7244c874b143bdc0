// Package backend wraps the pluggable analysis backend behind opaque
// per-operation handles and normalizes build-specific result shapes into
// the canonical RiskResult.
package backend

import (
	"github.com/c360/uploadguard/config"
)

// Raw is the loosely-typed result shape a backend build emits. Different
// builds use different field names; nothing outside this package
// interprets a Raw directly.
type Raw = map[string]any

// Accumulator is one operation's running analysis state inside a backend
// build. Callers must guarantee exactly-once, in-order chunk delivery:
// re-feeding a chunk double-counts.
type Accumulator interface {
	// ProcessChunk feeds one chunk of text. Some builds return a complete
	// terminal result when isLast is set; callers must treat a non-nil
	// return as final and never call Finalize afterwards.
	ProcessChunk(text string, isLast bool) (Raw, error)

	// Finalize computes the terminal result. The accumulator is spent
	// afterwards; further calls are undefined.
	Finalize() (Raw, error)

	// Stats returns a read-only progress snapshot, safe before or after
	// Finalize.
	Stats() Raw
}

// Backend is one analysis backend build
type Backend interface {
	// Name identifies the build, for logs and fault context
	Name() string

	// NewAccumulator allocates backend-side state for one operation
	NewAccumulator(cfg config.AnalysisConfig) (Accumulator, error)
}

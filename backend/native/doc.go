// Package native is the built-in analysis backend build. It implements
// the full detection pipeline in-process: word frequency with stopword
// filtering, incremental Shannon entropy, banned phrase matching with
// surrounding context, and PII detection with per-pattern confidence.
//
// The build emits canonical field names, completes analysis only at
// Finalize, and keeps per-operation memory bounded regardless of file
// size.
package native

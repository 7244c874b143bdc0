// Package errors provides standardized error handling for UploadGuard.
//
// # Overview
//
// Three concerns live here:
//
//   - Standard error variables (ErrOperationNotFound, ErrInvalidHandle, ...)
//     that lower layers raise so upper layers can match with errors.Is
//     instead of string inspection.
//   - Classification of arbitrary errors into transient/invalid/fatal via
//     ClassifiedError wrappers and heuristic fallbacks.
//   - A Severity scale carried independently of retryability.
//
// # Wrapping
//
// All errors crossing a component boundary use the standard pattern:
//
//	errors.WrapTransient(err, "Manager", "ProcessChunk", "backend call")
//
// which produces "Manager.ProcessChunk: backend call failed: <cause>" while
// preserving the cause chain for errors.Is / errors.As.
//
// # Classification precedence
//
// Explicit classification always wins: a ClassifiedError reports its own
// class, and known sentinel errors are matched before any keyword
// heuristics run. The keyword matching in IsTransient and IsFatal exists
// only as a safety net for errors raised by third-party code.
package errors

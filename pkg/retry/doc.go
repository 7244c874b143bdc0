// Package retry provides schedule-driven backoff retry for transient failures.
//
// # Overview
//
// Unlike multiplicative exponential backoff, delays here come from an
// explicit schedule (1s, 2s, 5s, 10s by default) whose final entry repeats
// as the cap. The schedule is shared with chunk producers over the wire:
// retry_after_ms hints in chunk responses are drawn from the same steps, so
// both sides of the transport agree on timing.
//
// # Core functions
//
//   - Do: execute a function with retry against a schedule
//   - DoWithResult: same, returning both result and error
//   - NonRetryable: mark an error so Do fails fast instead of retrying
//
// # Usage
//
//	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
//	    return adapter.ProcessChunk(handle, text)
//	})
//
// All retry operations respect context cancellation, both between attempts
// and during backoff sleeps. Jitter (up to 25%) is optional and uses a
// thread-safe random source.
package retry

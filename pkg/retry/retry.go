// Package retry provides backoff retry logic for transient engine failures
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var (
	// Thread-safe random source for jitter
	randMu     sync.Mutex
	randSource = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// NonRetryableError wraps errors that should not be retried
type NonRetryableError struct {
	Err error
}

func (e *NonRetryableError) Error() string {
	return fmt.Sprintf("non-retryable: %v", e.Err)
}

func (e *NonRetryableError) Unwrap() error {
	return e.Err
}

// NonRetryable wraps an error to indicate it should not be retried
func NonRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &NonRetryableError{Err: err}
}

// IsNonRetryable checks if an error is marked as non-retryable
func IsNonRetryable(err error) bool {
	var nre *NonRetryableError
	return errors.As(err, &nre)
}

// Config provides retry configuration. Delays are taken from Schedule,
// attempt by attempt; attempts beyond the schedule reuse its final entry,
// so the last entry acts as the cap.
type Config struct {
	MaxAttempts int             // Total attempts including the first (0 = run once)
	Schedule    []time.Duration // Delay before each retry, last entry repeats
	AddJitter   bool            // Add randomness to prevent thundering herd
}

// ProgressiveSchedule returns the engine's standard backoff steps.
// Chunk producers time their resubmission against these values, so the
// steps are part of the external contract, not a tuning knob.
func ProgressiveSchedule() []time.Duration {
	return []time.Duration{
		1 * time.Second,
		2 * time.Second,
		5 * time.Second,
		10 * time.Second,
	}
}

// DefaultConfig returns the progressive schedule with 4 total attempts
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 4,
		Schedule:    ProgressiveSchedule(),
	}
}

// Quick returns a config for fast retries (useful during startup)
func Quick() Config {
	return Config{
		MaxAttempts: 10,
		Schedule: []time.Duration{
			50 * time.Millisecond,
			100 * time.Millisecond,
			250 * time.Millisecond,
			500 * time.Millisecond,
			1 * time.Second,
		},
		AddJitter: true,
	}
}

// DelayFor returns the backoff delay preceding the given retry attempt
// (0-based). An empty schedule yields zero delay.
func (c Config) DelayFor(attempt int) time.Duration {
	if len(c.Schedule) == 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= len(c.Schedule) {
		attempt = len(c.Schedule) - 1
	}
	return c.Schedule[attempt]
}

// Do executes fn, retrying on failure per the configured schedule
func Do(ctx context.Context, cfg Config, fn func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1 // At least try once
	}
	if len(cfg.Schedule) == 0 {
		cfg.Schedule = ProgressiveSchedule()
	}
	for _, d := range cfg.Schedule {
		if d < 0 {
			return errors.New("retry: schedule delays cannot be negative")
		}
	}

	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		// Non-retryable errors fail immediately
		if IsNonRetryable(err) {
			return err
		}

		if ctx.Err() != nil {
			return fmt.Errorf("retry cancelled before attempt %d: %w", attempt, ctx.Err())
		}

		// Don't sleep after the last attempt
		if attempt == cfg.MaxAttempts {
			break
		}

		sleepDuration := cfg.DelayFor(attempt - 1)
		if cfg.AddJitter && sleepDuration > 0 {
			// Add up to 25% jitter using thread-safe random
			randMu.Lock()
			jitter := time.Duration(randSource.Int63n(int64(sleepDuration / 4)))
			randMu.Unlock()
			sleepDuration += jitter
		}

		timer := time.NewTimer(sleepDuration)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled during backoff for attempt %d: %w", attempt+1, ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("retry failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

// DoWithResult executes fn with retry and returns both result and error
func DoWithResult[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var result T
	err := Do(ctx, cfg, func() error {
		var innerErr error
		result, innerErr = fn()
		return innerErr
	})
	return result, err
}

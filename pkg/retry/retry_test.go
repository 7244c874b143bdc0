package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts: attempts,
		Schedule:    []time.Duration{time.Millisecond, 2 * time.Millisecond},
	}
}

func TestProgressiveSchedule(t *testing.T) {
	want := []time.Duration{time.Second, 2 * time.Second, 5 * time.Second, 10 * time.Second}
	assert.Equal(t, want, ProgressiveSchedule())
}

func TestConfig_DelayFor(t *testing.T) {
	cfg := Config{Schedule: []time.Duration{time.Second, 2 * time.Second}}

	assert.Equal(t, time.Second, cfg.DelayFor(0))
	assert.Equal(t, 2*time.Second, cfg.DelayFor(1))
	assert.Equal(t, 2*time.Second, cfg.DelayFor(9), "attempts beyond schedule reuse final entry")
	assert.Equal(t, time.Second, cfg.DelayFor(-1))
	assert.Equal(t, time.Duration(0), Config{}.DelayFor(0))
}

func TestDo(t *testing.T) {
	t.Run("succeeds first try", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), fastConfig(3), func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), fastConfig(3), func() error {
			calls++
			if calls < 3 {
				return fmt.Errorf("transient %d", calls)
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		base := errors.New("always fails")
		calls := 0
		err := Do(context.Background(), fastConfig(3), func() error {
			calls++
			return base
		})
		require.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.ErrorIs(t, err, base)
	})

	t.Run("non-retryable fails immediately", func(t *testing.T) {
		base := errors.New("bad input")
		calls := 0
		err := Do(context.Background(), fastConfig(5), func() error {
			calls++
			return NonRetryable(base)
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.ErrorIs(t, err, base)
	})

	t.Run("context cancellation stops retries", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := Do(ctx, Config{MaxAttempts: 5, Schedule: []time.Duration{time.Hour}}, func() error {
			calls++
			cancel()
			return errors.New("nope")
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("rejects negative delays", func(t *testing.T) {
		err := Do(context.Background(), Config{
			MaxAttempts: 2,
			Schedule:    []time.Duration{-time.Second},
		}, func() error { return nil })
		require.Error(t, err)
	})

	t.Run("zero attempts runs once", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), Config{Schedule: []time.Duration{time.Millisecond}}, func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestDoWithResult(t *testing.T) {
	t.Run("returns value on success", func(t *testing.T) {
		calls := 0
		got, err := DoWithResult(context.Background(), fastConfig(3), func() (string, error) {
			calls++
			if calls < 2 {
				return "", errors.New("try again")
			}
			return "done", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "done", got)
	})

	t.Run("returns zero value on failure", func(t *testing.T) {
		got, err := DoWithResult(context.Background(), fastConfig(2), func() (int, error) {
			return 0, errors.New("no")
		})
		require.Error(t, err)
		assert.Zero(t, got)
	})
}

func TestNonRetryable(t *testing.T) {
	base := errors.New("boom")

	assert.Nil(t, NonRetryable(nil))
	assert.True(t, IsNonRetryable(NonRetryable(base)))
	assert.True(t, IsNonRetryable(fmt.Errorf("ctx: %w", NonRetryable(base))))
	assert.False(t, IsNonRetryable(base))
	assert.ErrorIs(t, NonRetryable(base), base)
}

package backpressure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/c360/uploadguard/config"
	"github.com/c360/uploadguard/types"
)

func testController(opts ...Option) *Controller {
	return NewController(config.DefaultEngineConfig(), nil, opts...)
}

func TestControl_QueuePressure(t *testing.T) {
	c := testController()

	t.Run("below ceiling no pause", func(t *testing.T) {
		sig := c.Control(3, types.OperationStats{})
		assert.False(t, sig.Pause)
		assert.Equal(t, 3, sig.QueueSize)
		assert.Equal(t, 10, sig.MaxQueueSize)
	})

	t.Run("at ceiling pauses", func(t *testing.T) {
		sig := c.Control(10, types.OperationStats{})
		assert.True(t, sig.Pause)
		assert.Equal(t, 5*time.Second, sig.ResumeAfter, "resume delay caps at five seconds")
	})

	t.Run("pause holds for any load past the ceiling", func(t *testing.T) {
		for load := 10; load <= 30; load++ {
			assert.True(t, c.Control(load, types.OperationStats{}).Pause,
				"load %d must pause", load)
		}
	})

	t.Run("resume delay scales with queue below cap", func(t *testing.T) {
		cfg := config.DefaultEngineConfig()
		cfg.MaxQueueSize = 3
		small := NewController(cfg, nil)
		sig := small.Control(3, types.OperationStats{})
		assert.True(t, sig.Pause)
		assert.Equal(t, 3*time.Second, sig.ResumeAfter)
	})
}

func TestControl_StallPressure(t *testing.T) {
	c := testController()

	sig := c.Control(1, types.OperationStats{ProcessingTime: 6 * time.Second})
	assert.True(t, sig.Pause, "a stalled operation pauses its producer")

	sig = c.Control(1, types.OperationStats{ProcessingTime: 2 * time.Second})
	assert.False(t, sig.Pause)
}

func TestControl_ProcessingRate(t *testing.T) {
	c := testController(WithBaseRate(100))

	assert.Equal(t, 100.0, c.Control(0, types.OperationStats{}).ProcessingRate)
	assert.Equal(t, 100.0, c.Control(1, types.OperationStats{}).ProcessingRate)
	assert.Equal(t, 25.0, c.Control(4, types.OperationStats{}).ProcessingRate)
}

func TestControlChunk_Valve(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	clock := base
	c := testController()
	c.now = func() time.Time { return clock }

	t.Run("fires on the fiftieth chunk", func(t *testing.T) {
		for i := 0; i < 49; i++ {
			sig := c.ControlChunk("op-1", i, 1, types.OperationStats{})
			assert.False(t, sig.Pause, "chunk %d should not pause", i)
		}

		sig := c.ControlChunk("op-1", 49, 1, types.OperationStats{})
		assert.True(t, sig.Pause)
		assert.Equal(t, time.Second, sig.ResumeAfter)
	})

	t.Run("holds while the interval runs", func(t *testing.T) {
		clock = base.Add(400 * time.Millisecond)
		sig := c.ControlChunk("op-1", 50, 1, types.OperationStats{})
		assert.True(t, sig.Pause)
		assert.Equal(t, 600*time.Millisecond, sig.ResumeAfter)
	})

	t.Run("clears without caller action once elapsed", func(t *testing.T) {
		clock = base.Add(1100 * time.Millisecond)
		sig := c.ControlChunk("op-1", 50, 1, types.OperationStats{})
		assert.False(t, sig.Pause)
	})

	t.Run("fires again at the next interval", func(t *testing.T) {
		sig := c.ControlChunk("op-1", 99, 1, types.OperationStats{})
		assert.True(t, sig.Pause)
	})
}

func TestControlChunk_ValvePerOperation(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	c := testController()
	c.now = func() time.Time { return base }

	sig := c.ControlChunk("op-a", 49, 1, types.OperationStats{})
	assert.True(t, sig.Pause)

	sig = c.ControlChunk("op-b", 3, 1, types.OperationStats{})
	assert.False(t, sig.Pause, "another operation's valve does not leak")
}

func TestControlChunk_ValveDisabled(t *testing.T) {
	cfg := config.DefaultEngineConfig()
	cfg.ValveChunkInterval = 0
	c := NewController(cfg, nil)

	sig := c.ControlChunk("op-1", 49, 1, types.OperationStats{})
	assert.False(t, sig.Pause)
}

func TestControlChunk_GlobalPressureDominates(t *testing.T) {
	c := testController()

	sig := c.ControlChunk("op-1", 2, 10, types.OperationStats{})
	assert.True(t, sig.Pause, "queue pressure pauses regardless of valve position")
	assert.Equal(t, 5*time.Second, sig.ResumeAfter)
}

func TestForget(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	c := testController()
	c.now = func() time.Time { return base }

	sig := c.ControlChunk("op-1", 49, 1, types.OperationStats{})
	assert.True(t, sig.Pause)

	c.Forget("op-1")

	sig = c.ControlChunk("op-1", 1, 1, types.OperationStats{})
	assert.False(t, sig.Pause, "forgotten operations carry no valve state")
}

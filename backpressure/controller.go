// Package backpressure computes pause/resume signals for chunk producers.
// The controller never blocks a caller: it returns a signal and the
// producer owns its own retry timing.
package backpressure

import (
	"log/slog"
	"sync"
	"time"

	"github.com/c360/uploadguard/config"
	"github.com/c360/uploadguard/metric"
	"github.com/c360/uploadguard/types"
)

// defaultBaseRate is the nominal per-operation chunk rate the controller
// scales down as the queue fills, in chunks per second.
const defaultBaseRate = 100.0

// maxResumeDelay caps how long a producer is ever told to wait
const maxResumeDelay = 5 * time.Second

// Signal tells a producer whether to pause chunk delivery and the load
// snapshot the decision was made from.
type Signal struct {
	Pause          bool
	ResumeAfter    time.Duration
	QueueSize      int
	MaxQueueSize   int
	ProcessingRate float64
}

// Controller derives backpressure signals from engine load. It also runs
// a per-operation safety valve that pauses delivery for a fixed interval
// after every Nth chunk regardless of global load.
type Controller struct {
	mu       sync.Mutex
	cfg      config.EngineConfig
	baseRate float64
	valves   map[string]time.Time // operation id -> valve pause deadline
	metrics  *metric.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Controller
type Option func(*Controller)

// WithBaseRate overrides the nominal processing rate
func WithBaseRate(rate float64) Option {
	return func(c *Controller) {
		if rate > 0 {
			c.baseRate = rate
		}
	}
}

// WithMetrics records pause decisions on the given metrics
func WithMetrics(m *metric.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// NewController creates a backpressure controller for the given limits
func NewController(cfg config.EngineConfig, logger *slog.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		cfg:      cfg,
		baseRate: defaultBaseRate,
		valves:   make(map[string]time.Time),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Control computes the global backpressure signal for the current load.
// Pause triggers when active operations reach the queue ceiling or when
// one operation's cumulative processing time exceeds the stall threshold.
func (c *Controller) Control(activeOps int, stats types.OperationStats) Signal {
	sig := Signal{
		QueueSize:      activeOps,
		MaxQueueSize:   c.cfg.MaxQueueSize,
		ProcessingRate: c.rate(activeOps),
	}

	switch {
	case activeOps >= c.cfg.MaxQueueSize:
		sig.Pause = true
	case c.cfg.StallThreshold > 0 && stats.ProcessingTime > c.cfg.StallThreshold:
		sig.Pause = true
	}

	if sig.Pause {
		sig.ResumeAfter = resumeDelay(activeOps)
		c.recordPause("load", activeOps)
	}
	return sig
}

// ControlChunk combines the global signal with the per-operation valve.
// chunkIndex is zero-based; the valve fires once every Nth chunk and keeps
// the operation paused until its fixed interval elapses, after which the
// signal clears without any caller action.
func (c *Controller) ControlChunk(opID string, chunkIndex int, activeOps int, stats types.OperationStats) Signal {
	sig := c.Control(activeOps, stats)

	interval := c.cfg.ValveChunkInterval
	if interval <= 0 {
		return sig
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if deadline, ok := c.valves[opID]; ok {
		if remaining := deadline.Sub(now); remaining > 0 {
			sig.Pause = true
			if sig.ResumeAfter == 0 || remaining > sig.ResumeAfter {
				sig.ResumeAfter = remaining
			}
			return sig
		}
		delete(c.valves, opID)
	}

	if chunkIndex > 0 && (chunkIndex+1)%interval == 0 {
		c.valves[opID] = now.Add(c.cfg.ValvePause)
		sig.Pause = true
		if sig.ResumeAfter < c.cfg.ValvePause {
			sig.ResumeAfter = c.cfg.ValvePause
		}
		c.recordPause("valve", activeOps)
	}
	return sig
}

// Forget drops valve state for a finished operation
func (c *Controller) Forget(opID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.valves, opID)
}

func (c *Controller) rate(queueSize int) float64 {
	divisor := queueSize
	if divisor < 1 {
		divisor = 1
	}
	return c.baseRate / float64(divisor)
}

// resumeDelay scales with queue depth, one second per queued operation,
// capped so producers never back off indefinitely.
func resumeDelay(queueSize int) time.Duration {
	delay := time.Duration(queueSize) * time.Second
	if delay > maxResumeDelay {
		delay = maxResumeDelay
	}
	return delay
}

func (c *Controller) recordPause(cause string, activeOps int) {
	if c.metrics != nil {
		c.metrics.BackpressurePauses.Inc()
	}
	c.logger.Debug("backpressure pause", "cause", cause, "active_operations", activeOps)
}

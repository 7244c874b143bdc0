package backend

import (
	stderrors "errors"
	"log/slog"

	"github.com/sony/gobreaker/v2"

	"github.com/c360/uploadguard/config"
	"github.com/c360/uploadguard/errors"
	"github.com/c360/uploadguard/health"
	"github.com/c360/uploadguard/types"
)

// Adapter mediates every call to the analysis backend. It owns the handle
// arena, trips a circuit breaker when the backend fails repeatedly, and
// normalizes build-specific result shapes on the way out.
type Adapter struct {
	backend Backend
	arena   *arena
	breaker *gobreaker.CircuitBreaker[Raw]
	logger  *slog.Logger
}

// NewAdapter creates an adapter for the given backend build
func NewAdapter(b Backend, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}

	a := &Adapter{
		backend: b,
		arena:   newArena(),
		logger:  logger,
	}

	a.breaker = gobreaker.NewCircuitBreaker[Raw](gobreaker.Settings{
		Name: "backend-" + b.Name(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("backend circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	})

	return a
}

// CreateHandle allocates backend-side state for one operation and returns
// its opaque handle.
func (a *Adapter) CreateHandle(cfg config.AnalysisConfig) (Handle, error) {
	acc, err := a.execute(func() (Raw, error) {
		acc, err := a.backend.NewAccumulator(cfg)
		if err != nil {
			return nil, err
		}
		return Raw{"acc": acc}, nil
	})
	if err != nil {
		return NilHandle, wrapBackendErr(err, "CreateHandle", "backend allocation")
	}

	h := a.arena.allocate(acc["acc"].(Accumulator))
	a.logger.Debug("backend handle allocated", "handle", string(h), "backend", a.backend.Name())
	return h, nil
}

// ProcessChunk feeds one chunk into the handle's accumulator. Delivery
// must be exactly-once and in index order; the adapter does not reorder.
func (a *Adapter) ProcessChunk(h Handle, text string, isLast bool) error {
	e, ok := a.arena.lookup(h)
	if !ok {
		return errors.WrapInvalid(errors.ErrInvalidHandle, "Adapter", "ProcessChunk", "handle lookup")
	}
	if e.finalized {
		return errors.WrapInvalid(errors.ErrInvalidState, "Adapter", "ProcessChunk", "handle already finalized")
	}

	result, err := a.execute(func() (Raw, error) {
		return e.acc.ProcessChunk(text, isLast)
	})
	if err != nil {
		return wrapBackendErr(err, "ProcessChunk", "backend call")
	}

	// Some builds emit the complete result from the final chunk. Stash it
	// and mark the handle terminal so Finalize never reaches an
	// already-terminal accumulator.
	if result != nil && isTerminalShape(result) {
		e.terminal = result
		e.finalized = true
		a.logger.Debug("backend returned terminal result from final chunk",
			"handle", string(h), "backend", a.backend.Name())
	}

	return nil
}

// Finalize produces the canonical risk result for the handle. When the
// build already surrendered its result on the last chunk, the stashed
// shape is normalized and the backend is not called again.
func (a *Adapter) Finalize(h Handle) (types.RiskResult, error) {
	e, ok := a.arena.lookup(h)
	if !ok {
		return types.RiskResult{}, errors.WrapInvalid(errors.ErrInvalidHandle, "Adapter", "Finalize", "handle lookup")
	}

	if e.terminal != nil {
		return Normalize(e.terminal)
	}
	if e.finalized {
		return types.RiskResult{}, errors.WrapInvalid(errors.ErrInvalidState, "Adapter", "Finalize", "handle already finalized")
	}

	raw, err := a.execute(func() (Raw, error) {
		return e.acc.Finalize()
	})
	if err != nil {
		return types.RiskResult{}, wrapBackendErr(err, "Finalize", "backend call")
	}

	e.finalized = true
	return Normalize(raw)
}

// Stats returns a normalized progress snapshot. Safe to call before or
// after Finalize; the Manager relies on requesting stats first because
// some builds invalidate auxiliary statistics while finalizing.
func (a *Adapter) Stats(h Handle) (types.OperationStats, error) {
	e, ok := a.arena.lookup(h)
	if !ok {
		return types.OperationStats{}, errors.WrapInvalid(errors.ErrInvalidHandle, "Adapter", "Stats", "handle lookup")
	}
	return NormalizeStats(e.acc.Stats()), nil
}

// Release frees the handle's backend state. Releasing an unknown handle
// reports InvalidHandle so double-release bugs surface.
func (a *Adapter) Release(h Handle) error {
	if !a.arena.release(h) {
		return errors.WrapInvalid(errors.ErrInvalidHandle, "Adapter", "Release", "handle lookup")
	}
	a.logger.Debug("backend handle released", "handle", string(h))
	return nil
}

// Live returns the number of allocated handles
func (a *Adapter) Live() int {
	return a.arena.size()
}

// Health reports the adapter's health from its circuit breaker state. A
// half-open circuit is degraded; an open circuit is unhealthy.
func (a *Adapter) Health() health.Status {
	name := "backend-" + a.backend.Name()
	switch a.breaker.State() {
	case gobreaker.StateOpen:
		return health.NewUnhealthy(name, "circuit breaker open")
	case gobreaker.StateHalfOpen:
		return health.NewDegraded(name, "circuit breaker half-open")
	default:
		return health.NewHealthy(name, "circuit breaker closed")
	}
}

// wrapBackendErr adds call context without clobbering an existing
// classification. An unclassified backend error is treated as transient;
// a backend that already marked its error invalid or fatal keeps that
// verdict so the recovery policy never retries caller mistakes.
func wrapBackendErr(err error, method, action string) error {
	var ce *errors.ClassifiedError
	if stderrors.As(err, &ce) {
		return errors.Wrap(err, "Adapter", method, action)
	}
	return errors.WrapTransient(err, "Adapter", method, action)
}

// execute routes a backend call through the circuit breaker, mapping an
// open circuit to ErrBackendUnavailable so the recovery policy sees a
// backend-load-failure.
func (a *Adapter) execute(fn func() (Raw, error)) (Raw, error) {
	result, err := a.breaker.Execute(fn)
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, errors.ErrBackendUnavailable
	}
	return result, err
}

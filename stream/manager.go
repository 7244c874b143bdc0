package stream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/h2non/filetype"

	"github.com/c360/uploadguard/backend"
	"github.com/c360/uploadguard/backpressure"
	"github.com/c360/uploadguard/config"
	"github.com/c360/uploadguard/errors"
	"github.com/c360/uploadguard/health"
	"github.com/c360/uploadguard/metric"
	"github.com/c360/uploadguard/policy"
	"github.com/c360/uploadguard/types"
)

// Deps carries the manager's collaborators, injected at construction
type Deps struct {
	Config     *config.SafeConfig
	Backend    *backend.Adapter
	Fallback   *backend.Adapter
	Store      Store
	Controller *backpressure.Controller
	Faults     *policy.FaultLog
	Metrics    *metric.Metrics
	Logger     *slog.Logger
}

// Manager owns in-flight operations. It enforces admission limits, drives
// each operation's lifecycle through the backend adapter, consults the
// backpressure controller and recovery policy, and sweeps stale
// operations on a fixed period.
type Manager struct {
	cfg        *config.SafeConfig
	adapter    *backend.Adapter
	fbAdapter  *backend.Adapter
	store      Store
	controller *backpressure.Controller
	faults     *policy.FaultLog
	metrics    *metric.Metrics
	logger     *slog.Logger

	admitMu sync.Mutex // serializes admission decisions
	live    atomic.Int64

	// Lifecycle management
	shutdown    chan struct{}
	done        chan struct{}
	running     bool
	startTime   time.Time
	mu          sync.RWMutex
	lifecycleMu sync.Mutex
	wg          sync.WaitGroup
}

// NewManager creates a manager from its dependencies
func NewManager(deps Deps) (*Manager, error) {
	if deps.Config == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Manager", "NewManager", "config required")
	}
	if deps.Backend == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Manager", "NewManager", "backend adapter required")
	}
	if deps.Store == nil {
		deps.Store = NewMemoryStore()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Controller == nil {
		deps.Controller = backpressure.NewController(deps.Config.Get().Engine, deps.Logger)
	}
	if deps.Faults == nil {
		deps.Faults = policy.NewFaultLog(deps.Config.Get().Engine.FaultLogSize, deps.Logger, deps.Metrics)
	}

	return &Manager{
		cfg:        deps.Config,
		adapter:    deps.Backend,
		fbAdapter:  deps.Fallback,
		store:      deps.Store,
		controller: deps.Controller,
		faults:     deps.Faults,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
	}, nil
}

// Initialize validates the manager is ready to start
func (m *Manager) Initialize() error {
	return nil
}

// Start launches the cleanup sweep
func (m *Manager) Start(ctx context.Context) error {
	m.lifecycleMu.Lock()
	defer m.lifecycleMu.Unlock()

	if m.running {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "Manager", "Start", "check running state")
	}

	m.mu.Lock()
	m.running = true
	m.startTime = time.Now()
	m.mu.Unlock()

	m.wg.Add(1)
	go m.cleanupLoop(ctx)

	m.logger.Info("streaming operation manager started",
		"max_concurrent", m.engineConfig().MaxConcurrentOperations,
		"max_queue", m.engineConfig().MaxQueueSize)
	return nil
}

// Stop shuts the manager down, waiting up to timeout for the sweep to
// drain
func (m *Manager) Stop(timeout time.Duration) error {
	m.lifecycleMu.Lock()
	defer m.lifecycleMu.Unlock()

	if !m.running {
		return nil
	}

	close(m.shutdown)

	waitCh := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
	case <-time.After(timeout):
		return errors.WrapTransient(
			fmt.Errorf("shutdown timeout after %v", timeout),
			"Manager", "Stop", "graceful shutdown")
	}

	m.mu.Lock()
	m.running = false
	close(m.done)
	m.mu.Unlock()

	m.logger.Info("streaming operation manager stopped")
	return nil
}

// ChunkOutcome is the per-chunk response: updated stats plus the
// recomputed backpressure signal. The signal is populated even when the
// chunk failed.
type ChunkOutcome struct {
	ChunkIndex   int
	Stats        types.OperationStats
	Backpressure backpressure.Signal
	Completed    bool
	Decision     *policy.Decision // recovery decision when the chunk faulted
}

// InitOperation admits a new operation and allocates its backend handle.
// A duplicate id, a file over the size ceiling, or a full engine each
// reject the request with no operation left behind.
func (m *Manager) InitOperation(ctx context.Context, id string, file types.FileInfo, overrides *config.AnalysisConfig, preset string) (Snapshot, error) {
	if err := file.Validate(); err != nil {
		return Snapshot{}, errors.WrapInvalid(err, "Manager", "InitOperation", "file validation")
	}

	engCfg := m.engineConfig()
	if file.Size > engCfg.MaxFileSize {
		return Snapshot{}, errors.WrapFatal(errors.ErrFileTooLarge, "Manager", "InitOperation",
			fmt.Sprintf("file size %d exceeds ceiling %d", file.Size, engCfg.MaxFileSize))
	}

	effective, err := m.effectiveConfig(overrides, preset)
	if err != nil {
		return Snapshot{}, errors.WrapInvalid(err, "Manager", "InitOperation", "config merge")
	}

	now := time.Now()
	op := &operation{
		id:           id,
		file:         file,
		config:       effective,
		state:        StateInitializing,
		startTime:    now,
		lastActivity: now,
	}

	m.admitMu.Lock()
	if int(m.live.Load()) >= engCfg.MaxConcurrentOperations {
		m.admitMu.Unlock()
		return Snapshot{}, errors.Wrap(errors.ErrCapacityExceeded, "Manager", "InitOperation",
			fmt.Sprintf("%d live operations at limit", m.live.Load()))
	}
	if !m.store.PutIfAbsent(op) {
		m.admitMu.Unlock()
		return Snapshot{}, errors.WrapInvalid(errors.ErrDuplicateOperation, "Manager", "InitOperation",
			fmt.Sprintf("operation %q", id))
	}
	m.live.Add(1)
	m.admitMu.Unlock()

	handle, fallback, err := m.allocateHandle(ctx, effective)
	if err != nil {
		m.store.Delete(id)
		m.live.Add(-1)
		return Snapshot{}, err
	}

	op.mu.Lock()
	op.handle = handle
	op.fallback = fallback
	op.setStateLocked(StateProcessing)
	snap := op.snapshotLocked()
	op.mu.Unlock()

	if m.metrics != nil {
		m.metrics.OperationsActive.Inc()
	}
	m.logger.Info("operation initialized",
		"operation_id", id,
		"file", file.Name,
		"size", file.Size,
		"fallback", fallback)
	return snap, nil
}

// allocateHandle creates backend state, retrying transient failures on
// the progressive schedule and degrading to the fallback build when the
// primary backend cannot be loaded.
func (m *Manager) allocateHandle(ctx context.Context, cfg config.AnalysisConfig) (backend.Handle, bool, error) {
	attempts := 0
	for {
		handle, err := m.adapter.CreateHandle(cfg)
		if err == nil {
			return handle, false, nil
		}

		cl := policy.Classify(err, policy.ContextInit)
		decision := policy.Decide(cl, attempts)
		m.faults.Record(cl, decision)

		switch decision.Action {
		case policy.ActionRetry:
			attempts++
			select {
			case <-time.After(decision.Delay):
			case <-ctx.Done():
				return backend.NilHandle, false, errors.WrapTransient(ctx.Err(), "Manager", "allocateHandle", "retry wait")
			}
		case policy.ActionFallback:
			if m.fbAdapter == nil {
				return backend.NilHandle, false, err
			}
			handle, fbErr := m.fbAdapter.CreateHandle(cfg)
			if fbErr != nil {
				return backend.NilHandle, false, errors.WrapTransient(fbErr, "Manager", "allocateHandle", "fallback allocation")
			}
			m.logger.Warn("primary backend unavailable, degraded to fallback build",
				"error", err)
			return handle, true, nil
		default:
			return backend.NilHandle, false, err
		}
	}
}

// ProcessChunk feeds one in-order chunk to an operation. The returned
// outcome always carries a freshly computed backpressure signal, success
// or not.
func (m *Manager) ProcessChunk(id string, chunkIndex int, data string, isLast, force bool) (outcome ChunkOutcome, err error) {
	engCfg := m.engineConfig()
	outcome = ChunkOutcome{ChunkIndex: chunkIndex}

	op, ok := m.store.Get(id)
	if !ok {
		return outcome, errors.WrapInvalid(errors.ErrOperationNotFound, "Manager", "ProcessChunk",
			fmt.Sprintf("operation %q", id))
	}

	op.mu.Lock()
	defer op.mu.Unlock()
	defer func() {
		outcome.Stats = op.stats
		outcome.Backpressure = m.controller.ControlChunk(id, chunkIndex, int(m.live.Load()), op.stats)
		m.applyPauseLocked(op, outcome.Backpressure)
	}()

	if op.state.IsTerminal() && !force {
		return outcome, errors.WrapInvalid(errors.ErrInvalidState, "Manager", "ProcessChunk",
			fmt.Sprintf("operation %q is %s", id, op.state))
	}
	if chunkIndex != op.nextChunk {
		return outcome, errors.WrapInvalid(errors.ErrChunkOutOfOrder, "Manager", "ProcessChunk",
			fmt.Sprintf("expected index %d, got %d", op.nextChunk, chunkIndex))
	}

	if engCfg.SniffFileTypes && !op.sniffed {
		op.sniffed = true
		if err := m.sniffFileType(op, data); err != nil {
			cl := policy.Classify(err, policy.ContextChunk)
			decision := policy.Decide(cl, cl.MaxRetries)
			m.faults.Record(cl, decision)
			m.failOperationLocked(op, err, "invalid-file-type")
			return outcome, err
		}
	}

	start := time.Now()
	err = m.adapterFor(op).ProcessChunk(op.handle, data, isLast)
	if m.metrics != nil {
		m.metrics.ChunkDuration.Observe(time.Since(start).Seconds())
	}

	now := time.Now()
	op.touchLocked(now)

	if err != nil {
		op.failures++
		cl := policy.Classify(err, policy.ContextChunk)
		decision := policy.Decide(cl, op.failures-1)
		m.faults.Record(cl, decision)
		outcome.Decision = &decision

		if op.failures >= engCfg.MaxConsecutiveFailures || decision.Action == policy.ActionAbort {
			m.failOperationLocked(op, err, "consecutive-failures")
		}
		return outcome, err
	}

	op.failures = 0
	op.nextChunk++
	op.stats.TotalChunks++
	op.stats.TotalContentLength += int64(len(data))
	m.refreshStatsLocked(op)

	if m.metrics != nil {
		m.metrics.ChunksProcessed.Inc()
		m.metrics.BytesProcessed.Add(float64(len(data)))
	}

	if isLast {
		m.completeLocked(op)
		outcome.Completed = true
	}
	return outcome, nil
}

// FinalizeOperation produces the operation's risk result. Statistics are
// requested from the adapter before the final result: some backend builds
// invalidate auxiliary statistics while finalizing, so the ordering is a
// contract, not a preference.
func (m *Manager) FinalizeOperation(ctx context.Context, id string, force bool) (types.RiskResult, error) {
	op, ok := m.store.Get(id)
	if !ok {
		return types.RiskResult{}, errors.WrapInvalid(errors.ErrOperationNotFound, "Manager", "FinalizeOperation",
			fmt.Sprintf("operation %q", id))
	}

	op.mu.Lock()
	defer op.mu.Unlock()

	if op.result != nil {
		return *op.result, nil
	}
	if op.state == StateError {
		if !force {
			return types.RiskResult{}, errors.WrapInvalid(errors.ErrInvalidState, "Manager", "FinalizeOperation",
				fmt.Sprintf("operation %q is in error state", id))
		}
		// Eviction to error already released the backend handle, so a
		// forced finalize renders the engine-tracked counters instead.
		result := m.degradedResultLocked(op)
		op.result = &result
		op.touchLocked(time.Now())
		m.recordResult(result)
		m.logger.Warn("operation force-finalized with degraded result",
			"operation_id", op.id,
			"error", op.err)
		return result, nil
	}

	adp := m.adapterFor(op)

	// Stats before finalize, always.
	preStats, statsErr := adp.Stats(op.handle)
	if statsErr != nil {
		m.failOperationLocked(op, statsErr, "finalize")
		return types.RiskResult{}, statsErr
	}

	result, err := m.finalizeWithPolicy(ctx, adp, op)
	if err != nil {
		m.failOperationLocked(op, err, "finalize")
		return types.RiskResult{}, err
	}

	result.Stats = m.mergeStats(op, preStats)
	if op.fallback {
		result.Fallback = true
	}

	op.result = &result
	op.touchLocked(time.Now())
	m.completeLocked(op)
	m.releaseLocked(op)
	m.recordResult(result)

	m.logger.Info("operation finalized",
		"operation_id", op.id,
		"decision", string(result.Decision),
		"risk_score", result.RiskScore,
		"fallback", result.Fallback,
		"scored", result.Scored)
	return result, nil
}

// degradedResultLocked renders the engine-tracked counters as a
// fallback-flagged result for a forced finalize after the backend handle
// is gone; op.mu must be held.
func (m *Manager) degradedResultLocked(op *operation) types.RiskResult {
	stats := op.stats
	stats.Elapsed = time.Since(op.startTime)
	return types.RiskResult{
		Decision: types.DecisionAllow,
		Reasons:  []string{"analysis incomplete: operation failed before finalize"},
		Fallback: true,
		Stats:    stats,
	}
}

// finalizeWithPolicy runs the adapter finalize under the recovery policy,
// retrying transient faults on the progressive schedule.
func (m *Manager) finalizeWithPolicy(ctx context.Context, adp *backend.Adapter, op *operation) (types.RiskResult, error) {
	attempts := 0
	for {
		result, err := adp.Finalize(op.handle)
		if err == nil {
			return result, nil
		}

		cl := policy.Classify(err, policy.ContextFinalize)
		decision := policy.Decide(cl, attempts)
		m.faults.Record(cl, decision)

		if decision.Action != policy.ActionRetry {
			return types.RiskResult{}, err
		}
		attempts++
		select {
		case <-time.After(decision.Delay):
		case <-ctx.Done():
			return types.RiskResult{}, errors.WrapTransient(ctx.Err(), "Manager", "finalizeWithPolicy", "retry wait")
		}
	}
}

// CancelOperation releases the operation's handle and removes it
// immediately. Chunks arriving afterward fail OperationNotFound.
func (m *Manager) CancelOperation(id string) error {
	op, ok := m.store.Get(id)
	if !ok {
		return errors.WrapInvalid(errors.ErrOperationNotFound, "Manager", "CancelOperation",
			fmt.Sprintf("operation %q", id))
	}

	op.mu.Lock()
	wasLive := op.state.IsLive()
	m.releaseLocked(op)
	op.mu.Unlock()

	m.store.Delete(id)
	m.controller.Forget(id)
	if wasLive {
		m.live.Add(-1)
		if m.metrics != nil {
			m.metrics.OperationsActive.Dec()
		}
	}
	if m.metrics != nil {
		m.metrics.OperationsEvicted.WithLabelValues("cancelled").Inc()
	}

	m.logger.Info("operation cancelled", "operation_id", id)
	return nil
}

// GetOperation returns a snapshot of one operation
func (m *Manager) GetOperation(id string) (Snapshot, error) {
	op, ok := m.store.Get(id)
	if !ok {
		return Snapshot{}, errors.WrapInvalid(errors.ErrOperationNotFound, "Manager", "GetOperation",
			fmt.Sprintf("operation %q", id))
	}
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.snapshotLocked(), nil
}

// ActiveOperations returns snapshots of every live operation
func (m *Manager) ActiveOperations() []Snapshot {
	var out []Snapshot
	for _, op := range m.store.List() {
		op.mu.Lock()
		if op.state.IsLive() {
			out = append(out, op.snapshotLocked())
		}
		op.mu.Unlock()
	}
	return out
}

// OperationStats returns per-operation stats keyed by id, for status
// queries
func (m *Manager) OperationStats() map[string]types.OperationStats {
	out := make(map[string]types.OperationStats)
	for _, op := range m.store.List() {
		op.mu.Lock()
		out[op.id] = op.stats
		op.mu.Unlock()
	}
	return out
}

// Faults returns the most recent fault log entries, newest first
func (m *Manager) Faults(max int) []policy.FaultRecord {
	return m.faults.Recent(max)
}

// Health summarizes manager liveness
type Health struct {
	Healthy          bool
	Status           health.Status
	ActiveOperations int
	Uptime           time.Duration
}

// HealthCheck aggregates engine liveness with the backend adapters' circuit
// state and current capacity headroom. A full admission queue degrades the
// engine without marking it unhealthy; only a stopped manager or an open
// backend circuit does that.
func (m *Manager) HealthCheck() Health {
	m.mu.RLock()
	running := m.running
	startTime := m.startTime
	m.mu.RUnlock()

	active := int(m.live.Load())
	engCfg := m.engineConfig()

	subs := make([]health.Status, 0, 4)
	if running {
		subs = append(subs, health.NewHealthy("stream-manager", "running"))
	} else {
		subs = append(subs, health.NewUnhealthy("stream-manager", "not running"))
	}
	subs = append(subs, m.adapter.Health())
	if m.fbAdapter != nil {
		subs = append(subs, m.fbAdapter.Health())
	}
	if active >= engCfg.MaxConcurrentOperations {
		subs = append(subs, health.NewDegraded("capacity",
			fmt.Sprintf("at concurrency limit (%d)", engCfg.MaxConcurrentOperations)))
	} else {
		subs = append(subs, health.NewHealthy("capacity",
			fmt.Sprintf("%d of %d operations", active, engCfg.MaxConcurrentOperations)))
	}

	status := health.Aggregate("engine", subs)
	h := Health{
		Healthy:          !status.IsUnhealthy(),
		Status:           status,
		ActiveOperations: active,
	}
	if running {
		h.Uptime = time.Since(startTime)
	}
	return h
}

// Cleanup times out stale live operations and evicts terminal ones idle
// past the retention window. Safe to invoke synchronously; the background
// sweep calls it on a fixed period. Returns the number of evictions.
func (m *Manager) Cleanup() int {
	engCfg := m.engineConfig()
	now := time.Now()
	removed := 0

	for _, op := range m.store.List() {
		op.mu.Lock()
		idle := now.Sub(op.lastActivity)

		if op.state.IsLive() && idle > engCfg.OperationTimeout {
			err := errors.WrapTransient(errors.ErrOperationTimeout, "Manager", "Cleanup",
				fmt.Sprintf("operation %q idle %v", op.id, idle.Round(time.Millisecond)))
			cl := policy.Classify(err, policy.ContextChunk)
			decision := policy.Decide(cl, cl.MaxRetries)
			m.faults.Record(cl, decision)
			m.failOperationLocked(op, err, "timeout")
			op.mu.Unlock()
			continue
		}

		if op.state.IsTerminal() && idle > engCfg.RetentionWindow {
			m.releaseLocked(op)
			op.mu.Unlock()
			m.store.Delete(op.id)
			m.controller.Forget(op.id)
			if m.metrics != nil {
				m.metrics.OperationsEvicted.WithLabelValues("retention").Inc()
			}
			removed++
			continue
		}
		op.mu.Unlock()
	}

	if removed > 0 {
		m.logger.Debug("cleanup sweep evicted operations", "count", removed)
	}
	return removed
}

func (m *Manager) cleanupLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.engineConfig().CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Cleanup()
		case <-m.shutdown:
			return
		case <-ctx.Done():
			return
		}
	}
}

// --- internal helpers, op.mu held where noted ---

func (m *Manager) engineConfig() config.EngineConfig {
	return m.cfg.Get().Engine
}

// effectiveConfig merges the current defaults, an optional preset, and
// per-operation overrides into one validated immutable snapshot.
func (m *Manager) effectiveConfig(overrides *config.AnalysisConfig, preset string) (config.AnalysisConfig, error) {
	base := m.cfg.Get().Analysis
	if preset != "" {
		p, err := config.Preset(preset)
		if err != nil {
			return config.AnalysisConfig{}, err
		}
		base = p
	}
	effective := base.Merge(overrides)
	if err := effective.Validate(); err != nil {
		return config.AnalysisConfig{}, err
	}
	return effective, nil
}

func (m *Manager) adapterFor(op *operation) *backend.Adapter {
	if op.fallback && m.fbAdapter != nil {
		return m.fbAdapter
	}
	return m.adapter
}

// sniffFileType compares the first chunk's magic bytes against the
// declared MIME type. Text content has no magic bytes and passes; only a
// confidently detected mismatching binary type is rejected.
func (m *Manager) sniffFileType(op *operation, data string) error {
	if op.file.Type == "" {
		return nil
	}
	kind, err := filetype.Match([]byte(data))
	if err != nil || kind == filetype.Unknown {
		return nil
	}
	if kind.MIME.Value != op.file.Type {
		return errors.WrapFatal(errors.ErrInvalidFileType, "Manager", "ProcessChunk",
			fmt.Sprintf("declared %q but content is %q", op.file.Type, kind.MIME.Value))
	}
	return nil
}

// refreshStatsLocked overlays the backend's normalized stats onto the
// engine-tracked counters; op.mu must be held.
func (m *Manager) refreshStatsLocked(op *operation) {
	backendStats, err := m.adapterFor(op).Stats(op.handle)
	if err != nil {
		return
	}
	op.stats = m.mergeStats(op, backendStats)
}

// mergeStats prefers backend counters where present and keeps the
// engine's own chunk accounting and wall-clock elapsed time authoritative.
func (m *Manager) mergeStats(op *operation, backendStats types.OperationStats) types.OperationStats {
	merged := backendStats
	if merged.TotalChunks < op.stats.TotalChunks {
		merged.TotalChunks = op.stats.TotalChunks
	}
	if merged.TotalContentLength < op.stats.TotalContentLength {
		merged.TotalContentLength = op.stats.TotalContentLength
	}
	merged.Elapsed = op.stats.Elapsed
	return merged
}

// applyPauseLocked mirrors the backpressure signal onto the operation's
// processing/paused flip; op.mu must be held. Terminal states are never
// resurrected.
func (m *Manager) applyPauseLocked(op *operation, sig backpressure.Signal) {
	if sig.Pause {
		op.setStateLocked(StatePaused)
	} else if op.state == StatePaused {
		op.setStateLocked(StateProcessing)
	}
}

// completeLocked moves a live operation to completed; op.mu must be held
func (m *Manager) completeLocked(op *operation) {
	if !op.state.IsLive() {
		return
	}
	if op.state == StateInitializing {
		op.setStateLocked(StateProcessing)
	}
	if op.setStateLocked(StateCompleted) {
		m.live.Add(-1)
		m.controller.Forget(op.id)
		if m.metrics != nil {
			m.metrics.OperationsActive.Dec()
			m.metrics.OperationsTotal.WithLabelValues(string(StateCompleted)).Inc()
		}
	}
}

// failOperationLocked moves an operation to error, releasing its handle;
// op.mu must be held.
func (m *Manager) failOperationLocked(op *operation, cause error, reason string) {
	wasLive := op.state.IsLive()
	if op.state == StateInitializing {
		op.setStateLocked(StateProcessing)
	}
	if !op.setStateLocked(StateError) {
		return
	}
	op.err = cause
	m.releaseLocked(op)

	if wasLive {
		m.live.Add(-1)
		m.controller.Forget(op.id)
		if m.metrics != nil {
			m.metrics.OperationsActive.Dec()
			m.metrics.OperationsTotal.WithLabelValues(string(StateError)).Inc()
			m.metrics.OperationsEvicted.WithLabelValues(reason).Inc()
		}
	}

	m.logger.Warn("operation moved to error state",
		"operation_id", op.id,
		"reason", reason,
		"error", cause)
}

// releaseLocked frees the backend handle once; op.mu must be held
func (m *Manager) releaseLocked(op *operation) {
	if op.released || op.handle == backend.NilHandle {
		op.released = true
		return
	}
	if err := m.adapterFor(op).Release(op.handle); err != nil {
		m.logger.Debug("handle release failed", "operation_id", op.id, "error", err)
	}
	op.released = true
}

// recordResult updates result metrics
func (m *Manager) recordResult(result types.RiskResult) {
	if m.metrics == nil {
		return
	}
	m.metrics.RiskScore.Observe(result.RiskScore)
	m.metrics.DecisionsTotal.WithLabelValues(string(result.Decision)).Inc()
	if result.Fallback {
		m.metrics.FallbackResults.Inc()
	}
	if !result.Scored {
		m.metrics.UnscoredResults.Inc()
	}
}

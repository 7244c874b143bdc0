package stream

import (
	"sync"
	"time"

	"github.com/c360/uploadguard/backend"
	"github.com/c360/uploadguard/config"
	"github.com/c360/uploadguard/types"
)

// State is an operation's lifecycle state
type State string

// Operation states. Transitions are monotonic except processing and
// paused, which flip freely; completed and error are terminal.
const (
	StateInitializing State = "initializing"
	StateProcessing   State = "processing"
	StatePaused       State = "paused"
	StateCompleted    State = "completed"
	StateError        State = "error"
)

// IsTerminal reports whether no further chunks are accepted
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateError
}

// IsLive reports whether the operation counts against the concurrency
// limit
func (s State) IsLive() bool {
	return s == StateInitializing || s == StateProcessing || s == StatePaused
}

// canTransition validates a state change request
func (s State) canTransition(to State) bool {
	switch s {
	case StateInitializing:
		return to == StateProcessing || to == StateError
	case StateProcessing:
		return to == StatePaused || to == StateCompleted || to == StateError
	case StatePaused:
		return to == StateProcessing || to == StateCompleted || to == StateError
	default:
		return false
	}
}

// operation is one file-scan in progress. All fields are guarded by mu;
// callers outside this package only ever see Snapshot copies.
type operation struct {
	mu sync.Mutex

	id     string
	file   types.FileInfo
	config config.AnalysisConfig
	state  State
	stats  types.OperationStats
	handle backend.Handle

	startTime    time.Time
	lastActivity time.Time
	err          error

	nextChunk int // next expected chunk index
	failures  int // consecutive chunk failures
	fallback  bool
	sniffed   bool
	result    *types.RiskResult
	released  bool
}

// Snapshot is an immutable copy of an operation's observable state
type Snapshot struct {
	ID           string                `json:"id"`
	File         types.FileInfo        `json:"file"`
	Config       config.AnalysisConfig `json:"config"`
	State        State                 `json:"state"`
	Stats        types.OperationStats  `json:"stats"`
	StartTime    time.Time             `json:"start_time"`
	LastActivity time.Time             `json:"last_activity"`
	Error        string                `json:"error,omitempty"`
	NextChunk    int                   `json:"next_chunk"`
	Fallback     bool                  `json:"fallback"`
	Result       *types.RiskResult     `json:"result,omitempty"`
}

// snapshotLocked copies the observable state; op.mu must be held
func (op *operation) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:           op.id,
		File:         op.file,
		Config:       op.config.Clone(),
		State:        op.state,
		Stats:        op.stats,
		StartTime:    op.startTime,
		LastActivity: op.lastActivity,
		NextChunk:    op.nextChunk,
		Fallback:     op.fallback,
	}
	if op.err != nil {
		snap.Error = op.err.Error()
	}
	if op.result != nil {
		r := *op.result
		snap.Result = &r
	}
	return snap
}

// setStateLocked applies a transition; op.mu must be held. Invalid
// transitions are ignored so a late pause signal cannot resurrect a
// terminal operation.
func (op *operation) setStateLocked(to State) bool {
	if op.state == to {
		return true
	}
	if !op.state.canTransition(to) {
		return false
	}
	op.state = to
	return true
}

// touchLocked refreshes activity and elapsed time; op.mu must be held
func (op *operation) touchLocked(now time.Time) {
	op.lastActivity = now
	op.stats.Elapsed = now.Sub(op.startTime)
}

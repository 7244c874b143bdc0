package policy

import (
	"log/slog"

	"github.com/c360/uploadguard/metric"
	"github.com/c360/uploadguard/pkg/buffer"
	"github.com/c360/uploadguard/pkg/timestamp"
)

// FaultRecord is one fault occurrence and how it was resolved.
// Timestamp is Unix milliseconds.
type FaultRecord struct {
	Kind      Kind   `json:"kind"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
	Retryable bool   `json:"retryable"`
	Context   string `json:"context"`
	Action    Action `json:"action"`
}

// FaultLog is a bounded record of faults and the actions taken for them.
// Old entries are overwritten once the capacity is reached; the log is a
// diagnostic window, not an audit trail.
type FaultLog struct {
	ring    *buffer.Ring[FaultRecord]
	metrics *metric.Metrics
	logger  *slog.Logger
}

// NewFaultLog creates a fault log holding up to size entries
func NewFaultLog(size int, logger *slog.Logger, metrics *metric.Metrics) *FaultLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &FaultLog{
		ring:    buffer.NewRing[FaultRecord](size),
		metrics: metrics,
		logger:  logger,
	}
}

// Record appends a classified fault and its decision
func (l *FaultLog) Record(cl Classified, decision Decision) {
	record := FaultRecord{
		Kind:      cl.Kind,
		Severity:  cl.Severity.String(),
		Message:   cl.Message,
		Timestamp: timestamp.Now(),
		Retryable: cl.Retryable,
		Context:   cl.Context,
		Action:    decision.Action,
	}
	l.ring.Append(record)

	if l.metrics != nil {
		l.metrics.FaultsTotal.WithLabelValues(string(cl.Kind)).Inc()
		l.metrics.RecoveryActions.WithLabelValues(string(decision.Action)).Inc()
	}

	l.logger.Warn("fault recorded",
		"kind", string(cl.Kind),
		"severity", cl.Severity.String(),
		"context", cl.Context,
		"action", string(decision.Action),
		"retryable", cl.Retryable)
}

// Recent returns up to max entries, newest first
func (l *FaultLog) Recent(max int) []FaultRecord {
	return l.ring.Snapshot(max)
}

// Len reports how many entries the log currently holds
func (l *FaultLog) Len() int {
	return l.ring.Len()
}

package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all engine-level metrics (not transport-specific)
type Metrics struct {
	// Operation metrics
	OperationsActive  prometheus.Gauge
	OperationsTotal   *prometheus.CounterVec
	OperationsEvicted *prometheus.CounterVec
	ChunksProcessed   prometheus.Counter
	BytesProcessed    prometheus.Counter
	ChunkDuration     prometheus.Histogram
	RiskScore         prometheus.Histogram
	DecisionsTotal    *prometheus.CounterVec
	FallbackResults   prometheus.Counter
	UnscoredResults   prometheus.Counter

	// Fault and backpressure metrics
	FaultsTotal        *prometheus.CounterVec
	RecoveryActions    *prometheus.CounterVec
	BackpressurePauses prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all engine metrics
func NewMetrics() *Metrics {
	return &Metrics{
		OperationsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "uploadguard",
				Subsystem: "operations",
				Name:      "active",
				Help:      "Current number of live (initializing/processing/paused) operations",
			},
		),

		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "uploadguard",
				Subsystem: "operations",
				Name:      "total",
				Help:      "Total operations by terminal state",
			},
			[]string{"state"},
		),

		OperationsEvicted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "uploadguard",
				Subsystem: "operations",
				Name:      "evicted_total",
				Help:      "Operations removed by cleanup, by reason",
			},
			[]string{"reason"},
		),

		ChunksProcessed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "uploadguard",
				Subsystem: "chunks",
				Name:      "processed_total",
				Help:      "Total chunks fed into the analysis backend",
			},
		),

		BytesProcessed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "uploadguard",
				Subsystem: "chunks",
				Name:      "bytes_total",
				Help:      "Total content bytes processed",
			},
		),

		ChunkDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "uploadguard",
				Subsystem: "chunks",
				Name:      "duration_seconds",
				Help:      "Per-chunk backend processing duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),

		RiskScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "uploadguard",
				Subsystem: "results",
				Name:      "risk_score",
				Help:      "Distribution of final risk scores",
				Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
			},
		),

		DecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "uploadguard",
				Subsystem: "results",
				Name:      "decisions_total",
				Help:      "Final decisions by outcome",
			},
			[]string{"decision"},
		),

		FallbackResults: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "uploadguard",
				Subsystem: "results",
				Name:      "fallback_total",
				Help:      "Results produced by a degraded fallback path",
			},
		),

		UnscoredResults: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "uploadguard",
				Subsystem: "results",
				Name:      "unscored_total",
				Help:      "Results where the backend omitted an explicit risk score",
			},
		),

		FaultsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "uploadguard",
				Subsystem: "faults",
				Name:      "total",
				Help:      "Classified faults by kind",
			},
			[]string{"kind"},
		),

		RecoveryActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "uploadguard",
				Subsystem: "faults",
				Name:      "recovery_actions_total",
				Help:      "Recovery decisions by action",
			},
			[]string{"action"},
		),

		BackpressurePauses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "uploadguard",
				Subsystem: "backpressure",
				Name:      "pauses_total",
				Help:      "Total pause signals returned to chunk producers",
			},
		),
	}
}

// collectors returns every core metric for bulk registration
func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.OperationsActive,
		m.OperationsTotal,
		m.OperationsEvicted,
		m.ChunksProcessed,
		m.BytesProcessed,
		m.ChunkDuration,
		m.RiskScore,
		m.DecisionsTotal,
		m.FallbackResults,
		m.UnscoredResults,
		m.FaultsTotal,
		m.RecoveryActions,
		m.BackpressurePauses,
	}
}

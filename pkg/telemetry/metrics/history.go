package metrics

import (
	"time"

	"mercator-hq/callisto/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// HistoryMetrics tracks the history recorder and retention pruner.
//
// Metrics:
//   - callisto_history_writes_total: Record write attempts by status
//   - callisto_history_write_duration_seconds: Storage write duration histogram
//   - callisto_history_queue_depth: Async recorder queue depth
//   - callisto_history_pruned_total: Records deleted by retention sweeps
type HistoryMetrics struct {
	// Record write attempts
	writesTotal *prometheus.CounterVec

	// Storage write duration histogram
	writeDuration prometheus.Histogram

	// Async recorder queue depth
	queueDepth prometheus.Gauge

	// Records deleted by retention
	prunedTotal prometheus.Counter
}

// NewHistoryMetrics creates and registers history metrics with the provided registry.
func NewHistoryMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *HistoryMetrics {
	hm := &HistoryMetrics{
		writesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "history_writes_total",
				Help:      "Total number of history record write attempts",
			},
			[]string{"status"},
		),

		writeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "history_write_duration_seconds",
				Help:      "Duration of history storage writes in seconds",
				Buckets:   cfg.DurationBuckets,
			},
		),

		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "history_queue_depth",
				Help:      "Current depth of the async recorder queue",
			},
		),

		prunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "history_pruned_total",
				Help:      "Total number of history records deleted by retention sweeps",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		hm.writesTotal,
		hm.writeDuration,
		hm.queueDepth,
		hm.prunedTotal,
	)

	return hm
}

// RecordWrite records a history record write attempt.
//
// Parameters:
//   - status: Write status ("written", "dropped", "failed")
//   - duration: Write duration (observed only for "written")
//
// A "dropped" status means the async recorder queue was full and the
// record was discarded without reaching storage.
func (hm *HistoryMetrics) RecordWrite(status string, duration time.Duration) {
	hm.writesTotal.WithLabelValues(status).Inc()

	if status == "written" {
		hm.writeDuration.Observe(duration.Seconds())
	}
}

// UpdateQueueDepth updates the async recorder queue depth.
func (hm *HistoryMetrics) UpdateQueueDepth(depth int) {
	hm.queueDepth.Set(float64(depth))
}

// RecordPruned records records deleted by a retention sweep.
//
// Parameters:
//   - count: Number of records deleted
func (hm *HistoryMetrics) RecordPruned(count int) {
	if count > 0 {
		hm.prunedTotal.Add(float64(count))
	}
}

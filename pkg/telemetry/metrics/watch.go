package metrics

import (
	"mercator-hq/callisto/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// WatchMetrics tracks file watcher activity.
//
// Metrics:
//   - callisto_watch_events_total: Filesystem events seen by the watcher, by operation
//   - callisto_watch_debounced_total: Events collapsed by the debouncer
//   - callisto_watch_recompiles_total: Watcher-triggered recompilations by status
//   - callisto_watch_files: Number of files currently watched
type WatchMetrics struct {
	// Filesystem event counter
	eventsTotal *prometheus.CounterVec

	// Events collapsed by debouncing
	debouncedTotal prometheus.Counter

	// Recompilations triggered by the watcher
	recompilesTotal *prometheus.CounterVec

	// Current number of watched files
	watchedFiles prometheus.Gauge
}

// NewWatchMetrics creates and registers watcher metrics with the provided registry.
func NewWatchMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *WatchMetrics {
	wm := &WatchMetrics{
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "watch_events_total",
				Help:      "Total number of filesystem events seen by the watcher",
			},
			[]string{"op"},
		),

		debouncedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "watch_debounced_total",
				Help:      "Total number of events collapsed by the debouncer",
			},
		),

		recompilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "watch_recompiles_total",
				Help:      "Total number of watcher-triggered recompilations",
			},
			[]string{"status"},
		),

		watchedFiles: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "watch_files",
				Help:      "Number of files currently watched",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		wm.eventsTotal,
		wm.debouncedTotal,
		wm.recompilesTotal,
		wm.watchedFiles,
	)

	return wm
}

// RecordEvent records a filesystem event.
//
// Parameters:
//   - op: Event operation ("create", "write", "remove", "rename", "chmod")
func (wm *WatchMetrics) RecordEvent(op string) {
	wm.eventsTotal.WithLabelValues(op).Inc()
}

// RecordDebounced records an event that was collapsed by the debouncer
// rather than triggering a recompilation of its own.
func (wm *WatchMetrics) RecordDebounced() {
	wm.debouncedTotal.Inc()
}

// RecordRecompile records a recompilation triggered by a file change.
//
// Parameters:
//   - status: Recompilation status ("success", "error")
func (wm *WatchMetrics) RecordRecompile(status string) {
	wm.recompilesTotal.WithLabelValues(status).Inc()
}

// UpdateWatchedFiles updates the number of files currently watched.
func (wm *WatchMetrics) UpdateWatchedFiles(count int) {
	wm.watchedFiles.Set(float64(count))
}

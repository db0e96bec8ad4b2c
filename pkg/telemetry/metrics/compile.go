package metrics

import (
	"time"

	"mercator-hq/callisto/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CompileMetrics tracks metrics related to compile pipeline processing.
//
// Metrics:
//   - callisto_compiles_total: Total compile count by source, status
//   - callisto_compile_duration_seconds: End-to-end compile duration histogram
//   - callisto_stage_duration_seconds: Per-stage duration histogram
//   - callisto_source_bytes: Input source size histogram
//   - callisto_tokens_total: Total tokens produced by the lexer
//   - callisto_compile_errors_total: Compile failures by stage
type CompileMetrics struct {
	// Total compile count
	compilesTotal *prometheus.CounterVec

	// End-to-end compile duration histogram
	compileDuration *prometheus.HistogramVec

	// Per-stage duration histogram
	stageDuration *prometheus.HistogramVec

	// Input source size in bytes
	sourceBytes *prometheus.HistogramVec

	// Token counts produced by the lexer
	tokensTotal *prometheus.CounterVec

	// Compile failures by stage
	errorsTotal *prometheus.CounterVec
}

// NewCompileMetrics creates and registers compile metrics with the provided registry.
func NewCompileMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CompileMetrics {
	cm := &CompileMetrics{
		compilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "compiles_total",
				Help:      "Total number of compilations processed",
			},
			[]string{"source", "status"},
		),

		compileDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "compile_duration_seconds",
				Help:      "End-to-end duration of compilations in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"source"},
		),

		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of individual pipeline stages in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"stage"},
		),

		sourceBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "source_bytes",
				Help:      "Size of compiled source input in bytes",
				Buckets:   cfg.SourceSizeBuckets,
			},
			[]string{"source"},
		),

		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "tokens_total",
				Help:      "Total number of tokens produced by the lexer",
			},
			[]string{"source"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "compile_errors_total",
				Help:      "Total number of compile failures by pipeline stage",
			},
			[]string{"stage"},
		),
	}

	// Register all metrics
	registry.MustRegister(
		cm.compilesTotal,
		cm.compileDuration,
		cm.stageDuration,
		cm.sourceBytes,
		cm.tokensTotal,
		cm.errorsTotal,
	)

	return cm
}

// RecordCompile records metrics for a completed compilation.
//
// Parameters:
//   - source: Source name (file path or "inline")
//   - status: Compilation status ("success", "error", "cached")
//   - duration: End-to-end compile duration
//   - sourceBytes: Size of the input source in bytes
//   - tokens: Token count (if known)
func (cm *CompileMetrics) RecordCompile(source, status string, duration time.Duration, sourceBytes, tokens int) {
	// Increment compile counter
	cm.compilesTotal.WithLabelValues(source, status).Inc()

	// Record duration
	cm.compileDuration.WithLabelValues(source).Observe(duration.Seconds())

	// Record source size (if known)
	if sourceBytes > 0 {
		cm.sourceBytes.WithLabelValues(source).Observe(float64(sourceBytes))
	}

	// Record tokens (if known)
	if tokens > 0 {
		cm.tokensTotal.WithLabelValues(source).Add(float64(tokens))
	}
}

// RecordStage records the duration of a single pipeline stage.
//
// Parameters:
//   - stage: Stage name ("lex", "parse", "transform", "generate")
//   - duration: Stage duration
func (cm *CompileMetrics) RecordStage(stage string, duration time.Duration) {
	cm.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordError records a compile failure attributed to a pipeline stage.
//
// Parameters:
//   - stage: Stage that failed ("lex", "parse", "transform", "generate")
func (cm *CompileMetrics) RecordError(stage string) {
	cm.errorsTotal.WithLabelValues(stage).Inc()
}

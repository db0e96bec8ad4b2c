package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/telemetry/health"
	"mercator-hq/callisto/pkg/telemetry/logging"
	"mercator-hq/callisto/pkg/telemetry/metrics"
	"mercator-hq/callisto/pkg/telemetry/tracing"
)

// Telemetry bundles the observability components of the compile server:
// structured logging, Prometheus metrics, OpenTelemetry tracing, and
// health checks.
type Telemetry struct {
	config  *config.TelemetryConfig
	logger  *logging.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	health  *health.Checker

	version   string
	commit    string
	buildTime string
}

// New creates all telemetry components from the given configuration.
// The version information is served by the /version endpoint when the
// health endpoints are mounted.
func New(cfg *config.TelemetryConfig, version, commit, buildTime string) (*Telemetry, error) {
	if cfg == nil {
		return nil, errors.New("telemetry config is nil")
	}

	logger, err := logging.New(logging.Config{
		Level:         cfg.Logging.Level,
		Format:        cfg.Logging.Format,
		AddSource:     cfg.Logging.AddSource,
		RedactSecrets: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	tracer, err := tracing.New(&cfg.Tracing, version)
	if err != nil {
		return nil, fmt.Errorf("create tracer: %w", err)
	}

	return &Telemetry{
		config:    cfg,
		logger:    logger,
		metrics:   metrics.NewCollector(&cfg.Metrics, nil),
		tracer:    tracer,
		health:    health.New(cfg.Health.CheckTimeout),
		version:   version,
		commit:    commit,
		buildTime: buildTime,
	}, nil
}

// NewNop creates a Telemetry with all components inert: logging discarded,
// metrics and tracing disabled. Intended for tests.
func NewNop() *Telemetry {
	cfg := &config.TelemetryConfig{}
	tracer, _ := tracing.New(&cfg.Tracing, "")

	return &Telemetry{
		config:  cfg,
		logger:  logging.NewNop(),
		metrics: metrics.NewCollector(&cfg.Metrics, nil),
		tracer:  tracer,
		health:  health.New(0),
	}
}

// Logger returns the structured logger.
func (t *Telemetry) Logger() *logging.Logger {
	return t.logger
}

// Metrics returns the metrics collector.
func (t *Telemetry) Metrics() *metrics.Collector {
	return t.metrics
}

// Tracer returns the tracer.
func (t *Telemetry) Tracer() *tracing.Tracer {
	return t.tracer
}

// Health returns the health checker.
func (t *Telemetry) Health() *health.Checker {
	return t.health
}

// MountEndpoints registers the observability HTTP endpoints on the mux:
// health probes at the configured probe paths, version information at
// /version, and Prometheus metrics at the configured metrics path.
// Disabled components are not mounted.
func (t *Telemetry) MountEndpoints(mux *http.ServeMux) {
	if t.config.Health.Enabled {
		health.HTTPMiddleware(mux, t.health,
			t.config.Health.LivenessPath, t.config.Health.ReadinessPath,
			t.version, t.commit, t.buildTime)
	}

	if t.config.Metrics.Enabled {
		path := t.config.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, t.metrics.Handler())
	}
}

// Shutdown flushes and stops the telemetry components. It must be called
// before process exit so buffered spans are exported.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return t.tracer.Shutdown(ctx)
}

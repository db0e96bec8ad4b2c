package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with sensible defaults for testing.
// Both storage backends are switched to memory so tests never touch disk.
// The resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	var cfg Config
	applyFlagDefaults(&cfg)
	ApplyDefaults(&cfg)

	cfg.History.Backend = "memory"
	cfg.Cache.Backend = "memory"

	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithListenAddress sets the server listen address.
func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Server.ListenAddress = addr
	return b
}

// WithReadTimeout sets the server read timeout.
func (b *ConfigBuilder) WithReadTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.Server.ReadTimeout = d
	return b
}

// WithMaxSourceBytes sets the compiler source size limit.
func (b *ConfigBuilder) WithMaxSourceBytes(n int) *ConfigBuilder {
	b.cfg.Compiler.MaxSourceBytes = n
	return b
}

// WithHistoryEnabled sets whether compilation history is enabled.
func (b *ConfigBuilder) WithHistoryEnabled(enabled bool) *ConfigBuilder {
	b.cfg.History.Enabled = enabled
	return b
}

// WithHistoryBackend sets the history backend.
func (b *ConfigBuilder) WithHistoryBackend(backend string) *ConfigBuilder {
	b.cfg.History.Backend = backend
	return b
}

// WithHistorySQLitePath sets the SQLite database path for history and
// switches the backend to sqlite.
func (b *ConfigBuilder) WithHistorySQLitePath(path string) *ConfigBuilder {
	b.cfg.History.SQLite.Path = path
	b.cfg.History.Backend = "sqlite"
	return b
}

// WithCacheEnabled sets whether the compile cache is enabled.
func (b *ConfigBuilder) WithCacheEnabled(enabled bool) *ConfigBuilder {
	b.cfg.Cache.Enabled = enabled
	return b
}

// WithCacheBackend sets the cache backend.
func (b *ConfigBuilder) WithCacheBackend(backend string) *ConfigBuilder {
	b.cfg.Cache.Backend = backend
	return b
}

// WithWatchPath enables watching and sets the watched path.
func (b *ConfigBuilder) WithWatchPath(path string) *ConfigBuilder {
	b.cfg.Watch.Enabled = true
	b.cfg.Watch.Path = path
	return b
}

// WithGitSource switches the source mode to git and sets the repository.
func (b *ConfigBuilder) WithGitSource(repository string) *ConfigBuilder {
	b.cfg.Source.Mode = "git"
	b.cfg.Source.Git.Repository = repository
	if b.cfg.Source.Git.Branch == "" {
		b.cfg.Source.Git.Branch = "main"
	}
	return b
}

// WithLoggingLevel sets the logging level.
func (b *ConfigBuilder) WithLoggingLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}

// WithLoggingFormat sets the logging format.
func (b *ConfigBuilder) WithLoggingFormat(format string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Format = format
	return b
}

// WithMetricsEnabled sets whether metrics are enabled.
func (b *ConfigBuilder) WithMetricsEnabled(enabled bool) *ConfigBuilder {
	b.cfg.Telemetry.Metrics.Enabled = enabled
	return b
}

// WithTracingEnabled sets whether tracing is enabled.
func (b *ConfigBuilder) WithTracingEnabled(enabled bool, endpoint string) *ConfigBuilder {
	b.cfg.Telemetry.Tracing.Enabled = enabled
	b.cfg.Telemetry.Tracing.Endpoint = endpoint
	if b.cfg.Telemetry.Tracing.SampleRatio == 0 {
		b.cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	return b
}

// MinimalConfig returns a minimal valid configuration for testing.
// This is useful for tests that don't care about most configuration values.
func MinimalConfig() *Config {
	return NewTestConfig().Build()
}

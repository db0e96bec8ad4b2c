package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8484"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Compiler defaults
	DefaultMaxSourceBytes = 1048576 // 1MB

	// History defaults
	DefaultHistoryEnabled              = true
	DefaultHistoryBackend              = "sqlite"
	DefaultHistorySQLitePath           = "data/history.db"
	DefaultHistorySQLiteMaxOpenConns   = 10
	DefaultHistorySQLiteBusyTimeout    = 5 * time.Second
	DefaultHistoryRecorderAsyncBuffer  = 1000
	DefaultHistoryRecorderWriteTimeout = 5 * time.Second
	DefaultHistoryRetentionDays        = 90
	DefaultHistoryRetentionSchedule    = "0 3 * * *"
	DefaultHistoryRetentionBatchSize   = 1000
	DefaultHistoryQueryDefaultLimit    = 100
	DefaultHistoryQueryMaxLimit        = 10000

	// Cache defaults
	DefaultCacheEnabled           = true
	DefaultCacheBackend           = "memory"
	DefaultCacheMaxEntries        = 10000
	DefaultCacheSQLitePath        = "data/cache.db"
	DefaultCacheSQLiteBusyTimeout = 5 * time.Second

	// Watch defaults
	DefaultWatchRecursive        = true
	DefaultWatchDebounceInterval = 500 * time.Millisecond
	DefaultWatchMaxRetries       = 3
	DefaultWatchRetryDelay       = time.Second

	// Source defaults
	DefaultSourceMode      = "local"
	DefaultGitBranch       = "main"
	DefaultGitAuthType     = "none"
	DefaultGitPollEnabled  = true
	DefaultGitPollInterval = 30 * time.Second
	DefaultGitPollTimeout  = 10 * time.Second
	DefaultGitCloneDepth   = 1

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsEnabled     = true
	DefaultPrometheusPath     = "/metrics"
	DefaultMetricsNamespace   = "callisto"
	DefaultTracingEnabled     = false
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingExporter    = "otlp"
	DefaultTracingServiceName = "mercator-callisto"
	DefaultOTLPInsecure       = true
	DefaultOTLPTimeout        = 10 * time.Second
	DefaultHealthEnabled      = true
	DefaultLivenessPath       = "/healthz"
	DefaultReadinessPath      = "/readyz"
	DefaultHealthCheckTimeout = 5 * time.Second
)

// DefaultExtensions lists the file extensions recognized as compiler input.
var DefaultExtensions = []string{".lisp", ".sexpr"}

// DefaultDurationBuckets are histogram buckets for compile stage
// durations in seconds. Compiles are fast, so the buckets start at 10µs.
var DefaultDurationBuckets = []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1.0}

// DefaultSourceSizeBuckets are histogram buckets for source sizes in bytes.
var DefaultSourceSizeBuckets = []float64{64, 256, 1024, 4096, 16384, 65536, 262144}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// Compiler defaults
	if cfg.Compiler.MaxSourceBytes == 0 {
		cfg.Compiler.MaxSourceBytes = DefaultMaxSourceBytes
	}
	if len(cfg.Compiler.Extensions) == 0 {
		cfg.Compiler.Extensions = append([]string(nil), DefaultExtensions...)
	}

	// History defaults
	if cfg.History.Backend == "" {
		cfg.History.Backend = DefaultHistoryBackend
	}
	if cfg.History.SQLite.Path == "" {
		cfg.History.SQLite.Path = DefaultHistorySQLitePath
	}
	if cfg.History.SQLite.MaxOpenConns == 0 {
		cfg.History.SQLite.MaxOpenConns = DefaultHistorySQLiteMaxOpenConns
	}
	if cfg.History.SQLite.BusyTimeout == 0 {
		cfg.History.SQLite.BusyTimeout = DefaultHistorySQLiteBusyTimeout
	}
	if cfg.History.Recorder.AsyncBuffer == 0 {
		cfg.History.Recorder.AsyncBuffer = DefaultHistoryRecorderAsyncBuffer
	}
	if cfg.History.Recorder.WriteTimeout == 0 {
		cfg.History.Recorder.WriteTimeout = DefaultHistoryRecorderWriteTimeout
	}
	if cfg.History.Retention.Days == 0 {
		cfg.History.Retention.Days = DefaultHistoryRetentionDays
	}
	if cfg.History.Retention.PruneSchedule == "" {
		cfg.History.Retention.PruneSchedule = DefaultHistoryRetentionSchedule
	}
	if cfg.History.Retention.BatchSize == 0 {
		cfg.History.Retention.BatchSize = DefaultHistoryRetentionBatchSize
	}
	if cfg.History.Query.DefaultLimit == 0 {
		cfg.History.Query.DefaultLimit = DefaultHistoryQueryDefaultLimit
	}
	if cfg.History.Query.MaxLimit == 0 {
		cfg.History.Query.MaxLimit = DefaultHistoryQueryMaxLimit
	}

	// Cache defaults
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = DefaultCacheBackend
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = DefaultCacheMaxEntries
	}
	if cfg.Cache.SQLite.Path == "" {
		cfg.Cache.SQLite.Path = DefaultCacheSQLitePath
	}
	if cfg.Cache.SQLite.BusyTimeout == 0 {
		cfg.Cache.SQLite.BusyTimeout = DefaultCacheSQLiteBusyTimeout
	}

	// Watch defaults. Enabled stays false unless set; a watch path with
	// no explicit enable flag is almost always intent to watch.
	if cfg.Watch.Path != "" && !cfg.Watch.Enabled {
		cfg.Watch.Enabled = true
	}
	if !cfg.Watch.Recursive {
		cfg.Watch.Recursive = DefaultWatchRecursive
	}
	if cfg.Watch.DebounceInterval == 0 {
		cfg.Watch.DebounceInterval = DefaultWatchDebounceInterval
	}
	if cfg.Watch.MaxRetries == 0 {
		cfg.Watch.MaxRetries = DefaultWatchMaxRetries
	}
	if cfg.Watch.RetryDelay == 0 {
		cfg.Watch.RetryDelay = DefaultWatchRetryDelay
	}

	// Source defaults
	if cfg.Source.Mode == "" {
		cfg.Source.Mode = DefaultSourceMode
	}
	if cfg.Source.Git.Branch == "" {
		cfg.Source.Git.Branch = DefaultGitBranch
	}
	if cfg.Source.Git.Auth.Type == "" {
		cfg.Source.Git.Auth.Type = DefaultGitAuthType
	}
	if cfg.Source.Git.Poll.Interval == 0 {
		cfg.Source.Git.Poll.Interval = DefaultGitPollInterval
	}
	if cfg.Source.Git.Poll.Timeout == 0 {
		cfg.Source.Git.Poll.Timeout = DefaultGitPollTimeout
	}
	if cfg.Source.Git.Clone.Depth == 0 {
		cfg.Source.Git.Clone.Depth = DefaultGitCloneDepth
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		cfg.Telemetry.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}
	if len(cfg.Telemetry.Metrics.SourceSizeBuckets) == 0 {
		cfg.Telemetry.Metrics.SourceSizeBuckets = append([]float64(nil), DefaultSourceSizeBuckets...)
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Exporter == "" {
		cfg.Telemetry.Tracing.Exporter = DefaultTracingExporter
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.OTLP.Timeout == 0 {
		cfg.Telemetry.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultReadinessPath
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}

// applyFlagDefaults sets the feature flags whose default is true.
// Booleans cannot be defaulted after parsing because false is the zero
// value, so LoadConfig sets these before unmarshalling: an absent key
// keeps the default, an explicit "enabled: false" overrides it.
func applyFlagDefaults(cfg *Config) {
	cfg.History.Enabled = DefaultHistoryEnabled
	cfg.Cache.Enabled = DefaultCacheEnabled
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Health.Enabled = DefaultHealthEnabled
	cfg.Source.Git.Poll.Enabled = DefaultGitPollEnabled
	cfg.Telemetry.Tracing.OTLP.Insecure = DefaultOTLPInsecure
}

// NewDefaultConfig returns a Config with every default applied.
// This constructor is for running without a config file and for tests.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	applyFlagDefaults(cfg)
	ApplyDefaults(cfg)
	return cfg
}

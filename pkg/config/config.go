package config

import "time"

// Config is the root configuration structure for Mercator Callisto.
// It contains all configuration sections for the compile service, the
// compilation ledger, the compile cache, source watching, Git source
// sync, and telemetry.
type Config struct {
	// Server contains HTTP compile service configuration including listen
	// address, timeouts, and request limits.
	Server ServerConfig `yaml:"server"`

	// Compiler contains settings that bound compiler inputs.
	Compiler CompilerConfig `yaml:"compiler"`

	// History contains configuration for the compilation ledger including
	// backend selection, async recording, and retention.
	History HistoryConfig `yaml:"history"`

	// Cache contains configuration for the content-addressed compile cache.
	Cache CacheConfig `yaml:"cache"`

	// Watch contains configuration for local source file watching.
	Watch WatchConfig `yaml:"watch"`

	// Source contains configuration for where compiler input comes from
	// in service mode, including Git repository sync.
	Source SourceConfig `yaml:"source"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP compile service.
type ServerConfig struct {
	// ListenAddress is the address and port for the service to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8484", "0.0.0.0:8484").
	// Default: "127.0.0.1:8484"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. A zero or negative value means no timeout.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled. If IdleTimeout is zero, ReadTimeout is used.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// If requests are still in-flight after this timeout, the server will
	// force shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// CompilerConfig contains settings that bound compiler inputs.
type CompilerConfig struct {
	// MaxSourceBytes is the largest source text the service accepts, in
	// bytes. 0 means unlimited. The library itself never enforces a
	// limit; this guards the network surface.
	// Default: 1048576 (1MB)
	MaxSourceBytes int `yaml:"max_source_bytes"`

	// Extensions lists the file extensions recognized as compiler input
	// when walking directories (CLI, watch mode, Git sync).
	// Default: [".lisp", ".sexpr"]
	Extensions []string `yaml:"extensions"`
}

// HistoryConfig contains configuration for the compilation ledger.
type HistoryConfig struct {
	// Enabled controls whether compilations are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend specifies the storage backend for history records.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite HistorySQLiteConfig `yaml:"sqlite"`

	// Recorder contains async recorder configuration.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention"`

	// Query contains query configuration.
	Query QueryConfig `yaml:"query"`
}

// HistorySQLiteConfig contains SQLite-specific configuration for the
// compilation ledger.
type HistorySQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/history.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig contains async recorder configuration.
type RecorderConfig struct {
	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RetentionConfig contains retention policy configuration.
type RetentionConfig struct {
	// Days is the number of days to retain history records.
	// Records older than this are eligible for deletion.
	// 0 means keep history forever (no pruning).
	// Default: 90
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for scheduling pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// BatchSize is the maximum number of records deleted per prune pass.
	// Default: 1000
	BatchSize int `yaml:"batch_size"`
}

// QueryConfig contains query configuration.
type QueryConfig struct {
	// DefaultLimit is the default number of records to return if not specified.
	// Default: 100
	DefaultLimit int `yaml:"default_limit"`

	// MaxLimit is the maximum number of records that can be returned in a
	// single query.
	// Default: 10000
	MaxLimit int `yaml:"max_limit"`
}

// CacheConfig contains configuration for the compile cache.
type CacheConfig struct {
	// Enabled controls whether compile results are cached.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend specifies the cache backend.
	// Options: "memory", "sqlite"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// MaxEntries is the maximum number of entries the memory backend
	// keeps before evicting least-recently-used entries.
	// Default: 10000
	MaxEntries int `yaml:"max_entries"`

	// SQLite contains SQLite-specific configuration.
	SQLite CacheSQLiteConfig `yaml:"sqlite"`
}

// CacheSQLiteConfig contains SQLite-specific configuration for the
// compile cache.
type CacheSQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/cache.db"
	Path string `yaml:"path"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// WatchConfig contains configuration for local source file watching.
type WatchConfig struct {
	// Enabled controls whether the service watches a local source
	// directory and recompiles files on change.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the file or directory to watch.
	Path string `yaml:"path"`

	// Recursive controls whether subdirectories are watched too.
	// Default: true
	Recursive bool `yaml:"recursive"`

	// DebounceInterval collapses bursts of filesystem events into a
	// single recompile. Editors often produce several events per save.
	// Default: 500ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// MaxRetries is the number of times to retry establishing the
	// watcher after an error.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`

	// RetryDelay is the delay between watcher retries.
	// Default: 1s
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// SourceConfig contains configuration for service-mode compiler input.
type SourceConfig struct {
	// Mode specifies where source files come from.
	// Options: "local" (watch a directory), "git" (sync a repository)
	// Default: "local"
	Mode string `yaml:"mode"`

	// Git contains Git repository configuration.
	// Used when Mode is "git".
	Git GitSourceConfig `yaml:"git"`
}

// GitSourceConfig configures Git-based source sync.
type GitSourceConfig struct {
	// Repository URL (HTTPS or SSH).
	// Example: "https://github.com/company/programs.git"
	Repository string `yaml:"repository"`

	// Branch to track.
	// Default: "main"
	Branch string `yaml:"branch"`

	// Path within repository to source files.
	// Default: "" (root directory)
	Path string `yaml:"path"`

	// Auth configures Git authentication.
	Auth GitAuthConfig `yaml:"auth"`

	// Poll configures change detection.
	Poll GitPollConfig `yaml:"poll"`

	// Clone configures repository cloning.
	Clone GitCloneConfig `yaml:"clone"`
}

// GitAuthConfig configures Git authentication.
type GitAuthConfig struct {
	// Type: "token", "basic", "ssh", "none"
	// - "token": HTTPS with personal access token
	// - "basic": HTTPS with username and password
	// - "ssh": SSH with public key
	// - "none": public repositories
	// Default: "none"
	Type string `yaml:"type"`

	// Token for HTTPS authentication (supports env vars).
	// Example: "${GITHUB_TOKEN}"
	// Required when Type is "token".
	Token string `yaml:"token"`

	// Username for basic authentication.
	// Required when Type is "basic".
	Username string `yaml:"username"`

	// Password for basic authentication (supports env vars).
	// Required when Type is "basic".
	Password string `yaml:"password"`

	// SSHKeyPath for SSH authentication.
	// Example: "/home/user/.ssh/id_rsa"
	// Required when Type is "ssh".
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase for encrypted SSH keys (supports env vars).
	// Optional, leave empty if key is not encrypted.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// GitPollConfig configures change detection.
type GitPollConfig struct {
	// Enabled determines if polling is active.
	// When false, sources are loaded once at startup.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Interval between polls (e.g., "30s", "1m", "5m").
	// Lower values = faster change detection but more load.
	// Default: 30s
	Interval time.Duration `yaml:"interval"`

	// Timeout for Git operations.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// GitCloneConfig configures repository cloning.
type GitCloneConfig struct {
	// Depth for shallow clones (0 = full clone).
	// Set to 1 for fastest cloning of large repositories.
	// Default: 1
	Depth int `yaml:"depth"`

	// LocalPath where the repository is cloned.
	// Example: "/var/lib/callisto/sources"
	// Default: system temp directory
	LocalPath string `yaml:"local_path"`

	// CleanOnStart removes the local repo before cloning.
	// Useful for ensuring clean state on restart.
	// Default: false
	CleanOnStart bool `yaml:"clean_on_start"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "callisto"
	Namespace string `yaml:"namespace"`

	// DurationBuckets defines histogram buckets for compile stage
	// durations (seconds).
	// Default: [0.00001, 0.0001, 0.001, 0.01, 0.1, 1.0]
	DurationBuckets []float64 `yaml:"duration_buckets"`

	// SourceSizeBuckets defines histogram buckets for source sizes (bytes).
	// Default: [64, 256, 1024, 4096, 16384, 65536, 262144]
	SourceSizeBuckets []float64 `yaml:"source_size_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1 (10%)
	SampleRatio float64 `yaml:"sample_ratio"`

	// Exporter determines the trace exporter to use.
	// Options: "otlp"
	// Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the trace collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "mercator-callisto"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// Enabled controls whether health check endpoints are enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/healthz"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/readyz"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

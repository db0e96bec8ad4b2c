package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := MinimalConfig()

	err := Validate(cfg)
	if err != nil {
		t.Errorf("expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := &Config{
		// Empty listen address, empty logging level and format, source
		// mode unset: several sections should report at once.
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	validationErr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	if len(validationErr.Errors) < 2 {
		t.Errorf("expected multiple errors, got %d", len(validationErr.Errors))
	}

	// Verify error message includes multiple errors
	errMsg := validationErr.Error()
	if !strings.Contains(errMsg, "validation failed with") {
		t.Errorf("error message should mention multiple errors: %s", errMsg)
	}
}

// hasFieldError reports whether errs contains an error for the given field.
func hasFieldError(errs []FieldError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestValidate_ServerConfig(t *testing.T) {
	tests := []struct {
		name       string
		server     ServerConfig
		wantError  bool
		errorField string
	}{
		{
			name: "valid server config",
			server: ServerConfig{
				ListenAddress:  "127.0.0.1:8484",
				ReadTimeout:    DefaultReadTimeout,
				WriteTimeout:   DefaultWriteTimeout,
				IdleTimeout:    DefaultIdleTimeout,
				MaxHeaderBytes: DefaultMaxHeaderBytes,
			},
			wantError: false,
		},
		{
			name: "empty listen address",
			server: ServerConfig{
				ListenAddress: "",
			},
			wantError:  true,
			errorField: "server.listen_address",
		},
		{
			name: "negative read timeout",
			server: ServerConfig{
				ListenAddress: "127.0.0.1:8484",
				ReadTimeout:   -1 * time.Second,
			},
			wantError:  true,
			errorField: "server.read_timeout",
		},
		{
			name: "excessive max header bytes",
			server: ServerConfig{
				ListenAddress:  "127.0.0.1:8484",
				MaxHeaderBytes: 20 * 1024 * 1024,
			},
			wantError:  true,
			errorField: "server.max_header_bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateServer(&tt.server)
			if tt.wantError {
				if !hasFieldError(errs, tt.errorField) {
					t.Errorf("expected error for field %q, got: %v", tt.errorField, errs)
				}
			} else if len(errs) > 0 {
				t.Errorf("expected no errors, got: %v", errs)
			}
		})
	}
}

func TestValidate_HistoryConfig(t *testing.T) {
	valid := HistoryConfig{
		Enabled: true,
		Backend: "sqlite",
		SQLite: HistorySQLiteConfig{
			Path:         "data/history.db",
			MaxOpenConns: 10,
			BusyTimeout:  5 * time.Second,
		},
		Recorder: RecorderConfig{
			AsyncBuffer:  1000,
			WriteTimeout: 5 * time.Second,
		},
		Retention: RetentionConfig{
			Days:          90,
			PruneSchedule: "0 3 * * *",
			BatchSize:     1000,
		},
		Query: QueryConfig{
			DefaultLimit: 100,
			MaxLimit:     10000,
		},
	}

	tests := []struct {
		name       string
		mutate     func(*HistoryConfig)
		errorField string
	}{
		{
			name:   "valid config",
			mutate: func(cfg *HistoryConfig) {},
		},
		{
			name:   "disabled skips validation",
			mutate: func(cfg *HistoryConfig) { cfg.Enabled = false; cfg.Backend = "bogus" },
		},
		{
			name:       "unknown backend",
			mutate:     func(cfg *HistoryConfig) { cfg.Backend = "cassandra" },
			errorField: "history.backend",
		},
		{
			name:       "sqlite backend without path",
			mutate:     func(cfg *HistoryConfig) { cfg.SQLite.Path = "" },
			errorField: "history.sqlite.path",
		},
		{
			name:       "negative retention days",
			mutate:     func(cfg *HistoryConfig) { cfg.Retention.Days = -1 },
			errorField: "history.retention.days",
		},
		{
			name:       "excessive retention days",
			mutate:     func(cfg *HistoryConfig) { cfg.Retention.Days = 5000 },
			errorField: "history.retention.days",
		},
		{
			name:       "malformed prune schedule",
			mutate:     func(cfg *HistoryConfig) { cfg.Retention.PruneSchedule = "every day at 3" },
			errorField: "history.retention.prune_schedule",
		},
		{
			name:       "max limit below default limit",
			mutate:     func(cfg *HistoryConfig) { cfg.Query.MaxLimit = 10 },
			errorField: "history.query.max_limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			errs := validateHistory(&cfg)
			if tt.errorField == "" {
				if len(errs) > 0 {
					t.Errorf("expected no errors, got: %v", errs)
				}
			} else if !hasFieldError(errs, tt.errorField) {
				t.Errorf("expected error for field %q, got: %v", tt.errorField, errs)
			}
		})
	}
}

func TestValidate_CacheConfig(t *testing.T) {
	tests := []struct {
		name       string
		cache      CacheConfig
		errorField string
	}{
		{
			name: "valid memory cache",
			cache: CacheConfig{
				Enabled:    true,
				Backend:    "memory",
				MaxEntries: 1000,
			},
		},
		{
			name: "valid sqlite cache",
			cache: CacheConfig{
				Enabled: true,
				Backend: "sqlite",
				SQLite:  CacheSQLiteConfig{Path: "data/cache.db"},
			},
		},
		{
			name:  "disabled skips validation",
			cache: CacheConfig{Enabled: false, Backend: "bogus"},
		},
		{
			name:       "unknown backend",
			cache:      CacheConfig{Enabled: true, Backend: "redis"},
			errorField: "cache.backend",
		},
		{
			name:       "memory backend without capacity",
			cache:      CacheConfig{Enabled: true, Backend: "memory"},
			errorField: "cache.max_entries",
		},
		{
			name:       "sqlite backend without path",
			cache:      CacheConfig{Enabled: true, Backend: "sqlite"},
			errorField: "cache.sqlite.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateCache(&tt.cache)
			if tt.errorField == "" {
				if len(errs) > 0 {
					t.Errorf("expected no errors, got: %v", errs)
				}
			} else if !hasFieldError(errs, tt.errorField) {
				t.Errorf("expected error for field %q, got: %v", tt.errorField, errs)
			}
		})
	}
}

func TestValidate_WatchConfig(t *testing.T) {
	tests := []struct {
		name       string
		watch      WatchConfig
		errorField string
	}{
		{
			name: "valid watch config",
			watch: WatchConfig{
				Enabled:          true,
				Path:             "/srv/programs",
				DebounceInterval: 500 * time.Millisecond,
				MaxRetries:       3,
				RetryDelay:       time.Second,
			},
		},
		{
			name:  "disabled skips validation",
			watch: WatchConfig{Enabled: false},
		},
		{
			name:       "enabled without path",
			watch:      WatchConfig{Enabled: true},
			errorField: "watch.path",
		},
		{
			name: "excessive debounce interval",
			watch: WatchConfig{
				Enabled:          true,
				Path:             "/srv/programs",
				DebounceInterval: 2 * time.Minute,
			},
			errorField: "watch.debounce_interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateWatch(&tt.watch)
			if tt.errorField == "" {
				if len(errs) > 0 {
					t.Errorf("expected no errors, got: %v", errs)
				}
			} else if !hasFieldError(errs, tt.errorField) {
				t.Errorf("expected error for field %q, got: %v", tt.errorField, errs)
			}
		})
	}
}

func TestValidate_SourceConfig(t *testing.T) {
	tests := []struct {
		name       string
		source     SourceConfig
		errorField string
	}{
		{
			name:   "valid local mode",
			source: SourceConfig{Mode: "local"},
		},
		{
			name: "valid git mode",
			source: SourceConfig{
				Mode: "git",
				Git: GitSourceConfig{
					Repository: "https://github.com/example/programs.git",
					Branch:     "main",
					Auth:       GitAuthConfig{Type: "none"},
					Poll:       GitPollConfig{Enabled: true, Interval: 30 * time.Second, Timeout: 10 * time.Second},
				},
			},
		},
		{
			name:       "unknown mode",
			source:     SourceConfig{Mode: "ftp"},
			errorField: "source.mode",
		},
		{
			name: "git mode without repository",
			source: SourceConfig{
				Mode: "git",
				Git: GitSourceConfig{
					Branch: "main",
					Auth:   GitAuthConfig{Type: "none"},
				},
			},
			errorField: "source.git.repository",
		},
		{
			name: "token auth without token",
			source: SourceConfig{
				Mode: "git",
				Git: GitSourceConfig{
					Repository: "https://github.com/example/programs.git",
					Branch:     "main",
					Auth:       GitAuthConfig{Type: "token"},
				},
			},
			errorField: "source.git.auth.token",
		},
		{
			name: "ssh auth without key path",
			source: SourceConfig{
				Mode: "git",
				Git: GitSourceConfig{
					Repository: "git@github.com:example/programs.git",
					Branch:     "main",
					Auth:       GitAuthConfig{Type: "ssh"},
				},
			},
			errorField: "source.git.auth.ssh_key_path",
		},
		{
			name: "poll interval too small",
			source: SourceConfig{
				Mode: "git",
				Git: GitSourceConfig{
					Repository: "https://github.com/example/programs.git",
					Branch:     "main",
					Auth:       GitAuthConfig{Type: "none"},
					Poll:       GitPollConfig{Enabled: true, Interval: 100 * time.Millisecond, Timeout: 10 * time.Second},
				},
			},
			errorField: "source.git.poll.interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateSource(&tt.source)
			if tt.errorField == "" {
				if len(errs) > 0 {
					t.Errorf("expected no errors, got: %v", errs)
				}
			} else if !hasFieldError(errs, tt.errorField) {
				t.Errorf("expected error for field %q, got: %v", tt.errorField, errs)
			}
		})
	}
}

func TestValidate_TelemetryConfig(t *testing.T) {
	valid := TelemetryConfig{
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics", Namespace: "callisto"},
		Tracing: TracingConfig{
			Sampler:     "ratio",
			SampleRatio: 0.1,
			Exporter:    "otlp",
			ServiceName: "mercator-callisto",
		},
		Health: HealthConfig{
			Enabled:       true,
			LivenessPath:  "/healthz",
			ReadinessPath: "/readyz",
			CheckTimeout:  5 * time.Second,
		},
	}

	tests := []struct {
		name       string
		mutate     func(*TelemetryConfig)
		errorField string
	}{
		{
			name:   "valid config",
			mutate: func(cfg *TelemetryConfig) {},
		},
		{
			name:       "invalid logging level",
			mutate:     func(cfg *TelemetryConfig) { cfg.Logging.Level = "verbose" },
			errorField: "telemetry.logging.level",
		},
		{
			name:       "invalid logging format",
			mutate:     func(cfg *TelemetryConfig) { cfg.Logging.Format = "xml" },
			errorField: "telemetry.logging.format",
		},
		{
			name:       "metrics enabled without path",
			mutate:     func(cfg *TelemetryConfig) { cfg.Metrics.Path = "" },
			errorField: "telemetry.metrics.path",
		},
		{
			name: "unsorted histogram buckets",
			mutate: func(cfg *TelemetryConfig) {
				cfg.Metrics.DurationBuckets = []float64{0.1, 0.01, 1}
			},
			errorField: "telemetry.metrics.duration_buckets",
		},
		{
			name: "tracing enabled without endpoint",
			mutate: func(cfg *TelemetryConfig) {
				cfg.Tracing.Enabled = true
				cfg.Tracing.Endpoint = ""
			},
			errorField: "telemetry.tracing.endpoint",
		},
		{
			name: "invalid sampler",
			mutate: func(cfg *TelemetryConfig) {
				cfg.Tracing.Enabled = true
				cfg.Tracing.Endpoint = "localhost:4317"
				cfg.Tracing.Sampler = "sometimes"
			},
			errorField: "telemetry.tracing.sampler",
		},
		{
			name:       "sample ratio out of range",
			mutate:     func(cfg *TelemetryConfig) { cfg.Tracing.SampleRatio = 1.5 },
			errorField: "telemetry.tracing.sample_ratio",
		},
		{
			name:       "liveness path without slash",
			mutate:     func(cfg *TelemetryConfig) { cfg.Health.LivenessPath = "healthz" },
			errorField: "telemetry.health.liveness_path",
		},
		{
			name:       "excessive check timeout",
			mutate:     func(cfg *TelemetryConfig) { cfg.Health.CheckTimeout = 2 * time.Minute },
			errorField: "telemetry.health.check_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			errs := validateTelemetry(&cfg)
			if tt.errorField == "" {
				if len(errs) > 0 {
					t.Errorf("expected no errors, got: %v", errs)
				}
			} else if !hasFieldError(errs, tt.errorField) {
				t.Errorf("expected error for field %q, got: %v", tt.errorField, errs)
			}
		})
	}
}

func TestFieldError_Error(t *testing.T) {
	err := FieldError{Field: "server.listen_address", Message: "listen address is required"}

	want := "server.listen_address: listen address is required"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestValidationError_SingleError(t *testing.T) {
	err := ValidationError{Errors: []FieldError{
		{Field: "cache.backend", Message: "invalid backend"},
	}}

	msg := err.Error()
	if !strings.Contains(msg, "cache.backend") {
		t.Errorf("expected message to name the field, got %q", msg)
	}
	if strings.Contains(msg, "errors:") {
		t.Errorf("single error should not use the multi-error format: %q", msg)
	}
}

// Package server provides the HTTP compile service.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"mercator-hq/callisto/pkg/cache"
	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/driver"
	"mercator-hq/callisto/pkg/history"
	"mercator-hq/callisto/pkg/telemetry/health"
	"mercator-hq/callisto/pkg/telemetry/metrics"
	"mercator-hq/callisto/pkg/telemetry/tracing"
)

// Server is the HTTP compile service. It exposes the compile endpoint,
// history queries, health probes, and Prometheus metrics.
type Server struct {
	config  *config.Config
	driver  *driver.Driver
	storage history.Storage
	cache   cache.Cache
	metrics *metrics.Collector
	checker *health.Checker

	version   string
	commit    string
	buildDate string

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a compile service. Storage, cache, and metrics may
// be nil; the matching endpoints report disabled instead of failing.
func NewServer(
	cfg *config.Config,
	drv *driver.Driver,
	storage history.Storage,
	c cache.Cache,
	collector *metrics.Collector,
) *Server {
	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	checker.RegisterCheck("history", storageCheck(storage))
	checker.RegisterCheck("cache", cacheCheck(c))

	return &Server{
		config:       cfg,
		driver:       drv,
		storage:      storage,
		cache:        c,
		metrics:      collector,
		checker:      checker,
		version:      "dev",
		commit:       "unknown",
		buildDate:    "unknown",
		shutdownChan: make(chan struct{}),
		isRunning:    false,
	}
}

// SetVersionInfo sets the build information served at /version.
// Call before Start.
func (s *Server) SetVersionInfo(version, commit, buildDate string) {
	s.version = version
	s.commit = commit
	s.buildDate = buildDate
}

// Start starts the HTTP server and blocks until shutdown. The server
// stops on SIGINT, SIGTERM, context cancellation, or Shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting compile service",
			"address", s.config.Server.ListenAddress,
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown",
			"timeout", s.config.Server.ShutdownTimeout.String(),
		)

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("compile service stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	compileHandler := NewCompileHandler(s.driver, s.config.Compiler.MaxSourceBytes)
	historyHandler := NewHistoryHandler(s.storage, &s.config.History.Query)
	historyItemHandler := NewHistoryItemHandler(s.storage)

	mux.Handle("POST /v1/compile", compileHandler)
	mux.Handle("GET /v1/history", historyHandler)
	mux.Handle("GET /v1/history/{id}", historyItemHandler)

	livenessPath := s.config.Telemetry.Health.LivenessPath
	if livenessPath == "" {
		livenessPath = "/healthz"
	}
	readinessPath := s.config.Telemetry.Health.ReadinessPath
	if readinessPath == "" {
		readinessPath = "/readyz"
	}
	health.HTTPMiddleware(mux, s.checker, livenessPath, readinessPath,
		s.version, s.commit, s.buildDate)

	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	// Middleware chain, innermost first
	var handler http.Handler = mux
	handler = tracing.HTTPMiddleware(handler)
	handler = loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)
	handler = recoveryMiddleware(handler)

	return handler
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Health performs a health check on the server.
func (s *Server) Health() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return fmt.Errorf("server is not running")
	}

	return nil
}

// storageCheck builds a readiness check that pings the history backend.
// A nil storage reports disabled rather than unhealthy.
func storageCheck(s history.Storage) health.CheckFunc {
	return func(ctx context.Context) error {
		if s == nil {
			return health.ErrCheckDisabled
		}
		_, err := s.Count(ctx, &history.Query{})
		return err
	}
}

// cacheCheck builds a readiness check that pings the cache backend.
// A nil cache reports disabled rather than unhealthy.
func cacheCheck(c cache.Cache) health.CheckFunc {
	return func(ctx context.Context) error {
		if c == nil {
			return health.ErrCheckDisabled
		}
		_, err := c.Len(ctx)
		return err
	}
}

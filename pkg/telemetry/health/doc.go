// Package health provides health check endpoints for the Callisto compile
// server.
//
// # Overview
//
// The health package implements liveness and readiness probes for Kubernetes
// and other orchestration systems, along with version information endpoints.
// It provides a framework for checking the health of the compile server's
// components.
//
// # Endpoints
//
// The package provides three main endpoints (probe paths are configurable,
// defaults shown):
//
//   - /healthz: Liveness probe - indicates if the process is running
//   - /readyz: Readiness probe - indicates if the server can serve compile requests
//   - /version: Build information - version, commit, build time
//
// # Usage
//
//	// Create health checker with the configured per-check timeout
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//
//	// Register component checks
//	checker.RegisterCheck("cache", func(ctx context.Context) error {
//	    return cache.Ping(ctx)
//	})
//	checker.RegisterCheck("history", func(ctx context.Context) error {
//	    if !cfg.History.Enabled {
//	        return health.ErrCheckDisabled
//	    }
//	    return store.Ping(ctx)
//	})
//
//	// Add HTTP handlers at the configured probe paths
//	http.HandleFunc(cfg.Telemetry.Health.LivenessPath, checker.LivenessHandler())
//	http.HandleFunc(cfg.Telemetry.Health.ReadinessPath, checker.ReadinessHandler())
//	http.HandleFunc("/version", health.VersionHandler("0.1.0", "abc123", "2026-08-20"))
//
// # Liveness vs Readiness
//
// **Liveness Probe** (/healthz):
//   - Indicates if the process is alive and running
//   - Returns 200 OK if process is alive
//   - Used by Kubernetes to restart pods
//   - Fast check (<10ms)
//
// **Readiness Probe** (/readyz):
//   - Indicates if the server can serve compile requests
//   - Checks all registered component health checks
//   - Returns 200 OK if all components are healthy or disabled
//   - Returns 503 Service Unavailable if any component is unhealthy
//   - Used by Kubernetes to route traffic
//   - May take longer (up to 1s for all checks)
//
// # Component Health Checks
//
// Components register health check functions:
//
//	checker.RegisterCheck("history", func(ctx context.Context) error {
//	    return store.Ping(ctx)
//	})
//
// Common component checks:
//   - config: Configuration loaded and valid
//   - cache: Cache backend accessible (if enabled)
//   - history: History storage backend reachable (if enabled)
//   - watcher: File watcher running (watch mode only)
//
// A component turned off by configuration returns ErrCheckDisabled from its
// check; it reports "disabled" and does not degrade overall readiness.
//
// # Performance
//
// Health checks are designed to be lightweight:
//   - Liveness: <10ms
//   - Readiness: <100ms (all component checks)
//   - Version: <1ms
//
// # Example Response
//
// Liveness response (/healthz):
//
//	{
//	    "status": "ok",
//	    "timestamp": "2026-08-20T10:30:00Z"
//	}
//
// Readiness response (/readyz):
//
//	{
//	    "status": "ready",
//	    "checks": {
//	        "config": {"status": "ok"},
//	        "cache": {"status": "ok"},
//	        "history": {"status": "disabled"}
//	    },
//	    "timestamp": "2026-08-20T10:30:00Z"
//	}
//
// Degraded response (/readyz):
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "config": {"status": "ok"},
//	        "cache": {"status": "ok"},
//	        "history": {"status": "unhealthy", "message": "storage not reachable"}
//	    },
//	    "timestamp": "2026-08-20T10:30:00Z"
//	}
//
// Version response (/version):
//
//	{
//	    "version": "0.1.0",
//	    "commit": "abc123def456",
//	    "build_time": "2026-08-20T00:00:00Z",
//	    "go_version": "go1.21.5"
//	}
package health

// Package server provides the HTTP compile service.
//
// This package ties together the compile driver, history storage, cache,
// and telemetry behind an HTTP API, and provides server lifecycle
// management including start, shutdown, and health checks.
//
// # Basic Usage
//
// Creating and starting a server:
//
//	import (
//	    "context"
//	    "mercator-hq/callisto/pkg/config"
//	    "mercator-hq/callisto/pkg/driver"
//	    "mercator-hq/callisto/pkg/server"
//	)
//
//	cfg, err := config.LoadConfig("callisto.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	drv := driver.New(c, rec, collector, tracer, logger)
//
//	srv := server.NewServer(cfg, drv, storage, c, collector)
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Routes
//
// The server exposes the following HTTP endpoints:
//
//   - POST /v1/compile - Compile a source program
//   - GET /v1/history - List compilation records (limit, status, trigger filters)
//   - GET /v1/history/{id} - Fetch one compilation record
//   - GET /healthz - Liveness probe (always returns 200)
//   - GET /readyz - Readiness probe (pings history storage and cache)
//   - GET /version - Build information
//   - GET /metrics - Prometheus metrics (when metrics are enabled)
//
// # Compile Endpoint
//
// POST /v1/compile accepts a JSON body and returns 201 on success:
//
//	{"source": "(add 2 (subtract 4 2))", "filename": "demo.lisp"}
//
//	{"id": "...", "output": "add(2, subtract(4, 2));",
//	 "token_count": 9, "cache_hit": false, "duration_us": 120}
//
// A stage failure returns 422 with the failing stage and, when the
// error carries one, the source position:
//
//	{"error": "parse error at end of input: expected closing paren",
//	 "stage": "parse"}
//
// Malformed JSON or a missing source returns 400. A source larger than
// the configured compiler limit returns 413.
//
// # Graceful Shutdown
//
// The server handles graceful shutdown automatically when receiving
// SIGTERM or SIGINT:
//
//	// Or trigger shutdown programmatically:
//	if err := srv.Shutdown(context.Background()); err != nil {
//	    log.Error("shutdown error", "error", err)
//	}
//
// The shutdown process:
//  1. Stops accepting new connections
//  2. Waits for active connections to complete (up to shutdown timeout)
//  3. Forces connection closure if timeout exceeded
//
// # Middleware Chain
//
// Requests pass through the following middleware (innermost to outermost):
//  1. Tracing: Extracts W3C trace context, surfaces trace IDs in headers
//  2. Logging: Logs request/response details with latency
//  3. RequestID: Generates unique request ID for correlation
//  4. Recovery: Recovers from panics and returns 500 error
//
// # Thread Safety
//
// All server operations are thread-safe and can be called concurrently
// from multiple goroutines.
package server

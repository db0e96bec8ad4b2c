// Package metrics provides Prometheus metrics collection for Callisto.
//
// # Overview
//
// The metrics package implements Prometheus metrics for monitoring the
// compile pipeline, result cache, file watcher, and history recorder. It
// provides high-performance metric collection with minimal overhead
// (<50µs per update).
//
// # Metrics Categories
//
//   - Compile Metrics: Compile count, duration, per-stage durations, source sizes, tokens
//   - Cache Metrics: Cache hits, misses, entries, and evictions
//   - Watch Metrics: Filesystem events, debounced events, triggered recompilations
//   - History Metrics: Record writes, queue depth, retention pruning
//
// # Usage
//
//	// Create collector
//	collector := metrics.NewCollector(cfg, registry)
//
//	// Record compile metrics
//	collector.RecordCompile(
//		"examples/nested.lisp", // source
//		"success",              // status
//		180*time.Microsecond,   // duration
//		412,                    // source bytes
//		37,                     // tokens
//	)
//
//	// Record per-stage timings
//	collector.RecordStage("lex", 25*time.Microsecond)
//	collector.RecordStage("parse", 40*time.Microsecond)
//
//	// Record cache metrics
//	collector.RecordCacheHit("compile")
//	collector.UpdateCacheSize("compile", 42)
//
// # Performance
//
// The metrics package is optimized for minimal overhead:
//
//   - Lock-free counters where possible
//   - Pre-allocated metric instances
//   - Configurable cardinality limits
//   - Target: <50µs per metric update
//
// # Custom Histogram Buckets
//
// The collector uses custom histogram buckets optimized for compiler workloads:
//
//	Stage Duration: 10µs, 100µs, 1ms, 10ms, 100ms, 1s
//	Source Sizes: 64B, 256B, 1KB, 4KB, 16KB, 64KB, 256KB
//
// # Prometheus Endpoint
//
// All metrics are exposed on the /metrics endpoint in standard Prometheus format:
//
//	# HELP callisto_compiles_total Total number of compilations processed
//	# TYPE callisto_compiles_total counter
//	callisto_compiles_total{source="examples/nested.lisp",status="success"} 1234
//
// # Cardinality Management
//
// The collector implements cardinality limits to prevent memory issues:
//
//   - Maximum 10,000 unique label combinations per metric
//   - Overflow sources aggregated into "other"
//
// The source label carries the compiled file path, so a server fed many
// distinct inline sources relies on this aggregation to stay bounded.
package metrics

// Package tracing provides OpenTelemetry distributed tracing for Callisto.
//
// # Overview
//
// The tracing package implements W3C Trace Context propagation, span creation,
// and trace export to OTLP collectors. It provides visibility into compile
// request flows with minimal overhead (<100µs per span).
//
// # Distributed Tracing
//
// Distributed tracing tracks requests as they flow through the system,
// creating a hierarchy of spans that represent operations. Each span records:
//   - Operation name and duration
//   - Attributes (key-value pairs)
//   - Events (timestamped logs within the span)
//   - Trace context (trace ID, span ID, sampling decision)
//
// # Trace Context Propagation
//
// The package implements W3C Trace Context (https://www.w3.org/TR/trace-context/)
// for propagating trace context across HTTP boundaries:
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//	tracestate: congo=t61rcWkgMzE
//
// # Sampling Strategies
//
// Three sampling strategies are supported:
//   - always: Sample all traces (development/debugging)
//   - never: Sample no traces (tracing disabled)
//   - ratio: Sample a percentage of traces (production)
//
// # Usage
//
//	// Initialize tracer
//	cfg := &config.TracingConfig{
//	    Enabled:     true,
//	    Sampler:     "ratio",
//	    SampleRatio: 0.1,
//	    Exporter:    "otlp",
//	    Endpoint:    "localhost:4317",
//	    ServiceName: "mercator-callisto",
//	}
//	tracer, err := tracing.New(cfg, version)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tracer.Shutdown(context.Background())
//
//	// Create span
//	ctx, span := tracer.Start(ctx, "callisto.compile")
//	defer span.End()
//
//	// Add attributes
//	span.SetAttributes(
//	    attribute.String("callisto.source", "examples/nested.lisp"),
//	    attribute.Int("callisto.tokens", 37),
//	)
//
//	// Add event
//	span.AddEvent("cache_miss", trace.WithAttributes(
//	    attribute.String("cache_name", "compile"),
//	))
//
// # Span Hierarchy
//
// Spans form a hierarchy representing the compile pipeline:
//
//	callisto.compile (180µs)
//	├── callisto.cache.lookup (5µs)
//	├── callisto.stage.lex (25µs)
//	├── callisto.stage.parse (40µs)
//	├── callisto.stage.transform (55µs)
//	├── callisto.stage.generate (30µs)
//	└── callisto.history.record (10µs)
//
// # HTTP Integration
//
// Extract trace context from incoming HTTP requests:
//
//	ctx := tracing.Extract(r.Context(), r.Header)
//	ctx, span := tracer.Start(ctx, "handle_compile")
//	defer span.End()
//
// Inject trace context into outgoing HTTP requests:
//
//	req, _ := http.NewRequestWithContext(ctx, "POST", url, body)
//	tracing.Inject(ctx, req.Header)
//
// # Performance
//
// The tracing package is designed for minimal overhead:
//   - Span creation: <100µs per span
//   - Context propagation: <10µs
//   - Sampling decision: <1µs
//   - When disabled: <1µs (noop span)
//
// # Trace Exporter
//
// Spans export over OTLP gRPC; point Jaeger or another backend at the same
// collector endpoint:
//
//	telemetry:
//	  tracing:
//	    exporter: otlp
//	    endpoint: localhost:4317
//	    otlp:
//	      insecure: true
//	      timeout: 10s
//
// # Attribute Helpers
//
// Common attributes can be set using helper functions:
//
//	// Source attributes
//	tracing.SetSourceAttributes(span, "examples/nested.lisp", 412)
//
//	// Pipeline result attributes
//	tracing.SetPipelineAttributes(span, 37, 5, 128)
//
//	// Cache attributes
//	tracing.SetCacheAttributes(span, true, "compile")
//
//	// Error attributes
//	tracing.SetErrorAttributes(span, err, "parse")
package tracing

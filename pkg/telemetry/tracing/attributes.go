package tracing

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span Attribute Helpers
//
// These functions provide a convenient way to set common attributes on spans.
// They use semantic conventions where applicable and ensure consistent attribute
// naming across the codebase.
//
// # Attribute Keys
//
// Standard attribute keys follow OpenTelemetry semantic conventions:
//   - http.*: HTTP-related attributes
//   - rpc.*: RPC-related attributes
//
// Custom attribute keys use the "callisto.*" namespace:
//   - callisto.source: Source name being compiled
//   - callisto.stage: Pipeline stage
//   - callisto.tokens: Lexer token count
//   - callisto.nodes: AST node count

// Common attribute keys used throughout the system
const (
	// Compile attributes
	AttrSource      = "callisto.source"
	AttrSourceBytes = "callisto.source_bytes"
	AttrStage       = "callisto.stage"

	// Request attributes
	AttrRequestID = "callisto.request_id"
	AttrCompileID = "callisto.compile_id"

	// Pipeline result attributes
	AttrTokens      = "callisto.tokens"
	AttrNodes       = "callisto.nodes"
	AttrOutputBytes = "callisto.output_bytes"

	// Cache attributes
	AttrCacheHit  = "callisto.cache.hit"
	AttrCacheName = "callisto.cache.name"

	// Error attributes
	AttrErrorType    = "callisto.error.type"
	AttrErrorMessage = "error.message"

	// Performance attributes
	AttrDuration = "callisto.duration_ms"
)

// SetSourceAttributes sets source-related attributes on a span.
//
// Example:
//
//	SetSourceAttributes(span, "examples/nested.lisp", 412)
func SetSourceAttributes(span trace.Span, source string, sizeBytes int) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrSource, source),
	}
	if sizeBytes > 0 {
		attrs = append(attrs, attribute.Int(AttrSourceBytes, sizeBytes))
	}
	span.SetAttributes(attrs...)
}

// SetRequestAttributes sets request-related attributes on a span.
//
// Example:
//
//	SetRequestAttributes(span, "req-123", "cmp-456")
func SetRequestAttributes(span trace.Span, requestID, compileID string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrRequestID, requestID),
	}

	// Only add non-empty values
	if compileID != "" {
		attrs = append(attrs, attribute.String(AttrCompileID, compileID))
	}

	span.SetAttributes(attrs...)
}

// SetStageAttribute sets the pipeline stage attribute on a span.
//
// Example:
//
//	SetStageAttribute(span, "parse")
func SetStageAttribute(span trace.Span, stage string) {
	span.SetAttributes(attribute.String(AttrStage, stage))
}

// SetPipelineAttributes sets pipeline result attributes on a span.
//
// Example:
//
//	SetPipelineAttributes(span, 37, 5, 128)
func SetPipelineAttributes(span trace.Span, tokens, nodes, outputBytes int) {
	span.SetAttributes(
		attribute.Int(AttrTokens, tokens),
		attribute.Int(AttrNodes, nodes),
		attribute.Int(AttrOutputBytes, outputBytes),
	)
}

// SetCacheAttributes sets cache-related attributes on a span.
//
// Example:
//
//	SetCacheAttributes(span, true, "compile")
func SetCacheAttributes(span trace.Span, hit bool, cacheName string) {
	span.SetAttributes(
		attribute.Bool(AttrCacheHit, hit),
		attribute.String(AttrCacheName, cacheName),
	)
}

// SetErrorAttributes sets error-related attributes on a span.
// This also records the error using span.RecordError() and sets the span status.
//
// Example:
//
//	SetErrorAttributes(span, err, "parse")
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}

	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)

	// Record error and set status
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetDurationAttribute sets the duration attribute on a span.
// Duration is recorded in milliseconds.
//
// Example:
//
//	start := time.Now()
//	// ... do work ...
//	SetDurationAttribute(span, time.Since(start).Milliseconds())
func SetDurationAttribute(span trace.Span, durationMs int64) {
	span.SetAttributes(attribute.Int64(AttrDuration, durationMs))
}

// AddEvent adds a named event to the span with optional attributes.
// Events represent interesting points in the span's lifetime.
//
// Example:
//
//	AddEvent(span, "cache_miss",
//	    attribute.String("cache_name", "compile"),
//	)
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordException records an exception event on the span.
// This is a convenience wrapper around AddEvent for errors.
//
// Example:
//
//	RecordException(span, err)
func RecordException(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
}

// AttributeBuilder provides a fluent interface for building span attributes.
type AttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewAttributeBuilder creates a new attribute builder.
func NewAttributeBuilder() *AttributeBuilder {
	return &AttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 10),
	}
}

// WithSource adds source attributes.
func (ab *AttributeBuilder) WithSource(source string, sizeBytes int) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.String(AttrSource, source))
	if sizeBytes > 0 {
		ab.attrs = append(ab.attrs, attribute.Int(AttrSourceBytes, sizeBytes))
	}
	return ab
}

// WithRequest adds request-related attributes.
func (ab *AttributeBuilder) WithRequest(requestID, compileID string) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.String(AttrRequestID, requestID))
	if compileID != "" {
		ab.attrs = append(ab.attrs, attribute.String(AttrCompileID, compileID))
	}
	return ab
}

// WithStage adds the pipeline stage attribute.
func (ab *AttributeBuilder) WithStage(stage string) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.String(AttrStage, stage))
	return ab
}

// WithPipeline adds pipeline result attributes.
func (ab *AttributeBuilder) WithPipeline(tokens, nodes, outputBytes int) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.Int(AttrTokens, tokens),
		attribute.Int(AttrNodes, nodes),
		attribute.Int(AttrOutputBytes, outputBytes),
	)
	return ab
}

// WithCache adds cache attributes.
func (ab *AttributeBuilder) WithCache(hit bool, cacheName string) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.Bool(AttrCacheHit, hit),
		attribute.String(AttrCacheName, cacheName),
	)
	return ab
}

// WithCustom adds a custom attribute.
func (ab *AttributeBuilder) WithCustom(key string, value interface{}) *AttributeBuilder {
	switch v := value.(type) {
	case string:
		ab.attrs = append(ab.attrs, attribute.String(key, v))
	case int:
		ab.attrs = append(ab.attrs, attribute.Int(key, v))
	case int64:
		ab.attrs = append(ab.attrs, attribute.Int64(key, v))
	case float64:
		ab.attrs = append(ab.attrs, attribute.Float64(key, v))
	case bool:
		ab.attrs = append(ab.attrs, attribute.Bool(key, v))
	default:
		// Fall back to string representation
		ab.attrs = append(ab.attrs, attribute.String(key, fmt.Sprintf("%v", v)))
	}
	return ab
}

// Build returns the built attributes as a trace.SpanStartOption.
func (ab *AttributeBuilder) Build() trace.SpanStartOption {
	return trace.WithAttributes(ab.attrs...)
}

// Apply applies the attributes to a span.
func (ab *AttributeBuilder) Apply(span trace.Span) {
	span.SetAttributes(ab.attrs...)
}

// Attributes returns the raw attribute slice.
func (ab *AttributeBuilder) Attributes() []attribute.KeyValue {
	return ab.attrs
}

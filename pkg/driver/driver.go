package driver

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"mercator-hq/callisto/pkg/cache"
	"mercator-hq/callisto/pkg/history"
	"mercator-hq/callisto/pkg/history/recorder"
	"mercator-hq/callisto/pkg/sexpr"
	"mercator-hq/callisto/pkg/sexpr/ast"
	"mercator-hq/callisto/pkg/sexpr/ctree"
	"mercator-hq/callisto/pkg/sexpr/token"
	"mercator-hq/callisto/pkg/telemetry/metrics"
	"mercator-hq/callisto/pkg/telemetry/tracing"
)

// Pipeline stage names as they appear in metrics, traces, and history.
const (
	StageLex       = "lex"
	StageParse     = "parse"
	StageTransform = "transform"
	StageGenerate  = "generate"
)

// cacheName labels cache metrics and span attributes.
const cacheName = "compile"

// Input describes one compilation request.
type Input struct {
	// Source is the text to compile.
	Source string

	// FileName is the source file name, empty for inline input.
	FileName string

	// Trigger identifies what initiated the compilation
	// (history.TriggerCLI, TriggerServer, TriggerWatch, TriggerGit).
	Trigger string
}

// StageTiming records how long one pipeline stage took.
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// Result is the outcome of a successful compilation.
type Result struct {
	// Output is the generated code.
	Output string `json:"output"`

	// TokenCount is how many tokens the source lexed into.
	TokenCount int `json:"token_count"`

	// CacheHit is true when the output was served from the cache
	// without running the pipeline.
	CacheHit bool `json:"cache_hit"`

	// Stages holds per-stage timings, empty on a cache hit.
	Stages []StageTiming `json:"stages,omitempty"`

	// Duration is the end-to-end wall-clock time.
	Duration time.Duration `json:"duration"`

	// RecordID is the history record ID, empty when history is
	// disabled or the record was dropped.
	RecordID string `json:"record_id,omitempty"`
}

// Driver orchestrates the compile pipeline with caching, history, and
// telemetry. It is thread-safe and can compile multiple inputs
// concurrently.
type Driver struct {
	cache    cache.Cache
	recorder *recorder.Recorder
	metrics  *metrics.Collector
	tracer   *tracing.Tracer
	logger   *slog.Logger
}

// New creates a compile driver. Every component is optional: a nil
// cache compiles every input fresh, a nil recorder keeps no history,
// and nil metrics or tracer disable those signals.
func New(
	c cache.Cache,
	rec *recorder.Recorder,
	collector *metrics.Collector,
	tracer *tracing.Tracer,
	logger *slog.Logger,
) *Driver {
	if logger == nil {
		logger = slog.Default()
	}

	return &Driver{
		cache:    c,
		recorder: rec,
		metrics:  collector,
		tracer:   tracer,
		logger:   logger.With("component", "driver"),
	}
}

// Compile runs input through the pipeline. The cache is consulted
// first; on a hit the cached output is returned without running any
// stage. On a miss the four stages run in order, each timed and traced
// individually. Every compilation, cached or not, produces a history
// record and metrics.
//
// A stage failure is returned unchanged, so callers can inspect it with
// errors.As against the stage error types (*lexer.LexError,
// *parser.ParseError, *codegen.GenerationError).
func (d *Driver) Compile(ctx context.Context, input Input) (*Result, error) {
	start := time.Now()
	source := input.Source

	ctx, span := d.startSpan(ctx, "callisto.compile")
	defer span.End()
	tracing.SetSourceAttributes(span, sourceLabel(input.FileName), len(source))

	key := recorder.HashString(source)

	if d.cache != nil {
		entry, err := d.cache.Get(ctx, key)
		if err == nil {
			return d.finishCached(ctx, span, input, key, entry, start), nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			d.logger.Warn("cache lookup failed",
				"source", sourceLabel(input.FileName),
				"error", err,
			)
		}
		if d.metrics != nil {
			d.metrics.RecordCacheMiss(cacheName)
		}
		tracing.SetCacheAttributes(span, false, cacheName)
	}

	stages := make([]StageTiming, 0, 4)

	var tokens []token.Token
	if err := d.runStage(ctx, StageLex, &stages, func() error {
		var err error
		tokens, err = sexpr.Tokenize(source)
		return err
	}); err != nil {
		return nil, d.failCompile(ctx, span, input, key, StageLex, err, start, 0)
	}

	var program *ast.Program
	if err := d.runStage(ctx, StageParse, &stages, func() error {
		var err error
		program, err = sexpr.Parse(tokens)
		return err
	}); err != nil {
		return nil, d.failCompile(ctx, span, input, key, StageParse, err, start, len(tokens))
	}

	var target *ctree.Program
	if err := d.runStage(ctx, StageTransform, &stages, func() error {
		var err error
		target, err = sexpr.Transform(program)
		return err
	}); err != nil {
		return nil, d.failCompile(ctx, span, input, key, StageTransform, err, start, len(tokens))
	}

	var output string
	if err := d.runStage(ctx, StageGenerate, &stages, func() error {
		var err error
		output, err = sexpr.Generate(target)
		return err
	}); err != nil {
		return nil, d.failCompile(ctx, span, input, key, StageGenerate, err, start, len(tokens))
	}

	duration := time.Since(start)
	tokenCount := len(tokens)

	tracing.SetPipelineAttributes(span, tokenCount, len(program.Body), len(output))
	tracing.SetStatus(span, nil)

	if d.cache != nil {
		if err := d.cache.Put(ctx, &cache.Entry{
			Key:        key,
			Output:     output,
			TokenCount: tokenCount,
		}); err != nil {
			d.logger.Warn("cache put failed",
				"source", sourceLabel(input.FileName),
				"error", err,
			)
		}
	}

	if d.metrics != nil {
		d.metrics.RecordCompile(sourceLabel(input.FileName), history.StatusSuccess, duration, len(source), tokenCount)
	}

	recordID := d.recordHistory(ctx, &history.Record{
		FileName:       input.FileName,
		Source:         source,
		SourceSHA256:   key,
		Output:         output,
		Status:         history.StatusSuccess,
		Trigger:        input.Trigger,
		DurationMicros: duration.Microseconds(),
		TokenCount:     tokenCount,
	})

	d.logger.Debug("compile finished",
		"source", sourceLabel(input.FileName),
		"duration", duration,
		"tokens", tokenCount,
	)

	return &Result{
		Output:     output,
		TokenCount: tokenCount,
		Stages:     stages,
		Duration:   duration,
		RecordID:   recordID,
	}, nil
}

// finishCached completes a compile served from the cache.
func (d *Driver) finishCached(ctx context.Context, span trace.Span, input Input, key string, entry *cache.Entry, start time.Time) *Result {
	duration := time.Since(start)

	tracing.SetCacheAttributes(span, true, cacheName)
	tracing.SetStatus(span, nil)

	if d.metrics != nil {
		d.metrics.RecordCacheHit(cacheName)
		d.metrics.RecordCompile(sourceLabel(input.FileName), "cached", duration, len(input.Source), entry.TokenCount)
	}

	recordID := d.recordHistory(ctx, &history.Record{
		FileName:       input.FileName,
		Source:         input.Source,
		SourceSHA256:   key,
		Output:         entry.Output,
		Status:         history.StatusSuccess,
		Trigger:        input.Trigger,
		DurationMicros: duration.Microseconds(),
		TokenCount:     entry.TokenCount,
	})

	d.logger.Debug("compile served from cache",
		"source", sourceLabel(input.FileName),
		"key", key[:8],
	)

	return &Result{
		Output:     entry.Output,
		TokenCount: entry.TokenCount,
		CacheHit:   true,
		Duration:   duration,
		RecordID:   recordID,
	}
}

// failCompile records telemetry and history for a stage failure, then
// returns the stage error unchanged.
func (d *Driver) failCompile(ctx context.Context, span trace.Span, input Input, key, stage string, stageErr error, start time.Time, tokenCount int) error {
	duration := time.Since(start)

	tracing.SetErrorAttributes(span, stageErr, stage)

	if d.metrics != nil {
		d.metrics.RecordCompileError(stage)
		d.metrics.RecordCompile(sourceLabel(input.FileName), history.StatusError, duration, len(input.Source), tokenCount)
	}

	d.recordHistory(ctx, &history.Record{
		FileName:       input.FileName,
		Source:         input.Source,
		SourceSHA256:   key,
		Status:         history.StatusError,
		Stage:          stage,
		ErrorMessage:   stageErr.Error(),
		Trigger:        input.Trigger,
		DurationMicros: duration.Microseconds(),
		TokenCount:     tokenCount,
	})

	d.logger.Error("compile failed",
		"source", sourceLabel(input.FileName),
		"stage", stage,
		"error", stageErr,
	)

	return stageErr
}

// runStage times one pipeline stage and emits its span and metrics.
// The stage duration is recorded whether or not the stage succeeded.
func (d *Driver) runStage(ctx context.Context, stage string, stages *[]StageTiming, fn func() error) error {
	_, span := d.startSpan(ctx, "callisto.compile."+stage)
	defer span.End()
	tracing.SetStageAttribute(span, stage)

	start := time.Now()
	err := fn()
	duration := time.Since(start)

	*stages = append(*stages, StageTiming{Stage: stage, Duration: duration})
	if d.metrics != nil {
		d.metrics.RecordStage(stage, duration)
	}

	if err != nil {
		tracing.SetErrorAttributes(span, err, stage)
		return err
	}

	return nil
}

// recordHistory enqueues rec and returns its assigned ID, or "" when
// history is disabled or the record was dropped.
func (d *Driver) recordHistory(ctx context.Context, rec *history.Record) string {
	if d.recorder == nil {
		return ""
	}

	if err := d.recorder.Record(ctx, rec); err != nil {
		d.logger.Warn("history record dropped", "error", err)
		return ""
	}

	return rec.ID
}

// startSpan opens a span through the tracer, or returns the span
// already on the context when no tracer is configured.
func (d *Driver) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if d.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return d.tracer.Start(ctx, name)
}

// sourceLabel returns the metrics label for a source, "inline" when
// the input has no file name.
func sourceLabel(fileName string) string {
	if fileName == "" {
		return "inline"
	}
	return fileName
}

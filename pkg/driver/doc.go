// Package driver orchestrates compilations end to end.
//
// The driver wraps the bare compile pipeline with the operational
// concerns a long-running deployment needs: output caching keyed by
// source hash, a persistent compilation history, Prometheus metrics,
// and per-stage trace spans. The CLI, the HTTP server, and the file
// and git watchers all compile through the same driver so every
// trigger path shares one cache and one history.
//
// # Basic Usage
//
// Wire the driver from its components and compile:
//
//	c, err := cache.New(&cfg.Cache)
//	if err != nil {
//		return err
//	}
//	rec := recorder.NewRecorder(storage, &cfg.History, collector)
//
//	drv := driver.New(c, rec, collector, tracer, logger)
//
//	result, err := drv.Compile(ctx, driver.Input{
//		Source:  "(add 2 (subtract 4 2))",
//		Trigger: history.TriggerCLI,
//	})
//	if err != nil {
//		var parseErr *parser.ParseError
//		if errors.As(err, &parseErr) {
//			fmt.Printf("bad input at %s\n", parseErr.Tok.Pos)
//		}
//		return err
//	}
//	fmt.Println(result.Output)
//
// Every component is optional. A driver built from nils still
// compiles; it just runs without caching, history, or telemetry:
//
//	drv := driver.New(nil, nil, nil, nil, nil)
//
// # Caching
//
// Outputs are cached under the SHA-256 of the source text. A hit
// returns the stored output without running any stage and is flagged
// on the result:
//
//	if result.CacheHit {
//		// served from cache, result.Stages is empty
//	}
//
// # Errors
//
// A stage failure is returned exactly as the stage produced it, so
// errors.As works against *lexer.LexError, *parser.ParseError, and
// *codegen.GenerationError from any caller. The failure is still
// recorded in history with its stage name before it is returned.
//
// # Integration
//
// The driver integrates with:
//
//   - Cache: Output lookup and storage keyed by source hash
//   - History: One record per compilation, success or failure
//   - Metrics: Compile counters, per-stage durations, cache hit rates
//   - Tracing: A root span per compile with one child span per stage
package driver

// Package history provides a persistent compilation ledger for Callisto.
// Every compilation, successful or failed, is written as an immutable history
// record that can be queried later from the CLI or the HTTP API.
//
// # Architecture
//
// The history system consists of three layers:
//
//  1. Recorder - Builds history records from compilation results
//  2. Storage Backend - Persists history records (SQLite, memory)
//  3. Query Layer - Retrieves and filters history records
//
// # History Records
//
// Each history record captures:
//   - Source metadata (file name, SHA-256 hash, byte count)
//   - Output metadata (generated code, byte count)
//   - Outcome (status, failing stage, error message)
//   - Run metadata (trigger, duration, token count)
//   - Timestamps (when the compilation finished)
//
// # Recording Flow
//
// History is recorded asynchronously so compilations never block on disk:
//
//	Compile Request → Pipeline → Result
//	     ↓
//	History Recorder (async)
//	     ↓
//	Build History Record
//	     ↓
//	Hash Source
//	     ↓
//	Storage Backend (SQLite)
//	     ↓
//	Write to Database (WAL mode)
//
// # Basic Usage
//
//	// Initialize storage backend
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
//	    Path: "data/history.db",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	// Create history recorder
//	rec := recorder.NewRecorder(store, &recorder.Config{
//	    Enabled:     true,
//	    AsyncBuffer: 1000,
//	}, nil)
//	defer rec.Close()
//
//	// Record a compilation (async, non-blocking)
//	rec.Record(ctx, &history.Record{
//	    FileName: "example.lisp",
//	    Source:   source,
//	    Output:   output,
//	    Status:   history.StatusSuccess,
//	    Trigger:  history.TriggerCLI,
//	})
//
// # Querying History
//
//	// Build query
//	query := &history.Query{
//	    From:    &from,
//	    To:      &to,
//	    Status:  history.StatusError,
//	    Trigger: history.TriggerWatch,
//	    Limit:   100,
//	}
//	if err := history.Validate(query, 0); err != nil {
//	    return err
//	}
//	history.ApplyDefaults(query, 0)
//
//	// Execute query
//	records, err := store.Query(ctx, query)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Retention Policies
//
// Records can be automatically pruned based on age:
//
//	pruner := retention.NewPruner(store, &retention.Config{
//	    RetentionDays: 90,
//	    PruneSchedule: "0 3 * * *", // Daily at 3 AM
//	}, nil)
//
//	pruner.Start(ctx)
//	defer pruner.Stop()
//
// # Performance
//
// The history system is designed to stay out of the compile path:
//   - Async recording: enqueue is non-blocking, full buffers drop records
//   - Indexed queries: <100ms for typical queries
//   - WAL mode: concurrent reads and writes without blocking
//   - Prepared statements: reduced query overhead
//
// # Thread Safety
//
// All history types are safe for concurrent use:
//   - Recorder: thread-safe async channel
//   - Storage: thread-safe with connection pooling
//   - Query: stateless, can be executed concurrently
//
// # Storage Backends
//
// The history system supports multiple storage backends via the Storage
// interface:
//   - SQLite: single-node, embedded database (default)
//   - Memory: in-memory storage for testing
//
// Custom storage backends can be implemented by satisfying the Storage
// interface.
package history

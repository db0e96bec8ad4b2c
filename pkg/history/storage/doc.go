// Package storage provides storage backends for history records.
//
// # Storage Backends
//
// The storage package provides two implementations of the history.Storage
// interface:
//
//   - SQLite: Embedded database for durable history (default)
//   - Memory: In-memory storage for testing
//
// # SQLite Backend
//
// The SQLite backend provides durable storage with:
//
//   - WAL mode for concurrent reads and writes
//   - Prepared statements on the write and lookup paths
//   - Indexes on frequently queried fields
//   - Busy timeout for handling locks
//   - Periodic WAL checkpointing
//
// # Basic Usage
//
//	// Create SQLite storage
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
//	    Path:         "data/history.db",
//	    MaxOpenConns: 10,
//	    BusyTimeout:  5 * time.Second,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	// Store a history record
//	if err := store.Store(ctx, record); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Query history records
//	query := &history.Query{
//	    From:   &from,
//	    To:     &to,
//	    Status: history.StatusError,
//	    Limit:  100,
//	}
//	records, err := store.Query(ctx, query)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// All storage backends are thread-safe and support concurrent access:
//
//   - Store() can be called concurrently from multiple goroutines
//   - Query() can be called concurrently with Store()
//   - WAL mode enables concurrent readers and writers
//
// # Schema Migration
//
// The SQLite storage automatically initializes the database schema on first
// use. The schema version is tracked in the schema_version table for future
// migrations.
package storage

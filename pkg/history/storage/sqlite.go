package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"mercator-hq/callisto/pkg/history"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5 minutes
	CheckpointInterval time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:               "data/history.db",
		MaxOpenConns:       10,
		BusyTimeout:        5 * time.Second,
		CheckpointInterval: 5 * time.Minute,
	}
}

// SQLiteStorage implements the Storage interface using SQLite.
//
// The database runs in write-ahead log (WAL) mode so queries do not block
// writes, with periodic checkpointing to bound WAL growth.
type SQLiteStorage struct {
	db        *sql.DB
	config    *SQLiteConfig
	done      chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger

	// preparedStmts contains pre-compiled SQL statements for the hot paths
	insertStmt *sql.Stmt
	getStmt    *sql.Stmt
}

// NewSQLiteStorage creates a new SQLite storage backend.
// It initializes the database schema and enables WAL mode.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	// Apply defaults
	if config.Path == "" {
		return nil, history.NewStorageError("sqlite", "open", fmt.Errorf("database path cannot be empty"))
	}
	if config.MaxOpenConns <= 0 {
		config.MaxOpenConns = 10
	}
	if config.BusyTimeout <= 0 {
		config.BusyTimeout = 5 * time.Second
	}
	if config.CheckpointInterval <= 0 {
		config.CheckpointInterval = 5 * time.Minute
	}

	logger := slog.Default().With("component", "history.storage.sqlite")

	// Open database with WAL mode and busy timeout
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		config.Path, int(config.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, history.NewStorageError("sqlite", "open", err)
	}

	// Connections to an embedded database are cheap to keep around
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxOpenConns)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		done:   make(chan struct{}),
		logger: logger,
	}

	// Initialize database
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	// Prepare statements
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	// Start background checkpoint goroutine
	go s.checkpointLoop()

	logger.Info("SQLite history storage initialized",
		"path", config.Path,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and verifies the schema version.
func (s *SQLiteStorage) initialize() error {
	// DSN parameters are driver-dependent, so set the critical pragmas
	// explicitly as well
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return history.NewStorageError("sqlite", "enable_wal", err)
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return history.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	// Create schema
	if _, err := s.db.Exec(Schema); err != nil {
		return history.NewStorageError("sqlite", "create_schema", err)
	}

	// Insert schema version
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return history.NewStorageError("sqlite", "insert_schema_version", err)
	}

	// Verify schema version
	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return history.NewStorageError("sqlite", "get_schema_version", err)
	}

	if version != SchemaVersion {
		return history.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)

	return nil
}

// prepareStatements prepares SQL statements for reuse.
func (s *SQLiteStorage) prepareStatements() error {
	var err error

	s.insertStmt, err = s.db.Prepare(`
		INSERT INTO history (
			id, created_at,
			file_name, source, source_sha256, source_bytes,
			output, output_bytes,
			status, stage, error_message,
			"trigger", duration_micros, token_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return history.NewStorageError("sqlite", "prepare_insert", err)
	}

	s.getStmt, err = s.db.Prepare(`SELECT * FROM history WHERE id = ?`)
	if err != nil {
		return history.NewStorageError("sqlite", "prepare_get", err)
	}

	return nil
}

// Store persists a history record to the database.
func (s *SQLiteStorage) Store(ctx context.Context, record *history.Record) error {
	// Convert empty strings to NULL for optional fields
	var fileName, stage, errorMessage interface{}
	if record.FileName != "" {
		fileName = record.FileName
	}
	if record.Stage != "" {
		stage = record.Stage
	}
	if record.ErrorMessage != "" {
		errorMessage = record.ErrorMessage
	}

	_, err := s.insertStmt.ExecContext(ctx,
		record.ID, record.CreatedAt.UnixNano(),
		fileName, record.Source, record.SourceSHA256, record.SourceBytes,
		record.Output, record.OutputBytes,
		record.Status, stage, errorMessage,
		record.Trigger, record.DurationMicros, record.TokenCount,
	)
	if err != nil {
		return history.NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Query retrieves history records matching the query filters.
func (s *SQLiteStorage) Query(ctx context.Context, query *history.Query) ([]*history.Record, error) {
	// Build WHERE clause and collect args
	whereClause, args := buildWhereClause(query)

	// Build complete query
	sqlQuery := "SELECT * FROM history"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	// Newest first unless asked otherwise; the order keyword is whitelisted,
	// never interpolated from the query
	order := "DESC"
	if query.SortOrder == "asc" {
		order = "ASC"
	}
	sqlQuery += " ORDER BY created_at " + order

	// Add pagination
	limit := history.DefaultLimit
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)

	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	// Execute query
	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, history.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	// Scan results
	records := []*history.Record{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, history.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, history.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// Count returns the number of history records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *history.Query) (int64, error) {
	// Build WHERE clause and collect args
	whereClause, args := buildWhereClause(query)

	// Build count query
	sqlQuery := "SELECT COUNT(*) FROM history"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	// Execute query
	var count int64
	err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count)
	if err != nil {
		return 0, history.NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// Get retrieves a single history record by ID.
func (s *SQLiteStorage) Get(ctx context.Context, id string) (*history.Record, error) {
	rows, err := s.getStmt.QueryContext(ctx, id)
	if err != nil {
		return nil, history.NewStorageError("sqlite", "get", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, history.NewStorageError("sqlite", "get", err)
		}
		return nil, history.ErrNotFound
	}

	record, err := scanRow(rows)
	if err != nil {
		return nil, history.NewStorageError("sqlite", "scan", err)
	}

	return record, nil
}

// Delete removes history records matching the query filters.
// When the query carries a limit, the oldest matching records are removed
// first so that batched retention sweeps prune in age order.
// Returns the number of records deleted.
func (s *SQLiteStorage) Delete(ctx context.Context, query *history.Query) (int64, error) {
	// Build WHERE clause and collect args
	whereClause, args := buildWhereClause(query)

	var sqlQuery string
	if query.Limit > 0 {
		// SQLite has no DELETE ... LIMIT without a build flag, so select
		// the oldest matching IDs in a subquery
		inner := "SELECT id FROM history"
		if whereClause != "" {
			inner += " WHERE " + whereClause
		}
		inner += fmt.Sprintf(" ORDER BY created_at ASC LIMIT %d", query.Limit)
		sqlQuery = "DELETE FROM history WHERE id IN (" + inner + ")"
	} else {
		sqlQuery = "DELETE FROM history"
		if whereClause != "" {
			sqlQuery += " WHERE " + whereClause
		}
	}

	// Execute query
	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, history.NewStorageError("sqlite", "delete", err)
	}

	// Get number of rows deleted
	count, err := result.RowsAffected()
	if err != nil {
		return 0, history.NewStorageError("sqlite", "delete", err)
	}

	return count, nil
}

// Close releases resources held by the storage backend.
// Close is idempotent and safe to call multiple times.
func (s *SQLiteStorage) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		// Signal checkpoint goroutine to stop
		close(s.done)

		// Close prepared statements
		if s.insertStmt != nil {
			s.insertStmt.Close()
		}
		if s.getStmt != nil {
			s.getStmt.Close()
		}

		// Close database
		if s.db != nil {
			// Run final checkpoint
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}

		s.logger.Info("SQLite history storage closed")
	})

	if closeErr != nil {
		return history.NewStorageError("sqlite", "close", closeErr)
	}
	return nil
}

// checkpointLoop runs periodic WAL checkpoints.
func (s *SQLiteStorage) checkpointLoop() {
	ticker := time.NewTicker(s.config.CheckpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-s.done:
			return
		}
	}
}

// buildWhereClause builds a SQL WHERE clause from query filters.
// Returns the WHERE clause (without "WHERE" keyword) and the query arguments.
func buildWhereClause(query *history.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	// Time range filter
	if query.From != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, query.From.UnixNano())
	}
	if query.To != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, query.To.UnixNano())
	}

	// Status filter
	if query.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, query.Status)
	}

	// Trigger filter
	if query.Trigger != "" {
		conditions = append(conditions, `"trigger" = ?`)
		args = append(args, query.Trigger)
	}

	// File name filter
	if query.FileName != "" {
		conditions = append(conditions, "file_name = ?")
		args = append(args, query.FileName)
	}

	// Join conditions with AND
	whereClause := ""
	for i, condition := range conditions {
		if i > 0 {
			whereClause += " AND "
		}
		whereClause += condition
	}

	return whereClause, args
}

// scanRow scans a database row into a Record.
func scanRow(rows *sql.Rows) (*history.Record, error) {
	var record history.Record
	var createdAtNs int64
	var fileName, stage, errorMessage sql.NullString

	err := rows.Scan(
		&record.ID, &createdAtNs,
		&fileName, &record.Source, &record.SourceSHA256, &record.SourceBytes,
		&record.Output, &record.OutputBytes,
		&record.Status, &stage, &errorMessage,
		&record.Trigger, &record.DurationMicros, &record.TokenCount,
	)
	if err != nil {
		return nil, err
	}

	record.CreatedAt = time.Unix(0, createdAtNs)

	// Convert NULL strings back to empty strings
	if fileName.Valid {
		record.FileName = fileName.String
	}
	if stage.Valid {
		record.Stage = stage.String
	}
	if errorMessage.Valid {
		record.ErrorMessage = errorMessage.String
	}

	return &record, nil
}

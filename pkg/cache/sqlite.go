package cache

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// cacheSchema is the SQLite schema for the compile cache.
// Timestamps are stored as Unix nanoseconds.
const cacheSchema = `
CREATE TABLE IF NOT EXISTS cache (
    key TEXT PRIMARY KEY,
    output TEXT NOT NULL,
    token_count INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    last_used_at INTEGER NOT NULL,
    hits INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_cache_last_used_at ON cache(last_used_at);
`

// SQLiteConfig contains configuration for the SQLite cache backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite cache configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:        "data/cache.db",
		BusyTimeout: 5 * time.Second,
	}
}

// SQLiteCache is a persistent cache backed by SQLite. Entries survive
// restarts, so warm outputs are available immediately after a service
// comes back up.
type SQLiteCache struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteCache creates a SQLite-backed cache and initializes its schema.
func NewSQLiteCache(config *SQLiteConfig) (*SQLiteCache, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Path == "" {
		return nil, fmt.Errorf("cache database path is empty")
	}
	if config.BusyTimeout <= 0 {
		config.BusyTimeout = 5 * time.Second
	}

	logger := slog.Default().With("component", "cache.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	c := &SQLiteCache{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := c.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite cache initialized", "path", config.Path)

	return c, nil
}

// initialize enables WAL mode, sets the busy timeout, and creates the schema.
func (c *SQLiteCache) initialize() error {
	if _, err := c.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	busyTimeoutMs := c.config.BusyTimeout.Milliseconds()
	if _, err := c.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := c.db.Exec(cacheSchema); err != nil {
		return fmt.Errorf("failed to create cache schema: %w", err)
	}

	c.logger.Debug("cache schema created")
	return nil
}

// Get returns the cached entry for key and bumps its usage stats.
func (c *SQLiteCache) Get(ctx context.Context, key string) (*Entry, error) {
	row := c.db.QueryRowContext(ctx,
		"SELECT key, output, token_count, created_at, last_used_at, hits FROM cache WHERE key = ?",
		key,
	)

	var entry Entry
	var createdAtNs, lastUsedAtNs int64
	err := row.Scan(&entry.Key, &entry.Output, &entry.TokenCount, &createdAtNs, &lastUsedAtNs, &entry.Hits)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	now := time.Now()
	_, err = c.db.ExecContext(ctx,
		"UPDATE cache SET last_used_at = ?, hits = hits + 1 WHERE key = ?",
		now.UnixNano(), key,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update cache entry: %w", err)
	}

	entry.CreatedAt = time.Unix(0, createdAtNs)
	entry.LastUsedAt = now
	entry.Hits++

	return &entry, nil
}

// Put stores an entry, replacing any existing entry with the same key.
// A replacement keeps the original creation time.
func (c *SQLiteCache) Put(ctx context.Context, entry *Entry) error {
	if entry.Key == "" {
		return fmt.Errorf("cache key is empty")
	}

	now := time.Now()
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	lastUsedAt := entry.LastUsedAt
	if lastUsedAt.IsZero() {
		lastUsedAt = now
	}

	query := `
		INSERT INTO cache (key, output, token_count, created_at, last_used_at, hits)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			output = excluded.output,
			token_count = excluded.token_count,
			last_used_at = excluded.last_used_at
	`

	_, err := c.db.ExecContext(ctx, query,
		entry.Key, entry.Output, entry.TokenCount,
		createdAt.UnixNano(), lastUsedAt.UnixNano(), entry.Hits,
	)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	return nil
}

// Delete removes the entry for key.
func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM cache WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Purge removes all entries.
func (c *SQLiteCache) Purge(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM cache")
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	return nil
}

// Len returns the current number of entries.
func (c *SQLiteCache) Len(ctx context.Context) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cache").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return count, nil
}

// Close closes the database connection.
func (c *SQLiteCache) Close() error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("failed to close cache database: %w", err)
	}
	c.logger.Info("SQLite cache closed")
	return nil
}

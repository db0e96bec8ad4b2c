package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the history database schema.
// The trigger column is quoted because TRIGGER is a SQLite keyword.
const Schema = `
-- History records table
CREATE TABLE IF NOT EXISTS history (
    id TEXT PRIMARY KEY,

    -- Stored as Unix nanoseconds
    created_at INTEGER NOT NULL,

    -- Source
    file_name TEXT,
    source TEXT,
    source_sha256 TEXT NOT NULL,
    source_bytes INTEGER NOT NULL,

    -- Output
    output TEXT,
    output_bytes INTEGER NOT NULL,

    -- Outcome
    status TEXT NOT NULL,
    stage TEXT,
    error_message TEXT,

    -- Run metadata
    "trigger" TEXT NOT NULL,
    duration_micros INTEGER NOT NULL,
    token_count INTEGER NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_history_created_at ON history(created_at);
CREATE INDEX IF NOT EXISTS idx_history_status ON history(status);
CREATE INDEX IF NOT EXISTS idx_history_trigger ON history("trigger");
CREATE INDEX IF NOT EXISTS idx_history_file_name ON history(file_name);
CREATE INDEX IF NOT EXISTS idx_history_source_sha256 ON history(source_sha256);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

package history

import (
	"context"
	"time"
)

// Record statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Record triggers identify what initiated a compilation.
const (
	TriggerCLI    = "cli"
	TriggerServer = "server"
	TriggerWatch  = "watch"
	TriggerGit    = "git"
)

// Record represents the complete audit trail for a single compilation. It
// captures the source that went in, the output that came out, the outcome,
// and enough metadata to reconstruct the run later.
type Record struct {
	// Identity
	ID        string    `json:"id"`         // UUID v4
	CreatedAt time.Time `json:"created_at"` // When the compilation finished

	// Source
	FileName     string `json:"file_name,omitempty"` // Source file name, empty for inline input
	Source       string `json:"source"`              // Source text (may be truncated)
	SourceSHA256 string `json:"source_sha256"`       // SHA-256 of the full source, hex-encoded
	SourceBytes  int    `json:"source_bytes"`        // Full source length in bytes

	// Output
	Output      string `json:"output"`       // Generated code, empty on failure
	OutputBytes int    `json:"output_bytes"` // Full output length in bytes

	// Outcome
	Status       string `json:"status"`                  // "success" or "error"
	Stage        string `json:"stage,omitempty"`         // Pipeline stage that failed, empty on success
	ErrorMessage string `json:"error_message,omitempty"` // Error text if the compilation failed

	// Run metadata
	Trigger        string `json:"trigger"`         // "cli", "server", "watch", "git"
	DurationMicros int64  `json:"duration_micros"` // Wall-clock compile time in microseconds
	TokenCount     int    `json:"token_count"`     // Tokens produced by the lexer
}

// Query defines filter parameters for querying history records.
type Query struct {
	// Time range
	From *time.Time `json:"from,omitempty"` // Inclusive start time
	To   *time.Time `json:"to,omitempty"`   // Inclusive end time

	// Filters
	Status   string `json:"status,omitempty"`    // "success" or "error"
	Trigger  string `json:"trigger,omitempty"`   // "cli", "server", "watch", "git"
	FileName string `json:"file_name,omitempty"` // Exact file name match

	// Pagination
	Limit  int `json:"limit,omitempty"`  // Max records to return
	Offset int `json:"offset,omitempty"` // Skip N records

	// Sorting
	SortOrder string `json:"sort_order,omitempty"` // "asc" or "desc" by creation time
}

// Storage defines the interface for history storage backends.
// Implementations must be thread-safe and support concurrent access.
type Storage interface {
	// Store persists a history record.
	// Returns an error if the record cannot be written.
	Store(ctx context.Context, record *Record) error

	// Query retrieves history records matching the query filters.
	// Returns an empty slice if no records match.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of history records matching the query filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Get retrieves a single history record by ID.
	// Returns ErrNotFound if no record has the given ID.
	Get(ctx context.Context, id string) (*Record, error)

	// Delete removes history records matching the query filters, oldest
	// first when the query carries a limit. Returns the number of records
	// deleted. Used for retention policy enforcement.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases any resources held by the storage backend.
	Close() error
}

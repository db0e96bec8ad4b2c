package history

import "fmt"

const (
	// DefaultLimit is the number of records returned when a query does not
	// set one.
	DefaultLimit = 100

	// MaxLimit is the largest number of records a single query may return.
	MaxLimit = 10000
)

// ValidSortOrders contains the valid sort orders.
var ValidSortOrders = map[string]bool{
	"asc":  true,
	"desc": true,
}

// validStatuses contains the record statuses a query may filter on.
var validStatuses = map[string]bool{
	StatusSuccess: true,
	StatusError:   true,
}

// validTriggers contains the triggers a query may filter on.
var validTriggers = map[string]bool{
	TriggerCLI:    true,
	TriggerServer: true,
	TriggerWatch:  true,
	TriggerGit:    true,
}

// Validate returns an error if any query parameter is invalid.
// maxLimit bounds Query.Limit; pass 0 to use MaxLimit.
func Validate(q *Query, maxLimit int) error {
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}

	// Validate limit
	if q.Limit < 0 {
		return NewQueryError(q, fmt.Errorf("limit must be >= 0, got %d", q.Limit))
	}
	if q.Limit > maxLimit {
		return NewQueryError(q, fmt.Errorf("limit must be <= %d, got %d", maxLimit, q.Limit))
	}

	// Validate offset
	if q.Offset < 0 {
		return NewQueryError(q, fmt.Errorf("offset must be >= 0, got %d", q.Offset))
	}

	// Validate sort order
	if q.SortOrder != "" && !ValidSortOrders[q.SortOrder] {
		return NewQueryError(q, fmt.Errorf("invalid sort order: %s (must be 'asc' or 'desc')", q.SortOrder))
	}

	// Validate time range
	if q.From != nil && q.To != nil {
		if q.From.After(*q.To) {
			return NewQueryError(q, fmt.Errorf("from must be before to"))
		}
	}

	// Validate status
	if q.Status != "" && !validStatuses[q.Status] {
		return NewQueryError(q, fmt.Errorf("invalid status: %s (must be 'success' or 'error')", q.Status))
	}

	// Validate trigger
	if q.Trigger != "" && !validTriggers[q.Trigger] {
		return NewQueryError(q, fmt.Errorf("invalid trigger: %s (must be 'cli', 'server', 'watch', or 'git')", q.Trigger))
	}

	return nil
}

// ApplyDefaults applies default values to a query.
// defaultLimit is used when Query.Limit is zero; pass 0 to use DefaultLimit.
func ApplyDefaults(q *Query, defaultLimit int) {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}

	// Apply default limit
	if q.Limit == 0 {
		q.Limit = defaultLimit
	}

	// Apply default sort order (newest first)
	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}
}

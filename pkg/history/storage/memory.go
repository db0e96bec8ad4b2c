package storage

import (
	"context"
	"sort"
	"sync"

	"mercator-hq/callisto/pkg/history"
)

// MemoryStorage implements the Storage interface using an in-memory slice.
// This implementation is intended for testing and for deployments that do not
// need history to survive a restart.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*history.Record
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make([]*history.Record, 0),
	}
}

// Store persists a history record to memory.
func (s *MemoryStorage) Store(ctx context.Context, record *history.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Create a copy to avoid mutation
	recordCopy := *record
	s.records = append(s.records, &recordCopy)

	return nil
}

// Query retrieves history records matching the query filters.
func (s *MemoryStorage) Query(ctx context.Context, query *history.Query) ([]*history.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*history.Record, 0)

	// Filter records
	for _, record := range s.records {
		if matchesQuery(record, query) {
			// Create a copy to avoid mutation
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}

	// Sort by creation time, newest first unless asked otherwise
	sortByCreatedAt(results, query.SortOrder)

	// Apply pagination
	start := query.Offset
	if start > len(results) {
		return []*history.Record{}, nil
	}

	end := len(results)
	if query.Limit > 0 && start+query.Limit < end {
		end = start + query.Limit
	}

	return results[start:end], nil
}

// Count returns the number of history records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *history.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64

	for _, record := range s.records {
		if matchesQuery(record, query) {
			count++
		}
	}

	return count, nil
}

// Get retrieves a single history record by ID.
func (s *MemoryStorage) Get(ctx context.Context, id string) (*history.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.records {
		if record.ID == id {
			// Return a copy
			recordCopy := *record
			return &recordCopy, nil
		}
	}

	return nil, history.ErrNotFound
}

// Delete removes history records matching the query filters.
// When the query carries a limit, the oldest matching records are removed
// first so that batched retention sweeps prune in age order.
func (s *MemoryStorage) Delete(ctx context.Context, query *history.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Find records to delete, oldest first
	matching := make([]*history.Record, 0)
	for _, record := range s.records {
		if matchesQuery(record, query) {
			matching = append(matching, record)
		}
	}
	sortByCreatedAt(matching, "asc")

	if query.Limit > 0 && len(matching) > query.Limit {
		matching = matching[:query.Limit]
	}

	doomed := make(map[string]struct{}, len(matching))
	for _, record := range matching {
		doomed[record.ID] = struct{}{}
	}

	// Delete records
	var deleted int64
	kept := make([]*history.Record, 0, len(s.records)-len(matching))
	for _, record := range s.records {
		if _, ok := doomed[record.ID]; ok {
			deleted++
			continue
		}
		kept = append(kept, record)
	}
	s.records = kept

	return deleted, nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make([]*history.Record, 0)
	return nil
}

// matchesQuery checks if a record matches the query filters.
func matchesQuery(record *history.Record, query *history.Query) bool {
	// Time range filter
	if query.From != nil && record.CreatedAt.Before(*query.From) {
		return false
	}
	if query.To != nil && record.CreatedAt.After(*query.To) {
		return false
	}

	// Status filter
	if query.Status != "" && record.Status != query.Status {
		return false
	}

	// Trigger filter
	if query.Trigger != "" && record.Trigger != query.Trigger {
		return false
	}

	// File name filter
	if query.FileName != "" && record.FileName != query.FileName {
		return false
	}

	return true
}

// sortByCreatedAt sorts records by creation time. An empty order sorts
// newest first.
func sortByCreatedAt(records []*history.Record, order string) {
	if order == "asc" {
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		})
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}

// Clear removes all records from storage (for testing).
func (s *MemoryStorage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make([]*history.Record, 0)
}

// Size returns the number of records in storage (for testing).
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

package history

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	now := time.Now()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name    string
		query   *Query
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid query with all filters",
			query: &Query{
				From:      &past,
				To:        &now,
				Status:    StatusSuccess,
				Trigger:   TriggerWatch,
				FileName:  "example.lisp",
				Limit:     100,
				Offset:    0,
				SortOrder: "desc",
			},
			wantErr: false,
		},
		{
			name: "valid query with minimal filters",
			query: &Query{
				Limit: 50,
			},
			wantErr: false,
		},
		{
			name: "negative limit",
			query: &Query{
				Limit: -1,
			},
			wantErr: true,
			errMsg:  "limit must be >= 0",
		},
		{
			name: "limit exceeds max",
			query: &Query{
				Limit: MaxLimit + 1,
			},
			wantErr: true,
			errMsg:  "limit must be <=",
		},
		{
			name: "negative offset",
			query: &Query{
				Offset: -1,
			},
			wantErr: true,
			errMsg:  "offset must be >= 0",
		},
		{
			name: "invalid sort order",
			query: &Query{
				SortOrder: "invalid",
			},
			wantErr: true,
			errMsg:  "invalid sort order",
		},
		{
			name: "from after to",
			query: &Query{
				From: &future,
				To:   &past,
			},
			wantErr: true,
			errMsg:  "from must be before to",
		},
		{
			name: "invalid status",
			query: &Query{
				Status: "blocked",
			},
			wantErr: true,
			errMsg:  "invalid status",
		},
		{
			name: "invalid trigger",
			query: &Query{
				Trigger: "cron",
			},
			wantErr: true,
			errMsg:  "invalid trigger",
		},
		{
			name: "valid status - success",
			query: &Query{
				Status: StatusSuccess,
			},
			wantErr: false,
		},
		{
			name: "valid status - error",
			query: &Query{
				Status: StatusError,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.query, 0)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.errMsg)
					return
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Validate() error = %v, want error containing %q", err, tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			}
		})
	}
}

func TestValidate_CustomMaxLimit(t *testing.T) {
	query := &Query{Limit: 500}

	// Within the package max but above the caller's max
	if err := Validate(query, 200); err == nil {
		t.Error("Validate() with max 200 should reject limit 500")
	}

	if err := Validate(query, 1000); err != nil {
		t.Errorf("Validate() with max 1000 rejected limit 500: %v", err)
	}
}

func TestValidate_ReturnsQueryError(t *testing.T) {
	query := &Query{Limit: -1}

	err := Validate(query, 0)
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}

	var queryErr *QueryError
	if !errors.As(err, &queryErr) {
		t.Errorf("Validate() error type = %T, want *QueryError", err)
	}
	if queryErr.Query != query {
		t.Error("QueryError should carry the failing query")
	}
}

func TestValidate_ValidTriggers(t *testing.T) {
	validTriggers := []string{TriggerCLI, TriggerServer, TriggerWatch, TriggerGit}

	for _, trigger := range validTriggers {
		t.Run("trigger_"+trigger, func(t *testing.T) {
			query := &Query{
				Trigger: trigger,
			}
			if err := Validate(query, 0); err != nil {
				t.Errorf("Validate() with trigger %q failed: %v", trigger, err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	tests := []struct {
		name          string
		query         *Query
		defaultLimit  int
		expectedLimit int
		expectedOrder string
	}{
		{
			name:          "empty query gets all defaults",
			query:         &Query{},
			expectedLimit: DefaultLimit,
			expectedOrder: "desc",
		},
		{
			name: "query with limit keeps it",
			query: &Query{
				Limit: 50,
			},
			expectedLimit: 50,
			expectedOrder: "desc",
		},
		{
			name: "query with sort order keeps it",
			query: &Query{
				SortOrder: "asc",
			},
			expectedLimit: DefaultLimit,
			expectedOrder: "asc",
		},
		{
			name:          "custom default limit",
			query:         &Query{},
			defaultLimit:  25,
			expectedLimit: 25,
			expectedOrder: "desc",
		},
		{
			name: "query with all set keeps all",
			query: &Query{
				Limit:     25,
				SortOrder: "asc",
			},
			defaultLimit:  200,
			expectedLimit: 25,
			expectedOrder: "asc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ApplyDefaults(tt.query, tt.defaultLimit)

			if tt.query.Limit != tt.expectedLimit {
				t.Errorf("Limit = %d, want %d", tt.query.Limit, tt.expectedLimit)
			}
			if tt.query.SortOrder != tt.expectedOrder {
				t.Errorf("SortOrder = %s, want %s", tt.query.SortOrder, tt.expectedOrder)
			}
		})
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	// Applying defaults multiple times should have same effect
	query := &Query{}

	ApplyDefaults(query, 0)
	firstLimit := query.Limit
	firstOrder := query.SortOrder

	ApplyDefaults(query, 0)
	ApplyDefaults(query, 0)

	if query.Limit != firstLimit {
		t.Errorf("Limit changed after multiple ApplyDefaults: %d -> %d", firstLimit, query.Limit)
	}
	if query.SortOrder != firstOrder {
		t.Errorf("SortOrder changed after multiple ApplyDefaults: %s -> %s", firstOrder, query.SortOrder)
	}
}

func TestConstants(t *testing.T) {
	// Verify constants have expected values
	if DefaultLimit != 100 {
		t.Errorf("DefaultLimit = %d, want 100", DefaultLimit)
	}
	if MaxLimit != 10000 {
		t.Errorf("MaxLimit = %d, want 10000", MaxLimit)
	}
}

// BenchmarkValidate benchmarks query validation
func BenchmarkValidate(b *testing.B) {
	now := time.Now()
	past := now.Add(-24 * time.Hour)

	query := &Query{
		From:      &past,
		To:        &now,
		Status:    StatusSuccess,
		Trigger:   TriggerServer,
		FileName:  "example.lisp",
		Limit:     100,
		Offset:    0,
		SortOrder: "desc",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Validate(query, 0)
	}
}

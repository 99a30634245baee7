// ABOUTME: Tests for tool call log store operations
// ABOUTME: Covers Record and List with filtering for the tool_calls table

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "calls.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func TestCallStore_Record(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	call := &ToolCall{RPCID: "7", Tool: "validate", IsError: true, Duration: 3 * time.Millisecond}
	require.NoError(t, store.RecordToolCall(ctx, call))

	// Should have generated ID and timestamp
	assert.NotEmpty(t, call.ID)
	assert.False(t, call.Timestamp.IsZero())

	calls, err := store.ListToolCalls(ctx, CallFilter{})
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, call.ID, calls[0].ID)
	assert.Equal(t, "7", calls[0].RPCID)
	assert.Equal(t, "validate", calls[0].Tool)
	assert.True(t, calls[0].IsError)
	assert.Equal(t, 3*time.Millisecond, calls[0].Duration)
}

func TestCallStore_List_Empty(t *testing.T) {
	store := setupTestStore(t)

	calls, err := store.ListToolCalls(context.Background(), CallFilter{})
	require.NoError(t, err)
	assert.NotNil(t, calls)
	assert.Empty(t, calls)
}

func TestCallStore_List_NewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, tool := range []string{"validate", "getNews", "get_latest_news"} {
		require.NoError(t, store.RecordToolCall(ctx, &ToolCall{
			Tool:      tool,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	calls, err := store.ListToolCalls(ctx, CallFilter{})
	require.NoError(t, err)
	require.Len(t, calls, 3)
	assert.Equal(t, "get_latest_news", calls[0].Tool)
	assert.Equal(t, "validate", calls[2].Tool)
}

func TestCallStore_List_Filters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	entries := []*ToolCall{
		{Tool: "validate", IsError: true, Timestamp: base},
		{Tool: "validate", Timestamp: base.Add(20 * time.Minute)},
		{Tool: "getNews", Timestamp: base.Add(40 * time.Minute)},
		{Tool: "nope", IsError: true, ErrorCode: -32602, Timestamp: base.Add(50 * time.Minute)},
	}
	for _, e := range entries {
		require.NoError(t, store.RecordToolCall(ctx, e))
	}

	validate := "validate"
	since := base.Add(30 * time.Minute)

	tests := []struct {
		name   string
		filter CallFilter
		want   int
	}{
		{"by tool", CallFilter{Tool: &validate}, 2},
		{"errors only", CallFilter{ErrorsOnly: true}, 2},
		{"since", CallFilter{Since: &since}, 2},
		{"tool and errors", CallFilter{Tool: &validate, ErrorsOnly: true}, 1},
		{"limit", CallFilter{Limit: 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls, err := store.ListToolCalls(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, calls, tt.want)
		})
	}
}

func TestNormalizeCallLimit(t *testing.T) {
	assert.Equal(t, 100, normalizeCallLimit(0))
	assert.Equal(t, 100, normalizeCallLimit(-5))
	assert.Equal(t, 25, normalizeCallLimit(25))
	assert.Equal(t, 1000, normalizeCallLimit(5000))
}

func TestCallStore_InMemory(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.RecordToolCall(ctx, &ToolCall{Tool: "getNews"}))
	}

	calls, err := store.ListToolCalls(ctx, CallFilter{})
	require.NoError(t, err)
	assert.Len(t, calls, 3)
}

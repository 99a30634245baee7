// ABOUTME: Tool call log entity and store methods
// ABOUTME: Records each tools/call outcome for the calls CLI and debugging

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ToolCall is one recorded tools/call.
type ToolCall struct {
	ID        string        // UUID v4
	RPCID     string        // JSON-RPC id as sent, empty for notifications
	Tool      string        // requested tool name
	IsError   bool          // result carried isError, or the call failed
	ErrorCode int           // JSON-RPC error code, 0 when a result was returned
	Duration  time.Duration // time spent in the handler
	Timestamp time.Time     // when the call started
}

// CallFilter specifies filtering options for listing tool calls.
type CallFilter struct {
	Since      *time.Time // calls at or after this time
	Tool       *string    // filter by tool name
	ErrorsOnly bool       // only failed calls
	Limit      int        // max results (default 100, max 1000)
}

// CallStore persists and lists tool calls.
type CallStore interface {
	RecordToolCall(ctx context.Context, c *ToolCall) error
	ListToolCalls(ctx context.Context, f CallFilter) ([]ToolCall, error)
	Close() error
}

var _ CallStore = (*SQLiteStore)(nil)

// RecordToolCall appends a call to the log.
// Generates ID and Timestamp if not set.
func (s *SQLiteStore) RecordToolCall(ctx context.Context, c *ToolCall) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO tool_calls (call_id, rpc_id, tool, is_error, error_code, duration_ms, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		c.ID,
		c.RPCID,
		c.Tool,
		c.IsError,
		c.ErrorCode,
		c.Duration.Milliseconds(),
		c.Timestamp.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting tool call: %w", err)
	}

	s.logger.Debug("recorded tool call",
		"id", c.ID,
		"tool", c.Tool,
		"is_error", c.IsError,
	)
	return nil
}

// normalizeCallLimit applies default (100) and cap (1000) to the list limit.
func normalizeCallLimit(limit int) int {
	switch {
	case limit <= 0:
		return 100
	case limit > 1000:
		return 1000
	default:
		return limit
	}
}

// scanToolCall scans a row into a ToolCall.
func scanToolCall(scanner interface{ Scan(dest ...any) error }) (ToolCall, error) {
	var c ToolCall
	var durationMS int64
	var tsStr string

	if err := scanner.Scan(
		&c.ID,
		&c.RPCID,
		&c.Tool,
		&c.IsError,
		&c.ErrorCode,
		&durationMS,
		&tsStr,
	); err != nil {
		return c, fmt.Errorf("scanning tool call: %w", err)
	}

	c.Duration = time.Duration(durationMS) * time.Millisecond
	var err error
	c.Timestamp, err = time.Parse(time.RFC3339, tsStr)
	if err != nil {
		return c, fmt.Errorf("parsing timestamp: %w", err)
	}
	return c, nil
}

const toolCallsQuery = `
	SELECT call_id, rpc_id, tool, is_error, error_code, duration_ms, ts
	FROM tool_calls
	WHERE (? IS NULL OR ts >= ?)
	  AND (? IS NULL OR tool = ?)
	  AND (? = 0 OR is_error = 1)
	ORDER BY ts DESC, rowid DESC
	LIMIT ?
`

// ListToolCalls returns calls matching the filter, newest first.
func (s *SQLiteStore) ListToolCalls(ctx context.Context, f CallFilter) ([]ToolCall, error) {
	limit := normalizeCallLimit(f.Limit)

	var sinceStr *string
	if f.Since != nil {
		str := f.Since.UTC().Format(time.RFC3339)
		sinceStr = &str
	}

	rows, err := s.db.QueryContext(ctx, toolCallsQuery,
		sinceStr, sinceStr,
		f.Tool, f.Tool,
		f.ErrorsOnly,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying tool calls: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var calls []ToolCall
	for rows.Next() {
		c, err := scanToolCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tool calls: %w", err)
	}

	if calls == nil {
		calls = []ToolCall{}
	}
	return calls, nil
}

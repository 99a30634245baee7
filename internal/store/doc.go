// Package store provides the SQLite call log for news-mcp.
//
// # Overview
//
// When database.path is configured, every tools/call outcome is appended
// to a tool_calls table: the tool name, the JSON-RPC id, whether the call
// failed, the handler duration and a timestamp. Nothing else is persisted;
// the protocol itself is stateless.
//
// # Usage
//
//	s, err := store.NewSQLiteStore("/var/lib/news-mcp/calls.db")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	calls, err := s.ListToolCalls(ctx, store.CallFilter{Limit: 20})
//
// The database uses WAL mode and is driven by modernc.org/sqlite, so no
// cgo toolchain is needed.
package store

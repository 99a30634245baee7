// ABOUTME: JSON-RPC 2.0 envelope types, error codes and MCP result shapes
// ABOUTME: Shared by the dispatcher and every transport binding

package mcp

import (
	"encoding/json"
)

// ProtocolVersion is the MCP protocol version advertised by initialize.
const ProtocolVersion = "2024-11-05"

// MaxRequestBodySize is the maximum allowed size for request bodies (1MB).
const MaxRequestBodySize = 1 << 20

// Standard JSON-RPC error codes
const (
	JSONRPCParseError     = -32700
	JSONRPCInvalidRequest = -32600
	JSONRPCMethodNotFound = -32601
	JSONRPCInvalidParams  = -32602
	JSONRPCInternalError  = -32603
)

// Methods routed by the dispatcher.
const (
	MethodInitialize = "initialize"
	MethodToolsList  = "tools/list"
	MethodToolsCall  = "tools/call"
)

// JSON-RPC 2.0 types

// Request represents a JSON-RPC 2.0 request. An absent ID marks a
// notification, which is still answered. JSONRPC is nil when the caller
// leaves the version out; only a declared version is checked.
type Request struct {
	JSONRPC *string         `json:"jsonrpc,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response represents a JSON-RPC 2.0 response. Exactly one of Result and
// Error is set. A nil ID encodes as null.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error represents a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// ParseError reports a body that is not valid JSON.
func ParseError() *Error {
	return &Error{Code: JSONRPCParseError, Message: "Parse error"}
}

// InvalidRequest reports an envelope that is JSON but not a valid request.
func InvalidRequest() *Error {
	return &Error{Code: JSONRPCInvalidRequest, Message: "Invalid Request"}
}

// MethodNotFound reports an unrouted method.
func MethodNotFound(method string) *Error {
	return &Error{
		Code:    JSONRPCMethodNotFound,
		Message: "Method not found",
		Data:    map[string]string{"method": method},
	}
}

// UnknownTool reports a tools/call naming no registered tool.
func UnknownTool(name string) *Error {
	return &Error{
		Code:    JSONRPCInvalidParams,
		Message: "Unknown tool",
		Data:    map[string]string{"tool": name},
	}
}

// InvalidParams reports params that are not an object of the expected shape.
func InvalidParams(details string) *Error {
	return &Error{
		Code:    JSONRPCInvalidParams,
		Message: "Invalid params",
		Data:    map[string]string{"details": details},
	}
}

// InternalError reports an unexpected fault. details must be safe to show callers.
func InternalError(details string) *Error {
	return &Error{
		Code:    JSONRPCInternalError,
		Message: "Internal error",
		Data:    map[string]string{"details": details},
	}
}

// Notification is a server-initiated JSON-RPC message without an id.
type Notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// MCP-specific types

// ServerInfo identifies this server in initialize and discovery responses.
type ServerInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// DefaultServerInfo is the identity advertised by news-mcp.
var DefaultServerInfo = ServerInfo{
	Name:        "News MCP Server",
	Version:     "1.0.0",
	Description: "MCP server for fetching news headlines and user validation",
}

// Capabilities advertised by initialize.
type Capabilities struct {
	Tools   struct{} `json:"tools"`
	Logging struct{} `json:"logging"`
}

// InitializeResult is the result for initialize.
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

// CallToolParams are the params for tools/call.
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

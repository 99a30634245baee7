// ABOUTME: Transport-independent JSON-RPC dispatcher for the MCP methods
// ABOUTME: Every input yields exactly one well-formed response; faults never escape

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/2389/news-mcp/internal/store"
	"github.com/2389/news-mcp/internal/tools"
)

// errToolPanicked marks a recovered panic inside a tool handler.
var errToolPanicked = errors.New("tool handler panicked")

// CallRecorder persists tool call outcomes. Failures are logged, never
// surfaced to the caller.
type CallRecorder interface {
	RecordToolCall(ctx context.Context, c *store.ToolCall) error
}

// Observer receives request and tool call measurements.
type Observer interface {
	ObserveRequest(method string, code int, elapsed time.Duration)
	ObserveToolCall(tool string, isError bool, elapsed time.Duration)
}

// ListToolsResult is the result for tools/list.
type ListToolsResult struct {
	Tools []tools.Descriptor `json:"tools"`
}

// DispatcherConfig holds configuration for a Dispatcher.
type DispatcherConfig struct {
	Registry   *tools.Registry
	ServerInfo ServerInfo // defaults to DefaultServerInfo
	Logger     *slog.Logger
	Recorder   CallRecorder // optional
	Observer   Observer     // optional
}

// Dispatcher routes JSON-RPC requests to the MCP method handlers.
// It holds no per-request state and is safe for concurrent use.
type Dispatcher struct {
	registry *tools.Registry
	info     ServerInfo
	logger   *slog.Logger
	recorder CallRecorder
	observer Observer
}

// NewDispatcher creates a dispatcher from cfg.
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	info := cfg.ServerInfo
	if info.Name == "" {
		info = DefaultServerInfo
	}

	return &Dispatcher{
		registry: cfg.Registry,
		info:     info,
		logger:   logger.With("component", "mcp"),
		recorder: cfg.Recorder,
		observer: cfg.Observer,
	}, nil
}

// ServerInfo returns the identity advertised by initialize.
func (d *Dispatcher) ServerInfo() ServerInfo {
	return d.info
}

// Handle parses body as a JSON-RPC request and returns its response.
// It never returns nil and never panics.
func (d *Dispatcher) Handle(ctx context.Context, body []byte) (resp *Response) {
	start := time.Now()
	var req Request

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("dispatcher panicked", "method", req.Method, "panic", fmt.Sprint(r))
			resp = errorResponse(req.ID, InternalError("unexpected failure while handling request"))
		}
		if d.observer != nil {
			code := 0
			if resp.Error != nil {
				code = resp.Error.Code
			}
			d.observer.ObserveRequest(req.Method, code, time.Since(start))
		}
	}()

	if err := json.Unmarshal(body, &req); err != nil {
		if !json.Valid(body) {
			return errorResponse(nil, ParseError())
		}
		// Valid JSON that is not a request object (array, scalar, mistyped field)
		return errorResponse(nil, InvalidRequest())
	}

	if req.JSONRPC != nil && *req.JSONRPC != "2.0" {
		return errorResponse(req.ID, InvalidRequest())
	}

	d.logger.Debug("MCP request", "method", req.Method, "is_notification", isNotification(req.ID))

	switch req.Method {
	case MethodInitialize:
		return resultResponse(req.ID, InitializeResult{
			ProtocolVersion: ProtocolVersion,
			ServerInfo:      d.info,
		})
	case MethodToolsList:
		return resultResponse(req.ID, ListToolsResult{Tools: d.registry.List()})
	case MethodToolsCall:
		return d.handleToolsCall(ctx, req)
	default:
		return errorResponse(req.ID, MethodNotFound(req.Method))
	}
}

// handleToolsCall handles tools/call requests.
func (d *Dispatcher) handleToolsCall(ctx context.Context, req Request) *Response {
	var params CallToolParams
	if len(req.Params) > 0 && !bytes.Equal(bytes.TrimSpace(req.Params), []byte("null")) {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, InvalidParams("params must be an object with a string name"))
		}
	}

	call := &store.ToolCall{
		ID:        uuid.New().String(),
		RPCID:     rpcIDString(req.ID),
		Tool:      params.Name,
		Timestamp: time.Now().UTC(),
	}

	tool, err := d.registry.Get(params.Name)
	if err != nil {
		call.IsError = true
		call.ErrorCode = JSONRPCInvalidParams
		d.record(ctx, call)
		return errorResponse(req.ID, UnknownTool(params.Name))
	}

	d.logger.Debug("tools/call", "tool_name", params.Name, "call_id", call.ID)

	start := time.Now()
	result, err := invoke(ctx, tool, params.Arguments)
	call.Duration = time.Since(start)

	if err == nil && result == nil {
		err = errors.New("tool returned no result")
	}
	if err != nil {
		call.IsError = true
		call.ErrorCode = JSONRPCInternalError
		d.record(ctx, call)
		return d.handleToolError(req.ID, call, err)
	}

	call.IsError = result.IsError
	d.record(ctx, call)

	d.logger.Debug("tools/call complete",
		"tool_name", params.Name,
		"call_id", call.ID,
		"is_error", result.IsError,
		"duration", call.Duration,
	)

	return resultResponse(req.ID, result)
}

// invoke runs the tool handler, converting a panic into an error.
func invoke(ctx context.Context, tool *tools.Tool, args json.RawMessage) (result *tools.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errToolPanicked, r)
		}
	}()
	return tool.Handler(ctx, args)
}

// handleToolError maps an unexpected tool fault to an internal error
// response. Panic values are logged but never shown to the caller.
func (d *Dispatcher) handleToolError(id json.RawMessage, call *store.ToolCall, err error) *Response {
	d.logger.Error("tool execution failed",
		"tool_name", call.Tool,
		"call_id", call.ID,
		"error", err,
	)

	details := err.Error()
	switch {
	case errors.Is(err, errToolPanicked):
		details = "tool " + call.Tool + " failed unexpectedly"
	case errors.Is(err, context.DeadlineExceeded):
		details = "tool execution timed out"
	case errors.Is(err, context.Canceled):
		details = "request cancelled"
	}

	return errorResponse(id, InternalError(details))
}

// record stores the call and reports it to the observer.
func (d *Dispatcher) record(ctx context.Context, call *store.ToolCall) {
	if d.observer != nil && call.ErrorCode != JSONRPCInvalidParams {
		d.observer.ObserveToolCall(call.Tool, call.IsError, call.Duration)
	}
	if d.recorder == nil {
		return
	}
	if err := d.recorder.RecordToolCall(context.WithoutCancel(ctx), call); err != nil {
		d.logger.Warn("failed to record tool call", "call_id", call.ID, "error", err)
	}
}

func resultResponse(id json.RawMessage, result any) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Result: result}
}

func errorResponse(id json.RawMessage, e *Error) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Error: e}
}

func isNotification(id json.RawMessage) bool {
	return len(id) == 0 || string(id) == "null"
}

// rpcIDString renders the request id for the call log.
func rpcIDString(id json.RawMessage) string {
	if isNotification(id) {
		return ""
	}
	var s string
	if err := json.Unmarshal(id, &s); err == nil {
		return s
	}
	return string(id)
}

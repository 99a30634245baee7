// ABOUTME: HTTP bindings for the MCP dispatcher: JSON-RPC over POST, discovery over GET
// ABOUTME: Serves /mcp, /api/mcp and /api/mcp-v2 plus the SSE endpoints

package mcp

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// DefaultKeepAliveInterval is the SSE ping interval used when none is configured.
const DefaultKeepAliveInterval = 30 * time.Second

// Config holds configuration for the MCP HTTP server.
type Config struct {
	Dispatcher        *Dispatcher
	Logger            *slog.Logger
	KeepAliveInterval time.Duration // SSE ping interval
}

// Server exposes a Dispatcher over HTTP. Every binding shares the same
// dispatcher, so they differ only in framing.
type Server struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
	keepAlive  time.Duration
	discovery  Discovery

	closeOnce sync.Once
	done      chan struct{} // closed to end open SSE streams
}

// NewServer creates a new MCP HTTP server with the given configuration.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	keepAlive := cfg.KeepAliveInterval
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAliveInterval
	}

	return &Server{
		dispatcher: cfg.Dispatcher,
		logger:     logger.With("component", "mcp-http"),
		keepAlive:  keepAlive,
		discovery:  NewDiscovery(cfg.Dispatcher.ServerInfo()),
		done:       make(chan struct{}),
	}, nil
}

// RegisterRoutes registers the JSON-RPC and SSE endpoints on the given ServeMux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc(PathRPC, s.handleRPC)
	mux.HandleFunc(PathAPIRPC, s.handleRPC)
	mux.HandleFunc(PathRPCv2, s.handleRPC)
	mux.HandleFunc(PathSSE, s.handleSSE)
	mux.HandleFunc(PathAPISSE, s.handleSSE)
}

// Discovery returns the discovery document served on GET.
func (s *Server) Discovery() Discovery {
	return s.discovery
}

// ServeHTTP serves the JSON-RPC binding, so the server can be mounted on
// additional paths.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handleRPC(w, r)
}

// Close ends every open SSE stream. It is safe to call multiple times.
func (s *Server) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// handleRPC dispatches POST bodies and answers GET with the discovery document.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handlePost(w, r)
	case http.MethodGet:
		WriteJSON(w, http.StatusOK, s.discovery)
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	default:
		MethodNotAllowed(w, "GET, POST, OPTIONS")
	}
}

// handlePost processes one JSON-RPC message sent via HTTP POST. Protocol
// errors are returned in the envelope with HTTP 200.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		s.sendResponse(w, errorResponse(nil, ParseError()))
		return
	}
	if int64(len(body)) > MaxRequestBodySize {
		s.sendResponse(w, errorResponse(nil, &Error{
			Code:    JSONRPCInvalidRequest,
			Message: "Invalid Request",
			Data:    map[string]string{"details": "request body too large"},
		}))
		return
	}

	s.sendResponse(w, s.dispatcher.Handle(r.Context(), body))
}

// sendResponse writes a JSON-RPC response.
func (s *Server) sendResponse(w http.ResponseWriter, resp *Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("failed to encode JSON-RPC response", "error", err)
	}
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// MethodNotAllowed writes a 405 with {"error":"Method not allowed"}.
func MethodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
}

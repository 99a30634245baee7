// ABOUTME: REST bindings for validate and getNews plus discovery and diagnostics
// ABOUTME: Shares the auth gate and aggregator with the JSON-RPC tools

package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/2389/news-mcp/internal/auth"
	"github.com/2389/news-mcp/internal/mcp"
	"github.com/2389/news-mcp/internal/news"
	"github.com/2389/news-mcp/internal/tools"
)

// maxAPIBodySize bounds REST request bodies (64KB).
const maxAPIBodySize = 64 << 10

// ValidateRequest is the optional JSON body of POST /api/validate.
type ValidateRequest struct {
	BearerToken string `json:"bearer_token"`
}

// NewsRequest is the optional JSON body of POST /api/getNews.
type NewsRequest struct {
	Sources []string `json:"sources,omitempty"`
}

// DebugReport is returned by the diagnostic endpoint.
type DebugReport struct {
	Message   string        `json:"message"`
	Received  DebugReceived `json:"received"`
	Timestamp string        `json:"timestamp"`
	Server    string        `json:"server"`
}

// DebugReceived echoes the inbound request with credentials redacted.
type DebugReceived struct {
	Method  string              `json:"method"`
	URL     string              `json:"url"`
	Headers map[string][]string `json:"headers"`
	Query   map[string][]string `json:"query"`
	Body    any                 `json:"body"`
}

// registerAPIRoutes registers the REST, discovery and debug endpoints.
func (g *Gateway) registerAPIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/validate", g.handleValidate)
	mux.HandleFunc(mcp.PathValidate, g.handleValidate)
	mux.HandleFunc("/getNews", g.handleGetNews)
	mux.HandleFunc(mcp.PathNews, g.handleGetNews)
	mux.HandleFunc("/{$}", g.handleIndex)
	mux.HandleFunc(mcp.PathIndex, g.handleIndex)

	if g.config.Server.DebugEndpoint {
		mux.HandleFunc("/api/mcp-debug", g.handleDebug)
		g.logger.Warn("diagnostic endpoint enabled at /api/mcp-debug")
	}
}

// handleValidate checks the bearer token from the Authorization header,
// falling back to bearer_token in the JSON body.
func (g *Gateway) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		mcp.MethodNotAllowed(w, http.MethodPost)
		return
	}

	token, err := auth.RequestToken(r)
	if errors.Is(err, auth.ErrMissingAuthorization) || errors.Is(err, auth.ErrEmptyToken) {
		var body ValidateRequest
		_ = json.NewDecoder(io.LimitReader(r.Body, maxAPIBodySize)).Decode(&body)
		token, err = strings.TrimSpace(body.BearerToken), nil
		if token == "" {
			g.sendJSONError(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}
	}

	if err != nil || !g.gate.Validate(token) {
		g.logger.Info("REST validate rejected", "remote_addr", r.RemoteAddr)
		g.sendJSONError(w, http.StatusUnauthorized, "Invalid bearer token")
		return
	}

	mcp.WriteJSON(w, http.StatusOK, tools.IdentityPayload{Phone: g.config.Auth.PhoneNumber})
}

// handleGetNews returns {"news": ...}, or the digest as HTML when the
// client prefers text/html.
func (g *Gateway) handleGetNews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		mcp.MethodNotAllowed(w, http.MethodPost)
		return
	}

	var req NewsRequest
	_ = json.NewDecoder(io.LimitReader(r.Body, maxAPIBodySize)).Decode(&req)

	result, err := g.aggregator.Fetch(r.Context(), req.Sources)
	if err != nil {
		g.logger.Warn("REST getNews aborted", "error", err)
		mcp.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to fetch news",
			"details": err.Error(),
		})
		return
	}

	if prefersHTML(r) {
		html, err := news.RenderDigestHTML(result)
		if err != nil {
			g.sendJSONError(w, http.StatusInternalServerError, "Failed to render news")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, html)
		return
	}

	mcp.WriteJSON(w, http.StatusOK, news.Envelope{News: result})
}

// prefersHTML reports whether the Accept header asks for HTML before JSON.
func prefersHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	htmlAt := strings.Index(accept, "text/html")
	if htmlAt < 0 {
		return false
	}
	jsonAt := strings.Index(accept, "application/json")
	return jsonAt < 0 || htmlAt < jsonAt
}

// handleIndex serves discovery on GET and forwards POST to the JSON-RPC binding.
func (g *Gateway) handleIndex(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		mcp.WriteJSON(w, http.StatusOK, g.mcpServer.Discovery())
	case http.MethodPost:
		g.mcpServer.ServeHTTP(w, r)
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	default:
		mcp.MethodNotAllowed(w, "GET, POST, OPTIONS")
	}
}

// handleDebug echoes the request back with credentials redacted.
func (g *Gateway) handleDebug(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		mcp.WriteJSON(w, http.StatusOK, map[string]string{"message": "CORS preflight OK"})
		return
	}

	raw, _ := io.ReadAll(io.LimitReader(r.Body, maxAPIBodySize))
	var body any
	if len(raw) > 0 {
		if json.Valid(raw) {
			body = json.RawMessage(raw)
		} else {
			body = string(raw)
		}
	}

	headers := auth.RedactHeaders(r.Header)
	g.logger.Info("MCP diagnostic request",
		"method", r.Method,
		"url", r.URL.String(),
		"headers", headers,
		"body_bytes", len(raw),
	)

	info := g.dispatcher.ServerInfo()
	mcp.WriteJSON(w, http.StatusOK, DebugReport{
		Message: "MCP Diagnostic Endpoint",
		Received: DebugReceived{
			Method:  r.Method,
			URL:     r.URL.String(),
			Headers: headers,
			Query:   r.URL.Query(),
			Body:    body,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Server:    info.Name + " v" + info.Version,
	})
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	mcp.WriteJSON(w, status, map[string]string{"error": message})
}

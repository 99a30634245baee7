// ABOUTME: Server-sent events binding: a ready notification then periodic pings
// ABOUTME: POST on the SSE path dispatches like the plain JSON-RPC binding

package mcp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Notification methods sent on the SSE stream.
const (
	MethodServerReady = "server/ready"
	MethodPing        = "ping"
)

// ReadyParams are the params of the server/ready notification.
type ReadyParams struct {
	ServerInfo ServerInfo `json:"serverInfo"`
}

// handleSSE opens an event stream on GET and dispatches on POST.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.serveStream(w, r)
	case http.MethodPost:
		s.handlePost(w, r)
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	default:
		MethodNotAllowed(w, "GET, POST, OPTIONS")
	}
}

// serveStream holds the connection open until the client goes away or the
// server closes, sending a ping every keep-alive interval.
func (s *Server) serveStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ready := Notification{
		JSONRPC: "2.0",
		Method:  MethodServerReady,
		Params:  ReadyParams{ServerInfo: s.dispatcher.ServerInfo()},
	}
	if err := writeEvent(w, ready); err != nil {
		s.logger.Debug("SSE client gone before ready", "error", err)
		return
	}
	flusher.Flush()

	s.logger.Debug("SSE stream opened", "remote_addr", r.RemoteAddr)

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	ping := Notification{JSONRPC: "2.0", Method: MethodPing}
	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE stream closed by client", "remote_addr", r.RemoteAddr)
			return
		case <-s.done:
			return
		case <-ticker.C:
			if err := writeEvent(w, ping); err != nil {
				s.logger.Debug("SSE ping failed", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

// writeEvent writes v as a single SSE data event.
func writeEvent(w http.ResponseWriter, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

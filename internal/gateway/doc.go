// Package gateway assembles news-mcp from its configuration and serves it.
//
// # Overview
//
// New builds the whole stack:
//
//	config → scraper (+ cache) → aggregator → tool registry → dispatcher → HTTP mux
//
// and wraps the mux in CORS middleware. Run listens on server.http_addr, or
// on a Tailscale node when tailscale.enabled is set, until its context is
// canceled.
//
// # Endpoints
//
//	GET  /health                      liveness, returns "OK"
//	GET  /, /api/index                discovery document (POST forwards to JSON-RPC)
//	POST /mcp, /api/mcp, /api/mcp-v2  JSON-RPC dispatch (GET returns discovery)
//	GET  /mcp/sse, /api/mcp-sse       SSE stream with keep-alive pings
//	POST /validate, /api/validate     bearer token check, returns {"phone": ...}
//	POST /getNews, /api/getNews       {"news": ...}, or an HTML digest for Accept: text/html
//	ANY  /api/mcp-debug               request echo, only with server.debug_endpoint
//	GET  /metrics                     Prometheus metrics, only with metrics.enabled
//
// # REST Validation
//
// /api/validate reads the token from "Authorization: Bearer <token>", or
// from {"bearer_token": "..."} in the body when the header is absent. A
// missing token is 401 {"error":"Missing bearer token"}; a wrong one is
// 401 {"error":"Invalid bearer token"}.
//
// # Lifecycle
//
// Shutdown ends open SSE streams, drains the HTTP server within the
// caller's deadline, then closes the Tailscale node, headline cache and
// call log.
package gateway

// Package metrics exposes Prometheus metrics for news-mcp.
//
// Metrics is passed to the dispatcher as its Observer and to the scraper
// and cache as their FetchObserver. Handler serves the private registry at
// metrics.path (default /metrics) when metrics.enabled is set.
//
// Exported series:
//
//	news_mcp_rpc_requests_total{method,code}
//	news_mcp_rpc_request_duration_seconds{method}
//	news_mcp_tool_calls_total{tool,outcome}
//	news_mcp_headline_fetches_total{source,outcome}
//	news_mcp_headline_fetch_duration_seconds{source}
package metrics

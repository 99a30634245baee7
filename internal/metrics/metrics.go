// ABOUTME: Prometheus collectors for JSON-RPC requests, tool calls and headline fetches
// ABOUTME: Implements the mcp.Observer and news.FetchObserver hooks on a private registry

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "news_mcp"

// knownMethods bounds the method label; anything else is reported as "other".
var knownMethods = map[string]bool{
	"initialize": true,
	"tools/list": true,
	"tools/call": true,
}

// Metrics holds the news-mcp collectors.
type Metrics struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	requestTime   *prometheus.HistogramVec
	toolCalls     *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry, along with the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "JSON-RPC requests by method and response code (0 for success).",
		}, []string{"method", "code"}),
		requestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_request_duration_seconds",
			Help:      "Time spent dispatching JSON-RPC requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool calls by tool and outcome.",
		}, []string{"tool", "outcome"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "headline_fetches_total",
			Help:      "Headline fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "headline_fetch_duration_seconds",
			Help:      "Time spent fetching a source page, cache hits excluded.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.requestTime,
		m.toolCalls,
		m.fetches,
		m.fetchDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records one dispatched JSON-RPC request.
func (m *Metrics) ObserveRequest(method string, code int, elapsed time.Duration) {
	if !knownMethods[method] {
		method = "other"
	}
	m.requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.requestTime.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveToolCall records one executed tool call.
func (m *Metrics) ObserveToolCall(tool string, isError bool, _ time.Duration) {
	outcome := "ok"
	if isError {
		outcome = "error"
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
}

// ObserveFetch records one headline fetch attempt.
func (m *Metrics) ObserveFetch(source, outcome string, elapsed time.Duration) {
	m.fetches.WithLabelValues(source, outcome).Inc()
	if outcome != "cached" {
		m.fetchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Package telemetry exposes Prometheus metrics for the HTTP surface, MCP
// sessions, tool calls and the upstream dictionary API.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all the Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	HTTPRequestSize      *prometheus.HistogramVec
	HTTPResponseSize     *prometheus.HistogramVec

	// MCP metrics
	MCPSessionsActive  prometheus.Gauge
	MCPSessionsTotal   *prometheus.CounterVec
	MCPSessionDuration *prometheus.HistogramVec
	MCPToolExecutions  *prometheus.CounterVec
	MCPToolDuration    *prometheus.HistogramVec

	// Dictionary API metrics
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec

	// System metrics
	GoRoutines  prometheus.Gauge
	MemoryUsage prometheus.Gauge
}

// NewMetrics creates all metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),
		HTTPRequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_size_bytes",
				Help:    "Size of HTTP requests in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "endpoint"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "Size of HTTP responses in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "endpoint"},
		),

		MCPSessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "mcp_sessions_active",
				Help: "Number of active MCP sessions",
			},
		),
		MCPSessionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcp_sessions_total",
				Help: "Total number of MCP session lifecycle events",
			},
			[]string{"action"}, // created, deleted, expired
		),
		MCPSessionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mcp_session_duration_seconds",
				Help:    "Duration of MCP sessions in seconds",
				Buckets: []float64{60, 300, 600, 1800, 3600, 7200},
			},
			[]string{"reason"}, // deleted, expired
		),
		MCPToolExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcp_tool_executions_total",
				Help: "Total number of MCP tool executions",
			},
			[]string{"tool_name", "status"}, // success, error
		),
		MCPToolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mcp_tool_execution_duration_seconds",
				Help:    "Duration of MCP tool executions in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"tool_name"},
		),

		UpstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stdict_upstream_requests_total",
				Help: "Dictionary API calls by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		UpstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stdict_upstream_request_duration_seconds",
				Help:    "Duration of dictionary API calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint"},
		),

		GoRoutines: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "go_goroutines_current",
				Help: "Number of goroutines that currently exist",
			},
		),
		MemoryUsage: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "memory_usage_bytes",
				Help: "Current memory usage in bytes",
			},
		),
	}
}

// RecordHTTPRequest records metrics for an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration, requestSize, responseSize int64) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	m.HTTPRequestSize.WithLabelValues(method, endpoint).Observe(float64(requestSize))
	m.HTTPResponseSize.WithLabelValues(method, endpoint).Observe(float64(responseSize))
}

// RecordSessionCreated records a new session
func (m *Metrics) RecordSessionCreated() {
	m.MCPSessionsActive.Inc()
	m.MCPSessionsTotal.WithLabelValues("created").Inc()
}

// RecordSessionDeleted records a session ended by the client
func (m *Metrics) RecordSessionDeleted(duration time.Duration) {
	m.recordSessionEnd("deleted", duration)
}

// RecordSessionExpired records a session removed after its timeout
func (m *Metrics) RecordSessionExpired(duration time.Duration) {
	m.recordSessionEnd("expired", duration)
}

func (m *Metrics) recordSessionEnd(reason string, duration time.Duration) {
	m.MCPSessionsActive.Dec()
	m.MCPSessionsTotal.WithLabelValues(reason).Inc()
	m.MCPSessionDuration.WithLabelValues(reason).Observe(duration.Seconds())
}

// RecordToolExecution records a tool execution
func (m *Metrics) RecordToolExecution(toolName, status string, duration time.Duration) {
	m.MCPToolExecutions.WithLabelValues(toolName, status).Inc()
	m.MCPToolDuration.WithLabelValues(toolName).Observe(duration.Seconds())
}

// ObserveUpstream records a dictionary API call. Validation failures never
// reach the network and are counted without a duration sample.
func (m *Metrics) ObserveUpstream(endpoint, outcome string, duration time.Duration) {
	m.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	if duration > 0 {
		m.UpstreamDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	}
}

// UpdateSystemMetrics updates system-level metrics
func (m *Metrics) UpdateSystemMetrics(goroutines int, memoryBytes uint64) {
	m.GoRoutines.Set(float64(goroutines))
	m.MemoryUsage.Set(float64(memoryBytes))
}

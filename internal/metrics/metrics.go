// Package metrics provides Prometheus instrumentation for the AuditLens console.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auditlens",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "auditlens",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// BackendRequestsTotal counts calls to the upstream audit API by endpoint and result.
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auditlens",
			Name:      "backend_requests_total",
			Help:      "Total upstream audit API requests by endpoint and result.",
		},
		[]string{"endpoint", "result"},
	)

	// BackendRequestDuration observes upstream call latency by endpoint.
	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "auditlens",
			Name:      "backend_request_duration_seconds",
			Help:      "Upstream audit API request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// PollTicksTotal counts poll ticks by outcome.
	// committed: snapshot replaced; unchanged: top-of-queue diff matched;
	// stale: a newer tick won; offline: skipped while backend unreachable.
	PollTicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auditlens",
			Name:      "poll_ticks_total",
			Help:      "Total poll ticks by outcome.",
		},
		[]string{"outcome"},
	)

	// PollTickDuration observes end-to-end tick latency.
	PollTickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "auditlens",
			Name:      "poll_tick_duration_seconds",
			Help:      "Poll tick duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// StatusCommitsTotal counts alert status commits by result.
	StatusCommitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auditlens",
			Name:      "status_commits_total",
			Help:      "Total optimistic alert status commits by result.",
		},
		[]string{"result"},
	)

	// SnapshotAlerts tracks the number of alerts in the current snapshot.
	SnapshotAlerts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "auditlens",
			Name:      "snapshot_alerts",
			Help:      "Number of alerts in the current snapshot.",
		},
	)

	// ConnectivityUp is 1 while the upstream audit API is reachable.
	ConnectivityUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "auditlens",
			Name:      "connectivity_up",
			Help:      "Whether the upstream audit API is reachable (1) or offline (0).",
		},
	)

	// ActiveWebSocketClients tracks connected live-feed clients.
	ActiveWebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "auditlens",
			Name:      "active_websocket_clients",
			Help:      "Number of currently connected WebSocket clients.",
		},
	)

	// ChatMessagesTotal counts policy chat exchanges by result.
	ChatMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auditlens",
			Name:      "chat_messages_total",
			Help:      "Total policy chat exchanges by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		BackendRequestsTotal,
		BackendRequestDuration,
		PollTicksTotal,
		PollTickDuration,
		StatusCommitsTotal,
		SnapshotAlerts,
		ConnectivityUp,
		ActiveWebSocketClients,
		ChatMessagesTotal,
	)
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(), // Uses route pattern, not actual path (avoids cardinality explosion)
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler for /metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

package monitoring

import "github.com/prometheus/client_golang/prometheus"

var (
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ActiveRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Number of in-flight HTTP requests",
		},
	)

	// ForumEvents 业务事件：registered, login_ok, login_failed, post_created, reply_created, post_deleted, delete_denied
	ForumEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_events_total",
			Help: "Total number of forum domain events",
		},
		[]string{"event"},
	)
)

func init() {
	prometheus.MustRegister(HttpRequestsTotal, HttpRequestDuration, ActiveRequests, ForumEvents)
}

// Event 记录一次业务事件
func Event(name string) {
	ForumEvents.WithLabelValues(name).Inc()
}

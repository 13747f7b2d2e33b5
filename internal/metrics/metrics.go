package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noteful_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "noteful_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noteful_login_attempts_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	cascadeRefs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noteful_cascade_cleared_references_total",
		Help: "Note references cleared when a folder or tag is deleted",
	}, []string{"resource"})

	cascadeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noteful_cascade_failures_total",
		Help: "Folder or tag deletions rolled back after a store error",
	}, []string{"resource"})

	eventPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "noteful_event_publish_failures_total",
		Help: "Activity events that could not be published",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveLogin counts a login by result: "success", "bad_request" or "unauthorized".
func ObserveLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// ObserveCascade adds n cleared note references for resource ("folder" or "tag").
func ObserveCascade(resource string, n int64) {
	if n <= 0 {
		return
	}
	cascadeRefs.WithLabelValues(resource).Add(float64(n))
}

// ObserveCascadeFailure counts a rolled-back folder or tag deletion.
func ObserveCascadeFailure(resource string) {
	cascadeFailures.WithLabelValues(resource).Inc()
}

// ObservePublishFailure counts an activity event that was dropped.
func ObservePublishFailure() {
	eventPublishFailures.Inc()
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twitterapi_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "twitterapi_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	DatabaseOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twitterapi_database_operations_total",
			Help: "Total number of database operations",
		},
		[]string{"operation", "entity", "outcome"},
	)

	DatabaseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "twitterapi_database_operation_duration_seconds",
			Help:    "Database operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "entity"},
	)

	RecordMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twitterapi_record_mutations_total",
			Help: "Successful create/update/delete operations per entity",
		},
		[]string{"entity", "action"},
	)

	RateLimitedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twitterapi_rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"route"},
	)
)

func RecordHttpRequest(method, endpoint, status string, duration time.Duration) {
	HttpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HttpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordDatabaseOperation counts one repository call. outcome is "ok",
// "not_found" or "error".
func RecordDatabaseOperation(operation, entity, outcome string, duration time.Duration) {
	DatabaseOperationsTotal.WithLabelValues(operation, entity, outcome).Inc()
	DatabaseOperationDuration.WithLabelValues(operation, entity).Observe(duration.Seconds())
}

func RecordMutation(entity, action string) {
	RecordMutations.WithLabelValues(entity, action).Inc()
}

func RecordRateLimited(route string) {
	RateLimitedRequests.WithLabelValues(route).Inc()
}

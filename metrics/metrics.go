package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casetracker_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "casetracker_http_request_duration_seconds",
			Help:    "Time taken to serve HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// EntityOperations counts controller operations.
	// Labels:
	//   - entity: "caseDefinition" or "examine"
	//   - operation: create, replace, partial_update, get, list, delete
	//   - outcome: "success" or the error key ("idexists", "notfound", "error", ...)
	EntityOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casetracker_entity_operations_total",
			Help: "Total number of entity operations by outcome",
		},
		[]string{"entity", "operation", "outcome"},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casetracker_rate_limit_rejections_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"backend"},
	)
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 对远端 Cassandra 调用的计数与耗时。outcome 取值:
// success / failure / denied / not_found。
var (
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casbridge_api_requests_total",
			Help: "Total number of Cassandra API calls by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "casbridge_api_request_duration_seconds",
			Help:    "Duration of Cassandra API calls.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// ObserveAPIRequest 记录一次远端调用。
func ObserveAPIRequest(operation, outcome string, seconds float64) {
	APIRequests.WithLabelValues(operation, outcome).Inc()
	APIRequestDuration.WithLabelValues(operation).Observe(seconds)
}

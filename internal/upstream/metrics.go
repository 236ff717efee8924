package upstream

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamCallsTotal counts prediction service calls by status.
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_calls_total",
			Help: "Total number of prediction service calls",
		},
		[]string{"status"},
	)

	// UpstreamCallDuration observes prediction call latency.
	UpstreamCallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "upstream_call_duration_seconds",
			Help:    "Prediction service call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func recordCall(status int, elapsed time.Duration) {
	UpstreamCallsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	UpstreamCallDuration.Observe(elapsed.Seconds())
}

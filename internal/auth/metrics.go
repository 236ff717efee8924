package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ValidationsTotal counts credential validations by scheme and result.
	ValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_validations_total",
			Help: "Total number of credential validations",
		},
		[]string{"scheme", "result"},
	)

	// EndpointResolutionsTotal counts endpoint resolutions by source.
	EndpointResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_endpoint_resolutions_total",
			Help: "Total number of endpoint descriptor resolutions",
		},
		[]string{"source"},
	)
)

func recordValidation(scheme Scheme, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	ValidationsTotal.WithLabelValues(scheme.String(), result).Inc()
}

func recordResolution(source string) {
	EndpointResolutionsTotal.WithLabelValues(source).Inc()
}

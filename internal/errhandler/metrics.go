package errhandler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrorsClassifiedTotal counts classified errors by category and severity.
var ErrorsClassifiedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "errors_classified_total",
		Help: "Total number of classified errors",
	},
	[]string{"category", "severity"},
)

func recordClassification(category Category, severity Severity) {
	ErrorsClassifiedTotal.WithLabelValues(string(category), string(severity)).Inc()
}

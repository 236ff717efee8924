package circuitbreaker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CircuitBreakerState shows the current state per target.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current state of the circuit breaker (0=closed, 1=open, 2=half-open)",
		},
		[]string{"target"},
	)

	// CircuitBreakerFailuresTotal counts failures recorded per target.
	CircuitBreakerFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures recorded by circuit breakers",
		},
		[]string{"target"},
	)

	// CircuitBreakerSuccessesTotal counts successes recorded per target.
	CircuitBreakerSuccessesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_successes_total",
			Help: "Total number of successes recorded by circuit breakers",
		},
		[]string{"target"},
	)

	// CircuitBreakerRejectedTotal counts calls rejected by an open circuit.
	CircuitBreakerRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_rejected_total",
			Help: "Total number of calls rejected due to open circuit",
		},
		[]string{"target"},
	)

	// CircuitBreakerTransitionsTotal counts state transitions.
	CircuitBreakerTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"target", "from", "to"},
	)
)

func recordState(target string, state State) {
	CircuitBreakerState.WithLabelValues(target).Set(float64(state))
}

func recordFailure(target string) {
	CircuitBreakerFailuresTotal.WithLabelValues(target).Inc()
}

func recordSuccess(target string) {
	CircuitBreakerSuccessesTotal.WithLabelValues(target).Inc()
}

func recordRejection(target string) {
	CircuitBreakerRejectedTotal.WithLabelValues(target).Inc()
}

func recordTransition(target string, from, to State) {
	CircuitBreakerTransitionsTotal.WithLabelValues(target, from.String(), to.String()).Inc()
}

// Package metrics provides centralized Prometheus metrics for gatego.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Call-path metrics track dependency call outcomes
var (
	// CallsTotal counts dependency calls by outcome
	CallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatego_dependency_calls_total",
			Help: "Total number of dependency calls",
		},
		[]string{"dependency", "outcome"}, // outcome: success, timeout, rate_limited, circuit_open, retry_exhausted, error
	)

	// CallDuration measures dependency call duration in seconds
	CallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gatego_dependency_call_duration_seconds",
			Help:    "Dependency call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"dependency"},
	)

	// RetriesTotal counts retry attempts beyond the first invocation
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatego_dependency_retries_total",
			Help: "Total number of retry attempts",
		},
		[]string{"dependency"},
	)

	// FallbacksTotal counts fallback invocations while the circuit is open
	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatego_dependency_fallbacks_total",
			Help: "Total number of fallback invocations",
		},
		[]string{"dependency"},
	)

	// BreakerState tracks circuit breaker state (0=closed, 1=half-open, 2=open)
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gatego_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"dependency"},
	)
)

// Scaling metrics track autoscaler and router behavior
var (
	// ReplicasCurrent tracks the current replica count per service
	ReplicasCurrent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gatego_replicas_current",
			Help: "Current number of replicas",
		},
		[]string{"service"},
	)

	// Utilization tracks the last observed utilization sample
	Utilization = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gatego_utilization_percent",
			Help: "Last observed utilization percentage",
		},
		[]string{"service", "resource"}, // resource: cpu, memory
	)

	// ScaleEventsTotal counts applied scaling decisions by direction
	ScaleEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatego_scale_events_total",
			Help: "Total number of applied scaling decisions",
		},
		[]string{"service", "direction"},
	)

	// RoutedTotal counts requests distributed per replica
	RoutedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatego_routed_total",
			Help: "Total number of requests routed per replica",
		},
		[]string{"service", "replica"},
	)
)

// RecordCall records one dependency call outcome with its latency.
func RecordCall(dependency, outcome string, duration time.Duration) {
	CallsTotal.WithLabelValues(dependency, outcome).Inc()
	CallDuration.WithLabelValues(dependency).Observe(duration.Seconds())
}

// SetBreakerState records a breaker state by name.
func SetBreakerState(dependency, state string) {
	var v float64
	switch state {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	BreakerState.WithLabelValues(dependency).Set(v)
}

// RecordScaleEvent records an applied scaling decision.
func RecordScaleEvent(service, direction string, replicas int) {
	ScaleEventsTotal.WithLabelValues(service, direction).Inc()
	ReplicasCurrent.WithLabelValues(service).Set(float64(replicas))
}

// RecordUtilization records the latest utilization sample.
func RecordUtilization(service string, cpu, memory float64) {
	Utilization.WithLabelValues(service, "cpu").Set(cpu)
	Utilization.WithLabelValues(service, "memory").Set(memory)
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SagaMetrics counts checkout saga outcomes and compensation traffic.
type SagaMetrics struct {
	Sagas                *prometheus.CounterVec
	Compensations        *prometheus.CounterVec
	CompensationFailures *prometheus.CounterVec
	DurationMS           prometheus.Histogram
}

// NewSagaMetrics registers the saga collectors on reg. Pass
// prometheus.DefaultRegisterer in main; tests use their own registry.
func NewSagaMetrics(reg prometheus.Registerer) *SagaMetrics {
	sagas := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vastra",
		Subsystem: "checkout",
		Name:      "sagas_total",
		Help:      "Checkout sagas by final outcome.",
	}, []string{"outcome"})
	compensations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vastra",
		Subsystem: "checkout",
		Name:      "compensations_total",
		Help:      "Compensating releases issued, by resource.",
	}, []string{"resource"})
	compensationFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vastra",
		Subsystem: "checkout",
		Name:      "compensation_failures_total",
		Help:      "Compensating releases that themselves failed, by resource.",
	}, []string{"resource"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "vastra",
		Subsystem: "checkout",
		Name:      "saga_duration_ms",
		Help:      "Saga duration in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	reg.MustRegister(sagas, compensations, compensationFailures, duration)
	return &SagaMetrics{
		Sagas:                sagas,
		Compensations:        compensations,
		CompensationFailures: compensationFailures,
		DurationMS:           duration,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}

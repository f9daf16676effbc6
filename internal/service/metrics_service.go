package service

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns a private Prometheus registry so tests can build
// isolated instances without double-registration panics.
type MetricsService struct {
	registry *prometheus.Registry

	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec

	solveDuration     *prometheus.HistogramVec
	suggestionsTotal  *prometheus.CounterVec
	suggestedSlots    prometheus.Counter
	bookingsCommitted prometheus.Counter
	bookingsRejected  prometheus.Counter
}

// NewMetricsService registers all collectors on a fresh registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method, and status.",
		}, []string{"route", "method", "status"}),
		solveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scheduler_solve_duration_seconds",
			Help:    "Constraint solve duration by outcome status.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"status"}),
		suggestionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_suggestions_total",
			Help: "Suggestion runs by outcome status.",
		}, []string{"status"}),
		suggestedSlots: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_suggested_slots_total",
			Help: "Total slots offered across all suggestion runs.",
		}),
		bookingsCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookings_committed_total",
			Help: "Bookings successfully written from suggestion sessions.",
		}),
		bookingsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookings_rejected_total",
			Help: "Commit attempts rejected by capacity or duplicate checks.",
		}),
	}

	registry.MustRegister(
		m.httpRequestDuration,
		m.httpRequestsTotal,
		m.solveDuration,
		m.suggestionsTotal,
		m.suggestedSlots,
		m.bookingsCommitted,
		m.bookingsRejected,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "goroutines_count",
			Help: "Current number of goroutines.",
		}, func() float64 { return float64(runtime.NumGoroutine()) }),
	)

	return m
}

// Handler exposes the private registry for the /metrics endpoint.
func (m *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request.
func (m *MetricsService) ObserveRequest(route, method, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestDuration.WithLabelValues(route, method, status).Observe(duration.Seconds())
	m.httpRequestsTotal.WithLabelValues(route, method, status).Inc()
}

// ObserveSolve records one solver run.
func (m *MetricsService) ObserveSolve(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.solveDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordSuggestionOutcome counts a suggestion run and the slots it offered.
func (m *MetricsService) RecordSuggestionOutcome(status string, slots int) {
	if m == nil {
		return
	}
	m.suggestionsTotal.WithLabelValues(status).Inc()
	if slots > 0 {
		m.suggestedSlots.Add(float64(slots))
	}
}

// RecordCommit counts booking commit outcomes.
func (m *MetricsService) RecordCommit(committed, rejected int) {
	if m == nil {
		return
	}
	if committed > 0 {
		m.bookingsCommitted.Add(float64(committed))
	}
	if rejected > 0 {
		m.bookingsRejected.Add(float64(rejected))
	}
}

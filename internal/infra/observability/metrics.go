package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the cabin service,
// registered on their own registry rather than the global default so
// a test can spin up several independent Metrics instances.
type Metrics struct {
	registry *prometheus.Registry

	hallCallsTotal       *prometheus.CounterVec
	cabinCallsTotal      *prometheus.CounterVec
	floorTransitions     prometheus.Counter
	doorCyclesTotal      prometheus.Counter
	circuitBreakerState  prometheus.Gauge
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
}

// NewMetrics builds and registers the cabin's metric collectors under namespace.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		hallCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "hall_calls_total",
				Help:      "Hall calls registered, by requested direction.",
			},
			[]string{"direction"},
		),
		cabinCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cabin_calls_total",
				Help:      "Cabin button presses registered, by outcome.",
			},
			[]string{"outcome"},
		),
		floorTransitions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "floor_transitions_total",
				Help:      "Number of floor arrivals reported by the hardware driver.",
			},
		),
		doorCyclesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "door_cycles_total",
				Help:      "Number of times the doors opened and closed.",
			},
		),
		circuitBreakerState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Hardware circuit breaker state (0=closed, 1=open, 2=half_open).",
			},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests served, by route and status code.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP request handling.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "path"},
		),
	}

	registry.MustRegister(
		m.hallCallsTotal,
		m.cabinCallsTotal,
		m.floorTransitions,
		m.doorCyclesTotal,
		m.circuitBreakerState,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)

	// Create the hall-call series up front so the family is exposed on
	// /metrics before the first call is recorded.
	m.hallCallsTotal.WithLabelValues("up")
	m.hallCallsTotal.WithLabelValues("down")

	return m
}

// Handler exposes the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHallCall increments the hall call counter for direction ("up"/"down").
func (m *Metrics) RecordHallCall(direction string) {
	m.hallCallsTotal.WithLabelValues(direction).Inc()
}

// RecordCabinCall increments the cabin call counter for outcome
// ("accepted", "out_of_range", "duplicate").
func (m *Metrics) RecordCabinCall(outcome string) {
	m.cabinCallsTotal.WithLabelValues(outcome).Inc()
}

// RecordFloorTransition increments the floor arrival counter.
func (m *Metrics) RecordFloorTransition() {
	m.floorTransitions.Inc()
}

// RecordDoorCycle increments the door open/close counter.
func (m *Metrics) RecordDoorCycle() {
	m.doorCyclesTotal.Inc()
}

// SetCircuitBreakerState records the breaker's current numeric state.
func (m *Metrics) SetCircuitBreakerState(state int) {
	m.circuitBreakerState.Set(float64(state))
}

// RecordHTTPRequest records the outcome and duration of one HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, durationSeconds float64) {
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(durationSeconds)
}

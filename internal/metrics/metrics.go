package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes recorded for desktop state saves
const (
	OutcomeSaved        = "saved"
	OutcomeShapeError   = "shape_error"
	OutcomeInconsistent = "inconsistent"
	OutcomeFailed       = "failed"
)

// Metrics holds the Prometheus collectors of the API.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	StateSaves         *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	CorruptReads       prometheus.Counter
	CorruptStates      prometheus.Gauge
	OSNameRegistered   prometheus.Counter

	WSConnections prometheus.Gauge
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osdesk_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "osdesk_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		StateSaves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osdesk_desktop_state_saves_total",
				Help: "Desktop state write attempts by outcome",
			},
			[]string{"outcome"},
		),
		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osdesk_desktop_state_violations_total",
				Help: "Rejected desktop state documents by violation category",
			},
			[]string{"category"},
		),
		CorruptReads: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "osdesk_desktop_state_corrupt_reads_total",
				Help: "Stored desktop states that failed re-validation on read",
			},
		),
		CorruptStates: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "osdesk_desktop_state_corrupt",
				Help: "Stored desktop states that failed the last audit",
			},
		),
		OSNameRegistered: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "osdesk_os_names_registered_total",
				Help: "Total number of OS names registered",
			},
		),
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "osdesk_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
	}
}

// RecordStateSave records the outcome of a desktop state write
func (m *Metrics) RecordStateSave(outcome string) {
	if m == nil {
		return
	}
	m.StateSaves.WithLabelValues(outcome).Inc()
}

// RecordViolation records one rejected document for a violation category
func (m *Metrics) RecordViolation(category string) {
	if m == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(category).Inc()
}

// IncCorruptReads records a stored state that no longer validates
func (m *Metrics) IncCorruptReads() {
	if m == nil {
		return
	}
	m.CorruptReads.Inc()
}

// SetCorruptStates records the result of a state audit
func (m *Metrics) SetCorruptStates(n int) {
	if m == nil {
		return
	}
	m.CorruptStates.Set(float64(n))
}

// IncOSNameRegistered records a successful OS name registration
func (m *Metrics) IncOSNameRegistered() {
	if m == nil {
		return
	}
	m.OSNameRegistered.Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

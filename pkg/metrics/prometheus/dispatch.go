package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/dispatch"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/metrics"
)

// dispatchMetrics is the Prometheus implementation of dispatch.Metrics.
type dispatchMetrics struct {
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	inFlight        prometheus.Gauge
	suppressed      *prometheus.CounterVec
	registryEntries prometheus.Gauge
}

// NewDispatchMetrics creates Prometheus-backed dispatcher metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewDispatchMetrics() dispatch.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &dispatchMetrics{
		requests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nsmd_requests_total",
				Help: "Total number of completed requests by opcode and outcome",
			},
			[]string{"opcode", "outcome"}, // outcome: "success", "failure", "panic"
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "nsmd_request_duration_seconds",
				Help: "Handler execution time by opcode",
				Buckets: []float64{
					0.0005, // listing served from memory
					0.001,
					0.005,
					0.01,
					0.05,
					0.1,
					0.5,
					1,
					5,  // large copies
					30, // uploads
				},
			},
			[]string{"opcode"},
		),
		inFlight: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "nsmd_requests_in_flight",
				Help: "Number of accepted requests that have not completed",
			},
		),
		suppressed: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nsmd_callbacks_suppressed_total",
				Help: "Result callbacks suppressed because the request was cancelled",
			},
			[]string{"opcode"},
		),
		registryEntries: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "nsmd_registry_entries",
				Help: "Number of entries in the location registry",
			},
		),
	}
}

func (m *dispatchMetrics) RecordRequest(opcode, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(opcode, outcome).Inc()
	m.duration.WithLabelValues(opcode).Observe(duration.Seconds())
}

func (m *dispatchMetrics) SetInFlight(n int) {
	if m == nil {
		return
	}
	m.inFlight.Set(float64(n))
}

func (m *dispatchMetrics) RecordSuppressed(opcode string) {
	if m == nil {
		return
	}
	m.suppressed.WithLabelValues(opcode).Inc()
}

func (m *dispatchMetrics) SetRegistryEntries(n int) {
	if m == nil {
		return
	}
	m.registryEntries.Set(float64(n))
}

// Package metrics exposes Prometheus instrumentation for scans and jobs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/selimozcann/infoprobe/internal/model"
)

// Namespace prefixes every metric name.
const Namespace = "infoprobe"

// Metrics holds the collectors. A nil *Metrics records nothing.
type Metrics struct {
	ProbesTotal         *prometheus.CounterVec
	FindingsTotal       *prometheus.CounterVec
	ProbeDuration       prometheus.Histogram
	JobsTotal           *prometheus.CounterVec
	NotificationsTotal  *prometheus.CounterVec
	JobsCurrentlyActive prometheus.Gauge
}

// New creates and registers all metrics on reg, or on the default registerer
// when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ProbesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "probes_total",
			Help:      "Probes issued, by outcome",
		}, []string{"outcome"}),
		FindingsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "findings_total",
			Help:      "Flagged probes, by severity bucket",
		}, []string{"bucket"}),
		ProbeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "probe_duration_seconds",
			Help:      "Duration of a single probe",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		JobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "jobs_total",
			Help:      "Scan jobs that reached a terminal state, by status",
		}, []string{"status"}),
		NotificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "notifications_total",
			Help:      "Webhook deliveries, by result",
		}, []string{"result"}),
		JobsCurrentlyActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "jobs_running",
			Help:      "Scan jobs currently running",
		}),
	}
}

// ObserveOutcome records one probe.
func (m *Metrics) ObserveOutcome(o model.Outcome, bucket model.Bucket) {
	if m == nil {
		return
	}
	m.ProbesTotal.WithLabelValues(string(o.Kind)).Inc()
	m.ProbeDuration.Observe(float64(o.DurationMs) / 1000)
	if o.Kind == model.OutcomeFlagged {
		m.FindingsTotal.WithLabelValues(string(bucket)).Inc()
	}
}

// JobStarted marks a job as running.
func (m *Metrics) JobStarted() {
	if m == nil {
		return
	}
	m.JobsCurrentlyActive.Inc()
}

// JobFinished records the terminal status of a job.
func (m *Metrics) JobFinished(status model.JobStatus) {
	if m == nil {
		return
	}
	m.JobsCurrentlyActive.Dec()
	m.JobsTotal.WithLabelValues(string(status)).Inc()
}

// Notification records a webhook delivery attempt.
func (m *Metrics) Notification(delivered bool) {
	if m == nil {
		return
	}
	result := "failed"
	if delivered {
		result = "delivered"
	}
	m.NotificationsTotal.WithLabelValues(result).Inc()
}

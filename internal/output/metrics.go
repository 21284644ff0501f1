package output

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vburojevic/check_journal/internal/domain"
)

const metricsNamespace = "check_journal"

// Metrics holds the gauges of one check run, written as a file for the
// node exporter textfile collector.
type Metrics struct {
	registry *prometheus.Registry

	MatchedLines *prometheus.GaugeVec
	Status       prometheus.Gauge
	RunDuration  prometheus.Gauge
	CursorResets prometheus.Counter
}

// NewMetrics creates and registers the run metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		MatchedLines: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "matched_lines",
				Help:      "Journal lines matched by the rules in the last run",
			},
			[]string{"severity"},
		),
		Status: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "status",
			Help:      "Plugin status of the last run (0=OK, 1=WARNING, 2=CRITICAL, 3=UNKNOWN)",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
		CursorResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cursor_resets_total",
			Help:      "State file resets after journalctl failed to seek to the stored cursor",
		}),
	}
	m.registry.MustRegister(m.MatchedLines, m.Status, m.RunDuration, m.CursorResets)
	return m
}

// ObserveResult records a finished run
func (m *Metrics) ObserveResult(r Result) {
	st := r.Outcome.Status
	m.MatchedLines.WithLabelValues("critical").Set(float64(st.Critical))
	m.MatchedLines.WithLabelValues("warning").Set(float64(st.Warning))
	m.Status.Set(float64(st.Kind.ExitCode()))
	m.RunDuration.Set(r.Duration.Seconds())
	if r.Retried {
		m.CursorResets.Inc()
	}
}

// ObserveFailure records a run that ended UNKNOWN
func (m *Metrics) ObserveFailure(d time.Duration) {
	m.Status.Set(float64(domain.StatusUnknown.ExitCode()))
	m.RunDuration.Set(d.Seconds())
}

// Gatherer exposes the registry
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteFile atomically replaces path with the metrics in text format
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

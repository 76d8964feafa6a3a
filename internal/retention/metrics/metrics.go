package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for audit-log retention.
type Metrics struct {
	Runs          *prometheus.CounterVec
	EntriesPurged prometheus.Counter
	EntriesFound  prometheus.Gauge
	PurgeDuration prometheus.Histogram
	LastPurge     prometheus.Gauge
}

// New registers the retention metrics with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "isms_audit_log_purge_runs_total",
			Help: "Audit-log purge runs by outcome",
		}, []string{"outcome"}),
		EntriesPurged: f.NewCounter(prometheus.CounterOpts{
			Name: "isms_audit_log_entries_purged_total",
			Help: "Audit-log entries deleted by retention",
		}),
		EntriesFound: f.NewGauge(prometheus.GaugeOpts{
			Name: "isms_audit_log_entries_past_retention",
			Help: "Audit-log entries older than the cutoff at the last run",
		}),
		PurgeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "isms_audit_log_purge_duration_seconds",
			Help:    "Duration of the bulk delete",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),
		LastPurge: f.NewGauge(prometheus.GaugeOpts{
			Name: "isms_audit_log_last_purge_timestamp_seconds",
			Help: "Unix time of the last completed purge",
		}),
	}
}

// RecordRun counts a run with its outcome and the matching entry count.
func (m *Metrics) RecordRun(outcome string, found int) {
	m.Runs.WithLabelValues(outcome).Inc()
	m.EntriesFound.Set(float64(found))
}

// RecordPurge records a completed delete.
func (m *Metrics) RecordPurge(deleted int, elapsed time.Duration, at time.Time) {
	m.EntriesPurged.Add(float64(deleted))
	m.PurgeDuration.Observe(elapsed.Seconds())
	m.LastPurge.Set(float64(at.Unix()))
}

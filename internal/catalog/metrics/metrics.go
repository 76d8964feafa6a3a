package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sync outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Metrics provides observability for catalogue synchronization.
type Metrics struct {
	SyncRuns          *prometheus.CounterVec
	Requirements      *prometheus.CounterVec
	FrameworksCreated prometheus.Counter
	SyncDuration      *prometheus.HistogramVec
}

// New registers the catalogue metrics with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		SyncRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "isms_framework_sync_runs_total",
			Help: "Framework sync runs by outcome",
		}, []string{"framework", "outcome"}),
		Requirements: f.NewCounterVec(prometheus.CounterOpts{
			Name: "isms_framework_requirements_total",
			Help: "Requirements processed by sync action (created, updated, skipped)",
		}, []string{"framework", "action"}),
		FrameworksCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "isms_frameworks_created_total",
			Help: "Frameworks created by sync runs",
		}),
		SyncDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "isms_framework_sync_duration_seconds",
			Help:    "Duration of framework sync runs",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"framework"}),
	}
}

// RecordRun counts one sync run and its per-requirement actions.
func (m *Metrics) RecordRun(framework, outcome string, created, updated, skipped int) {
	m.SyncRuns.WithLabelValues(framework, outcome).Inc()
	m.Requirements.WithLabelValues(framework, "created").Add(float64(created))
	m.Requirements.WithLabelValues(framework, "updated").Add(float64(updated))
	m.Requirements.WithLabelValues(framework, "skipped").Add(float64(skipped))
}

func (m *Metrics) IncrementFrameworkCreated() {
	m.FrameworksCreated.Inc()
}

// ObserveSync records the duration of a sync run.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveSync(framework string, start time.Time) {
	m.SyncDuration.WithLabelValues(framework).Observe(time.Since(start).Seconds())
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ms-reminders/internal/reminder"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// SweepMetrics records sweep outcomes; it implements reminder.Recorder.
type SweepMetrics struct {
	runs       *prometheus.CounterVec
	examined   *prometheus.CounterVec
	created    *prometheus.CounterVec
	suppressed *prometheus.CounterVec
	itemErrors *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewSweepMetrics registers the sweep collectors with reg.
func NewSweepMetrics(reg prometheus.Registerer) *SweepMetrics {
	factory := promauto.With(reg)

	return &SweepMetrics{
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reminder_sweep_runs_total",
				Help: "Total number of reminder sweep runs",
			},
			[]string{"sweep", "outcome"},
		),
		examined: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reminder_candidates_examined_total",
				Help: "Candidate records examined by reminder sweeps",
			},
			[]string{"sweep"},
		),
		created: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reminder_notifications_created_total",
				Help: "Reminder notifications written",
			},
			[]string{"sweep"},
		),
		suppressed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reminder_notifications_suppressed_total",
				Help: "Reminders skipped because one was already sent in the lookback window",
			},
			[]string{"sweep"},
		),
		itemErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reminder_item_errors_total",
				Help: "Per-record failures during reminder sweeps",
			},
			[]string{"sweep", "kind"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reminder_sweep_duration_seconds",
				Help:    "Duration of reminder sweep runs",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"sweep"},
		),
	}
}

func (m *SweepMetrics) ObserveSweep(res reminder.SweepResult, elapsed time.Duration, err error) {
	sweep := string(res.Sweep)

	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeFailure
	}
	m.runs.WithLabelValues(sweep, outcome).Inc()
	m.duration.WithLabelValues(sweep).Observe(elapsed.Seconds())

	m.examined.WithLabelValues(sweep).Add(float64(res.Examined))
	m.created.WithLabelValues(sweep).Add(float64(res.Created))
	m.suppressed.WithLabelValues(sweep).Add(float64(res.Suppressed))
	for _, e := range res.Errors {
		m.itemErrors.WithLabelValues(sweep, string(e.Kind)).Inc()
	}
}

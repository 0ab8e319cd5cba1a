package jobmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// RunRecorder counts job runs by task and status.
type RunRecorder interface {
	JobProcessed(task, status string)
}

// Metrics exposes Prometheus collectors for background jobs.
type Metrics struct {
	runs        RunRecorder
	duration    *prometheus.HistogramVec
	equationGap prometheus.Gauge
}

// NewMetrics registers the job collectors against registerer. Run counts are
// forwarded to runs, which may be nil.
func NewMetrics(registerer prometheus.Registerer, runs RunRecorder) *Metrics {
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "odyssey_job_duration_seconds",
		Help:    "Duration in seconds of background job executions.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	gap := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "odyssey_ledger_equation_gap",
		Help: "Absolute difference between debit-normal and credit-normal balances at the last integrity check.",
	})
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	registerer.MustRegister(duration, gap)
	return &Metrics{runs: runs, duration: duration, equationGap: gap}
}

// Tracker provides lifecycle instrumentation helpers for a single job run.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
}

// Track spawns a tracker for the given job name.
func (m *Metrics) Track(job string) *Tracker {
	return &Tracker{metrics: m, job: job, start: time.Now()}
}

// End records duration and outcome, returning err untouched.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.job == "" {
		return err
	}
	status := StatusOK
	if err != nil {
		status = StatusFailed
	}
	if t.metrics.runs != nil {
		t.metrics.runs.JobProcessed(t.job, status)
	}
	t.metrics.duration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}

// SetEquationGap publishes the last measured accounting equation gap.
func (m *Metrics) SetEquationGap(gap float64) {
	if m == nil {
		return
	}
	m.equationGap.Set(gap)
}

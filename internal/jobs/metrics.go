// Package jobmetrics instruments background job runs.
package jobmetrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the queue and execution collectors.
type Metrics struct {
	enqueued *prometheus.CounterVec
	runs     *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the collectors on registerer. A nil registerer returns
// a process-wide instance registered on the default registry.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = build(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return build(registerer)
}

func build(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		enqueued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "devcamper_jobs_enqueued_total",
			Help: "Tasks handed to the queue by the API.",
		}, []string{"job"}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "devcamper_jobs_total",
			Help: "Task executions by job and outcome.",
		}, []string{"job", "status"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "devcamper_jobs_failures_total",
			Help: "Failed task executions by job.",
		}, []string{"job"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "devcamper_job_duration_seconds",
			Help:    "Task execution time.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"job"}),
	}
}

// Enqueued counts one task of job handed to the queue.
func (m *Metrics) Enqueued(job string) {
	if m == nil {
		return
	}
	m.enqueued.WithLabelValues(job).Inc()
}

// Tracker times a single task execution.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
}

// Track starts timing an execution of job.
func (m *Metrics) Track(job string) *Tracker {
	return &Tracker{metrics: m, job: job, start: time.Now()}
}

// End records the outcome and returns err unchanged.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil {
		return err
	}
	status := "success"
	if err != nil {
		status = "failure"
		t.metrics.failures.WithLabelValues(t.job).Inc()
	}
	t.metrics.runs.WithLabelValues(t.job, status).Inc()
	t.metrics.duration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}

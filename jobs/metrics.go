package jobs

import (
	"context"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes Prometheus collectors for background job processing.
type Metrics struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics builds the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskdeck_job_runs_total",
			Help: "Background job executions by task type.",
		}, []string{"type"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskdeck_job_failures_total",
			Help: "Background job executions that returned an error.",
		}, []string{"type"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskdeck_job_duration_seconds",
			Help:    "Background job execution time.",
			Buckets: prometheus.DefBuckets,
		}, []string{"type"}),
	}
	m.registry.MustRegister(m.runs, m.failures, m.duration)
	return m
}

// Handler serves the collected metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware instruments every processed task.
func (m *Metrics) Middleware(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
		start := time.Now()
		err := next.ProcessTask(ctx, task)
		m.runs.WithLabelValues(task.Type()).Inc()
		if err != nil {
			m.failures.WithLabelValues(task.Type()).Inc()
		}
		m.duration.WithLabelValues(task.Type()).Observe(time.Since(start).Seconds())
		return err
	})
}

// Package metrics holds the Prometheus collectors for the execution
// core, grounded on internal/metrics/metrics.go's collector set but
// trimmed to seven collectors.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the execution core's collectors. Only the engine records
// against them (RecordExecution, RecordNode); WebhookTriggers,
// ScheduledFires and ScheduledSkips are registered but nothing in this
// module increments them.
type Metrics struct {
	ExecutionsTotal    *prometheus.CounterVec
	ExecutionDuration  *prometheus.HistogramVec
	NodeExecutionTotal *prometheus.CounterVec
	NodeDuration       *prometheus.HistogramVec
	WebhookTriggers    *prometheus.CounterVec
	ScheduledFires     *prometheus.CounterVec
	ScheduledSkips     *prometheus.CounterVec
}

// New builds a fresh, unregistered Metrics set.
func New() *Metrics {
	return &Metrics{
		ExecutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoflow_executions_total",
				Help: "Total workflow executions by trigger type and outcome.",
			},
			[]string{"trigger", "status"},
		),
		ExecutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "autoflow_execution_duration_seconds",
				Help:    "Workflow execution wall time by trigger type.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"trigger"},
		),
		NodeExecutionTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoflow_node_executions_total",
				Help: "Total node executions by kind and outcome.",
			},
			[]string{"kind", "status"},
		),
		NodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "autoflow_node_duration_seconds",
				Help:    "Node execution duration by kind.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"kind"},
		),
		WebhookTriggers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoflow_webhook_triggers_total",
				Help: "Total webhook-triggered executions by workflow id.",
			},
			[]string{"workflow_id"},
		),
		ScheduledFires: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoflow_scheduled_fires_total",
				Help: "Total scheduled executions fired by workflow id.",
			},
			[]string{"workflow_id"},
		),
		ScheduledSkips: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoflow_scheduled_skips_total",
				Help: "Scheduled fires skipped because the previous run was still in flight.",
			},
			[]string{"workflow_id"},
		),
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg *prometheus.Registry) error {
	collectors := []prometheus.Collector{
		m.ExecutionsTotal, m.ExecutionDuration,
		m.NodeExecutionTotal, m.NodeDuration,
		m.WebhookTriggers, m.ScheduledFires, m.ScheduledSkips,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) RecordExecution(trigger, status string, seconds float64) {
	m.ExecutionsTotal.WithLabelValues(trigger, status).Inc()
	m.ExecutionDuration.WithLabelValues(trigger).Observe(seconds)
}

func (m *Metrics) RecordNode(kind, status string, seconds float64) {
	m.NodeExecutionTotal.WithLabelValues(kind, status).Inc()
	m.NodeDuration.WithLabelValues(kind).Observe(seconds)
}

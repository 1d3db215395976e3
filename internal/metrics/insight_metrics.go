// Package metrics exposes Prometheus metrics for the insight pipeline and
// action dispatch. Metrics are registered on the default registry; the host
// decides whether to serve them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PipelineRunsTotal counts completed pipeline runs.
	PipelineRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insight_pipeline_runs_total",
			Help: "Total number of completed insight pipeline runs",
		},
	)

	// PipelineDurationSeconds observes end-to-end pipeline run duration.
	PipelineDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insight_pipeline_duration_seconds",
			Help:    "Duration of insight pipeline runs",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	// WarehouseRowsBuilt counts fact rows built per category on the last run.
	WarehouseRowsBuilt = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "insight_warehouse_rows",
			Help: "Fact rows built in the last pipeline run by category",
		},
		[]string{"category"},
	)

	// InsightsGenerated counts insights produced per severity on the last run.
	InsightsGenerated = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "insights_generated",
			Help: "Insights produced in the last pipeline run by severity and category",
		},
		[]string{"severity", "category"},
	)

	// ActionsExecutedTotal counts action dispatches by type and outcome.
	ActionsExecutedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_actions_executed_total",
			Help: "Total insight action executions by action type and outcome",
		},
		[]string{"type", "outcome"}, // outcome: ok, rejected, error
	)

	// NotificationsPublishedTotal counts notification events published.
	NotificationsPublishedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insight_notifications_published_total",
			Help: "Total notification events published to the bus",
		},
	)
)

// Package pipeline wires the insight stages end to end: warehouse build,
// feature extraction, model training and scoring. One call recomputes
// everything from the supplied snapshot; no state survives between runs.
package pipeline

import (
	"time"

	"github.com/hasiripi/insight-engine/internal/features"
	"github.com/hasiripi/insight-engine/internal/metrics"
	"github.com/hasiripi/insight-engine/internal/models"
	"github.com/hasiripi/insight-engine/internal/scoring"
	"github.com/hasiripi/insight-engine/internal/training"
	"github.com/hasiripi/insight-engine/internal/warehouse"
	"github.com/rs/zerolog/log"
)

// Input is the snapshot of source entities for one run.
type Input = warehouse.BuildInput

// Result carries every intermediate and final artifact of one run.
type Result struct {
	Summary  warehouse.Summary            `json:"summary"`
	Features []models.InsightFeatureRow   `json:"features"`
	Models   models.InsightModelArtifacts `json:"models"`
	Insights []models.InsightRecord       `json:"insights"`
}

// Run executes the full pipeline. It is pure and synchronous; concurrent
// callers need no coordination. Callers wanting a consistent snapshot across
// stages should set Input.Now.
func Run(input Input) Result {
	started := time.Now()

	summary := warehouse.Build(input)
	featureRows := features.Extract(summary.Rows, summary.GeneratedAt)
	artifacts := training.Train(featureRows, summary.GeneratedAt)
	insights := scoring.Score(summary.Rows, artifacts)

	observe(summary, insights, time.Since(started))

	log.Info().
		Int("rows", len(summary.Rows)).
		Int("insights", len(insights)).
		Dur("elapsed", time.Since(started)).
		Msg("Insight pipeline completed")

	return Result{
		Summary:  summary,
		Features: featureRows,
		Models:   artifacts,
		Insights: insights,
	}
}

var allSeverities = []models.InsightSeverity{
	models.SeverityCritical,
	models.SeverityHigh,
	models.SeverityMedium,
	models.SeverityLow,
	models.SeverityInfo,
}

var allCategories = []models.InsightCategory{
	models.CategoryFinance,
	models.CategoryOperations,
	models.CategoryCapacity,
	models.CategoryCustomer,
}

func observe(summary warehouse.Summary, insights []models.InsightRecord, elapsed time.Duration) {
	metrics.PipelineRunsTotal.Inc()
	metrics.PipelineDurationSeconds.Observe(elapsed.Seconds())

	metrics.WarehouseRowsBuilt.WithLabelValues(string(models.CategoryFinance)).Set(float64(summary.Totals.Finance))
	metrics.WarehouseRowsBuilt.WithLabelValues(string(models.CategoryOperations)).Set(float64(summary.Totals.Operations))
	metrics.WarehouseRowsBuilt.WithLabelValues(string(models.CategoryCapacity)).Set(float64(summary.Totals.Capacity))
	metrics.WarehouseRowsBuilt.WithLabelValues(string(models.CategoryCustomer)).Set(float64(summary.Totals.Customer))

	counts := make(map[models.InsightSeverity]map[models.InsightCategory]int)
	for _, insight := range insights {
		if counts[insight.Severity] == nil {
			counts[insight.Severity] = make(map[models.InsightCategory]int)
		}
		counts[insight.Severity][insight.Category]++
	}
	for _, severity := range allSeverities {
		for _, category := range allCategories {
			metrics.InsightsGenerated.
				WithLabelValues(string(severity), string(category)).
				Set(float64(counts[severity][category]))
		}
	}
}

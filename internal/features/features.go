// Package features projects warehouse fact rows into flat numeric feature
// rows. The projection exists solely so the trainer can compute population
// statistics without caring which category a signal came from.
package features

import (
	"time"

	"github.com/hasiripi/insight-engine/internal/models"
)

// Extract returns one feature row per fact row, order-preserving. Absent
// signals project to zero; no filtering happens here.
func Extract(rows []models.InsightFactRow, generatedAt time.Time) []models.InsightFeatureRow {
	out := make([]models.InsightFeatureRow, len(rows))
	for i, row := range rows {
		out[i] = models.InsightFeatureRow{
			ID:         row.InsightID,
			Category:   row.Category,
			Kind:       row.Kind,
			EntityID:   row.EntityID,
			EntityType: row.EntityType,
			Metrics: models.FeatureMetrics{
				AnomalyScore:          row.AnomalyScore,
				ChurnRiskScore:        row.ChurnRiskScore,
				CapacityPressureScore: row.CapacityPressureScore,
				BacklogVolume:         row.BacklogVolume,
				RevenueImpact:         row.RevenueImpact,
			},
			Timestamp: generatedAt,
			Tags:      row.Tags,
		}
	}
	return out
}

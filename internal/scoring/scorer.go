// Package scoring turns warehouse fact rows into final InsightRecords using
// the thresholds trained on the current run's population. The severity
// assigned here overrides the warehouse's provisional severity: the warehouse
// ladder uses fixed cutoffs as an early filter, this pass reflects where each
// row actually sits inside the current population.
package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/hasiripi/insight-engine/internal/models"
)

// Score produces one InsightRecord per fact row.
func Score(rows []models.InsightFactRow, artifacts models.InsightModelArtifacts) []models.InsightRecord {
	out := make([]models.InsightRecord, len(rows))
	for i, row := range rows {
		severity, score := evaluateSeverity(row, artifacts)
		title, summary := describeInsight(row)

		confidence := row.Confidence
		if confidence == 0 {
			confidence = 0.65
		}

		sourceModel := row.SourceModel
		if sourceModel == "" {
			sourceModel = artifacts.Anomaly.Version
		}

		out[i] = models.InsightRecord{
			ID:          row.InsightID,
			Title:       title,
			Summary:     summary,
			Category:    row.Category,
			Kind:        row.Kind,
			Severity:    severity,
			Score:       score,
			Confidence:  clamp01(confidence),
			GeneratedAt: row.SnapshotDate,
			Timeframe:   timeframeFor(row),
			Signals:     row.Signals,
			Actions:     ensureActionIDs(row.RecommendedActions, row.InsightID),
			Audience:    resolveAudience(row),
			EntityRefs:  buildEntityRefs(row),
			Tags:        row.Tags,
			SourceModel: sourceModel,
			Narrative:   narrativeFor(row),
		}
	}
	return out
}

// evaluateSeverity re-scores a row against the trained thresholds and returns
// the final severity together with a 0-1 score.
func evaluateSeverity(row models.InsightFactRow, artifacts models.InsightModelArtifacts) (models.InsightSeverity, float64) {
	switch row.Category {
	case models.CategoryFinance:
		score := math.Abs(row.AnomalyScore)
		model := artifacts.Anomaly
		var severity models.InsightSeverity
		switch {
		case score >= model.CriticalThreshold:
			severity = models.SeverityCritical
		case score >= model.WarningThreshold:
			severity = models.SeverityHigh
		case score >= model.Mean:
			severity = models.SeverityMedium
		default:
			severity = models.SeverityLow
		}
		denominator := model.CriticalThreshold
		if denominator == 0 {
			denominator = 1
		}
		return severity, clamp01(score / denominator)

	case models.CategoryCustomer:
		score := row.ChurnRiskScore
		threshold := artifacts.Churn.Threshold
		var severity models.InsightSeverity
		switch {
		case score >= threshold+0.2:
			severity = models.SeverityHigh
		case score >= threshold:
			severity = models.SeverityMedium
		default:
			severity = models.SeverityLow
		}
		return severity, clamp01(score)

	case models.CategoryCapacity:
		score := row.CapacityPressureScore
		var severity models.InsightSeverity
		switch {
		case score >= artifacts.Capacity.UpperBound:
			severity = models.SeverityCritical
		case score >= 0.95:
			severity = models.SeverityHigh
		case score >= 0.8:
			severity = models.SeverityMedium
		default:
			severity = models.SeverityLow
		}
		return severity, clamp01(score)

	case models.CategoryOperations:
		backlog := row.BacklogVolume
		severity := row.Severity
		switch {
		case backlog >= 14:
			severity = models.SeverityHigh
		case backlog >= 7:
			severity = models.SeverityMedium
		}
		return severity, clamp01(backlog / 21)
	}

	return row.Severity, clamp01(math.Abs(row.AnomalyScore))
}

func describeInsight(row models.InsightFactRow) (title, summary string) {
	label := row.EntityLabel
	if label == "" {
		label = row.EntityID
	}
	switch row.Category {
	case models.CategoryFinance:
		return fmt.Sprintf("Finans anomalisi · %s", label),
			"Beklenenden sapma gösteren bir finans kaydı tespit edildi."
	case models.CategoryOperations:
		return fmt.Sprintf("Operasyon önceliği · %s", label),
			"Görev yükünde artış veya gecikme gözlemlendi."
	case models.CategoryCapacity:
		return fmt.Sprintf("Kapasite baskısı · %s", label),
			"Kaynak kullanımı eşik değerlerini aşıyor."
	case models.CategoryCustomer:
		return fmt.Sprintf("Churn riski · %s", label),
			"Müşteri sağlığı düşüyor ve churn riski yükseliyor."
	default:
		return label, "Veri ambarından yeni bir insight üretildi."
	}
}

func resolveAudience(row models.InsightFactRow) *models.InsightAudience {
	switch row.Category {
	case models.CategoryFinance:
		return &models.InsightAudience{
			MinRole:          models.RoleFinance,
			OperationalRoles: []models.OperationalRole{models.OpsFinance, models.OpsAdmin},
		}
	case models.CategoryCapacity:
		return &models.InsightAudience{
			MinRole:          models.RoleManager,
			OperationalRoles: []models.OperationalRole{models.OpsOperations, models.OpsAdmin},
		}
	case models.CategoryCustomer:
		return &models.InsightAudience{
			MinRole:          models.RoleUser,
			OperationalRoles: []models.OperationalRole{models.OpsOperations, models.OpsProduct, models.OpsAdmin},
		}
	default:
		return &models.InsightAudience{
			MinRole:          models.RoleUser,
			OperationalRoles: []models.OperationalRole{models.OpsOperations, models.OpsPeople, models.OpsAdmin},
		}
	}
}

// buildEntityRefs links the primary entity first, then any secondary entity
// ids carried on the row.
func buildEntityRefs(row models.InsightFactRow) []models.EntityRef {
	refs := []models.EntityRef{
		{Type: row.EntityType, ID: row.EntityID, Label: row.EntityLabel},
	}
	if row.CustomerID != "" {
		refs = append(refs, models.EntityRef{Type: models.EntityCustomer, ID: row.CustomerID})
	}
	if row.FinancialRecordID != "" {
		refs = append(refs, models.EntityRef{Type: models.EntityFinancial, ID: row.FinancialRecordID})
	}
	if row.CapacityUnitID != "" {
		refs = append(refs, models.EntityRef{Type: models.EntityCapacity, ID: row.CapacityUnitID})
	}
	if row.TaskID != "" {
		refs = append(refs, models.EntityRef{Type: models.EntityTask, ID: row.TaskID})
	}
	return refs
}

// ensureActionIDs backfills stable ids for actions that arrive without one.
func ensureActionIDs(actions []models.InsightActionOption, insightID string) []models.InsightActionOption {
	out := make([]models.InsightActionOption, len(actions))
	for i, action := range actions {
		if action.ID == "" {
			action.ID = fmt.Sprintf("%s-action-%d", insightID, i)
		}
		out[i] = action
	}
	return out
}

func timeframeFor(row models.InsightFactRow) *models.Timeframe {
	due, ok := row.Attributes["dueDate"].(time.Time)
	if !ok || due.IsZero() {
		return nil
	}
	return &models.Timeframe{Start: due, End: due}
}

func narrativeFor(row models.InsightFactRow) string {
	if row.LeadingSignal == "" {
		return ""
	}
	trailing := row.TrailingSignal
	if trailing == "" {
		trailing = "ölçüm"
	}
	return fmt.Sprintf("%s sinyali, %s göstergesine kıyasla artış gösteriyor.", row.LeadingSignal, trailing)
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// Package warehouse builds the derived insight fact table. Each qualifying
// source entity becomes one normalized fact row carrying its precomputed raw
// signals (z-score, backlog days, utilisation pressure, churn risk) together
// with a provisional severity and the recommended follow-up actions.
//
// The builder is a pure function over the supplied snapshot: it performs no
// I/O, reads no shared state beyond the caller-supplied clock and produces
// identical rows for identical inputs.
package warehouse

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hasiripi/insight-engine/internal/models"
	"github.com/rs/zerolog/log"
)

// FactTable is the logical name of the derived fact table; it prefixes the
// source_model identifier on every row.
const FactTable = "dw_insights_fact"

// Thresholds applied while building rows. Capacity snapshots below the
// pressure floor and customers below the churn floor never enter the
// warehouse.
const (
	capacityPressureFloor = 0.75
	churnRiskFloor        = 0.4
)

// BuildInput is the snapshot of source entities for one pipeline run.
// Now is optional; when zero the builder reads the current time.
type BuildInput struct {
	Financials        []models.FinancialRecord
	Tasks             []models.Task
	CapacitySnapshots []models.CapacitySnapshot
	Customers         []models.CustomerProfile
	Now               time.Time
}

// Totals counts warehouse rows per category.
type Totals struct {
	Finance    int `json:"finance"`
	Operations int `json:"operations"`
	Capacity   int `json:"capacity"`
	Customer   int `json:"customer"`
}

// Summary is the warehouse build result.
type Summary struct {
	Rows        []models.InsightFactRow `json:"rows"`
	GeneratedAt time.Time               `json:"generatedAt"`
	Totals      Totals                  `json:"totals"`
}

// Build converts the snapshot into fact rows. All rows of one run share a
// single snapshot date.
func Build(input BuildInput) Summary {
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	rows := make([]models.InsightFactRow, 0,
		len(input.Financials)+len(input.Tasks)+len(input.CapacitySnapshots)+len(input.Customers))

	rows = appendFinanceRows(rows, input.Financials, now)
	rows = appendOperationsRows(rows, input.Tasks, now)
	rows = appendCapacityRows(rows, input.CapacitySnapshots, now)
	rows = appendCustomerRows(rows, input.Customers, now)

	totals := Totals{}
	for _, row := range rows {
		switch row.Category {
		case models.CategoryFinance:
			totals.Finance++
		case models.CategoryOperations:
			totals.Operations++
		case models.CategoryCapacity:
			totals.Capacity++
		case models.CategoryCustomer:
			totals.Customer++
		}
	}

	log.Debug().
		Int("rows", len(rows)).
		Int("finance", totals.Finance).
		Int("operations", totals.Operations).
		Int("capacity", totals.Capacity).
		Int("customer", totals.Customer).
		Time("generatedAt", now).
		Msg("Insight warehouse built")

	return Summary{Rows: rows, GeneratedAt: now, Totals: totals}
}

func appendFinanceRows(rows []models.InsightFactRow, records []models.FinancialRecord, now time.Time) []models.InsightFactRow {
	values := make([]float64, len(records))
	for i, record := range records {
		values[i] = normalizeAmount(record)
	}
	mean := computeMean(values)
	stdDev := computeStdDev(values, mean)

	for _, record := range records {
		amount := normalizeAmount(record)
		z := zScore(amount, mean, stdDev)
		severity := severityForScore(z)
		if severity == models.SeverityInfo {
			continue
		}

		leading := "volatility"
		if record.Status == models.FinancialOverdue {
			leading = "overdue"
		}
		taskPriority := models.PriorityMedium
		if record.Status == models.FinancialOverdue {
			taskPriority = models.PriorityHigh
		}

		rows = append(rows, models.InsightFactRow{
			InsightID:         "finance-" + record.ID,
			SnapshotDate:      now,
			Category:          models.CategoryFinance,
			Kind:              models.KindAnomaly,
			Severity:          severity,
			EntityType:        models.EntityFinancial,
			EntityID:          record.ID,
			EntityLabel:       record.Description,
			FinancialRecordID: record.ID,
			AnomalyScore:      round2(z),
			RevenueImpact:     round2(amount),
			LeadingSignal:     leading,
			TrailingSignal:    string(record.Status),
			Confidence:        math.Max(0.5, math.Min(0.95, 0.65+math.Abs(z)*0.1)),
			Tags:              []string{"finance", strings.ToLower(string(record.Status))},
			Attributes: map[string]interface{}{
				"dueDate": record.DueDate,
				"status":  string(record.Status),
				"type":    string(record.Type),
			},
			Signals: []models.InsightSignal{
				{
					Metric:    "normalizedAmount",
					Value:     round2(amount),
					Baseline:  f64(round2(mean)),
					Delta:     f64(round2(amount - mean)),
					Direction: directionFor(amount > mean),
					Unit:      "TRY",
				},
			},
			RecommendedActions: []models.InsightActionOption{
				{
					ID:          "task-" + record.ID,
					Type:        models.ActionTask,
					Label:       "Tahsilat takibi oluştur",
					Description: "Finans ekibi için otomatik takip görevi planla.",
					Task: &models.TaskActionPayload{
						Title:    fmt.Sprintf("Finans kaydı için aksiyon: %s", record.Description),
						DueDate:  record.DueDate,
						Priority: taskPriority,
					},
				},
				{
					ID:          "chatbot-" + record.ID,
					Type:        models.ActionChatbot,
					Label:       "Chatbot ile analiz et",
					Description: "AI destekli açıklama ve öneri iste.",
					Chatbot: &models.ChatbotActionPayload{
						Prompt: fmt.Sprintf("Finans kaydı %s için anormallik analizi yap ve öneriler sun.", record.Description),
					},
				},
			},
			SourceModel: FactTable + ":finance.zscore",
		})
	}
	return rows
}

func appendOperationsRows(rows []models.InsightFactRow, tasks []models.Task, now time.Time) []models.InsightFactRow {
	for _, task := range tasks {
		overdue := 0
		if !task.DueDate.IsZero() {
			overdue = overdueDays(task.DueDate, now)
		}

		var severity models.InsightSeverity
		switch {
		case overdue >= 7:
			severity = models.SeverityHigh
		case overdue > 0:
			severity = models.SeverityMedium
		case task.Priority == models.PriorityHigh:
			severity = models.SeverityMedium
		default:
			severity = models.SeverityInfo
		}
		if severity == models.SeverityInfo && overdue <= 0 {
			continue
		}

		tag := "priority"
		leading := "priority"
		if overdue > 0 {
			tag = "overdue"
			leading = "overdue"
		}
		backlog := 0.0
		if overdue > 0 {
			backlog = float64(overdue)
		}

		rows = append(rows, models.InsightFactRow{
			InsightID:      "task-" + task.ID,
			SnapshotDate:   now,
			Category:       models.CategoryOperations,
			Kind:           models.KindRecommendation,
			Severity:       severity,
			EntityType:     models.EntityTask,
			EntityID:       task.ID,
			EntityLabel:    task.Title,
			TaskID:         task.ID,
			BacklogVolume:  backlog,
			LeadingSignal:  leading,
			TrailingSignal: task.Status,
			Confidence:     0.7,
			Tags:           []string{"operations", tag},
			Attributes: map[string]interface{}{
				"dueDate":  task.DueDate,
				"priority": string(task.Priority),
				"status":   task.Status,
			},
			Signals: []models.InsightSignal{
				{
					Metric:    "overdueDays",
					Value:     float64(overdue),
					Direction: flatOrUp(overdue > 0),
					Unit:      "days",
				},
			},
			RecommendedActions: []models.InsightActionOption{
				{
					ID:          "automation-" + task.ID,
					Type:        models.ActionAutomation,
					Label:       "Görev otomasyonunu tetikle",
					Description: "Takımın kapasitesine göre yeniden planla.",
					Automation: &models.AutomationActionPayload{
						Command:      "createTask",
						SourceTaskID: task.ID,
					},
				},
				{
					ID:    "chatbot-task-" + task.ID,
					Type:  models.ActionChatbot,
					Label: "Chatbot ile planla",
					Chatbot: &models.ChatbotActionPayload{
						Prompt: fmt.Sprintf("Görev %s için yeniden planlama önerisi üret.", task.Title),
					},
				},
			},
			SourceModel: FactTable + ":tasks.backlog",
		})
	}
	return rows
}

func appendCapacityRows(rows []models.InsightFactRow, snapshots []models.CapacitySnapshot, now time.Time) []models.InsightFactRow {
	for _, snapshot := range snapshots {
		backlogRatio := 0.0
		if snapshot.TotalCapacity > 0 {
			backlogRatio = snapshot.Backlog / snapshot.TotalCapacity
		}
		pressure := math.Max(snapshot.Utilisation, backlogRatio)
		if pressure < capacityPressureFloor {
			continue
		}

		var severity models.InsightSeverity
		switch {
		case pressure >= 1:
			severity = models.SeverityCritical
		case pressure >= 0.9:
			severity = models.SeverityHigh
		default:
			severity = models.SeverityMedium
		}

		tag := "tight"
		if snapshot.Utilisation >= 1 {
			tag = "overbooked"
		}
		taskPriority := models.PriorityMedium
		if severity == models.SeverityCritical {
			taskPriority = models.PriorityHigh
		}

		rows = append(rows, models.InsightFactRow{
			InsightID:             "capacity-" + snapshot.ID,
			SnapshotDate:          now,
			Category:              models.CategoryCapacity,
			Kind:                  models.KindCapacity,
			Severity:              severity,
			EntityType:            models.EntityCapacity,
			EntityID:              snapshot.UnitID,
			EntityLabel:           snapshot.UnitLabel,
			CapacityUnitID:        snapshot.UnitID,
			CapacityPressureScore: round2(pressure),
			BacklogVolume:         round2(snapshot.Backlog),
			LeadingSignal:         "utilisation",
			TrailingSignal:        snapshot.Status,
			Confidence:            0.75,
			Tags:                  []string{"capacity", tag},
			Attributes: map[string]interface{}{
				"utilisation": round2(snapshot.Utilisation),
				"backlog":     snapshot.Backlog,
				"available":   snapshot.Available,
			},
			Signals: []models.InsightSignal{
				{
					Metric:    "utilisation",
					Value:     round2(snapshot.Utilisation),
					Baseline:  f64(capacityPressureFloor),
					Direction: flatOrUp(snapshot.Utilisation > capacityPressureFloor),
					Unit:      "ratio",
				},
				{
					Metric:    "backlog",
					Value:     snapshot.Backlog,
					Direction: directionFor(snapshot.Backlog > snapshot.Available),
					Unit:      "units",
				},
			},
			RecommendedActions: []models.InsightActionOption{
				{
					ID:    "task-capacity-" + snapshot.ID,
					Type:  models.ActionTask,
					Label: "Kaynak ekle",
					Task: &models.TaskActionPayload{
						Title:    fmt.Sprintf("%s kapasitesini artır", snapshot.UnitLabel),
						Priority: taskPriority,
					},
				},
				{
					ID:    "chatbot-capacity-" + snapshot.ID,
					Type:  models.ActionChatbot,
					Label: "Chatbot optimizasyonu",
					Chatbot: &models.ChatbotActionPayload{
						Prompt: fmt.Sprintf("%s için kapasite optimizasyon önerileri oluştur.", snapshot.UnitLabel),
					},
				},
			},
			SourceModel: FactTable + ":capacity.threshold",
		})
	}
	return rows
}

func appendCustomerRows(rows []models.InsightFactRow, customers []models.CustomerProfile, now time.Time) []models.InsightFactRow {
	for _, customer := range customers {
		churn := customer.ChurnRisk()
		if churn < churnRiskFloor {
			continue
		}

		var severity models.InsightSeverity
		switch {
		case churn >= 0.8:
			severity = models.SeverityHigh
		case churn >= 0.6:
			severity = models.SeverityMedium
		default:
			severity = models.SeverityLow
		}

		taskPriority := models.PriorityMedium
		if severity == models.SeverityHigh {
			taskPriority = models.PriorityHigh
		}
		var audience []string
		if customer.OwnerID != "" {
			audience = []string{customer.OwnerID}
		}

		attrs := map[string]interface{}{
			"lifecycleStage": customer.LifecycleStage,
		}
		if customer.HealthScore != nil {
			attrs["healthScore"] = *customer.HealthScore
		}
		if customer.LastInteractionAt != nil {
			attrs["lastInteractionAt"] = *customer.LastInteractionAt
		}

		rows = append(rows, models.InsightFactRow{
			InsightID:      "customer-" + customer.ID,
			SnapshotDate:   now,
			Category:       models.CategoryCustomer,
			Kind:           models.KindChurn,
			Severity:       severity,
			EntityType:     models.EntityCustomer,
			EntityID:       customer.ID,
			EntityLabel:    customer.Name,
			CustomerID:     customer.ID,
			ChurnRiskScore: round2(churn),
			RevenueImpact:  customer.MonthlyRecurringRevenue,
			LeadingSignal:  "churnRiskScore",
			TrailingSignal: customer.LifecycleStage,
			Confidence:     0.7,
			Tags:           []string{"customer", customer.LifecycleStage},
			Attributes:     attrs,
			Signals: []models.InsightSignal{
				{
					Metric:    "churnRiskScore",
					Value:     round2(churn),
					Baseline:  f64(0.35),
					Direction: models.DirectionUp,
				},
			},
			RecommendedActions: []models.InsightActionOption{
				{
					ID:    "task-customer-" + customer.ID,
					Type:  models.ActionTask,
					Label: "Müşteri kurtarma görevi",
					Task: &models.TaskActionPayload{
						Title:    fmt.Sprintf("%s için risk azaltma planı", customer.Name),
						Priority: taskPriority,
					},
				},
				{
					ID:    "chatbot-customer-" + customer.ID,
					Type:  models.ActionChatbot,
					Label: "Chatbot stratejisi",
					Chatbot: &models.ChatbotActionPayload{
						Prompt: fmt.Sprintf("%s müşterisi için churn azaltma önerileri üret.", customer.Name),
					},
				},
				{
					ID:    "notify-customer-" + customer.ID,
					Type:  models.ActionNotification,
					Label: "Bildirim gönder",
					Notification: &models.NotificationActionPayload{
						Message:  fmt.Sprintf("%s için churn riski %g%% seviyesinde.", customer.Name, round2(churn)*100),
						Audience: audience,
					},
				},
			},
			SourceModel: FactTable + ":customer.risk",
		})
	}
	return rows
}

// normalizeAmount signs the amount by flow direction: outgoing money is
// negative, incoming positive.
func normalizeAmount(record models.FinancialRecord) float64 {
	if record.Type == models.FlowOutgoing {
		return -math.Abs(record.Amount)
	}
	return math.Abs(record.Amount)
}

// severityForScore maps an absolute z-score onto the severity ladder.
func severityForScore(score float64) models.InsightSeverity {
	abs := math.Abs(score)
	switch {
	case abs >= 3:
		return models.SeverityCritical
	case abs >= 2:
		return models.SeverityHigh
	case abs >= 1:
		return models.SeverityMedium
	case abs >= 0.5:
		return models.SeverityLow
	default:
		return models.SeverityInfo
	}
}

func overdueDays(due, now time.Time) int {
	return int(math.Floor(now.Sub(due).Hours() / 24))
}

func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// computeStdDev is the sample standard deviation; it is zero for fewer than
// two samples so degenerate populations collapse every z-score to zero.
func computeStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

func zScore(value, mean, stdDev float64) float64 {
	if stdDev == 0 {
		return 0
	}
	return (value - mean) / stdDev
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func directionFor(up bool) models.SignalDirection {
	if up {
		return models.DirectionUp
	}
	return models.DirectionDown
}

func flatOrUp(up bool) models.SignalDirection {
	if up {
		return models.DirectionUp
	}
	return models.DirectionFlat
}

func f64(v float64) *float64 {
	return &v
}

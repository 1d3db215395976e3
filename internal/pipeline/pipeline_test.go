package pipeline

import (
	"reflect"
	"testing"
	"time"

	"github.com/hasiripi/insight-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var runAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func snapshotInput() Input {
	churnHigh := 0.85
	churnLow := 0.3
	return Input{
		Financials: []models.FinancialRecord{
			{ID: "f1", Description: "Ofis kirası", Amount: 100, Type: models.FlowOutgoing, Status: models.FinancialPaid},
			{ID: "f2", Description: "Yazılım lisansı", Amount: 100, Type: models.FlowOutgoing, Status: models.FinancialPaid},
			{ID: "f3", Description: "Donanım alımı", Amount: 5000, Type: models.FlowOutgoing, Status: models.FinancialOverdue, DueDate: runAt.AddDate(0, 0, -10)},
		},
		Tasks: []models.Task{
			{ID: "t1", Title: "Müşteri raporu", Status: "Open", Priority: models.PriorityMedium, DueDate: runAt.AddDate(0, 0, -15)},
			{ID: "t2", Title: "Rutin bakım", Status: "Open", Priority: models.PriorityLow},
		},
		CapacitySnapshots: []models.CapacitySnapshot{
			{ID: "cap1", UnitID: "u1", UnitLabel: "Destek ekibi", Utilisation: 1.0, TotalCapacity: 10, Backlog: 10, Status: "at-risk"},
			{ID: "cap2", UnitID: "u2", UnitLabel: "Satış ekibi", Utilisation: 0.5, TotalCapacity: 10, Backlog: 2, Status: "healthy"},
		},
		Customers: []models.CustomerProfile{
			{ID: "c1", Name: "Akme", LifecycleStage: "active", ChurnRiskScore: &churnHigh, OwnerID: "user-7", MonthlyRecurringRevenue: 1200},
			{ID: "c2", Name: "Beta", LifecycleStage: "active", ChurnRiskScore: &churnLow},
		},
		Now: runAt,
	}
}

func findInsight(t *testing.T, insights []models.InsightRecord, id string) models.InsightRecord {
	t.Helper()
	for _, insight := range insights {
		if insight.ID == id {
			return insight
		}
	}
	t.Fatalf("insight %q not found", id)
	return models.InsightRecord{}
}

func TestRunEndToEnd(t *testing.T) {
	result := Run(snapshotInput())

	// Quiet entities (t2, cap2, c2) never reach the warehouse.
	assert.Equal(t, 3, result.Summary.Totals.Finance)
	assert.Equal(t, 1, result.Summary.Totals.Operations)
	assert.Equal(t, 1, result.Summary.Totals.Capacity)
	assert.Equal(t, 1, result.Summary.Totals.Customer)
	assert.True(t, result.Summary.GeneratedAt.Equal(runAt))

	require.Len(t, result.Summary.Rows, 6)
	require.Len(t, result.Features, len(result.Summary.Rows))
	require.Len(t, result.Insights, 6)

	assert.Equal(t, "insights-anomaly-v1", result.Models.Anomaly.Version)
	assert.Equal(t, 3, result.Models.Anomaly.SampleSize)
	assert.True(t, result.Models.Anomaly.TrainedAt.Equal(runAt))
}

func TestRunFinanceOutlier(t *testing.T) {
	result := Run(snapshotInput())

	outlier := findInsight(t, result.Insights, "finance-f3")
	// The 5000 TRY outgoing record stands out against two 100 TRY records but
	// the small sample keeps the z-score in the medium band.
	assert.Equal(t, models.SeverityMedium, outlier.Severity)
	assert.Equal(t, models.CategoryFinance, outlier.Category)
	assert.Contains(t, outlier.Title, "Donanım alımı")
	require.NotNil(t, outlier.Audience)
	assert.Equal(t, models.RoleFinance, outlier.Audience.MinRole)
	assert.Greater(t, outlier.Score, 0.0)
	assert.LessOrEqual(t, outlier.Score, 1.0)

	peer := findInsight(t, result.Insights, "finance-f1")
	assert.Equal(t, models.SeverityLow, peer.Severity)
}

func TestRunCapacityCritical(t *testing.T) {
	result := Run(snapshotInput())

	capacity := findInsight(t, result.Insights, "capacity-cap1")
	// Fully booked with a backlog matching total capacity: pressure 1.0 sits
	// on the trained upper bound, so the model confirms critical.
	assert.Equal(t, models.SeverityCritical, capacity.Severity)
	assert.Equal(t, models.KindCapacity, capacity.Kind)
	require.NotNil(t, capacity.Audience)
	assert.Equal(t, models.RoleManager, capacity.Audience.MinRole)
}

func TestRunCustomerChurn(t *testing.T) {
	result := Run(snapshotInput())

	churn := findInsight(t, result.Insights, "customer-c1")
	// With a single churn sample the trained threshold equals the observed
	// risk, so the scorer lands on medium rather than the provisional high.
	assert.Equal(t, models.SeverityMedium, churn.Severity)
	assert.Equal(t, 0.85, churn.Score)

	var notify *models.InsightActionOption
	for i := range churn.Actions {
		if churn.Actions[i].Type == models.ActionNotification {
			notify = &churn.Actions[i]
		}
	}
	require.NotNil(t, notify, "churn insight should carry a notification action")
	require.NotNil(t, notify.Notification)
	assert.Equal(t, []string{"user-7"}, notify.Notification.Audience)
}

func TestRunOperationsBacklog(t *testing.T) {
	result := Run(snapshotInput())

	task := findInsight(t, result.Insights, "task-t1")
	// 15 days overdue crosses the 14-day backlog cutoff.
	assert.Equal(t, models.SeverityHigh, task.Severity)
	assert.InDelta(t, 15.0/21.0, task.Score, 1e-9)
}

func TestRunDeterministic(t *testing.T) {
	first := Run(snapshotInput())
	second := Run(snapshotInput())
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical snapshots must produce identical results")
	}
}

func TestRunEmptySnapshot(t *testing.T) {
	result := Run(Input{Now: runAt})

	assert.Empty(t, result.Summary.Rows)
	assert.Empty(t, result.Insights)
	// Training still produces versioned artifacts over the empty population.
	assert.Equal(t, "insights-churn-v1", result.Models.Churn.Version)
	assert.Equal(t, 0.6, result.Models.Churn.Threshold)
}

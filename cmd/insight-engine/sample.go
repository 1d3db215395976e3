package main

import (
	"time"

	"github.com/hasiripi/insight-engine/internal/models"
	"github.com/hasiripi/insight-engine/internal/pipeline"
)

// sampleSnapshot is a small demo dataset that exercises all four categories.
func sampleSnapshot() pipeline.Input {
	now := time.Now()
	churnHigh := 0.82
	healthLow := 0.3

	return pipeline.Input{
		Financials: []models.FinancialRecord{
			{ID: "fin-1", Description: "Ofis kirası", Amount: 4200, Type: models.FlowOutgoing, Status: models.FinancialPending, DueDate: now.AddDate(0, 0, 10)},
			{ID: "fin-2", Description: "Yazılım aboneliği", Amount: 380, Type: models.FlowOutgoing, Status: models.FinancialPaid, DueDate: now.AddDate(0, 0, -20)},
			{ID: "fin-3", Description: "Donanım alımı", Amount: 18500, Type: models.FlowOutgoing, Status: models.FinancialOverdue, DueDate: now.AddDate(0, 0, -5)},
			{ID: "fin-4", Description: "Danışmanlık geliri", Amount: 5600, Type: models.FlowIncoming, Status: models.FinancialPending, DueDate: now.AddDate(0, 0, 15)},
			{ID: "fin-5", Description: "Lisans geliri", Amount: 4900, Type: models.FlowIncoming, Status: models.FinancialPaid, DueDate: now.AddDate(0, 0, -2)},
		},
		Tasks: []models.Task{
			{ID: "task-1", Title: "Müşteri raporunu hazırla", Priority: models.PriorityHigh, Status: "In Progress", DueDate: now.AddDate(0, 0, -9)},
			{ID: "task-2", Title: "Sprint planlaması", Priority: models.PriorityMedium, Status: "To Do", DueDate: now.AddDate(0, 0, 3)},
			{ID: "task-3", Title: "Altyapı bakımı", Priority: models.PriorityHigh, Status: "To Do"},
		},
		CapacitySnapshots: []models.CapacitySnapshot{
			{ID: "cap-1", UnitID: "unit-dev", UnitLabel: "Geliştirme", TotalCapacity: 40, Allocated: 42, Backlog: 18, Available: 0, Utilisation: 1.05, Status: "overloaded"},
			{ID: "cap-2", UnitID: "unit-ops", UnitLabel: "Operasyon", TotalCapacity: 30, Allocated: 24, Backlog: 6, Available: 6, Utilisation: 0.8},
			{ID: "cap-3", UnitID: "unit-support", UnitLabel: "Destek", TotalCapacity: 20, Allocated: 10, Backlog: 2, Available: 10, Utilisation: 0.5},
		},
		Customers: []models.CustomerProfile{
			{ID: "cust-1", Name: "Akme Lojistik", ChurnRiskScore: &churnHigh, LifecycleStage: "at-risk", MonthlyRecurringRevenue: 2400, OwnerID: "user-7"},
			{ID: "cust-2", Name: "Demir Tekstil", HealthScore: &healthLow, LifecycleStage: "active", MonthlyRecurringRevenue: 1800, OwnerID: "user-3"},
		},
	}
}

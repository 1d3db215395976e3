package models

import "time"

// FinancialFlow indicates the direction of money movement on a record.
type FinancialFlow string

const (
	FlowIncoming FinancialFlow = "Incoming"
	FlowOutgoing FinancialFlow = "Outgoing"
)

// FinancialStatus is the lifecycle status of a financial record.
type FinancialStatus string

const (
	FinancialPending FinancialStatus = "Pending"
	FinancialOverdue FinancialStatus = "Overdue"
	FinancialPaid    FinancialStatus = "Paid"
)

// FinancialRecord is a single payable/receivable supplied by the host system.
type FinancialRecord struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Type        FinancialFlow   `json:"type"`
	Status      FinancialStatus `json:"status"`
	DueDate     time.Time       `json:"dueDate,omitempty"`
}

// TaskPriority is the host system's task priority scale.
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "High"
	PriorityMedium TaskPriority = "Medium"
	PriorityLow    TaskPriority = "Low"
)

// Task is an operational work item supplied by the host system.
type Task struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Priority TaskPriority `json:"priority"`
	Status   string       `json:"status"`
	// DueDate is optional; the zero value means no due date is set.
	DueDate time.Time `json:"dueDate,omitempty"`
}

// CapacitySnapshot is a point-in-time utilisation reading for one delivery unit.
type CapacitySnapshot struct {
	ID            string  `json:"id"`
	UnitID        string  `json:"unitId"`
	UnitLabel     string  `json:"unitLabel"`
	TotalCapacity float64 `json:"totalCapacity"`
	Allocated     float64 `json:"allocated"`
	Backlog       float64 `json:"backlog"`
	Available     float64 `json:"available"`
	Utilisation   float64 `json:"utilisation"`
	Status        string  `json:"status,omitempty"`
}

// CustomerProfile is a customer account supplied by the host CRM.
// ChurnRiskScore and HealthScore are optional; when only HealthScore is
// present the churn risk derives as 1 - healthScore.
type CustomerProfile struct {
	ID                      string     `json:"id"`
	Name                    string     `json:"name"`
	ChurnRiskScore          *float64   `json:"churnRiskScore,omitempty"`
	HealthScore             *float64   `json:"healthScore,omitempty"`
	LifecycleStage          string     `json:"lifecycleStage"`
	MonthlyRecurringRevenue float64    `json:"monthlyRecurringRevenue,omitempty"`
	OwnerID                 string     `json:"ownerId,omitempty"`
	LastInteractionAt       *time.Time `json:"lastInteractionAt,omitempty"`
}

// ChurnRisk resolves the effective churn risk for the customer.
func (c *CustomerProfile) ChurnRisk() float64 {
	if c.ChurnRiskScore != nil {
		return *c.ChurnRiskScore
	}
	if c.HealthScore != nil && *c.HealthScore != 0 {
		return 1 - *c.HealthScore
	}
	return 0
}

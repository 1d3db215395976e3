// Package models defines the data types shared across the insight pipeline:
// the source entities supplied by the host system, the derived warehouse and
// feature rows, the trained model artifacts and the externally visible
// InsightRecord.
package models

import "time"

// InsightCategory groups insights by the business domain they describe.
type InsightCategory string

const (
	CategoryFinance    InsightCategory = "finance"
	CategoryOperations InsightCategory = "operations"
	CategoryCapacity   InsightCategory = "capacity"
	CategoryCustomer   InsightCategory = "customer"
)

// InsightKind describes what sort of finding an insight represents.
type InsightKind string

const (
	KindAnomaly        InsightKind = "anomaly"
	KindRecommendation InsightKind = "recommendation"
	KindCapacity       InsightKind = "capacity"
	KindChurn          InsightKind = "churn"
)

// InsightSeverity is the ordinal risk level of an insight.
type InsightSeverity string

const (
	SeverityCritical InsightSeverity = "critical"
	SeverityHigh     InsightSeverity = "high"
	SeverityMedium   InsightSeverity = "medium"
	SeverityLow      InsightSeverity = "low"
	SeverityInfo     InsightSeverity = "info"
)

// SignalDirection is the observed movement of a metric relative to baseline.
type SignalDirection string

const (
	DirectionUp   SignalDirection = "up"
	DirectionDown SignalDirection = "down"
	DirectionFlat SignalDirection = "flat"
)

// InsightSignal is one observed metric backing an insight.
// Baseline and Delta are optional; nil means the signal carries no baseline.
type InsightSignal struct {
	Metric    string          `json:"metric"`
	Value     float64         `json:"value"`
	Baseline  *float64        `json:"baseline,omitempty"`
	Delta     *float64        `json:"delta,omitempty"`
	Direction SignalDirection `json:"direction"`
	Unit      string          `json:"unit,omitempty"`
}

// InsightActionType enumerates the executable follow-up kinds.
type InsightActionType string

const (
	ActionTask         InsightActionType = "task"
	ActionAutomation   InsightActionType = "automation"
	ActionChatbot      InsightActionType = "chatbot"
	ActionNotification InsightActionType = "notification"
	ActionLink         InsightActionType = "link"
)

// TaskActionPayload seeds a follow-up task. Empty fields fall back to the
// owning insight's title/summary and a Medium priority at dispatch time.
type TaskActionPayload struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Priority    TaskPriority `json:"priority,omitempty"`
	DueDate     time.Time    `json:"dueDate,omitempty"`
	Assignee    string       `json:"assignee,omitempty"`
}

// AutomationActionPayload seeds an automation command.
type AutomationActionPayload struct {
	Command      string       `json:"command"`
	SourceTaskID string       `json:"sourceTaskId,omitempty"`
	Title        string       `json:"title,omitempty"`
	Description  string       `json:"description,omitempty"`
	Assignee     string       `json:"assignee,omitempty"`
	Priority     TaskPriority `json:"priority,omitempty"`
	DueDate      time.Time    `json:"dueDate,omitempty"`
}

// ChatbotActionPayload seeds a chatbot completion request.
type ChatbotActionPayload struct {
	Prompt string `json:"prompt,omitempty"`
}

// NotificationActionPayload seeds a notification publish.
type NotificationActionPayload struct {
	Message  string                 `json:"message,omitempty"`
	Audience []string               `json:"audience,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// LinkActionPayload points at an external resource.
type LinkActionPayload struct {
	URL string `json:"url"`
}

// InsightActionOption is one executable follow-up attached to an insight.
// Exactly one payload variant matching Type is expected to be non-nil; the
// variants are built by the warehouse and validated at dispatch.
type InsightActionOption struct {
	ID          string            `json:"id"`
	Type        InsightActionType `json:"type"`
	Label       string            `json:"label"`
	Description string            `json:"description,omitempty"`

	Task         *TaskActionPayload         `json:"task,omitempty"`
	Automation   *AutomationActionPayload   `json:"automation,omitempty"`
	Chatbot      *ChatbotActionPayload      `json:"chatbot,omitempty"`
	Notification *NotificationActionPayload `json:"notification,omitempty"`
	Link         *LinkActionPayload         `json:"link,omitempty"`
}

// InsightAudience gates who may see an insight. Empty fields mean no
// restriction on that axis.
type InsightAudience struct {
	MinRole          RoleKey           `json:"minRole,omitempty"`
	Roles            []RoleKey         `json:"roles,omitempty"`
	OperationalRoles []OperationalRole `json:"operationalRoles,omitempty"`
	Departments      []string          `json:"departments,omitempty"`
	Tags             []string          `json:"tags,omitempty"`
}

// EntityRef links an insight back to a source entity.
type EntityRef struct {
	Type  EntityType `json:"type"`
	ID    string     `json:"id"`
	Label string     `json:"label,omitempty"`
}

// EntityType names the kind of source entity a fact row or ref points at.
type EntityType string

const (
	EntityFinancial EntityType = "financial"
	EntityTask      EntityType = "task"
	EntityCapacity  EntityType = "capacity"
	EntityCustomer  EntityType = "customer"
)

// Timeframe bounds the period an insight speaks about.
type Timeframe struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// InsightRecord is the externally visible, scored, audience-tagged insight.
type InsightRecord struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Summary     string                `json:"summary"`
	Category    InsightCategory       `json:"category"`
	Kind        InsightKind           `json:"kind"`
	Severity    InsightSeverity       `json:"severity"`
	Score       float64               `json:"score"`
	Confidence  float64               `json:"confidence"`
	GeneratedAt time.Time             `json:"generatedAt"`
	Timeframe   *Timeframe            `json:"timeframe,omitempty"`
	Signals     []InsightSignal       `json:"signals,omitempty"`
	Actions     []InsightActionOption `json:"actions,omitempty"`
	Audience    *InsightAudience      `json:"audience,omitempty"`
	EntityRefs  []EntityRef           `json:"entityRefs,omitempty"`
	Tags        []string              `json:"tags,omitempty"`
	SourceModel string                `json:"sourceModel,omitempty"`
	Narrative   string                `json:"narrative,omitempty"`
}

// InsightFactRow is one normalized row in the derived insight warehouse,
// one per qualifying source entity. Numeric signal fields default to zero
// when the category does not carry them.
type InsightFactRow struct {
	InsightID    string          `json:"insight_id"`
	SnapshotDate time.Time       `json:"snapshot_date"`
	Category     InsightCategory `json:"category"`
	Kind         InsightKind     `json:"kind"`
	Severity     InsightSeverity `json:"severity"`
	EntityType   EntityType      `json:"entity_type"`
	EntityID     string          `json:"entity_id"`
	EntityLabel  string          `json:"entity_label,omitempty"`

	FinancialRecordID string `json:"financial_record_id,omitempty"`
	TaskID            string `json:"task_id,omitempty"`
	CapacityUnitID    string `json:"capacity_unit_id,omitempty"`
	CustomerID        string `json:"customer_id,omitempty"`

	AnomalyScore          float64 `json:"anomaly_score,omitempty"`
	ChurnRiskScore        float64 `json:"churn_risk_score,omitempty"`
	CapacityPressureScore float64 `json:"capacity_pressure_score,omitempty"`
	RevenueImpact         float64 `json:"revenue_impact,omitempty"`
	BacklogVolume         float64 `json:"backlog_volume,omitempty"`

	LeadingSignal  string  `json:"leading_signal,omitempty"`
	TrailingSignal string  `json:"trailing_signal,omitempty"`
	Confidence     float64 `json:"confidence,omitempty"`

	Tags               []string               `json:"tags"`
	Attributes         map[string]interface{} `json:"attributes"`
	Signals            []InsightSignal        `json:"signals"`
	RecommendedActions []InsightActionOption  `json:"recommended_actions"`
	SourceModel        string                 `json:"source_model,omitempty"`
}

// FeatureMetrics is the flat numeric projection used for population statistics.
type FeatureMetrics struct {
	AnomalyScore          float64 `json:"anomalyScore"`
	ChurnRiskScore        float64 `json:"churnRiskScore"`
	CapacityPressureScore float64 `json:"capacityPressureScore"`
	BacklogVolume         float64 `json:"backlogVolume"`
	RevenueImpact         float64 `json:"revenueImpact"`
}

// InsightFeatureRow projects a fact row into numeric features.
type InsightFeatureRow struct {
	ID         string          `json:"id"`
	Category   InsightCategory `json:"category"`
	Kind       InsightKind     `json:"kind"`
	EntityID   string          `json:"entityId"`
	EntityType EntityType      `json:"entityType"`
	Metrics    FeatureMetrics  `json:"metrics"`
	Timestamp  time.Time       `json:"timestamp"`
	Tags       []string        `json:"tags"`
}

// AnomalyModel holds the z-score thresholds trained over finance rows.
type AnomalyModel struct {
	Mean              float64   `json:"mean"`
	StdDev            float64   `json:"stdDev"`
	WarningThreshold  float64   `json:"warningThreshold"`
	CriticalThreshold float64   `json:"criticalThreshold"`
	FeatureNames      []string  `json:"featureNames"`
	Version           string    `json:"version"`
	TrainedAt         time.Time `json:"trainedAt"`
	SampleSize        int       `json:"sampleSize"`
}

// ChurnCoefficients are the inverse-dispersion weights of the churn model.
type ChurnCoefficients struct {
	ChurnRiskScore float64 `json:"churnRiskScore"`
	RevenueImpact  float64 `json:"revenueImpact"`
}

// ChurnModel holds the churn threshold trained over customer rows.
type ChurnModel struct {
	Coefficients ChurnCoefficients `json:"coefficients"`
	Intercept    float64           `json:"intercept"`
	Threshold    float64           `json:"threshold"`
	Version      string            `json:"version"`
	TrainedAt    time.Time         `json:"trainedAt"`
	SampleSize   int               `json:"sampleSize"`
}

// CapacityModel holds the pressure bounds trained over capacity rows.
type CapacityModel struct {
	UpperBound  float64   `json:"upperBound"`
	LowerBound  float64   `json:"lowerBound"`
	Trend       float64   `json:"trend"`
	Seasonality float64   `json:"seasonality"`
	Window      int       `json:"window"`
	Version     string    `json:"version"`
	TrainedAt   time.Time `json:"trainedAt"`
}

// InsightModelArtifacts bundles the three per-category models trained on one
// pipeline run. Artifacts are transient; nothing persists them between runs.
type InsightModelArtifacts struct {
	Anomaly  AnomalyModel  `json:"anomaly"`
	Churn    ChurnModel    `json:"churn"`
	Capacity CapacityModel `json:"capacity"`
}

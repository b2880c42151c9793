package models

import "time"

// RiskLevel is the ordinal risk band derived from a numeric score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// RiskAssessment is the full multi-dimensional assessment for one employee.
// Assessments are rebuilt from scratch on every computation cycle and never
// mutated in place.
type RiskAssessment struct {
	User             string    `json:"user"`
	OverallRiskScore float64   `json:"overall_risk_score"`
	RiskLevel        RiskLevel `json:"risk_level"`

	// Category sub-scores, each independently capped at 100.
	FileActivityRisk     float64 `json:"file_activity_risk"`
	LoginPatternRisk     float64 `json:"login_pattern_risk"`
	USBActivityRisk      float64 `json:"usb_activity_risk"`
	EmailActivityRisk    float64 `json:"email_activity_risk"`
	DatabaseActivityRisk float64 `json:"database_activity_risk"`
	BehavioralRisk       float64 `json:"behavioral_risk"`

	// AnomalyScore echoes the externally supplied baseline score.
	AnomalyScore float64 `json:"anomaly_score"`

	// FlaggedActivities holds anomalous entries first, then high/critical
	// severity entries, truncated to 20.
	FlaggedActivities []ActivityLogEntry `json:"flagged_activities"`

	// Recommendations is never empty.
	Recommendations []string `json:"recommendations"`

	LastUpdated time.Time `json:"last_updated"`
}

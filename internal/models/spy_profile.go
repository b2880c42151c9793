package models

import "time"

// Suspiciousness classifies a combined behavioral + physical-access profile.
// It is independent of RiskLevel and carries its own thresholds plus an
// unauthorized-access override.
type Suspiciousness string

const (
	SuspicionLow      Suspiciousness = "low"
	SuspicionMedium   Suspiciousness = "medium"
	SuspicionHigh     Suspiciousness = "high"
	SuspicionCritical Suspiciousness = "critical"
)

// UnifiedSpyProfile combines the behavioral score (60%) with the
// access-control score (40%) for one employee. Built fresh per analysis
// run; never mutated.
type UnifiedSpyProfile struct {
	User         string `json:"user"`
	EmployeeName string `json:"employee_name"`
	Department   string `json:"department,omitempty"`

	OverallRiskScore float64   `json:"overall_risk_score"` // the 60/40 blend
	RiskLevel        RiskLevel `json:"risk_level"`

	// Behavioral (CSV-derived) component.
	CSVRiskScore   float64  `json:"csv_risk_score"`
	CSVRiskFactors []string `json:"csv_risk_factors"`

	// Physical-access component.
	AccessRiskScore         float64     `json:"access_risk_score"`
	UnauthorizedAccessCount int         `json:"unauthorized_access_count"`
	UnauthorizedAccessTimes []time.Time `json:"unauthorized_access_times"`
	AccessRiskFactors       []string    `json:"access_risk_factors"`

	// Combined threat assessment.
	IsSuspect      bool           `json:"is_suspect"`
	Suspiciousness Suspiciousness `json:"suspiciousness"`
	SpyScore       float64        `json:"spy_score"` // boosted blend, 0..100
	Evidence       []string       `json:"evidence"`  // tagged by origin
	Recommendations []string      `json:"recommendations"`
}

// ThreatReport partitions a suspect population by suspiciousness and
// carries a rendered text summary.
type ThreatReport struct {
	TotalSuspects   int                 `json:"total_suspects"`
	CriticalThreats []UnifiedSpyProfile `json:"critical_threats"`
	HighThreats     []UnifiedSpyProfile `json:"high_threats"`
	MediumThreats   []UnifiedSpyProfile `json:"medium_threats"`
	Summary         string              `json:"summary"`
	GeneratedAt     time.Time           `json:"generated_at"`
}

// TrendPoint is one time bucket of the population risk trend.
type TrendPoint struct {
	Date          string  `json:"date"` // YYYY-MM-DD
	AverageRisk   float64 `json:"average_risk"`
	HighRiskCount int     `json:"high_risk_count"`
}

// PeerComparison compares one employee's risk against a peer group.
// Percentile is the share of peers scoring strictly higher, so a lower
// number means relatively higher risk.
type PeerComparison struct {
	UserRisk       float64 `json:"user_risk"`
	GroupAverage   float64 `json:"group_average"`
	Percentile     int     `json:"percentile"`
	Classification string  `json:"classification"` // below_average | average | above_average
}

// RankedRecord pairs a behavioral record with its computed risk score for
// at-risk listings.
type RankedRecord struct {
	Record    BehavioralRecord `json:"record"`
	RiskScore float64          `json:"risk_score"`
}

// RiskHistoryPoint is one observation in a per-employee risk history.
type RiskHistoryPoint struct {
	Date string  `json:"date"`
	Risk float64 `json:"risk"`
}

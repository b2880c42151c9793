package risk

import (
	"fmt"
	"math"
	"time"

	"sentinel-service/internal/models"
)

// maxFlaggedActivities bounds the evidence list on an assessment.
const maxFlaggedActivities = 20

// BuildAssessment builds the full multi-dimensional risk assessment for one
// employee. The activity log may be empty (bulk callers deliberately omit
// logs for throughput); in that case flagged activities are empty and
// recommendations derive from counters alone. The recommendations list is
// never empty.
func BuildAssessment(rec *models.BehavioralRecord, logs []models.ActivityLogEntry) models.RiskAssessment {
	overall := Score(rec)

	fileActivityRisk := math.Min(100, safe(rec.FileActivityCount)*0.25)
	loginPatternRisk := math.Min(100, math.Abs(safe(rec.LoginCount)-safe(rec.NightLogins))*0.8)
	usbActivityRisk := math.Min(100, safe(rec.USBCount)*0.6)
	emailActivityRisk := math.Min(100, safe(rec.ExternalMails)*0.5)
	databaseActivityRisk := math.Min(100,
		safe(rec.DatabaseQueryCount)*0.03+
			safe(rec.DatabaseSessionDuration)*0.05+
			safe(rec.DatabaseWriteOps)*0.08)
	behavioralRisk := BehavioralAnomalyScore(rec)

	var anomalous, elevated []models.ActivityLogEntry
	for _, entry := range logs {
		if entry.UserID != rec.User {
			continue
		}
		if entry.IsAnomalous {
			anomalous = append(anomalous, entry)
		}
		if entry.Severity.IsElevated() {
			elevated = append(elevated, entry)
		}
	}

	// Anomalous entries lead, then elevated severity, truncated to the cap.
	flagged := make([]models.ActivityLogEntry, 0, len(anomalous)+len(elevated))
	flagged = append(flagged, anomalous...)
	flagged = append(flagged, elevated...)
	if len(flagged) > maxFlaggedActivities {
		flagged = flagged[:maxFlaggedActivities]
	}

	var recommendations []string
	if fileActivityRisk > 70 {
		recommendations = append(recommendations, "Monitor file access patterns - unusually high file operations detected")
	}
	if usbActivityRisk > 60 {
		recommendations = append(recommendations, "USB device connections exceed normal baseline - investigate data transfer")
	}
	if emailActivityRisk > 50 {
		recommendations = append(recommendations, "External email communication is elevated - review recipients")
	}
	if databaseActivityRisk > 55 {
		recommendations = append(recommendations, "Database access volume is elevated - review query/write behavior and privileged access")
	}
	if loginPatternRisk > 50 {
		recommendations = append(recommendations, "Unusual login patterns detected - verify authentication methods")
	}
	if len(anomalous) > 5 {
		recommendations = append(recommendations, fmt.Sprintf("%d anomalous activities detected in recent logs", len(anomalous)))
	}
	if behavioralRisk > 70 {
		recommendations = append(recommendations, "Behavioral profile deviates significantly from baseline")
	}
	if rec.AnomalyLabel == -1 {
		recommendations = append(recommendations, "Upstream model flagged this user - priority review recommended")
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, "No significant risk indicators detected")
	}

	return models.RiskAssessment{
		User:                 rec.User,
		OverallRiskScore:     overall,
		RiskLevel:            LevelFor(overall),
		FileActivityRisk:     round2(fileActivityRisk),
		LoginPatternRisk:     round2(loginPatternRisk),
		USBActivityRisk:      round2(usbActivityRisk),
		EmailActivityRisk:    round2(emailActivityRisk),
		DatabaseActivityRisk: round2(databaseActivityRisk),
		BehavioralRisk:       round2(behavioralRisk),
		AnomalyScore:         safe(rec.RiskScore),
		FlaggedActivities:    flagged,
		Recommendations:      recommendations,
		LastUpdated:          time.Now().UTC(),
	}
}

// MitigationRecommendations expands an assessment into concrete mitigation
// steps for the review workflow.
func MitigationRecommendations(a *models.RiskAssessment) []string {
	var recs []string

	switch a.RiskLevel {
	case models.RiskCritical, models.RiskHigh:
		recs = append(recs,
			"HIGH RISK: Immediate investigation required",
			"Increase monitoring and review access permissions")
	case models.RiskMedium:
		recs = append(recs,
			"MEDIUM PRIORITY: Schedule review with supervisor",
			"Increase monitoring frequency")
	}

	if a.FileActivityRisk > 70 {
		recs = append(recs,
			"Restrict file transfer capabilities",
			"Implement stricter file access controls")
	}
	if a.USBActivityRisk > 60 {
		recs = append(recs,
			"Disable USB ports or require approval",
			"Monitor all USB device activities")
	}
	if a.EmailActivityRisk > 50 {
		recs = append(recs,
			"Review external email distribution lists",
			"Implement email content inspection")
	}

	recs = append(recs,
		"Schedule user awareness training",
		"Review access permissions and roles")

	return recs
}

package risk

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-service/internal/models"
)

func entry(user string, anomalous bool, sev models.Severity) models.ActivityLogEntry {
	return models.ActivityLogEntry{
		ID:           fmt.Sprintf("a-%s-%v-%s", user, anomalous, sev),
		UserID:       user,
		Timestamp:    time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC),
		ActivityType: models.ActivityFileOpened,
		IsAnomalous:  anomalous,
		Severity:     sev,
	}
}

func TestBuildAssessmentRecommendationsNeverEmpty(t *testing.T) {
	a := BuildAssessment(&models.BehavioralRecord{User: "u1", AnomalyLabel: 1}, nil)
	require.NotEmpty(t, a.Recommendations)
	assert.Equal(t, []string{"No significant risk indicators detected"}, a.Recommendations)
	assert.Equal(t, models.RiskLow, a.RiskLevel)
}

func TestBuildAssessmentCategoryScores(t *testing.T) {
	rec := &models.BehavioralRecord{
		User:                    "u1",
		FileActivityCount:       400, // 100 capped
		LoginCount:              200,
		NightLogins:             10, // |200-10|*0.8 = 152 -> 100
		USBCount:                150,
		ExternalMails:           120,
		DatabaseQueryCount:      1000,
		DatabaseSessionDuration: 300,
		DatabaseWriteOps:        200,
		AnomalyLabel:            -1,
		RiskScore:               50,
	}
	a := BuildAssessment(rec, nil)

	assert.Equal(t, 100.0, a.FileActivityRisk)
	assert.Equal(t, 100.0, a.LoginPatternRisk)
	assert.Equal(t, 90.0, a.USBActivityRisk)
	assert.Equal(t, 60.0, a.EmailActivityRisk)
	// 1000*0.03 + 300*0.05 + 200*0.08 = 61
	assert.Equal(t, 61.0, a.DatabaseActivityRisk)
	assert.Equal(t, 50.0, a.AnomalyScore)
	assert.Contains(t, a.Recommendations, "Upstream model flagged this user - priority review recommended")
}

func TestBuildAssessmentFlaggedActivities(t *testing.T) {
	var logs []models.ActivityLogEntry
	for i := 0; i < 15; i++ {
		logs = append(logs, entry("u1", true, models.SeverityLow))
	}
	for i := 0; i < 15; i++ {
		logs = append(logs, entry("u1", false, models.SeverityCritical))
	}
	logs = append(logs, entry("other", true, models.SeverityCritical))

	a := BuildAssessment(&models.BehavioralRecord{User: "u1", AnomalyLabel: 1}, logs)

	require.Len(t, a.FlaggedActivities, 20)
	// Anomalous entries come first.
	for _, e := range a.FlaggedActivities[:15] {
		assert.True(t, e.IsAnomalous)
		assert.Equal(t, "u1", e.UserID)
	}
	for _, e := range a.FlaggedActivities[15:] {
		assert.Equal(t, models.SeverityCritical, e.Severity)
	}
}

func TestBuildAssessmentDeterministicExceptTimestamp(t *testing.T) {
	rec := &models.BehavioralRecord{
		User: "u1", FileActivityCount: 321, USBCount: 12,
		NightLogins: 9, LoginCount: 180, RiskScore: 44.4, AnomalyLabel: -1,
	}
	logs := []models.ActivityLogEntry{
		entry("u1", true, models.SeverityHigh),
		entry("u1", false, models.SeverityMedium),
	}

	first := BuildAssessment(rec, logs)
	second := BuildAssessment(rec, logs)

	first.LastUpdated = time.Time{}
	second.LastUpdated = time.Time{}
	assert.Equal(t, first, second)
}

func TestMitigationRecommendations(t *testing.T) {
	a := models.RiskAssessment{
		RiskLevel:        models.RiskHigh,
		FileActivityRisk: 80,
		USBActivityRisk:  70,
	}
	recs := MitigationRecommendations(&a)
	assert.Contains(t, recs, "HIGH RISK: Immediate investigation required")
	assert.Contains(t, recs, "Restrict file transfer capabilities")
	assert.Contains(t, recs, "Disable USB ports or require approval")
	assert.Contains(t, recs, "Schedule user awareness training")

	minimal := MitigationRecommendations(&models.RiskAssessment{RiskLevel: models.RiskLow})
	assert.Len(t, minimal, 2)
}

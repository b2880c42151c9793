package risk

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-service/internal/models"
)

func TestBuildSpyProfileUnauthorizedForcesCritical(t *testing.T) {
	// Near-zero behavioral risk; one unauthorized event still dominates.
	rec := &models.BehavioralRecord{User: "u1", AnomalyLabel: 1}
	log := &models.AccessLog{Events: []models.AccessEvent{{
		DetectedPersonID: "u1",
		Timestamp:        time.Date(2026, 8, 28, 11, 0, 0, 0, time.Local),
		Confidence:       0.95,
		Authorized:       false,
	}}}

	p := BuildSpyProfile(rec, log, nil)

	assert.Equal(t, models.SuspicionCritical, p.Suspiciousness)
	assert.Equal(t, 100.0, p.SpyScore)
	assert.True(t, p.IsSuspect)
	assert.Equal(t, 1, p.UnauthorizedAccessCount)
	assert.Len(t, p.UnauthorizedAccessTimes, 1)
	assert.Contains(t, p.Recommendations[0], "CRITICAL ALERT")
}

func TestBuildSpyProfileConvergentEvidence(t *testing.T) {
	// csv = 325*0.2 = 65; access from 3 low-confidence + 1 off-hours = 36.
	rec := &models.BehavioralRecord{User: "u1", RiskScore: 325, AnomalyLabel: 1}
	var events []models.AccessEvent
	for i := 0; i < 3; i++ {
		events = append(events, models.AccessEvent{
			DetectedPersonID: "u1",
			Timestamp:        time.Date(2026, 8, 28, 10, 0, 0, 0, time.Local),
			Confidence:       0.5,
			Authorized:       true,
		})
	}
	events = append(events, models.AccessEvent{
		DetectedPersonID: "u1",
		Timestamp:        time.Date(2026, 8, 28, 23, 0, 0, 0, time.Local),
		Confidence:       0.9,
		Authorized:       true,
	})

	p := BuildSpyProfile(rec, &models.AccessLog{Events: events}, nil)

	require.Equal(t, 65.0, p.CSVRiskScore)
	require.Equal(t, 36.0, p.AccessRiskScore)
	assert.True(t, p.IsSuspect)
	assert.Equal(t, 0, p.UnauthorizedAccessCount)

	combined := 65.0*0.6 + 36.0*0.4
	want := math.Round(math.Min(100, combined*1.3)*100) / 100
	assert.Equal(t, want, p.SpyScore)
	assert.Equal(t, models.SuspicionMedium, p.Suspiciousness) // blend 53.4 < 60
}

func TestBuildSpyProfileNoAccessLog(t *testing.T) {
	rec := &models.BehavioralRecord{
		User:              "u1",
		EmployeeName:      "Quinn Harper",
		FileActivityCount: 800,
		NightLogins:       12,
		USBCount:          30,
		ExternalMails:     60,
		AnomalyLabel:      -1,
		RiskScore:         100,
	}
	p := BuildSpyProfile(rec, nil, nil)

	assert.Equal(t, "Quinn Harper", p.EmployeeName)
	assert.False(t, p.IsSuspect)
	assert.Equal(t, 0.0, p.AccessRiskScore)
	assert.Len(t, p.CSVRiskFactors, 5)
	for _, ev := range p.Evidence {
		assert.Contains(t, ev, "BEHAVIOR: ")
	}
	// Generic advisories are always appended.
	assert.Contains(t, p.Recommendations, "Preserve all digital evidence: logs, emails, file access history")
}

func TestBuildSpyProfileSuspiciousnessBands(t *testing.T) {
	// No access evidence: blend = csv*0.6.
	cases := []struct {
		baseline float64
		want     models.Suspiciousness
	}{
		{250, models.SuspicionLow},      // csv 50, blend 30
		{350, models.SuspicionMedium},   // csv 70, blend 42
		{510, models.SuspicionHigh},     // csv 102, blend 61.2
		{680, models.SuspicionCritical}, // csv 136, blend 81.6
	}
	for _, tc := range cases {
		p := BuildSpyProfile(&models.BehavioralRecord{User: "u", RiskScore: tc.baseline, AnomalyLabel: 1}, nil, nil)
		assert.Equal(t, tc.want, p.Suspiciousness, "baseline=%v", tc.baseline)
	}
}

func TestBuildSpyProfileDeterministic(t *testing.T) {
	rec := &models.BehavioralRecord{User: "u1", RiskScore: 325, USBCount: 25, AnomalyLabel: -1}
	log := &models.AccessLog{Events: []models.AccessEvent{{
		DetectedPersonID: "u1",
		Timestamp:        time.Date(2026, 8, 28, 10, 0, 0, 0, time.Local),
		Confidence:       0.5,
		Authorized:       true,
	}}}

	assert.Equal(t, BuildSpyProfile(rec, log, nil), BuildSpyProfile(rec, log, nil))
}

func TestProfilePopulation(t *testing.T) {
	records := []*models.BehavioralRecord{
		{User: "a", AnomalyLabel: 1},
		{User: "b", AnomalyLabel: 1},
	}
	logs := map[string]*models.AccessLog{
		"b": {Events: []models.AccessEvent{{
			DetectedPersonID: "b",
			Timestamp:        time.Date(2026, 8, 28, 12, 0, 0, 0, time.Local),
			Confidence:       0.9,
			Authorized:       false,
		}}},
	}
	profiles := ProfilePopulation(records, logs)

	require.Len(t, profiles, 2)
	assert.Equal(t, models.SuspicionLow, profiles[0].Suspiciousness)
	assert.Equal(t, models.SuspicionCritical, profiles[1].Suspiciousness)
}

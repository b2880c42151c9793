package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-service/internal/models"
)

func businessHourEvent(personID string, authorized bool, confidence float64) models.AccessEvent {
	return models.AccessEvent{
		DetectedPersonID: personID,
		Timestamp:        time.Date(2026, 8, 28, 10, 0, 0, 0, time.Local),
		Confidence:       confidence,
		Authorized:       authorized,
	}
}

func TestAccessRiskNilLog(t *testing.T) {
	rec := &models.BehavioralRecord{User: "u1", AnomalyLabel: 1}
	result := AccessRisk(rec, nil)

	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, 0, result.UnauthorizedCount)
	assert.Empty(t, result.Times)
	assert.Empty(t, result.Factors)
}

func TestAccessRiskNoMatchHighBaseline(t *testing.T) {
	rec := &models.BehavioralRecord{User: "u1", RiskScore: 75, AnomalyLabel: 1}
	log := &models.AccessLog{Events: []models.AccessEvent{businessHourEvent("someone-else", true, 0.9)}}

	result := AccessRisk(rec, log)
	assert.Equal(t, 15.0, result.Score)
	require.Len(t, result.Factors, 1)
	assert.Contains(t, result.Factors[0], "No CCTV record")
}

func TestAccessRiskNoMatchLowBaseline(t *testing.T) {
	rec := &models.BehavioralRecord{User: "u1", RiskScore: 20, AnomalyLabel: 1}
	log := &models.AccessLog{Events: []models.AccessEvent{businessHourEvent("someone-else", true, 0.9)}}

	result := AccessRisk(rec, log)
	assert.Equal(t, 0.0, result.Score)
	assert.Empty(t, result.Factors)
}

func TestAccessRiskUnauthorized(t *testing.T) {
	rec := &models.BehavioralRecord{User: "u1", AnomalyLabel: 1}
	ev := businessHourEvent("u1", false, 0.9)
	log := &models.AccessLog{Events: []models.AccessEvent{ev}}

	result := AccessRisk(rec, log)
	assert.Equal(t, 25.0, result.Score)
	assert.Equal(t, 1, result.UnauthorizedCount)
	require.Len(t, result.Times, 1)
	assert.True(t, result.Times[0].Equal(ev.Timestamp))
	assert.Contains(t, result.Factors[0], "Unauthorized access")
}

func TestAccessRiskLowConfidence(t *testing.T) {
	rec := &models.BehavioralRecord{User: "u1", AnomalyLabel: 1}
	log := &models.AccessLog{Events: []models.AccessEvent{
		businessHourEvent("u1", true, 0.5),
		businessHourEvent("u1", true, 0.4),
		businessHourEvent("u1", true, 0.9),  // above band
		businessHourEvent("u1", true, 0.25), // below band
	}}

	result := AccessRisk(rec, log)
	assert.Equal(t, 16.0, result.Score)
	assert.Contains(t, result.Factors[0], "2 low-confidence face matches")
}

func TestAccessRiskExcessiveAppearances(t *testing.T) {
	rec := &models.BehavioralRecord{User: "u1", AnomalyLabel: 1}
	var events []models.AccessEvent
	for i := 0; i < 6; i++ {
		events = append(events, businessHourEvent("u1", true, 0.9))
	}
	result := AccessRisk(rec, &models.AccessLog{Events: events})

	assert.Equal(t, 10.0, result.Score)
	assert.Contains(t, result.Factors[0], "Excessive CCTV appearances (6x)")
}

func TestAccessRiskOffHours(t *testing.T) {
	rec := &models.BehavioralRecord{User: "u1", AnomalyLabel: 1}
	night := models.AccessEvent{
		DetectedPersonID: "u1",
		Timestamp:        time.Date(2026, 8, 28, 3, 0, 0, 0, time.Local),
		Confidence:       0.9,
		Authorized:       true,
	}
	result := AccessRisk(rec, &models.AccessLog{Events: []models.AccessEvent{night}})

	assert.Equal(t, 12.0, result.Score)
	assert.Contains(t, result.Factors[0], "off-hours")
}

func TestAccessRiskCappedAt100(t *testing.T) {
	rec := &models.BehavioralRecord{User: "u1", AnomalyLabel: 1}
	var events []models.AccessEvent
	for i := 0; i < 8; i++ {
		events = append(events, models.AccessEvent{
			DetectedPersonID: "u1",
			Timestamp:        time.Date(2026, 8, 28, 2, 0, 0, 0, time.Local),
			Confidence:       0.5,
			Authorized:       false,
		})
	}
	result := AccessRisk(rec, &models.AccessLog{Events: events})

	assert.Equal(t, 100.0, result.Score)
	assert.Equal(t, 8, result.UnauthorizedCount)
}

func TestAccessRiskMatchesByName(t *testing.T) {
	rec := &models.BehavioralRecord{User: "u1", EmployeeName: "Dana Velez", AnomalyLabel: 1}
	ev := models.AccessEvent{
		DetectedPersonName: "Dana Velez",
		Timestamp:          time.Date(2026, 8, 28, 10, 0, 0, 0, time.Local),
		Confidence:         0.9,
		Authorized:         false,
	}
	result := AccessRisk(rec, &models.AccessLog{Events: []models.AccessEvent{ev}})
	assert.Equal(t, 1, result.UnauthorizedCount)
}

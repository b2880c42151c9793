package risk

import (
	"fmt"
	"math"
	"time"

	"sentinel-service/internal/models"
)

// Business hours for physical access; events outside this window are
// off-hours.
const (
	businessHoursStart = 6  // 06:00
	businessHoursEnd   = 20 // 20:00
)

// AccessRisk scores CCTV/access-control events attributed to one employee.
// Each rule contributes additively to the score and appends one factor
// string; the final score is capped at 100. A nil or empty log is distinct
// from "events exist but none matched" only through the no-record rule:
// a missing CCTV trail for an employee with high behavioral risk is itself
// a signal.
func AccessRisk(rec *models.BehavioralRecord, log *models.AccessLog) models.AccessRiskResult {
	result := models.AccessRiskResult{
		Times:   []time.Time{},
		Factors: []string{},
	}

	if log == nil || len(log.Events) == 0 {
		return result
	}

	var matched []models.AccessEvent
	for _, event := range log.Events {
		if event.Matches(rec) {
			matched = append(matched, event)
		}
	}

	if len(matched) == 0 {
		if safe(rec.RiskScore) > 60 {
			result.Score = 15
			result.Factors = append(result.Factors, "No CCTV record found despite high behavioral risk")
		}
		return result
	}

	score := 0.0

	for _, event := range matched {
		if event.Authorized {
			continue
		}
		result.UnauthorizedCount++
		result.Times = append(result.Times, event.Timestamp)
		score += 25
		result.Factors = append(result.Factors, fmt.Sprintf(
			"Unauthorized access at %s (confidence: %.0f%%)",
			event.Timestamp.Format(time.RFC3339), event.Confidence*100))
	}

	lowConfidence := 0
	for _, event := range matched {
		if event.Confidence > 0.3 && event.Confidence < 0.7 {
			lowConfidence++
		}
	}
	if lowConfidence > 0 {
		score += float64(lowConfidence) * 8
		result.Factors = append(result.Factors, fmt.Sprintf(
			"%d low-confidence face matches detected", lowConfidence))
	}

	if len(matched) > 5 {
		score += 10
		result.Factors = append(result.Factors, fmt.Sprintf(
			"Excessive CCTV appearances (%dx) - possible surveillance evasion", len(matched)))
	}

	offHours := 0
	for _, event := range matched {
		hour := event.Timestamp.Local().Hour()
		if hour < businessHoursStart || hour > businessHoursEnd {
			offHours++
		}
	}
	if offHours > 0 {
		score += float64(offHours) * 12
		result.Factors = append(result.Factors, fmt.Sprintf(
			"%d access event(s) detected during off-hours", offHours))
	}

	result.Score = math.Min(100, score)
	return result
}

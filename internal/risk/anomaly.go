package risk

import (
	"math"

	"sentinel-service/internal/models"
)

// BehavioralAnomalyScore estimates how far an employee's profile deviates
// from baseline. When the source data carried explicit personality traits,
// the score is driven by trait dispersion; otherwise it falls back to the
// upstream baseline plus a capped night-login boost.
//
// Trait presence means "explicitly provided by the source", not merely
// finite: ingestion defaults flat traits of 50 for CSVs without trait
// columns, and those deliberately take the fallback path so the night-login
// signal is not drowned by a near-zero dispersion.
func BehavioralAnomalyScore(rec *models.BehavioralRecord) float64 {
	if !rec.TraitsProvided {
		baseline := safe(rec.RiskScore)
		nightBoost := math.Min(30, safe(rec.NightLogins)*0.6)
		return math.Min(100, baseline+nightBoost)
	}

	traits := rec.Traits()
	mean := 0.0
	for _, t := range traits {
		mean += safe(t)
	}
	mean /= float64(len(traits))

	deviation := 0.0
	for _, t := range traits {
		deviation += math.Abs(safe(t) - mean)
	}
	deviation /= float64(len(traits))

	boost := 0.0
	if rec.AnomalyLabel == -1 {
		boost = 8
	}

	return math.Min(100, deviation*1.2+safe(rec.RiskScore)*0.6+boost)
}

// Package risk implements the insider-threat scoring and aggregation engine:
// behavioral risk scores, level banding, multi-dimensional assessments,
// trend/cohort analytics, access-control risk, unified spy profiles, and
// population threat reports.
//
// Every function in this package is pure and deterministic given identical
// inputs. The error policy is "never fail, always default": non-finite
// numeric inputs are coerced to 0, empty inputs yield degraded-but-valid
// outputs. Callers may therefore score large populations concurrently
// without coordination.
package risk

import (
	"math"

	"sentinel-service/internal/models"
)

// Sub-term caps for the overall behavioral score. Each signal is capped
// individually so no single dimension can saturate the score.
const (
	fileActivityCap = 35
	usbActivityCap  = 25
	nightLoginCap   = 20
	loginVolumeCap  = 10
	dbSessionCap    = 8
	dbQueryCap      = 8
	dbWriteCap      = 10

	// Logins below this count are considered baseline volume.
	loginBaseline = 150

	anomalyBoost = 10
)

// safe coerces non-finite values to 0 so malformed inputs degrade instead
// of propagating NaN through a batch.
func safe(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func capped(limit, v float64) float64 {
	return math.Min(limit, v)
}

// Score computes the overall behavioral risk score for one record: 20% of
// the externally supplied baseline plus additive, individually capped terms
// for each observable signal. The result is rounded to 2 decimals and is
// intentionally not normalized to [0,100]; banding absorbs the open top end.
func Score(rec *models.BehavioralRecord) float64 {
	fileActivityRisk := capped(fileActivityCap, safe(rec.FileActivityCount)*0.05)
	usbActivityRisk := capped(usbActivityCap, safe(rec.USBCount)*0.08)
	nightLoginRisk := capped(nightLoginCap, safe(rec.NightLogins)*0.5)
	loginVolumeRisk := capped(loginVolumeCap, math.Max(safe(rec.LoginCount)-loginBaseline, 0)*0.05)
	dbSessionRisk := capped(dbSessionCap, safe(rec.DatabaseSessionDuration)*0.02)
	dbQueryRisk := capped(dbQueryCap, safe(rec.DatabaseQueryCount)*0.004)
	dbWriteRisk := capped(dbWriteCap, safe(rec.DatabaseWriteOps)*0.02)

	boost := 0.0
	if rec.AnomalyLabel == -1 {
		boost = anomalyBoost
	}

	score := safe(rec.RiskScore)*0.2 +
		fileActivityRisk + usbActivityRisk + nightLoginRisk + loginVolumeRisk +
		dbSessionRisk + dbQueryRisk + dbWriteRisk + boost

	return round2(score)
}

// LevelFor maps a numeric score to its risk band. Total over all finite
// inputs.
func LevelFor(score float64) models.RiskLevel {
	switch {
	case score >= 80:
		return models.RiskCritical
	case score >= 60:
		return models.RiskHigh
	case score >= 30:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-service/internal/models"
)

func TestScoreZeroRecord(t *testing.T) {
	rec := &models.BehavioralRecord{User: "u1", AnomalyLabel: 1}
	require.Equal(t, 0.0, Score(rec))
}

func TestScoreExampleScenario(t *testing.T) {
	rec := &models.BehavioralRecord{
		User:              "u1",
		LoginCount:        1510,
		NightLogins:       455,
		USBCount:          72,
		FileActivityCount: 124,
		AnomalyLabel:      1,
		RiskScore:         92.46,
	}

	// file 6.2 + usb 5.76 + night 20 (capped) + login volume 10 (capped)
	// + baseline 18.492 = 60.452
	score := Score(rec)
	assert.Equal(t, 60.45, score)
	assert.Equal(t, models.RiskHigh, LevelFor(score))
}

func TestScoreMonotonicInUSBCount(t *testing.T) {
	prev := 0.0
	for usb := 0.0; usb <= 400; usb += 25 {
		rec := &models.BehavioralRecord{User: "u1", USBCount: usb, AnomalyLabel: 1}
		score := Score(rec)
		assert.GreaterOrEqual(t, score, prev, "usb_count=%v", usb)
		prev = score
	}
	// Beyond the cap further increases have no effect.
	atCap := Score(&models.BehavioralRecord{User: "u1", USBCount: 1000, AnomalyLabel: 1})
	assert.Equal(t, 25.0, atCap)
}

func TestScoreAnomalyBoost(t *testing.T) {
	normal := Score(&models.BehavioralRecord{User: "u1", AnomalyLabel: 1})
	flagged := Score(&models.BehavioralRecord{User: "u1", AnomalyLabel: -1})
	assert.Equal(t, 10.0, flagged-normal)
}

func TestScoreCoercesNonFinite(t *testing.T) {
	rec := &models.BehavioralRecord{
		User:              "u1",
		FileActivityCount: math.NaN(),
		USBCount:          math.Inf(1),
		RiskScore:         math.Inf(-1),
		AnomalyLabel:      1,
	}
	assert.Equal(t, 0.0, Score(rec))
}

func TestLevelForStepFunction(t *testing.T) {
	cases := []struct {
		score float64
		want  models.RiskLevel
	}{
		{0, models.RiskLow},
		{29.99, models.RiskLow},
		{30, models.RiskMedium},
		{59.99, models.RiskMedium},
		{60, models.RiskHigh},
		{79.99, models.RiskHigh},
		{80, models.RiskCritical},
		{150, models.RiskCritical},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LevelFor(tc.score), "score=%v", tc.score)
	}
}

func TestBehavioralAnomalyScoreFallback(t *testing.T) {
	// No explicit traits: baseline + capped night-login boost.
	rec := &models.BehavioralRecord{User: "u1", RiskScore: 40, NightLogins: 100, AnomalyLabel: 1}
	assert.Equal(t, 70.0, BehavioralAnomalyScore(rec)) // 40 + min(30, 60)

	rec.RiskScore = 95
	assert.Equal(t, 100.0, BehavioralAnomalyScore(rec)) // capped
}

func TestBehavioralAnomalyScoreWithTraits(t *testing.T) {
	rec := &models.BehavioralRecord{
		User:                   "u1",
		TraitsProvided:         true,
		TraitOpenness:          90,
		TraitConscientiousness: 10,
		TraitExtraversion:      50,
		TraitAgreeableness:     50,
		TraitNeuroticism:       50,
		RiskScore:              10,
		AnomalyLabel:           -1,
	}
	// mean=50, mean abs deviation=(40+40+0+0+0)/5=16
	// 16*1.2 + 10*0.6 + 8 = 33.2
	assert.InDelta(t, 33.2, BehavioralAnomalyScore(rec), 1e-9)
}

func TestBehavioralAnomalyScoreFlatDefaultsUseFallback(t *testing.T) {
	// Traits defaulted to 50 by ingestion are not "provided"; the fallback
	// keeps the night-login signal alive.
	rec := &models.BehavioralRecord{
		User:         "u1",
		NightLogins:  20,
		RiskScore:    5,
		AnomalyLabel: 1,
		TraitOpenness: 50, TraitConscientiousness: 50, TraitExtraversion: 50,
		TraitAgreeableness: 50, TraitNeuroticism: 50,
		TraitsProvided: false,
	}
	assert.Equal(t, 17.0, BehavioralAnomalyScore(rec)) // 5 + min(30, 12)
}

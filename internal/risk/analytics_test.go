package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-service/internal/models"
)

func recordWithScore(user string, baseline float64) *models.BehavioralRecord {
	// Score = baseline*0.2 with no other signals.
	return &models.BehavioralRecord{User: user, RiskScore: baseline, AnomalyLabel: 1}
}

func TestTrendEmptyPopulation(t *testing.T) {
	assert.Empty(t, Trend(nil, 7))
}

func TestTrendBucketsByDate(t *testing.T) {
	records := []*models.BehavioralRecord{
		{User: "a", Date: "2026-08-01", RiskScore: 100, AnomalyLabel: 1},  // 20
		{User: "b", Date: "2026-08-01", RiskScore: 400, AnomalyLabel: 1},  // 80
		{User: "c", Date: "2026-08-02", RiskScore: 350, AnomalyLabel: 1},  // 70
	}
	points := Trend(records, 7)

	require.Len(t, points, 2)
	assert.Equal(t, "2026-08-01", points[0].Date)
	assert.Equal(t, 50.0, points[0].AverageRisk)
	assert.Equal(t, 1, points[0].HighRiskCount)
	assert.Equal(t, "2026-08-02", points[1].Date)
	assert.Equal(t, 70.0, points[1].AverageRisk)
	assert.Equal(t, 1, points[1].HighRiskCount)
}

func TestTrendSynthesizesMissingDates(t *testing.T) {
	records := make([]*models.BehavioralRecord, 10)
	for i := range records {
		records[i] = recordWithScore("u", 50)
	}
	points := Trend(records, 3)
	// idx % 3 cycles over three synthetic days.
	assert.Len(t, points, 3)
	for _, p := range points {
		assert.Equal(t, 10.0, p.AverageRisk)
	}
}

func TestCompareToPeers(t *testing.T) {
	target := recordWithScore("t", 250) // 50
	peers := []*models.BehavioralRecord{
		recordWithScore("p1", 100), // 20
		recordWithScore("p2", 300), // 60
		recordWithScore("p3", 400), // 80
		recordWithScore("p4", 200), // 40
	}
	cmp := CompareToPeers(target, peers)

	assert.Equal(t, 50.0, cmp.UserRisk)
	assert.Equal(t, 50.0, cmp.GroupAverage)
	assert.Equal(t, 50, cmp.Percentile) // 2 of 4 peers strictly higher
	assert.Equal(t, "average", cmp.Classification)
}

func TestCompareToPeersClassification(t *testing.T) {
	peers := []*models.BehavioralRecord{recordWithScore("p", 250)} // avg 50

	low := CompareToPeers(recordWithScore("t", 100), peers) // 20 < 40
	assert.Equal(t, "below_average", low.Classification)

	high := CompareToPeers(recordWithScore("t", 400), peers) // 80 > 60
	assert.Equal(t, "above_average", high.Classification)
	assert.Equal(t, 0, high.Percentile)
}

func TestCompareToPeersEmptyGroup(t *testing.T) {
	cmp := CompareToPeers(recordWithScore("t", 250), nil)
	assert.Equal(t, 50.0, cmp.UserRisk)
	assert.Equal(t, 0.0, cmp.GroupAverage)
	assert.Equal(t, "average", cmp.Classification)
}

func TestAtRiskRecords(t *testing.T) {
	records := []*models.BehavioralRecord{
		recordWithScore("low", 100),    // 20
		recordWithScore("first", 400),  // 80
		recordWithScore("second", 300), // 60
		recordWithScore("tied", 400),   // 80, after "first" by insertion order
	}
	ranked := AtRiskRecords(records, 60)

	require.Len(t, ranked, 3)
	assert.Equal(t, "first", ranked[0].Record.User)
	assert.Equal(t, "tied", ranked[1].Record.User)
	assert.Equal(t, "second", ranked[2].Record.User)
	assert.Equal(t, 80.0, ranked[0].RiskScore)
}

func TestTrendDirection(t *testing.T) {
	assert.Equal(t, "stable", TrendDirection(nil))
	assert.Equal(t, "stable", TrendDirection([]models.RiskHistoryPoint{{Risk: 50}}))

	rising := []models.RiskHistoryPoint{
		{Risk: 10}, {Risk: 12}, {Risk: 14}, {Risk: 30}, {Risk: 40}, {Risk: 45}, {Risk: 50},
	}
	assert.Equal(t, "increasing", TrendDirection(rising))

	falling := []models.RiskHistoryPoint{
		{Risk: 50}, {Risk: 45}, {Risk: 40}, {Risk: 30}, {Risk: 14}, {Risk: 12}, {Risk: 10},
	}
	assert.Equal(t, "decreasing", TrendDirection(falling))

	flat := []models.RiskHistoryPoint{
		{Risk: 50}, {Risk: 51}, {Risk: 49}, {Risk: 50}, {Risk: 52}, {Risk: 48}, {Risk: 50},
	}
	assert.Equal(t, "stable", TrendDirection(flat))
}

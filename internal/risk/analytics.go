package risk

import (
	"sort"
	"time"

	"sentinel-service/internal/models"
)

// DefaultAtRiskThreshold is the score cutoff for at-risk listings.
const DefaultAtRiskThreshold = 60

// Trend groups records by date and returns per-day average risk and the
// count of records scoring at or above 60, for the last `days` buckets in
// ascending date order. Records without a date get one synthesized by
// cycling idx % days backward from today; this keeps date-less uploads
// visible in the trend rather than silently dropping them.
func Trend(records []*models.BehavioralRecord, days int) []models.TrendPoint {
	if len(records) == 0 {
		return []models.TrendPoint{}
	}
	if days <= 0 {
		days = 7
	}

	now := time.Now()
	byDate := make(map[string][]float64)
	for idx, rec := range records {
		date := rec.Date
		if date == "" {
			date = now.AddDate(0, 0, -(idx % days)).Format("2006-01-02")
		}
		byDate[date] = append(byDate[date], Score(rec))
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates) // ISO dates sort chronologically

	if len(dates) > days {
		dates = dates[len(dates)-days:]
	}

	points := make([]models.TrendPoint, 0, len(dates))
	for _, d := range dates {
		scores := byDate[d]
		sum := 0.0
		high := 0
		for _, s := range scores {
			sum += s
			if s >= DefaultAtRiskThreshold {
				high++
			}
		}
		points = append(points, models.TrendPoint{
			Date:          d,
			AverageRisk:   round2(sum / float64(len(scores))),
			HighRiskCount: high,
		})
	}
	return points
}

// CompareToPeers places one employee against a peer group. The percentile is
// the share of peers scoring strictly higher, so a lower percentile means
// relatively higher risk. An empty peer group yields a zeroed comparison
// classified "average" instead of dividing by zero.
func CompareToPeers(target *models.BehavioralRecord, peers []*models.BehavioralRecord) models.PeerComparison {
	userRisk := Score(target)
	if len(peers) == 0 {
		return models.PeerComparison{
			UserRisk:       userRisk,
			Classification: "average",
		}
	}

	sum := 0.0
	higher := 0
	for _, peer := range peers {
		s := Score(peer)
		sum += s
		if s > userRisk {
			higher++
		}
	}
	groupAverage := sum / float64(len(peers))

	classification := "average"
	switch {
	case userRisk < groupAverage*0.8:
		classification = "below_average"
	case userRisk > groupAverage*1.2:
		classification = "above_average"
	}

	return models.PeerComparison{
		UserRisk:       userRisk,
		GroupAverage:   round2(groupAverage),
		Percentile:     int(float64(higher)/float64(len(peers))*100 + 0.5),
		Classification: classification,
	}
}

// AtRiskRecords filters records scoring at or above the threshold and sorts
// them by descending score. Ties keep input order.
func AtRiskRecords(records []*models.BehavioralRecord, threshold float64) []models.RankedRecord {
	ranked := make([]models.RankedRecord, 0, len(records))
	for _, rec := range records {
		if s := Score(rec); s >= threshold {
			ranked = append(ranked, models.RankedRecord{Record: *rec, RiskScore: s})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RiskScore > ranked[j].RiskScore
	})
	return ranked
}

// TrendDirection classifies a per-employee risk history as increasing,
// decreasing, or stable by comparing the early and late averages of the
// last seven observations. Fewer than two points is stable.
func TrendDirection(history []models.RiskHistoryPoint) string {
	if len(history) < 2 {
		return "stable"
	}

	recent := history
	if len(recent) > 7 {
		recent = recent[len(recent)-7:]
	}

	n := 3
	if len(recent) < n {
		n = len(recent)
	}
	early, late := 0.0, 0.0
	for i := 0; i < n; i++ {
		early += recent[i].Risk
		late += recent[len(recent)-n+i].Risk
	}
	diff := (late - early) / float64(n)

	switch {
	case diff > 5:
		return "increasing"
	case diff < -5:
		return "decreasing"
	default:
		return "stable"
	}
}

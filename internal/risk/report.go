package risk

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"sentinel-service/internal/models"
)

// suspectSpyScoreThreshold includes high-scoring non-suspects in the report
// population.
const suspectSpyScoreThreshold = 60

// BuildThreatReport filters the profile population to suspects (or profiles
// with spyScore >= 60), sorts them by descending spy score, partitions them
// by suspiciousness, and renders a text summary. Callers pass the raw
// population; selection and ordering are this aggregator's contract.
func BuildThreatReport(profiles []models.UnifiedSpyProfile) models.ThreatReport {
	suspects := make([]models.UnifiedSpyProfile, 0, len(profiles))
	for _, p := range profiles {
		if p.IsSuspect || p.SpyScore >= suspectSpyScoreThreshold {
			suspects = append(suspects, p)
		}
	}
	sort.SliceStable(suspects, func(i, j int) bool {
		return suspects[i].SpyScore > suspects[j].SpyScore
	})

	report := models.ThreatReport{
		TotalSuspects:   len(suspects),
		CriticalThreats: []models.UnifiedSpyProfile{},
		HighThreats:     []models.UnifiedSpyProfile{},
		MediumThreats:   []models.UnifiedSpyProfile{},
		GeneratedAt:     time.Now().UTC(),
	}
	for _, p := range suspects {
		switch p.Suspiciousness {
		case models.SuspicionCritical:
			report.CriticalThreats = append(report.CriticalThreats, p)
		case models.SuspicionHigh:
			report.HighThreats = append(report.HighThreats, p)
		case models.SuspicionMedium:
			report.MediumThreats = append(report.MediumThreats, p)
		}
	}

	var b strings.Builder
	b.WriteString("INSIDER THREAT ANALYSIS REPORT\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.Format(time.RFC3339))
	b.WriteString("THREAT SUMMARY:\n")
	fmt.Fprintf(&b, "- Critical Threats: %d\n", len(report.CriticalThreats))
	fmt.Fprintf(&b, "- High Risk: %d\n", len(report.HighThreats))
	fmt.Fprintf(&b, "- Medium Risk: %d\n", len(report.MediumThreats))
	fmt.Fprintf(&b, "- Total Suspects: %d\n\n", report.TotalSuspects)

	if len(report.CriticalThreats) > 0 {
		b.WriteString("CRITICAL THREATS:\n")
		for i, threat := range report.CriticalThreats {
			status := "Monitoring Required"
			if threat.UnauthorizedAccessCount > 0 {
				status = "UNAUTHORIZED ACCESS DETECTED"
			}
			fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, threat.EmployeeName, threat.User)
			fmt.Fprintf(&b, "   Spy Score: %g/100\n", threat.SpyScore)
			fmt.Fprintf(&b, "   Behavioral Risk: %g/100 | Access Risk: %g/100\n",
				threat.CSVRiskScore, threat.AccessRiskScore)
			fmt.Fprintf(&b, "   Status: %s\n\n", status)
		}
	}

	report.Summary = b.String()
	return report
}

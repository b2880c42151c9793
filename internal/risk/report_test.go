package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-service/internal/models"
)

func TestBuildThreatReportEmptyPopulation(t *testing.T) {
	report := BuildThreatReport(nil)

	assert.Equal(t, 0, report.TotalSuspects)
	assert.Empty(t, report.CriticalThreats)
	assert.Empty(t, report.HighThreats)
	assert.Empty(t, report.MediumThreats)
	assert.Contains(t, report.Summary, "Critical Threats: 0")
	assert.Contains(t, report.Summary, "Total Suspects: 0")
}

func TestBuildThreatReportFiltersAndSorts(t *testing.T) {
	profiles := []models.UnifiedSpyProfile{
		{User: "quiet", SpyScore: 20, Suspiciousness: models.SuspicionLow},
		{User: "mid", SpyScore: 65, Suspiciousness: models.SuspicionHigh},
		{User: "top", EmployeeName: "Top Threat", SpyScore: 100, IsSuspect: true,
			Suspiciousness: models.SuspicionCritical, UnauthorizedAccessCount: 2},
		{User: "flagged", SpyScore: 45, IsSuspect: true, Suspiciousness: models.SuspicionMedium},
	}
	report := BuildThreatReport(profiles)

	// "quiet" excluded: neither suspect nor spyScore >= 60.
	require.Equal(t, 3, report.TotalSuspects)
	require.Len(t, report.CriticalThreats, 1)
	require.Len(t, report.HighThreats, 1)
	require.Len(t, report.MediumThreats, 1)
	assert.Equal(t, "top", report.CriticalThreats[0].User)

	assert.Contains(t, report.Summary, "Top Threat (top)")
	assert.Contains(t, report.Summary, "UNAUTHORIZED ACCESS DETECTED")
	assert.Contains(t, report.Summary, "Total Suspects: 3")
}

func TestBuildThreatReportCriticalOrdering(t *testing.T) {
	profiles := []models.UnifiedSpyProfile{
		{User: "second", SpyScore: 90, IsSuspect: true, Suspiciousness: models.SuspicionCritical},
		{User: "first", SpyScore: 100, IsSuspect: true, Suspiciousness: models.SuspicionCritical},
	}
	report := BuildThreatReport(profiles)

	require.Len(t, report.CriticalThreats, 2)
	assert.Equal(t, "first", report.CriticalThreats[0].User)
	assert.Equal(t, "second", report.CriticalThreats[1].User)
}

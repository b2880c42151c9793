package risk

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sentinel-service/internal/models"
)

var statsNow = time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC)

func statsEntry(kind models.ActivityType, ago time.Duration, details models.ActivityDetails) models.ActivityLogEntry {
	return models.ActivityLogEntry{
		ID:           "e",
		UserID:       "u1",
		Timestamp:    statsNow.Add(-ago),
		ActivityType: kind,
		Details:      details,
		Severity:     models.SeverityLow,
	}
}

func TestActivityStatsFor(t *testing.T) {
	logs := []models.ActivityLogEntry{
		statsEntry(models.ActivityLogin, 4*time.Hour, models.ActivityDetails{}),
		statsEntry(models.ActivityFileOpened, 3*time.Hour, models.ActivityDetails{FileName: "plan.xlsx", System: "finance"}),
		statsEntry(models.ActivityFileCopied, 2*time.Hour, models.ActivityDetails{FileName: "plan.xlsx", IsSensitive: true}),
		statsEntry(models.ActivityUSBConnected, 90*time.Minute, models.ActivityDetails{USBName: "stick"}),
		statsEntry(models.ActivityLogout, time.Hour, models.ActivityDetails{}),
		// Outside the window.
		statsEntry(models.ActivityEmailSent, 48*time.Hour, models.ActivityDetails{}),
		// Another user.
		{ID: "x", UserID: "other", Timestamp: statsNow, ActivityType: models.ActivityLogin},
	}

	stats := ActivityStatsFor("u1", logs, 24*time.Hour, statsNow)

	assert.Equal(t, 5, stats.TotalActivities)
	assert.Equal(t, 1, stats.FilesOpened)
	assert.Equal(t, 1, stats.FilesCopied)
	assert.Equal(t, 1, stats.USBConnections)
	assert.Equal(t, 0, stats.EmailsSent)
	assert.Equal(t, 1, stats.LoginCount)
	assert.Equal(t, 1, stats.SensitiveFilesAccessed)
	assert.Equal(t, 1, stats.UniqueFilesAccessed)
	assert.Equal(t, []string{"finance"}, stats.SystemsAccessed)
	// Login at -4h, logout at -1h.
	assert.Equal(t, 180.0, stats.SessionDurationMinutes)
}

func TestActivityStatsForEmpty(t *testing.T) {
	stats := ActivityStatsFor("u1", nil, 24*time.Hour, statsNow)
	assert.Equal(t, 0, stats.TotalActivities)
	assert.Equal(t, "00:00", stats.PeakActivityTime)
}

func TestActivityReport(t *testing.T) {
	logs := []models.ActivityLogEntry{
		statsEntry(models.ActivityFileDeleted, time.Hour, models.ActivityDetails{FileName: "ledger.db"}),
		{
			ID: "an", UserID: "u1", Timestamp: statsNow.Add(-30 * time.Minute),
			ActivityType: models.ActivityUSBConnected,
			IsAnomalous:  true, Severity: models.SeverityCritical,
		},
	}
	report := ActivityReport("u1", logs, 24, statsNow)

	assert.Contains(t, report, "Activity Report for User: u1")
	assert.Contains(t, report, "Total Activities: 2")
	assert.Contains(t, report, "=== HIGH-SEVERITY ACTIVITIES ===")
	assert.Contains(t, report, "=== ANOMALIES DETECTED ===")
	assert.Contains(t, report, "usb_connected")
}

func TestActivityCSV(t *testing.T) {
	assert.Empty(t, ActivityCSV(nil))

	logs := []models.ActivityLogEntry{
		{
			ID:           "log-1",
			UserID:       "u1",
			Timestamp:    statsNow,
			ActivityType: models.ActivityFileCopied,
			Severity:     models.SeverityHigh,
			IsAnomalous:  true,
			Duration:     4.5,
		},
		{
			ID:           "log-2",
			UserID:       "u1",
			Timestamp:    statsNow.Add(-time.Hour),
			ActivityType: models.ActivityLogin,
			Severity:     models.SeverityLow,
		},
	}

	out := ActivityCSV(logs)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "ID,User ID,Timestamp,Activity Type,Severity,Anomalous,Duration (s)", lines[0])
	assert.Contains(t, lines[1], "log-1")
	assert.Contains(t, lines[1], "Yes")
	assert.Contains(t, lines[1], "4.5")
	assert.Contains(t, lines[2], "No")
}

package risk

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"sentinel-service/internal/models"
)

// ActivityStatsFor summarizes one employee's activity-log entries over the
// lookback window ending at now. Entries belonging to other users are
// ignored.
func ActivityStatsFor(userID string, logs []models.ActivityLogEntry, lookback time.Duration, now time.Time) models.ActivityStats {
	cutoff := now.Add(-lookback)

	var recent []models.ActivityLogEntry
	for _, entry := range logs {
		if entry.UserID == userID && !entry.Timestamp.Before(cutoff) {
			recent = append(recent, entry)
		}
	}

	stats := models.ActivityStats{SystemsAccessed: []string{}}
	stats.TotalActivities = len(recent)

	uniqueFiles := make(map[string]struct{})
	systems := make(map[string]struct{})
	for _, entry := range recent {
		if entry.IsAnomalous {
			stats.AnomalousActivities++
		}
		switch entry.ActivityType {
		case models.ActivityFileOpened:
			stats.FilesOpened++
		case models.ActivityFileDeleted:
			stats.FilesDeleted++
		case models.ActivityFileCopied:
			stats.FilesCopied++
		case models.ActivityFileDownloaded:
			stats.FilesDownloaded++
		case models.ActivityFileUploaded:
			stats.FilesUploaded++
		case models.ActivityFileEdited, models.ActivityFileModified:
			stats.FilesEdited++
		case models.ActivityUSBConnected:
			stats.USBConnections++
		case models.ActivityEmailSent:
			stats.EmailsSent++
		case models.ActivityLogin:
			stats.LoginCount++
		}
		if entry.Details.IsSensitive {
			stats.SensitiveFilesAccessed++
		}
		if entry.Details.FileName != "" {
			uniqueFiles[entry.Details.FileName] = struct{}{}
		}
		if entry.Details.System != "" {
			systems[entry.Details.System] = struct{}{}
		}
	}
	stats.UniqueFilesAccessed = len(uniqueFiles)
	for s := range systems {
		stats.SystemsAccessed = append(stats.SystemsAccessed, s)
	}
	sort.Strings(stats.SystemsAccessed)

	stats.SessionDurationMinutes = round2(sessionDuration(recent, now))
	stats.AverageActivityDuration = round2(averageDuration(recent))
	stats.PeakActivityTime = peakActivityHour(recent)
	return stats
}

// sessionDuration pairs logins with logouts in order; an unmatched login
// counts as an open session ending at now. Minutes.
func sessionDuration(logs []models.ActivityLogEntry, now time.Time) float64 {
	var logins, logouts []time.Time
	for _, entry := range logs {
		switch entry.ActivityType {
		case models.ActivityLogin:
			logins = append(logins, entry.Timestamp)
		case models.ActivityLogout:
			logouts = append(logouts, entry.Timestamp)
		}
	}

	total := 0.0
	for i, login := range logins {
		end := now
		if i < len(logouts) {
			end = logouts[i]
		}
		total += end.Sub(login).Minutes()
	}
	return total
}

func averageDuration(logs []models.ActivityLogEntry) float64 {
	sum, n := 0.0, 0
	for _, entry := range logs {
		if entry.Duration > 0 {
			sum += entry.Duration
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func peakActivityHour(logs []models.ActivityLogEntry) string {
	if len(logs) == 0 {
		return "00:00"
	}
	counts := make(map[int]int)
	for _, entry := range logs {
		counts[entry.Timestamp.Hour()]++
	}
	peak, best := 0, -1
	for hour := 0; hour < 24; hour++ {
		if counts[hour] > best {
			peak, best = hour, counts[hour]
		}
	}
	return fmt.Sprintf("%02d:00", peak)
}

// ActivityReport renders a per-user activity summary covering the last
// hoursBack hours.
func ActivityReport(userID string, logs []models.ActivityLogEntry, hoursBack int, now time.Time) string {
	if hoursBack <= 0 {
		hoursBack = 24
	}
	stats := ActivityStatsFor(userID, logs, time.Duration(hoursBack)*time.Hour, now)

	var anomalies, elevated []models.ActivityLogEntry
	for _, entry := range logs {
		if entry.UserID != userID {
			continue
		}
		if entry.IsAnomalous {
			anomalies = append(anomalies, entry)
		}
		if entry.Severity.IsElevated() {
			elevated = append(elevated, entry)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Activity Report for User: %s\n", userID)
	fmt.Fprintf(&b, "Generated: %s\n", now.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Time Period: Last %d hours\n\n", hoursBack)

	b.WriteString("=== ACTIVITY SUMMARY ===\n")
	fmt.Fprintf(&b, "Total Activities: %d\n", stats.TotalActivities)
	fmt.Fprintf(&b, "Anomalous Activities: %d\n", stats.AnomalousActivities)
	fmt.Fprintf(&b, "Files Opened: %d\n", stats.FilesOpened)
	fmt.Fprintf(&b, "Files Deleted: %d\n", stats.FilesDeleted)
	fmt.Fprintf(&b, "Files Copied: %d\n", stats.FilesCopied)
	fmt.Fprintf(&b, "USB Connections: %d\n", stats.USBConnections)
	fmt.Fprintf(&b, "Emails Sent: %d\n", stats.EmailsSent)
	fmt.Fprintf(&b, "Login Count: %d\n", stats.LoginCount)
	fmt.Fprintf(&b, "Session Duration: %.2f minutes\n", stats.SessionDurationMinutes)
	fmt.Fprintf(&b, "Average Activity Duration: %.2f seconds\n", stats.AverageActivityDuration)
	fmt.Fprintf(&b, "Peak Activity Time: %s\n\n", stats.PeakActivityTime)

	writeEntrySection(&b, "HIGH-SEVERITY ACTIVITIES", elevated)
	writeEntrySection(&b, "ANOMALIES DETECTED", anomalies)

	return b.String()
}

func writeEntrySection(b *strings.Builder, title string, entries []models.ActivityLogEntry) {
	fmt.Fprintf(b, "=== %s ===\n", title)
	fmt.Fprintf(b, "Count: %d\n", len(entries))
	limit := len(entries)
	if limit > 10 {
		limit = 10
	}
	for _, entry := range entries[:limit] {
		fmt.Fprintf(b, "  - %s: %s\n", entry.Timestamp.Format(time.RFC3339), entry.ActivityType)
	}
	if len(entries) > 10 {
		fmt.Fprintf(b, "  ... and %d more\n", len(entries)-10)
	}
	b.WriteString("\n")
}

// ActivityCSV renders activity-log entries as CSV for export. Returns an
// empty string when there is nothing to export.
func ActivityCSV(logs []models.ActivityLogEntry) string {
	if len(logs) == 0 {
		return ""
	}

	var b strings.Builder
	w := csv.NewWriter(&b)

	_ = w.Write([]string{"ID", "User ID", "Timestamp", "Activity Type", "Severity", "Anomalous", "Duration (s)"})
	for _, entry := range logs {
		anomalous := "No"
		if entry.IsAnomalous {
			anomalous = "Yes"
		}
		duration := ""
		if entry.Duration > 0 {
			duration = strconv.FormatFloat(entry.Duration, 'f', -1, 64)
		}
		_ = w.Write([]string{
			entry.ID,
			entry.UserID,
			entry.Timestamp.UTC().Format(time.RFC3339),
			string(entry.ActivityType),
			string(entry.Severity),
			anomalous,
			duration,
		})
	}
	w.Flush()

	return b.String()
}

package models

import "time"

// ActivityType tags one activity-log entry.
type ActivityType string

const (
	ActivityFileOpened      ActivityType = "file_opened"
	ActivityFileDeleted     ActivityType = "file_deleted"
	ActivityFileCopied      ActivityType = "file_copied"
	ActivityFileModified    ActivityType = "file_modified"
	ActivityFileAccessed    ActivityType = "file_accessed"
	ActivityFileDownloaded  ActivityType = "file_downloaded"
	ActivityFileUploaded    ActivityType = "file_uploaded"
	ActivityFileEdited      ActivityType = "file_edited"
	ActivityUSBConnected    ActivityType = "usb_connected"
	ActivityUSBDisconnected ActivityType = "usb_disconnected"
	ActivityEmailSent       ActivityType = "email_sent"
	ActivityLogin           ActivityType = "login"
	ActivityLogout          ActivityType = "logout"
	ActivityHTTPRequest     ActivityType = "http_request"
)

// Severity is the ordinal severity of one activity-log entry.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// IsElevated reports whether the severity is high or critical.
func (s Severity) IsElevated() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// ActivityDetails is the free-form details bag attached to an entry.
type ActivityDetails struct {
	FileName        string `json:"file_name,omitempty"`
	FileSize        int64  `json:"file_size,omitempty"`
	FilePath        string `json:"file_path,omitempty"`
	System          string `json:"system,omitempty"`
	IsSensitive     bool   `json:"is_sensitive,omitempty"`
	Operation       string `json:"operation,omitempty"`
	USBName         string `json:"usb_name,omitempty"`
	EmailRecipients int    `json:"email_recipients,omitempty"`
	URLAccessed     string `json:"url_accessed,omitempty"`
	PCName          string `json:"pc_name,omitempty"`
}

// ActivityLogEntry is one observed activity for one employee. Entries are
// evidence inputs to assessments and are never scored on their own.
type ActivityLogEntry struct {
	ID           string          `json:"id" db:"id"`
	UserID       string          `json:"user_id" db:"user_id"`
	Timestamp    time.Time       `json:"timestamp" db:"event_time"`
	ActivityType ActivityType    `json:"activity_type" db:"activity_type"`
	Details      ActivityDetails `json:"details" db:"-"`
	Duration     float64         `json:"duration,omitempty" db:"duration"` // seconds
	IsAnomalous  bool            `json:"is_anomalous" db:"is_anomalous"`
	Severity     Severity        `json:"severity" db:"severity"`
}

// ActivityStats summarizes one employee's activity over a lookback window.
type ActivityStats struct {
	TotalActivities         int      `json:"total_activities"`
	AnomalousActivities     int      `json:"anomalous_activities"`
	FilesOpened             int      `json:"files_opened"`
	FilesDeleted            int      `json:"files_deleted"`
	FilesCopied             int      `json:"files_copied"`
	FilesDownloaded         int      `json:"files_downloaded"`
	FilesUploaded           int      `json:"files_uploaded"`
	FilesEdited             int      `json:"files_edited"`
	SensitiveFilesAccessed  int      `json:"sensitive_files_accessed"`
	UniqueFilesAccessed     int      `json:"unique_files_accessed"`
	SystemsAccessed         []string `json:"systems_accessed"`
	USBConnections          int      `json:"usb_connections"`
	EmailsSent              int      `json:"emails_sent"`
	LoginCount              int      `json:"login_count"`
	SessionDurationMinutes  float64  `json:"session_duration_minutes"`
	AverageActivityDuration float64  `json:"average_activity_duration"`
	PeakActivityTime        string   `json:"peak_activity_time"` // HH:00
}

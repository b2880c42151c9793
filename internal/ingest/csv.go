// Package ingest normalizes uploaded telemetry exports into behavioral
// records. Parsing is forgiving: unknown columns are ignored, malformed
// numerics coerce to zero and only rows without any identity are dropped.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"sentinel-service/internal/models"
	"sentinel-service/internal/util"
)

// defaultTrait is the neutral personality score used when the export did not
// carry trait columns.
const defaultTrait = 50

// Result carries the parsed records plus ingest bookkeeping.
type Result struct {
	Records     []*models.BehavioralRecord
	SkippedRows int
}

// ParseCSV reads one telemetry export. The first row must be a header; column
// order is free and matching is case-insensitive.
func ParseCSV(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[normalizeHeader(name)] = i
	}

	hasTraits := hasAnyColumn(cols, "o", "c", "e", "a", "n")

	result := &Result{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A single broken row should not sink a 10k-row upload
			result.SkippedRows++
			continue
		}

		rec := recordFromRow(cols, row, hasTraits)
		if rec == nil {
			result.SkippedRows++
			continue
		}
		result.Records = append(result.Records, rec)
	}

	if len(result.Records) == 0 {
		return nil, fmt.Errorf("csv contained no usable rows (%d skipped)", result.SkippedRows)
	}

	util.Info("CSV parsed",
		zap.Int("record_count", len(result.Records)),
		zap.Int("skipped_rows", result.SkippedRows),
		zap.Bool("traits_provided", hasTraits))

	return result, nil
}

func recordFromRow(cols map[string]int, row []string, hasTraits bool) *models.BehavioralRecord {
	get := func(names ...string) string {
		for _, name := range names {
			if idx, ok := cols[name]; ok && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
		}
		return ""
	}
	num := func(names ...string) float64 {
		return coerceFloat(get(names...))
	}

	rec := &models.BehavioralRecord{
		User:         util.SanitizeIdentity(get("user", "user_id", "employee_id")),
		EmployeeName: util.SanitizeIdentity(get("employee_name", "name")),
		Department:   util.SanitizeIdentity(get("department")),
		JobTitle:     util.SanitizeIdentity(get("job_title", "role")),
		Date:         get("date", "record_date"),

		LoginCount:           num("login_count", "logon_count"),
		NightLogins:          num("night_logins", "after_hours_logins"),
		UniquePCs:            num("unique_pcs"),
		SessionDurationTotal: num("session_duration_total"),
		SessionDurationAvg:   num("session_duration_avg"),

		FileActivityCount:      num("file_activity_count", "file_count"),
		FileOpened:             num("file_opened"),
		FileCopied:             num("file_copied"),
		FileDeleted:            num("file_deleted"),
		FileDownloaded:         num("file_downloaded"),
		FileUploaded:           num("file_uploaded"),
		FileEdited:             num("file_edited"),
		TotalFileOperations:    num("total_file_operations"),
		SensitiveFilesAccessed: num("sensitive_files_accessed"),
		UniqueFilesAccessed:    num("unique_files_accessed"),
		SystemsAccessed:        get("systems_accessed"),

		USBCount:      num("usb_count", "device_count"),
		USBConnect:    num("usb_connect"),
		USBDisconnect: num("usb_disconnect"),

		EmailsSent:       num("emails_sent", "email_count"),
		ExternalMails:    num("external_mails", "external_emails"),
		EmailAttachments: num("email_attachments"),
		AvgEmailSize:     num("avg_email_size"),

		HTTPRequests: num("http_requests", "http_count"),
		UniqueURLs:   num("unique_urls"),

		DatabaseSessionDuration: num("database_session_duration", "db_session_duration"),
		DatabaseQueryCount:      num("database_query_count", "db_query_count"),
		DatabaseReadOps:         num("database_read_ops", "db_read_ops"),
		DatabaseWriteOps:        num("database_write_ops", "db_write_ops"),
		PrimaryDatabase:         get("primary_database"),

		RiskScore: num("risk_score", "baseline_risk"),
	}

	if rec.User == "" && rec.EmployeeName == "" {
		return nil
	}
	if rec.User == "" {
		rec.User = rec.EmployeeName
	}

	rec.AnomalyLabel = coerceAnomalyLabel(get("anomaly_label", "anomaly"))

	if hasTraits {
		rec.TraitOpenness = coerceTrait(get("o", "trait_o", "openness"))
		rec.TraitConscientiousness = coerceTrait(get("c", "trait_c", "conscientiousness"))
		rec.TraitExtraversion = coerceTrait(get("e", "trait_e", "extraversion"))
		rec.TraitAgreeableness = coerceTrait(get("a", "trait_a", "agreeableness"))
		rec.TraitNeuroticism = coerceTrait(get("n", "trait_n", "neuroticism"))
		rec.TraitsProvided = true
	} else {
		rec.TraitOpenness = defaultTrait
		rec.TraitConscientiousness = defaultTrait
		rec.TraitExtraversion = defaultTrait
		rec.TraitAgreeableness = defaultTrait
		rec.TraitNeuroticism = defaultTrait
	}

	if detail := get("file_operations_detail", "file_operations"); detail != "" {
		var ops []models.FileOperation
		if err := json.Unmarshal([]byte(detail), &ops); err == nil {
			rec.FileOperations = ops
		}
	}

	return rec
}

func normalizeHeader(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "\ufeff") // BOM on the first column
	return strings.ToLower(name)
}

func hasAnyColumn(cols map[string]int, names ...string) bool {
	for _, name := range names {
		if _, ok := cols[name]; ok {
			return true
		}
	}
	return false
}

// coerceFloat parses a numeric cell, mapping anything unusable to 0.
func coerceFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// coerceTrait parses a trait cell, falling back to the neutral default and
// clamping into [0,100].
func coerceTrait(s string) float64 {
	if s == "" {
		return defaultTrait
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return defaultTrait
	}
	if f < 0 {
		return 0
	}
	if f > 100 {
		return 100
	}
	return f
}

// coerceAnomalyLabel maps the upstream detector label onto +1/-1, treating
// anything unrecognized as normal.
func coerceAnomalyLabel(s string) int {
	switch strings.TrimSpace(s) {
	case "-1", "-1.0", "anomaly", "anomalous":
		return -1
	default:
		return 1
	}
}

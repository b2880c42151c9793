package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sentinel-service/internal/client"
	"sentinel-service/internal/models"
	"sentinel-service/internal/util"
)

// RecordStore keeps behavioral records in ClickHouse. The table is
// append-only; each CSV upload becomes one batch and analytics always read
// the most recent batch so re-uploads fully replace the working population.
type RecordStore struct {
	client *client.ClickHouseClient
}

func NewRecordStore(ch *client.ClickHouseClient, logger *zap.Logger) *RecordStore {
	return &RecordStore{client: ch}
}

const insertRecordsQuery = `
    INSERT INTO behavioral_records (
        batch_id, uploaded_at, user, employee_name, department, job_title,
        record_date, login_count, night_logins, unique_pcs,
        session_duration_total, session_duration_avg, file_activity_count,
        file_opened, file_copied, file_deleted, file_downloaded,
        file_uploaded, file_edited, total_file_operations,
        sensitive_files_accessed, unique_files_accessed, systems_accessed,
        file_operations, usb_count, usb_connect, usb_disconnect, emails_sent,
        external_mails, email_attachments, avg_email_size, http_requests,
        unique_urls, database_session_duration, database_query_count,
        database_read_ops, database_write_ops, primary_database, risk_score,
        anomaly_label, trait_o, trait_c, trait_e, trait_a, trait_n,
        traits_provided
    )`

const selectRecordsColumns = `
        user, employee_name, department, job_title, record_date, login_count,
        night_logins, unique_pcs, session_duration_total,
        session_duration_avg, file_activity_count, file_opened, file_copied,
        file_deleted, file_downloaded, file_uploaded, file_edited,
        total_file_operations, sensitive_files_accessed,
        unique_files_accessed, systems_accessed, file_operations, usb_count,
        usb_connect, usb_disconnect, emails_sent, external_mails,
        email_attachments, avg_email_size, http_requests, unique_urls,
        database_session_duration, database_query_count, database_read_ops,
        database_write_ops, primary_database, risk_score, anomaly_label,
        trait_o, trait_c, trait_e, trait_a, trait_n, traits_provided`

// SaveBatch stores one uploaded population under the given batch id.
func (s *RecordStore) SaveBatch(ctx context.Context, batchID string, records []*models.BehavioralRecord) error {
	if len(records) == 0 {
		return nil
	}

	uploadedAt := time.Now().UTC()
	rows := make([][]interface{}, 0, len(records))
	for _, rec := range records {
		fileOps := "[]"
		if len(rec.FileOperations) > 0 {
			encoded, err := json.Marshal(rec.FileOperations)
			if err != nil {
				return fmt.Errorf("failed to encode file operations for %s: %w", rec.User, err)
			}
			fileOps = string(encoded)
		}

		rows = append(rows, []interface{}{
			batchID, uploadedAt, rec.User, rec.EmployeeName, rec.Department,
			rec.JobTitle, rec.Date, rec.LoginCount, rec.NightLogins,
			rec.UniquePCs, rec.SessionDurationTotal, rec.SessionDurationAvg,
			rec.FileActivityCount, rec.FileOpened, rec.FileCopied,
			rec.FileDeleted, rec.FileDownloaded, rec.FileUploaded,
			rec.FileEdited, rec.TotalFileOperations,
			rec.SensitiveFilesAccessed, rec.UniqueFilesAccessed,
			rec.SystemsAccessed, fileOps, rec.USBCount, rec.USBConnect,
			rec.USBDisconnect, rec.EmailsSent, rec.ExternalMails,
			rec.EmailAttachments, rec.AvgEmailSize, rec.HTTPRequests,
			rec.UniqueURLs, rec.DatabaseSessionDuration,
			rec.DatabaseQueryCount, rec.DatabaseReadOps,
			rec.DatabaseWriteOps, rec.PrimaryDatabase, rec.RiskScore,
			int8(rec.AnomalyLabel), rec.TraitOpenness,
			rec.TraitConscientiousness, rec.TraitExtraversion,
			rec.TraitAgreeableness, rec.TraitNeuroticism, rec.TraitsProvided,
		})
	}

	if err := s.client.BatchInsert(ctx, insertRecordsQuery, rows); err != nil {
		util.Error("Failed to insert behavioral records",
			zap.String("batch_id", batchID),
			zap.Int("record_count", len(records)),
			zap.Error(err))
		return fmt.Errorf("failed to insert behavioral records: %w", err)
	}

	util.Info("Behavioral records stored",
		zap.String("batch_id", batchID),
		zap.Int("record_count", len(records)))

	return nil
}

// LatestBatchID returns the id of the most recently uploaded batch, or empty
// when no upload has happened yet.
func (s *RecordStore) LatestBatchID(ctx context.Context) (string, error) {
	rows, err := s.client.QueryRows(ctx, `
        SELECT batch_id FROM behavioral_records
        ORDER BY uploaded_at DESC LIMIT 1`)
	if err != nil {
		return "", fmt.Errorf("failed to query latest batch: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return "", nil
	}

	var batchID string
	if err := rows.Scan(&batchID); err != nil {
		return "", fmt.Errorf("failed to scan batch id: %w", err)
	}
	return batchID, nil
}

// GetPopulation returns every record from the most recent upload.
func (s *RecordStore) GetPopulation(ctx context.Context) ([]*models.BehavioralRecord, error) {
	batchID, err := s.LatestBatchID(ctx)
	if err != nil {
		return nil, err
	}
	if batchID == "" {
		return nil, nil
	}

	rows, err := s.client.QueryRows(ctx,
		`SELECT `+selectRecordsColumns+`
        FROM behavioral_records WHERE batch_id = ?`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query population: %w", err)
	}
	defer rows.Close()

	var records []*models.BehavioralRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// GetByUser returns the record for one employee from the latest upload.
func (s *RecordStore) GetByUser(ctx context.Context, userID string) (*models.BehavioralRecord, error) {
	batchID, err := s.LatestBatchID(ctx)
	if err != nil {
		return nil, err
	}
	if batchID == "" {
		return nil, nil
	}

	rows, err := s.client.QueryRows(ctx,
		`SELECT `+selectRecordsColumns+`
        FROM behavioral_records
        WHERE batch_id = ? AND (user = ? OR employee_name = ?)
        LIMIT 1`, batchID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query record for %s: %w", userID, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}

	return scanRecord(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(rows rowScanner) (*models.BehavioralRecord, error) {
	rec := &models.BehavioralRecord{}
	var (
		fileOps      string
		anomalyLabel int8
	)

	err := rows.Scan(
		&rec.User, &rec.EmployeeName, &rec.Department, &rec.JobTitle,
		&rec.Date, &rec.LoginCount, &rec.NightLogins, &rec.UniquePCs,
		&rec.SessionDurationTotal, &rec.SessionDurationAvg,
		&rec.FileActivityCount, &rec.FileOpened, &rec.FileCopied,
		&rec.FileDeleted, &rec.FileDownloaded, &rec.FileUploaded,
		&rec.FileEdited, &rec.TotalFileOperations,
		&rec.SensitiveFilesAccessed, &rec.UniqueFilesAccessed,
		&rec.SystemsAccessed, &fileOps, &rec.USBCount, &rec.USBConnect,
		&rec.USBDisconnect, &rec.EmailsSent, &rec.ExternalMails,
		&rec.EmailAttachments, &rec.AvgEmailSize, &rec.HTTPRequests,
		&rec.UniqueURLs, &rec.DatabaseSessionDuration,
		&rec.DatabaseQueryCount, &rec.DatabaseReadOps, &rec.DatabaseWriteOps,
		&rec.PrimaryDatabase, &rec.RiskScore, &anomalyLabel,
		&rec.TraitOpenness, &rec.TraitConscientiousness,
		&rec.TraitExtraversion, &rec.TraitAgreeableness,
		&rec.TraitNeuroticism, &rec.TraitsProvided,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan behavioral record: %w", err)
	}

	rec.AnomalyLabel = int(anomalyLabel)
	if fileOps != "" && fileOps != "[]" {
		// Damaged blobs lose the detail events, not the record
		_ = json.Unmarshal([]byte(fileOps), &rec.FileOperations)
	}

	return rec, nil
}

// HealthCheck verifies ClickHouse connectivity.
func (s *RecordStore) HealthCheck(ctx context.Context) error {
	return s.client.HealthCheck(ctx)
}

package scylla

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sentinel-service/internal/bucketing"
	"sentinel-service/internal/models"
	"sentinel-service/internal/util"
)

// ActivityRepository persists endpoint activity telemetry. Details are stored
// as a JSON blob since the shape varies per activity type.
type ActivityRepository struct {
	client    *ScyllaClient
	bucketing *bucketing.BucketingManager
}

func NewActivityRepository(client *ScyllaClient, bm *bucketing.BucketingManager, logger *zap.Logger) *ActivityRepository {
	return &ActivityRepository{
		client:    client,
		bucketing: bm,
	}
}

// SaveEntries writes a slice of activity entries in unlogged batches.
// Batches are chunked so one large ingest does not exceed the coordinator's
// batch size limit.
func (r *ActivityRepository) SaveEntries(ctx context.Context, entries []models.ActivityLogEntry) error {
	const chunkSize = 100

	for start := 0; start < len(entries); start += chunkSize {
		end := start + chunkSize
		if end > len(entries) {
			end = len(entries)
		}

		batch := r.client.Batch(gocql.UnloggedBatch).WithContext(ctx)

		for i := start; i < end; i++ {
			entry := &entries[i]
			if entry.ID == "" {
				entry.ID = uuid.New().String()
			}

			details, err := json.Marshal(entry.Details)
			if err != nil {
				return fmt.Errorf("failed to encode activity details: %w", err)
			}

			batch.Query(r.client.Prepared.InsertActivityLog.Statement(),
				r.bucketing.GetEventBucket(entry.UserID), entry.UserID,
				entry.ID, entry.Timestamp, string(entry.ActivityType),
				string(details), entry.Duration, entry.IsAnomalous,
				string(entry.Severity))
		}

		if err := r.client.ExecuteBatch(batch); err != nil {
			util.Error("Failed to save activity entries",
				zap.Int("chunk_start", start),
				zap.Error(err))
			return fmt.Errorf("failed to save activity entries: %w", err)
		}
	}

	util.Info("Activity entries saved", zap.Int("entry_count", len(entries)))
	return nil
}

// GetEntriesForUser returns all stored activity for one employee.
func (r *ActivityRepository) GetEntriesForUser(ctx context.Context, userID string) ([]models.ActivityLogEntry, error) {
	query := r.client.Prepared.GetActivityLogs.
		Bind(r.bucketing.GetEventBucket(userID), userID).
		WithContext(ctx)

	return r.scanEntries(query, userID)
}

// GetEntriesSince returns activity for one employee at or after the cutoff.
func (r *ActivityRepository) GetEntriesSince(ctx context.Context, userID string, since time.Time) ([]models.ActivityLogEntry, error) {
	query := r.client.Prepared.GetActivityLogsFrom.
		Bind(r.bucketing.GetEventBucket(userID), userID, since).
		WithContext(ctx)

	return r.scanEntries(query, userID)
}

func (r *ActivityRepository) scanEntries(query *gocql.Query, userID string) ([]models.ActivityLogEntry, error) {
	iter := query.Iter()

	var entries []models.ActivityLogEntry
	var (
		entry        models.ActivityLogEntry
		activityType string
		severity     string
		details      string
	)
	for iter.Scan(&entry.ID, &entry.Timestamp, &activityType, &details,
		&entry.Duration, &entry.IsAnomalous, &severity) {
		entry.UserID = userID
		entry.ActivityType = models.ActivityType(activityType)
		entry.Severity = models.Severity(severity)
		if details != "" {
			// Malformed detail blobs degrade to empty details, the entry
			// itself is still evidence
			_ = json.Unmarshal([]byte(details), &entry.Details)
		}
		entries = append(entries, entry)
		entry = models.ActivityLogEntry{}
	}

	if err := iter.Close(); err != nil {
		util.Error("Failed to read activity entries",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to read activity entries: %w", err)
	}

	return entries, nil
}

// HealthCheck verifies the underlying session is usable.
func (r *ActivityRepository) HealthCheck(ctx context.Context) error {
	return r.client.HealthCheck()
}

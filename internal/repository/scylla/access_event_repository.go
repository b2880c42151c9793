package scylla

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sentinel-service/internal/bucketing"
	"sentinel-service/internal/encryption"
	"sentinel-service/internal/models"
	"sentinel-service/internal/util"
)

// AccessEventRepository persists CCTV/access-control detections keyed by the
// employee they were attributed to. Detected person names are envelope
// encrypted before they land on disk.
type AccessEventRepository struct {
	client    *ScyllaClient
	bucketing *bucketing.BucketingManager
	crypto    *encryption.EncryptionManager
}

func NewAccessEventRepository(client *ScyllaClient, bm *bucketing.BucketingManager, crypto *encryption.EncryptionManager, logger *zap.Logger) *AccessEventRepository {
	return &AccessEventRepository{
		client:    client,
		bucketing: bm,
		crypto:    crypto,
	}
}

// SaveEvents writes all events from one footage upload in a single batch.
// Events without an attributed person are stored under their detection id so
// unattributed detections remain queryable.
func (r *AccessEventRepository) SaveEvents(ctx context.Context, log *models.AccessLog) error {
	if log == nil || len(log.Events) == 0 {
		return nil
	}

	batch := r.client.Batch(gocql.UnloggedBatch).WithContext(ctx)

	for i := range log.Events {
		ev := &log.Events[i]
		if ev.ID == "" {
			ev.ID = uuid.New().String()
		}
		owner := ev.DetectedPersonID
		if owner == "" {
			owner = ev.ID
		}

		storedName, err := r.sealName(ctx, ev.DetectedPersonName)
		if err != nil {
			return fmt.Errorf("failed to encrypt person name: %w", err)
		}

		batch.Query(r.client.Prepared.InsertAccessEvent.Statement(),
			r.bucketing.GetEventBucket(owner), owner, ev.ID,
			storedName, ev.Timestamp, ev.Confidence,
			ev.Authorized, ev.Location, ev.Duration, ev.FrameNumber)
	}

	if err := r.client.ExecuteBatch(batch); err != nil {
		util.Error("Failed to save access events",
			zap.String("video_id", log.VideoID),
			zap.Int("event_count", len(log.Events)),
			zap.Error(err))
		return fmt.Errorf("failed to save access events: %w", err)
	}

	util.Info("Access events saved",
		zap.String("video_id", log.VideoID),
		zap.Int("event_count", len(log.Events)))

	return nil
}

// GetEventsForEmployee returns every stored detection attributed to the
// employee, newest first.
func (r *AccessEventRepository) GetEventsForEmployee(ctx context.Context, employeeID string) ([]models.AccessEvent, error) {
	query := r.client.Prepared.GetAccessEvents.
		Bind(r.bucketing.GetEventBucket(employeeID), employeeID).
		WithContext(ctx)

	return r.scanEvents(ctx, query, employeeID)
}

// GetEventsSince returns detections for the employee at or after the cutoff.
func (r *AccessEventRepository) GetEventsSince(ctx context.Context, employeeID string, since time.Time) ([]models.AccessEvent, error) {
	query := r.client.Prepared.GetAccessEventsFrom.
		Bind(r.bucketing.GetEventBucket(employeeID), employeeID, since).
		WithContext(ctx)

	return r.scanEvents(ctx, query, employeeID)
}

func (r *AccessEventRepository) scanEvents(ctx context.Context, query *gocql.Query, employeeID string) ([]models.AccessEvent, error) {
	iter := query.Iter()

	var events []models.AccessEvent
	var ev models.AccessEvent
	for iter.Scan(&ev.ID, &ev.DetectedPersonName, &ev.Timestamp, &ev.Confidence,
		&ev.Authorized, &ev.Location, &ev.Duration, &ev.FrameNumber) {
		ev.DetectedPersonID = employeeID
		ev.DetectedPersonName = r.openName(ctx, ev.ID, ev.DetectedPersonName)
		events = append(events, ev)
		ev = models.AccessEvent{}
	}

	if err := iter.Close(); err != nil {
		util.Error("Failed to read access events",
			zap.String("employee_id", employeeID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to read access events: %w", err)
	}

	return events, nil
}

// sealName envelope-encrypts a person name for storage. Empty names and a
// missing encryption manager pass through unchanged.
func (r *AccessEventRepository) sealName(ctx context.Context, name string) (string, error) {
	if r.crypto == nil || name == "" {
		return name, nil
	}

	enc, err := r.crypto.EncryptIdentity(ctx, name)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(enc)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// openName reverses sealName. Rows written before encryption was enabled are
// stored as plain text and returned as-is; undecryptable names degrade to
// empty rather than failing the read.
func (r *AccessEventRepository) openName(ctx context.Context, eventID, stored string) string {
	if r.crypto == nil || stored == "" || !strings.HasPrefix(stored, "{") {
		return stored
	}

	var enc encryption.EncryptedData
	if err := json.Unmarshal([]byte(stored), &enc); err != nil {
		return stored
	}

	name, err := r.crypto.DecryptIdentity(ctx, &enc)
	if err != nil {
		util.Warn("Failed to decrypt person name",
			zap.String("event_id", eventID),
			zap.Error(err))
		return ""
	}
	return name
}

// HealthCheck verifies the underlying session is usable.
func (r *AccessEventRepository) HealthCheck(ctx context.Context) error {
	return r.client.HealthCheck()
}

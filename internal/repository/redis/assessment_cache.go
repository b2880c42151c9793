package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sentinel-service/internal/client"
	"sentinel-service/internal/models"
	"sentinel-service/internal/util"
)

const (
	assessmentPrefix = "assessment:"
	reportKey        = "threat_report:latest"
)

// ErrCacheMiss is returned when no cached value exists for the key.
var ErrCacheMiss = errors.New("cache miss")

// AssessmentCache keeps computed risk assessments and the latest threat
// report snapshot in Redis so the dashboard does not rescore on every poll.
type AssessmentCache struct {
	client *client.RedisClient
	ttl    time.Duration
}

func NewAssessmentCache(client *client.RedisClient, ttl time.Duration) *AssessmentCache {
	return &AssessmentCache{client: client, ttl: ttl}
}

func (c *AssessmentCache) SetAssessment(ctx context.Context, a *models.RiskAssessment) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode assessment: %w", err)
	}

	key := assessmentPrefix + a.User
	if err := c.client.Set(ctx, key, data, c.ttl); err != nil {
		util.Error("Failed to cache assessment",
			zap.String("user", a.User),
			zap.Error(err))
		return fmt.Errorf("failed to cache assessment: %w", err)
	}

	util.Debug("Assessment cached",
		zap.String("user", a.User),
		zap.Duration("ttl", c.ttl))
	return nil
}

func (c *AssessmentCache) GetAssessment(ctx context.Context, userID string) (*models.RiskAssessment, error) {
	val, err := c.client.Get(ctx, assessmentPrefix+userID)
	if err != nil {
		if errors.Is(err, client.ErrKeyNotFound) {
			return nil, ErrCacheMiss
		}
		util.Error("Failed to read cached assessment",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to read cached assessment: %w", err)
	}

	var assessment models.RiskAssessment
	if err := json.Unmarshal([]byte(val), &assessment); err != nil {
		// A corrupt entry behaves like a miss so it gets recomputed
		_ = c.client.Del(ctx, assessmentPrefix+userID)
		return nil, ErrCacheMiss
	}

	return &assessment, nil
}

// SetReport stores the latest threat report snapshot.
func (c *AssessmentCache) SetReport(ctx context.Context, report *models.ThreatReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode threat report: %w", err)
	}

	if err := c.client.Set(ctx, reportKey, data, c.ttl); err != nil {
		util.Error("Failed to cache threat report", zap.Error(err))
		return fmt.Errorf("failed to cache threat report: %w", err)
	}
	return nil
}

func (c *AssessmentCache) GetReport(ctx context.Context) (*models.ThreatReport, error) {
	val, err := c.client.Get(ctx, reportKey)
	if err != nil {
		if errors.Is(err, client.ErrKeyNotFound) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read cached threat report: %w", err)
	}

	var report models.ThreatReport
	if err := json.Unmarshal([]byte(val), &report); err != nil {
		_ = c.client.Del(ctx, reportKey)
		return nil, ErrCacheMiss
	}

	return &report, nil
}

// InvalidateAll drops every cached assessment and the report snapshot.
// Called after a fresh CSV ingest replaces the population.
func (c *AssessmentCache) InvalidateAll(ctx context.Context) error {
	keys, _, err := c.client.Scan(ctx, 0, assessmentPrefix+"*", 500)
	if err != nil {
		return fmt.Errorf("failed to scan assessment keys: %w", err)
	}

	keys = append(keys, reportKey)
	if err := c.client.Del(ctx, keys...); err != nil {
		return fmt.Errorf("failed to invalidate assessments: %w", err)
	}

	util.Info("Assessment cache invalidated", zap.Int("key_count", len(keys)))
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sentinel-service/internal/alert"
	"sentinel-service/internal/config"
	"sentinel-service/internal/fixtures"
	"sentinel-service/internal/hashing"
	"sentinel-service/internal/ingest"
	"sentinel-service/internal/models"
	chrepo "sentinel-service/internal/repository/clickhouse"
	redisrepo "sentinel-service/internal/repository/redis"
	"sentinel-service/internal/repository/scylla"
	"sentinel-service/internal/risk"
	"sentinel-service/internal/search"
	"sentinel-service/internal/util"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrNoPopulation     = errors.New("no behavioral data ingested yet")
	ErrInvalidInput     = errors.New("invalid input")
)

// AnalysisService orchestrates ingestion, scoring and reporting. The scoring
// core stays pure; this layer owns all I/O around it.
type AnalysisService struct {
	records  *chrepo.RecordStore
	access   *scylla.AccessEventRepository
	activity *scylla.ActivityRepository
	cache    *redisrepo.AssessmentCache
	index    *search.ProfileIndex
	alerts   *alert.Publisher
	hasher   *hashing.Hasher
	cfg      *config.Config
	logger   *zap.Logger

	reportMu sync.Mutex
}

func NewAnalysisService(
	records *chrepo.RecordStore,
	access *scylla.AccessEventRepository,
	activity *scylla.ActivityRepository,
	cache *redisrepo.AssessmentCache,
	index *search.ProfileIndex,
	alerts *alert.Publisher,
	hasher *hashing.Hasher,
	cfg *config.Config,
	logger *zap.Logger,
) *AnalysisService {
	return &AnalysisService{
		records:  records,
		access:   access,
		activity: activity,
		cache:    cache,
		index:    index,
		alerts:   alerts,
		hasher:   hasher,
		cfg:      cfg,
		logger:   logger,
	}
}

// IngestSummary reports what one CSV upload produced.
type IngestSummary struct {
	BatchID     string `json:"batch_id"`
	Ingested    int    `json:"ingested"`
	SkippedRows int    `json:"skipped_rows"`
}

// IngestCSV parses and stores one telemetry export, replacing the working
// population and invalidating every cached assessment.
func (s *AnalysisService) IngestCSV(ctx context.Context, r io.Reader) (*IngestSummary, error) {
	result, err := ingest.ParseCSV(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	batchID := uuid.New().String()
	if err := s.records.SaveBatch(ctx, batchID, result.Records); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		// Stale cache entries expire on their own TTL; ingest still succeeded
		util.Warn("Cache invalidation after ingest failed", zap.Error(err))
	}

	util.Info("CSV ingest completed",
		zap.String("batch_id", batchID),
		zap.Int("ingested", len(result.Records)),
		zap.Int("skipped_rows", result.SkippedRows))

	return &IngestSummary{
		BatchID:     batchID,
		Ingested:    len(result.Records),
		SkippedRows: result.SkippedRows,
	}, nil
}

// IngestAccessEvents stores one footage log's detections.
func (s *AnalysisService) IngestAccessEvents(ctx context.Context, log *models.AccessLog) error {
	if log == nil || len(log.Events) == 0 {
		return fmt.Errorf("%w: access log carries no events", ErrInvalidInput)
	}
	if log.VideoID == "" {
		log.VideoID = uuid.New().String()
	}
	if log.UploadedAt.IsZero() {
		log.UploadedAt = time.Now().UTC()
	}
	return s.access.SaveEvents(ctx, log)
}

// SeedDemo loads a reproducible synthetic population.
func (s *AnalysisService) SeedDemo(ctx context.Context, seed int64, employees int) (*IngestSummary, error) {
	if employees <= 0 {
		employees = 50
	}
	if employees > 5000 {
		return nil, fmt.Errorf("%w: demo population capped at 5000 employees", ErrInvalidInput)
	}

	gen := fixtures.NewGenerator(seed)
	records := gen.Employees(employees)
	entries := gen.Activities(records, 12)
	accessLog := gen.AccessLog(records)

	batchID := uuid.New().String()
	if err := s.records.SaveBatch(ctx, batchID, records); err != nil {
		return nil, err
	}
	if err := s.activity.SaveEntries(ctx, entries); err != nil {
		return nil, err
	}
	if err := s.access.SaveEvents(ctx, accessLog); err != nil {
		return nil, err
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		util.Warn("Cache invalidation after seed failed", zap.Error(err))
	}

	util.Info("Demo population seeded",
		zap.Int64("seed", seed),
		zap.Int("employees", employees),
		zap.Int("activity_entries", len(entries)),
		zap.Int("access_events", len(accessLog.Events)))

	return &IngestSummary{BatchID: batchID, Ingested: len(records)}, nil
}

// Assessment returns the multi-dimensional risk assessment for one employee,
// served from cache when fresh.
func (s *AnalysisService) Assessment(ctx context.Context, userID string) (*models.RiskAssessment, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty employee id", ErrInvalidInput)
	}

	if cached, err := s.cache.GetAssessment(ctx, userID); err == nil {
		return cached, nil
	}

	rec, err := s.recordFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	logs, err := s.activity.GetEntriesForUser(ctx, rec.User)
	if err != nil {
		// Assessments degrade gracefully without activity evidence
		util.Warn("Activity lookup failed, assessing without logs",
			zap.String("user", rec.User), zap.Error(err))
		logs = nil
	}

	assessment := risk.BuildAssessment(rec, logs)

	if err := s.cache.SetAssessment(ctx, &assessment); err != nil {
		util.Warn("Failed to cache assessment", zap.Error(err))
	}

	return &assessment, nil
}

// Comparison ranks one employee against the rest of the population.
func (s *AnalysisService) Comparison(ctx context.Context, userID string) (*models.PeerComparison, error) {
	rec, err := s.recordFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	population, err := s.population(ctx)
	if err != nil {
		return nil, err
	}

	peers := make([]*models.BehavioralRecord, 0, len(population))
	for _, p := range population {
		if p.User != rec.User {
			peers = append(peers, p)
		}
	}

	cmp := risk.CompareToPeers(rec, peers)
	return &cmp, nil
}

// Profile builds the unified behavioral + access profile for one employee
// and mirrors it into the search index.
func (s *AnalysisService) Profile(ctx context.Context, userID string) (*models.UnifiedSpyProfile, error) {
	rec, err := s.recordFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	accessLog, err := s.accessLogFor(ctx, rec.User)
	if err != nil {
		util.Warn("Access event lookup failed, profiling without them",
			zap.String("user", rec.User), zap.Error(err))
		accessLog = nil
	}

	profile := risk.BuildSpyProfile(rec, accessLog, nil)

	if s.index != nil {
		if err := s.index.IndexProfile(ctx, &profile); err != nil {
			util.Warn("Profile indexing failed", zap.Error(err))
		}
	}

	return &profile, nil
}

// Trend returns the population risk trend over the given day window.
func (s *AnalysisService) Trend(ctx context.Context, days int) ([]models.TrendPoint, error) {
	if days <= 0 {
		days = 30
	}
	population, err := s.population(ctx)
	if err != nil {
		return nil, err
	}
	return risk.Trend(population, days), nil
}

// AtRisk lists employees at or above the threshold, highest first.
func (s *AnalysisService) AtRisk(ctx context.Context, threshold float64) ([]models.RankedRecord, error) {
	if threshold <= 0 {
		threshold = s.cfg.Analysis.AtRiskThreshold
	}
	population, err := s.population(ctx)
	if err != nil {
		return nil, err
	}
	return risk.AtRiskRecords(population, threshold), nil
}

// ThreatReport profiles the whole population, caches the report, mirrors
// profiles into the search index and emits alerts for suspects.
func (s *AnalysisService) ThreatReport(ctx context.Context, refresh bool) (*models.ThreatReport, error) {
	if !refresh {
		if cached, err := s.cache.GetReport(ctx); err == nil {
			return cached, nil
		}
	}

	// One run at a time; concurrent dashboard polls share the result
	s.reportMu.Lock()
	defer s.reportMu.Unlock()

	if !refresh {
		if cached, err := s.cache.GetReport(ctx); err == nil {
			return cached, nil
		}
	}

	population, err := s.population(ctx)
	if err != nil {
		return nil, err
	}

	accessLogs, err := s.collectAccessLogs(ctx, population)
	if err != nil {
		return nil, err
	}

	profiles := risk.ProfilePopulation(population, accessLogs)
	report := risk.BuildThreatReport(profiles)

	if err := s.cache.SetReport(ctx, &report); err != nil {
		util.Warn("Failed to cache threat report", zap.Error(err))
	}
	if s.index != nil {
		if err := s.index.IndexProfiles(ctx, profiles); err != nil {
			util.Warn("Profile indexing failed", zap.Error(err))
		}
	}
	s.alerts.PublishSuspects(ctx, &report)

	util.Info("Threat report generated",
		zap.Int("population", len(population)),
		zap.Int("suspects", report.TotalSuspects))

	return &report, nil
}

// collectAccessLogs fans out per-employee access event reads across a worker
// pool. A single employee's read failure drops their access component, not
// the whole report.
func (s *AnalysisService) collectAccessLogs(ctx context.Context, population []*models.BehavioralRecord) (map[string]*models.AccessLog, error) {
	logs := make(map[string]*models.AccessLog, len(population))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Analysis.BatchWorkers)

	for _, rec := range population {
		rec := rec
		g.Go(func() error {
			accessLog, err := s.accessLogFor(gctx, rec.User)
			if err != nil {
				util.Warn("Access event lookup failed during report",
					zap.String("user", rec.User), zap.Error(err))
				return nil
			}
			if accessLog != nil {
				mu.Lock()
				logs[rec.User] = accessLog
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return logs, nil
}

// ActivityOverview bundles the stats and the rendered report for one
// employee's recent activity.
type ActivityOverview struct {
	User   string               `json:"user"`
	Stats  models.ActivityStats `json:"stats"`
	Report string               `json:"report"`
}

// ActivityReport summarizes one employee's activity over the past hoursBack.
func (s *AnalysisService) ActivityReport(ctx context.Context, userID string, hoursBack int) (*ActivityOverview, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty employee id", ErrInvalidInput)
	}
	if hoursBack <= 0 {
		hoursBack = 24
	}

	rec, err := s.recordFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	since := now.Add(-time.Duration(hoursBack) * time.Hour)
	logs, err := s.activity.GetEntriesSince(ctx, rec.User, since)
	if err != nil {
		return nil, err
	}

	return &ActivityOverview{
		User:   rec.User,
		Stats:  risk.ActivityStatsFor(rec.User, logs, time.Duration(hoursBack)*time.Hour, now),
		Report: risk.ActivityReport(rec.User, logs, hoursBack, now),
	}, nil
}

// ActivityExport renders every stored activity entry for one employee as
// CSV, for download from the dashboard.
func (s *AnalysisService) ActivityExport(ctx context.Context, userID string) (string, error) {
	rec, err := s.recordFor(ctx, userID)
	if err != nil {
		return "", err
	}

	logs, err := s.activity.GetEntriesForUser(ctx, rec.User)
	if err != nil {
		return "", err
	}

	return risk.ActivityCSV(logs), nil
}

// SearchEvidence runs a free-text query over indexed profiles.
func (s *AnalysisService) SearchEvidence(ctx context.Context, query string, limit int) ([]search.EvidenceHit, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", ErrInvalidInput)
	}
	if util.ContainsSuspicious(query) {
		return nil, fmt.Errorf("%w: query contains disallowed characters", ErrInvalidInput)
	}
	if s.index == nil {
		return nil, errors.New("search index not available")
	}
	return s.index.SearchEvidence(ctx, query, limit)
}

// PseudonymFor returns the stable pseudonymous token for an employee,
// used when exporting findings outside the service boundary.
func (s *AnalysisService) PseudonymFor(ctx context.Context, userID string) (string, error) {
	rec, err := s.recordFor(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.hasher.PseudonymizeIdentity(rec.User), nil
}

func (s *AnalysisService) recordFor(ctx context.Context, userID string) (*models.BehavioralRecord, error) {
	rec, err := s.records.GetByUser(ctx, util.SanitizeIdentity(userID))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrEmployeeNotFound
	}
	return rec, nil
}

func (s *AnalysisService) population(ctx context.Context) ([]*models.BehavioralRecord, error) {
	population, err := s.records.GetPopulation(ctx)
	if err != nil {
		return nil, err
	}
	if len(population) == 0 {
		return nil, ErrNoPopulation
	}
	return population, nil
}

// accessLogFor reconstructs an in-memory access log from stored detections.
func (s *AnalysisService) accessLogFor(ctx context.Context, userID string) (*models.AccessLog, error) {
	events, err := s.access.GetEventsForEmployee(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &models.AccessLog{Events: events}, nil
}

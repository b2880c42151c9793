package service

import (
	"go.uber.org/zap"

	"sentinel-service/internal/alert"
	"sentinel-service/internal/config"
	"sentinel-service/internal/hashing"
	chrepo "sentinel-service/internal/repository/clickhouse"
	redisrepo "sentinel-service/internal/repository/redis"
	"sentinel-service/internal/repository/scylla"
	"sentinel-service/internal/search"
)

// ServiceFactory creates and manages service instances
type ServiceFactory struct {
	records  *chrepo.RecordStore
	access   *scylla.AccessEventRepository
	activity *scylla.ActivityRepository
	cache    *redisrepo.AssessmentCache
	index    *search.ProfileIndex
	alerts   *alert.Publisher
	hasher   *hashing.Hasher
	cfg      *config.Config
	logger   *zap.Logger

	analysisService *AnalysisService
}

// NewServiceFactory creates a new service factory
func NewServiceFactory(
	records *chrepo.RecordStore,
	access *scylla.AccessEventRepository,
	activity *scylla.ActivityRepository,
	cache *redisrepo.AssessmentCache,
	index *search.ProfileIndex,
	alerts *alert.Publisher,
	hasher *hashing.Hasher,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceFactory {
	return &ServiceFactory{
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

// AnalysisService returns the analysis service instance (singleton)
func (f *ServiceFactory) AnalysisService() *AnalysisService {
	if f.analysisService == nil {
		f.analysisService = NewAnalysisService(
			f.records,
			f.access,
			f.activity,
			f.cache,
			f.index,
			f.alerts,
			f.hasher,
			f.cfg,
			f.logger,
		)
	}
	return f.analysisService
}

// Cleanup cleans up all services
func (f *ServiceFactory) Cleanup() {
}

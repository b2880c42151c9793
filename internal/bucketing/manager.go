package bucketing

import (
	"hash"
	"sync"

	"github.com/spaolacci/murmur3"

	"sentinel-service/internal/config"
)

// BucketingManager spreads employee event streams across fixed partitions so
// Scylla partition keys stay bounded regardless of how much telemetry a
// single employee produces.
type BucketingManager struct {
	eventBuckets int
	hasherPool   sync.Pool
	config       *config.Config
}

func NewBucketingManager(cfg *config.Config) *BucketingManager {
	bm := &BucketingManager{
		eventBuckets: cfg.Bucketing.EventBuckets,
		config:       cfg,
	}

	// Create pool of hash functions to avoid allocation overhead
	bm.hasherPool = sync.Pool{
		New: func() interface{} {
			return murmur3.New64()
		},
	}

	return bm
}

// GetEventBucket returns the partition bucket for an event stream
// (0 to eventBuckets-1). The same identifier always maps to the same
// bucket, so reads can target a single partition.
func (bm *BucketingManager) GetEventBucket(identifier string) int {
	return bm.getBucket(identifier, bm.eventBuckets)
}

// GetEventBuckets returns the number of event buckets
func (bm *BucketingManager) GetEventBuckets() int {
	return bm.eventBuckets
}

func (bm *BucketingManager) getBucket(key string, numBuckets int) int {
	hash := bm.getHash(key)
	return int(hash % uint64(numBuckets))
}

func (bm *BucketingManager) getHash(key string) uint64 {
	hasher := bm.hasherPool.Get().(hash.Hash64)
	defer bm.hasherPool.Put(hasher)

	hasher.Reset()
	hasher.Write([]byte(key))
	return hasher.Sum64()
}

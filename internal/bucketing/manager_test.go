package bucketing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-service/internal/config"
)

func newTestManager(buckets int) *BucketingManager {
	return NewBucketingManager(&config.Config{
		Bucketing: config.BucketingConfig{EventBuckets: buckets},
	})
}

func TestGetEventBucketStable(t *testing.T) {
	bm := newTestManager(256)

	first := bm.GetEventBucket("EMP-0042")
	for i := 0; i < 10; i++ {
		require.Equal(t, first, bm.GetEventBucket("EMP-0042"))
	}
}

func TestGetEventBucketRange(t *testing.T) {
	bm := newTestManager(16)

	for i := 0; i < 500; i++ {
		b := bm.GetEventBucket(fmt.Sprintf("EMP-%04d", i))
		require.GreaterOrEqual(t, b, 0)
		require.Less(t, b, 16)
	}
}

func TestGetEventBucketSpread(t *testing.T) {
	bm := newTestManager(16)

	seen := make(map[int]bool)
	for i := 0; i < 500; i++ {
		seen[bm.GetEventBucket(fmt.Sprintf("EMP-%04d", i))] = true
	}

	// 500 ids over 16 buckets should touch most of them
	assert.Greater(t, len(seen), 12)
}

func TestGetEventBuckets(t *testing.T) {
	bm := newTestManager(64)
	assert.Equal(t, 64, bm.GetEventBuckets())
}

package redis

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sentinel-service/internal/client"
	"sentinel-service/internal/util"
)

const ingestLimitPrefix = "ingest_limit:"

// IngestLimiter throttles dataset uploads per source. Ingest rewrites the
// working population and fans out cache invalidation, so a runaway client
// replaying uploads can do real damage downstream.
type IngestLimiter struct {
	client *client.RedisClient
	limit  int
	window time.Duration
}

func NewIngestLimiter(client *client.RedisClient, limit int, window time.Duration) *IngestLimiter {
	return &IngestLimiter{client: client, limit: limit, window: window}
}

// slidingWindowScript keeps one sorted set per source keyed by request
// timestamps and admits a request only while the window holds fewer than
// the limit.
const slidingWindowScript = `
    local key = KEYS[1]
    local now = tonumber(ARGV[1])
    local window_start = tonumber(ARGV[2])
    local limit = tonumber(ARGV[3])

    redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

    local current_count = redis.call('ZCARD', key)

    if current_count < limit then
        redis.call('ZADD', key, now, now)
        redis.call('EXPIRE', key, math.ceil(tonumber(ARGV[4])))
        return {1, current_count + 1}
    else
        return {0, current_count}
    end
`

// Allow reports whether the source may run another ingest right now. Errors
// fail open so a Redis outage never blocks uploads.
func (l *IngestLimiter) Allow(ctx context.Context, source string) (bool, int, error) {
	if l == nil || l.client == nil {
		return true, 0, nil
	}

	now := time.Now().Unix()
	windowStart := now - int64(l.window.Seconds())

	result, err := l.client.Eval(ctx, slidingWindowScript,
		[]string{ingestLimitPrefix + source},
		now, windowStart, l.limit, int(l.window.Seconds()))
	if err != nil {
		util.Warn("Ingest limiter check failed - allowing request",
			zap.String("source", source),
			zap.Error(err))
		return true, 0, err
	}

	resultSlice, ok := result.([]interface{})
	if !ok || len(resultSlice) != 2 {
		return true, 0, fmt.Errorf("unexpected result format from sliding window script")
	}

	allowed := resultSlice[0].(int64) == 1
	currentCount := int(resultSlice[1].(int64))

	util.Debug("Ingest limiter check",
		zap.String("source", source),
		zap.Bool("allowed", allowed),
		zap.Int("current_count", currentCount),
		zap.Int("limit", l.limit))

	return allowed, currentCount, nil
}

// Reset clears the window for a source. Exposed for tests and operator resets.
func (l *IngestLimiter) Reset(ctx context.Context, source string) error {
	if l == nil || l.client == nil {
		return nil
	}
	return l.client.Del(ctx, ingestLimitPrefix+source)
}

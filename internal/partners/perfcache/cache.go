// Package perfcache caches computed partner performance percentages in Redis.
// The cache is an optimization for list views; every miss or Redis failure
// falls back to direct computation.
package perfcache

import (
	"context"
	"strconv"
	"time"

	"prmhub_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "prm:perf:"

// Cache wraps a Redis client with get/set/invalidate for percentage values.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

// New creates a performance cache from a Redis URL.
func New(redisURL string, ttl time.Duration, log *logger.Logger) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &Cache{rdb: redis.NewClient(opt), ttl: ttl, log: log}, nil
}

// NewWithClient creates a cache over an existing client. Used in tests.
func NewWithClient(rdb *redis.Client, ttl time.Duration, log *logger.Logger) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, log: log}
}

func key(partnerID uuid.UUID) string {
	return keyPrefix + partnerID.String()
}

// Get returns the cached percentage for a partner, and whether it was present.
// Redis errors count as a miss.
func (c *Cache) Get(ctx context.Context, partnerID uuid.UUID) (int, bool) {
	raw, err := c.rdb.Get(ctx, key(partnerID)).Result()
	if err != nil {
		if err != redis.Nil && c.log != nil {
			c.log.Warn("perf cache read failed", "partner_id", partnerID.String(), "error", err)
		}
		return 0, false
	}
	pct, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return pct, true
}

// Set stores the percentage for a partner with the configured TTL.
func (c *Cache) Set(ctx context.Context, partnerID uuid.UUID, pct int) {
	if err := c.rdb.Set(ctx, key(partnerID), strconv.Itoa(pct), c.ttl).Err(); err != nil && c.log != nil {
		c.log.Warn("perf cache write failed", "partner_id", partnerID.String(), "error", err)
	}
}

// Invalidate drops the cached percentage after a scoring update.
func (c *Cache) Invalidate(ctx context.Context, partnerID uuid.UUID) {
	if err := c.rdb.Del(ctx, key(partnerID)).Err(); err != nil && c.log != nil {
		c.log.Warn("perf cache invalidate failed", "partner_id", partnerID.String(), "error", err)
	}
}

// Close releases the underlying Redis client.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

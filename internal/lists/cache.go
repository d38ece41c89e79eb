// internal/lists/cache.go
package lists

import (
	"context"
	"encoding/json"
	"time"

	"homecare-admin/internal/common/database"
	"homecare-admin/internal/common/metrics"
	"homecare-admin/internal/models"
)

// CountCache keeps the per-list status counts in redis with a short TTL, so
// badge numbers survive view switches without hammering the count endpoint.
type CountCache struct {
	rdb *database.RedisClient
	ttl time.Duration
}

func NewCountCache(rdb *database.RedisClient, ttl time.Duration) *CountCache {
	return &CountCache{rdb: rdb, ttl: ttl}
}

func countKey(list string) string {
	return "admin:counts:" + list
}

// Get returns the cached counts and whether the lookup hit.
func (c *CountCache) Get(ctx context.Context, list string) (models.Counts, bool) {
	raw, err := c.rdb.Get(ctx, countKey(list))
	if err != nil {
		metrics.CountCacheLookups.WithLabelValues("miss").Inc()
		return models.Counts{}, false
	}

	var counts models.Counts
	if err := json.Unmarshal([]byte(raw), &counts); err != nil {
		metrics.CountCacheLookups.WithLabelValues("miss").Inc()
		return models.Counts{}, false
	}

	metrics.CountCacheLookups.WithLabelValues("hit").Inc()
	return counts, true
}

func (c *CountCache) Set(ctx context.Context, list string, counts models.Counts) {
	encoded, err := json.Marshal(counts)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, countKey(list), string(encoded), c.ttl)
}

// Invalidate drops the cached counts after a mutation so the next read
// reconciles against the backend.
func (c *CountCache) Invalidate(ctx context.Context, list string) {
	_ = c.rdb.Del(ctx, countKey(list))
}

package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tradewell/trade-analytics-go/internal/models"
)

// seriesCacheEntry is the serialized form stored in Redis, with enough
// metadata to inspect entries out of band.
type seriesCacheEntry struct {
	Bars      []models.DailyBar `json:"bars"`
	CachedAt  time.Time         `json:"cached_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// RedisSeriesCache implements SeriesCache on Redis, for deployments where
// multiple engine instances should share one fetch of the same range.
type RedisSeriesCache struct {
	redis  *redis.Client
	ttl    time.Duration
	prefix string
	logger *logrus.Logger

	mu    sync.Mutex
	stats Stats
}

// NewRedisSeriesCache creates a Redis-backed series cache.
func NewRedisSeriesCache(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisSeriesCache {
	return &RedisSeriesCache{
		redis:  client,
		ttl:    ttl,
		prefix: "series_cache:",
		logger: logger,
	}
}

// Get retrieves a cached series. Redis errors count as misses; the fetcher
// falls through to the provider.
func (c *RedisSeriesCache) Get(key string) ([]models.DailyBar, bool) {
	ctx := context.Background()
	data, err := c.redis.Get(ctx, c.prefix+key).Result()
	if err == redis.Nil {
		c.miss()
		return nil, false
	}
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("series cache read failed")
		c.miss()
		return nil, false
	}

	var entry seriesCacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("series cache entry corrupt")
		c.miss()
		return nil, false
	}

	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()
	return entry.Bars, true
}

// Set stores a series with the configured TTL.
func (c *RedisSeriesCache) Set(key string, bars []models.DailyBar) {
	ctx := context.Background()
	now := time.Now()
	entry := seriesCacheEntry{
		Bars:      bars,
		CachedAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("series cache entry not serializable")
		return
	}

	if err := c.redis.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("series cache write failed")
		return
	}

	c.mu.Lock()
	c.stats.Sets++
	c.mu.Unlock()
}

// GetStats returns a copy of the current counters.
func (c *RedisSeriesCache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *RedisSeriesCache) miss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
}

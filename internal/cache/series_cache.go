package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/tradewell/trade-analytics-go/internal/models"
)

// SeriesCache memoizes fetched daily-bar series by (symbol, start, end) key.
// A duplicate fetch on a racing miss is harmless: the stored result is
// idempotent, so population is only a performance concern.
type SeriesCache interface {
	Get(key string) ([]models.DailyBar, bool)
	Set(key string, bars []models.DailyBar)
}

// Key builds the cache key for a resolved provider symbol and date range.
func Key(symbol string, start, end time.Time) string {
	return fmt.Sprintf("%s:%s:%s", symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// Stats tracks cache performance counters.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
}

type memoryEntry struct {
	bars      []models.DailyBar
	expiresAt time.Time
}

// MemorySeriesCache is an in-process series cache with TTL expiry. It is
// constructed per engine instance rather than held in package state, so a
// long-running service controls its lifetime explicitly.
type MemorySeriesCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	stats   Stats
	now     func() time.Time
}

// NewMemorySeriesCache creates an in-memory series cache. A zero TTL means
// entries never expire.
func NewMemorySeriesCache(ttl time.Duration) *MemorySeriesCache {
	return &MemorySeriesCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached series for key. Expired entries are evicted on
// access.
func (c *MemorySeriesCache) Get(key string) ([]models.DailyBar, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		c.stats.Misses++
		return nil, false
	}

	c.stats.Hits++
	return entry.bars, true
}

// Set stores a series under key with the configured TTL.
func (c *MemorySeriesCache) Set(key string, bars []models.DailyBar) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = c.now().Add(c.ttl)
	}
	c.entries[key] = memoryEntry{bars: bars, expiresAt: expiresAt}
	c.stats.Sets++
}

// Len returns the number of live entries.
func (c *MemorySeriesCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns a copy of the current counters.
func (c *MemorySeriesCache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

package cache

import (
	"sync"
	"time"

	"github.com/anonto42/miniblog-bot/internal/models"
)

// StatsCache keeps the last computed stats for a short TTL.
// A zero TTL disables caching.
type StatsCache struct {
	mu    sync.RWMutex
	entry *statsCacheEntry
	ttl   time.Duration
}

type statsCacheEntry struct {
	stats     models.Stats
	timestamp time.Time
}

// New creates a new StatsCache
func New(ttl time.Duration) *StatsCache {
	return &StatsCache{ttl: ttl}
}

// GetStats returns cached stats or calls the loader
func (c *StatsCache) GetStats(loader func() (models.Stats, error)) (models.Stats, error) {
	if c.ttl > 0 {
		c.mu.RLock()
		entry := c.entry
		c.mu.RUnlock()
		if entry != nil && time.Since(entry.timestamp) < c.ttl {
			return entry.stats, nil
		}
	}

	stats, err := loader()
	if err != nil {
		return models.Stats{}, err
	}

	if c.ttl > 0 {
		c.mu.Lock()
		c.entry = &statsCacheEntry{stats: stats, timestamp: time.Now()}
		c.mu.Unlock()
	}
	return stats, nil
}

// Invalidate drops the cached entry
func (c *StatsCache) Invalidate() {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
}

package dataset

import (
	"context"
	"sync"
	"time"

	"github.com/envtest/energy-planner/pkg/metrics"
	"github.com/lthibault/jitterbug/v2"
	"go.uber.org/zap"
)

type cacheEntry struct {
	table   *Table
	expires time.Time
}

// CachedLoader keeps parsed tables for a fixed TTL in front of another TableLoader.
// Cached tables are shared between requests and must be treated as read-only.
// Failed loads are never cached.
type CachedLoader struct {
	delegate TableLoader
	ttl      time.Duration
	now      func() time.Time
	entries  map[string]cacheEntry
	mu       sync.RWMutex
}

func NewCachedLoader(delegate TableLoader, ttl time.Duration) *CachedLoader {
	return &CachedLoader{
		delegate: delegate,
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[string]cacheEntry),
	}
}

func (c *CachedLoader) Load(ctx context.Context, name string) (*Table, error) {
	c.mu.RLock()
	entry, found := c.entries[name]
	c.mu.RUnlock()

	if found && c.now().Before(entry.expires) {
		metrics.IncreaseTableCacheMetric(metrics.CacheHit)
		return entry.table, nil
	}
	metrics.IncreaseTableCacheMetric(metrics.CacheMiss)

	table, err := c.delegate.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[name] = cacheEntry{table: table, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()

	return table, nil
}

// Sweep drops expired entries and returns how many were removed.
func (c *CachedLoader) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for name, entry := range c.entries {
		if !now.Before(entry.expires) {
			delete(c.entries, name)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached tables, expired or not.
func (c *CachedLoader) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Run sweeps expired entries on a jittered ticker until ctx is done.
func (c *CachedLoader) Run(ctx context.Context) {
	ticker := jitterbug.New(c.ttl, &jitterbug.Norm{Stdev: c.ttl / 10})
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				zap.S().Named("dataset").Debugw("swept expired tables", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

package report

import (
	"sync"
	"time"
)

// cacheKey is the record identity plus every mutable field that feeds the
// classifier. Wall-clock time is deliberately not part of the key: an overdue
// duration is only recomputed when the cache is cleared (once per refresh
// cycle), which bounds its staleness to the refresh interval.
type cacheKey struct {
	id             string
	entryTime      string
	expectedReturn string
	permissionType PermissionType
	status         Status
}

// ResultCache memoizes classifier output across repeated filter runs within
// one refresh cycle. Instance-owned, no TTL, no size bound; record counts are
// institutional (thousands) and the whole table is dropped on every refresh.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]ViolationResult
}

func NewResultCache() *ResultCache {
	return &ResultCache{entries: make(map[cacheKey]ViolationResult)}
}

func keyFor(r Record) cacheKey {
	return cacheKey{
		id:             r.ID,
		entryTime:      r.EntryTime,
		expectedReturn: r.ExpectedReturn,
		permissionType: r.PermissionType,
		status:         r.Status,
	}
}

// GetOrCompute returns the cached classification for the record, computing
// and storing it on a miss.
func (c *ResultCache) GetOrCompute(r Record, now time.Time) ViolationResult {
	key := keyFor(r)

	c.mu.RLock()
	res, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return res
	}

	res = Classify(r, now)

	c.mu.Lock()
	c.entries[key] = res
	c.mu.Unlock()

	return res
}

// Clear wipes all entries. Called on every full data refresh.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[cacheKey]ViolationResult)
	c.mu.Unlock()
}

func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

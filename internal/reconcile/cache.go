package reconcile

import (
	"sync"
	"time"

	"github.com/iliyamo/wedding-seating/internal/model"
	"github.com/iliyamo/wedding-seating/internal/report"
)

// viewCache holds the most recent reconciled view and the raw snapshot it
// was built from.  gen is bumped on every invalidation so a read that
// started before a move settled cannot store its pre-move result
// afterwards.
type viewCache struct {
	mu          sync.RWMutex
	view        *report.View
	snap        model.Snapshot
	storedAt    time.Time
	invalidated bool
	gen         uint64
}

type cacheEntry struct {
	view        report.View
	snap        model.Snapshot
	storedAt    time.Time
	invalidated bool
}

// fresh reports whether the entry may be served without a refetch.
func (e cacheEntry) fresh(now time.Time, ttl time.Duration) bool {
	return !e.invalidated && now.Sub(e.storedAt) < ttl
}

func (c *viewCache) get() (cacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.view == nil {
		return cacheEntry{}, false
	}
	return cacheEntry{view: *c.view, snap: c.snap, storedAt: c.storedAt, invalidated: c.invalidated}, true
}

func (c *viewCache) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// store keeps v and its source snapshot unless the cache was invalidated
// since gen was taken.
func (c *viewCache) store(v report.View, snap model.Snapshot, at time.Time, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.view = &v
	c.snap = snap
	c.storedAt = at
	c.invalidated = false
	return true
}

// invalidate forces the next read to refetch.  The view itself is kept as
// the stale fallback for a failed read.
func (c *viewCache) invalidate() {
	c.mu.Lock()
	c.gen++
	c.invalidated = true
	c.mu.Unlock()
}

func (c *viewCache) ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view != nil
}

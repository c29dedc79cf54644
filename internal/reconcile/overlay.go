package reconcile

import (
	"log"
	"sync"
	"time"

	"github.com/iliyamo/wedding-seating/internal/clock"
	"github.com/iliyamo/wedding-seating/internal/model"
)

type pendingWrite struct {
	label     string
	writtenAt time.Time
}

// Overlay remembers table writes that were issued but not yet seen in a
// snapshot, and patches them over fresh reads until the sheet catches up
// or the entry expires.
type Overlay struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   clock.Clock
	entries map[int]pendingWrite
}

// NewOverlay returns an empty overlay whose entries live for ttl.
func NewOverlay(ttl time.Duration, clk clock.Clock) *Overlay {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Overlay{ttl: ttl, clock: clk, entries: make(map[int]pendingWrite)}
}

// Record stores label as the intended table value of row, replacing any
// earlier entry for that row.
func (o *Overlay) Record(row int, label string) {
	o.mu.Lock()
	o.entries[row] = pendingWrite{label: label, writtenAt: o.clock.Now()}
	o.mu.Unlock()
}

// Lookup returns the live pending label for row.
func (o *Overlay) Lookup(row int) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	p, ok := o.entries[row]
	if !ok {
		return "", false
	}
	if o.expired(row, p, o.clock.Now()) {
		return "", false
	}
	return p.label, true
}

// Effective returns the value reads should see for row given the raw
// sheet value: the pending label while one is live, raw otherwise.
// Entries the sheet already confirms are dropped.
func (o *Overlay) Effective(row int, raw string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if label, ok := o.resolve(row, raw, o.clock.Now()); ok {
		return label
	}
	return raw
}

// Apply returns snap with every live pending entry patched in.
func (o *Overlay) Apply(snap model.Snapshot) model.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.clock.Now()
	for row := range o.entries {
		pos := model.Position(row)
		if pos < 0 || pos >= len(snap.Rows) {
			// row is outside this read; only the ttl retires it
			o.expired(row, o.entries[row], now)
			continue
		}
		if label, ok := o.resolve(row, snap.TableValue(row), now); ok {
			snap = snap.WithTableValue(row, label)
		}
	}
	return snap
}

// Patch returns snap with every live pending entry patched in, without
// retiring entries the snapshot appears to confirm.  It is meant for old
// snapshots, which cannot confirm a write issued after they were taken.
func (o *Overlay) Patch(snap model.Snapshot) model.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.clock.Now()
	for row, p := range o.entries {
		if now.Sub(p.writtenAt) >= o.ttl {
			continue
		}
		snap = snap.WithTableValue(row, p.label)
	}
	return snap
}

// Drop forgets any entry for row.
func (o *Overlay) Drop(row int) {
	o.mu.Lock()
	delete(o.entries, row)
	o.mu.Unlock()
}

// Len returns the number of entries, live or not yet swept.
func (o *Overlay) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.entries)
}

// resolve must be called with o.mu held.
func (o *Overlay) resolve(row int, raw string, now time.Time) (string, bool) {
	p, ok := o.entries[row]
	if !ok {
		return "", false
	}
	if o.expired(row, p, now) {
		return "", false
	}
	if model.SameAssignment(raw, p.label) {
		delete(o.entries, row)
		return "", false
	}
	return p.label, true
}

// expired deletes p when its ttl has passed.  Must be called with o.mu held.
func (o *Overlay) expired(row int, p pendingWrite, now time.Time) bool {
	if now.Sub(p.writtenAt) < o.ttl {
		return false
	}
	delete(o.entries, row)
	log.Printf("overlay: WARN pending write row=%d label=%q expired after %s without confirmation", row, p.label, o.ttl)
	return true
}

// Package reconcile keeps a consistent seating view on top of a spreadsheet
// that has no transactions and only eventually reflects its own writes.
//
// A Service owns the three pieces of process-wide state: the cached view,
// the pending-write overlay and the single write lane.  It is built once at
// startup and handed to the HTTP handlers.
package reconcile

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iliyamo/wedding-seating/internal/clock"
	"github.com/iliyamo/wedding-seating/internal/model"
	"github.com/iliyamo/wedding-seating/internal/report"
)

// SnapshotSource reads the whole guest sheet.
type SnapshotSource interface {
	ReadSnapshot(ctx context.Context) (model.Snapshot, error)
}

// CellWriter overwrites one cell, addressed in A1 notation.
type CellWriter interface {
	WriteCell(ctx context.Context, cell, value string) error
}

// CellReader reads one cell back.  Writers that also implement it are used
// for targeted verification reads.
type CellReader interface {
	ReadCell(ctx context.Context, cell string) (string, error)
}

// Notifier is told about every settled move.
type Notifier interface {
	NotifyMove(ctx context.Context, m MoveOutcome) error
}

const (
	DefaultCacheTTL       = 15 * time.Second
	DefaultPendingTTL     = 2 * time.Minute
	DefaultVerifyAttempts = 4
	DefaultVerifyDelay    = 400 * time.Millisecond
	DefaultQueueDepth     = 64
)

// Service is the reconciliation context.
type Service struct {
	source   SnapshotSource
	writer   CellWriter
	reader   CellReader
	notifier Notifier
	clock    clock.Clock

	cacheTTL       time.Duration
	pendingTTL     time.Duration
	verifyAttempts int
	verifyDelay    time.Duration
	queueDepth     int

	sleep func(context.Context, time.Duration) error

	overlay *Overlay
	cache   viewCache
	lane    *Lane
	reads   singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithWriter enables moves.  If w also implements CellReader it is used for
// verification reads; otherwise verification re-reads the whole sheet.
func WithWriter(w CellWriter) Option {
	return func(s *Service) {
		s.writer = w
		s.reader, _ = w.(CellReader)
	}
}

// WithCellReader sets the targeted reader used during verification.  It
// must come after WithWriter to take effect.
func WithCellReader(r CellReader) Option { return func(s *Service) { s.reader = r } }

func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }

func WithClock(c clock.Clock) Option { return func(s *Service) { s.clock = c } }

func WithCacheTTL(d time.Duration) Option { return func(s *Service) { s.cacheTTL = d } }

func WithPendingTTL(d time.Duration) Option { return func(s *Service) { s.pendingTTL = d } }

// WithVerify sets the verification bound; attempt n waits n*delay first.
func WithVerify(attempts int, delay time.Duration) Option {
	return func(s *Service) {
		s.verifyAttempts = attempts
		s.verifyDelay = delay
	}
}

func WithQueueDepth(n int) Option { return func(s *Service) { s.queueDepth = n } }

// NewService builds the context object and starts its write lane.  Without
// a writer the service is read-only and Move fails with ErrReadOnly.
func NewService(source SnapshotSource, opts ...Option) *Service {
	s := &Service{
		source:         source,
		cacheTTL:       DefaultCacheTTL,
		pendingTTL:     DefaultPendingTTL,
		verifyAttempts: DefaultVerifyAttempts,
		verifyDelay:    DefaultVerifyDelay,
		queueDepth:     DefaultQueueDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = clock.NewSystem()
	}
	if s.sleep == nil {
		s.sleep = sleepCtx
	}
	if s.cacheTTL < 0 {
		s.cacheTTL = 0
	}
	if s.pendingTTL <= 0 {
		s.pendingTTL = DefaultPendingTTL
	}
	if s.verifyAttempts < 0 {
		s.verifyAttempts = 0
	}
	if s.verifyDelay < 0 {
		s.verifyDelay = 0
	}
	s.overlay = NewOverlay(s.pendingTTL, s.clock)
	s.lane = NewLane(s.queueDepth)
	return s
}

// Writable reports whether moves are enabled.
func (s *Service) Writable() bool { return s.writer != nil }

// Overlay exposes the pending-write overlay.
func (s *Service) Overlay() *Overlay { return s.overlay }

// Ready reports whether at least one view has been built.
func (s *Service) Ready() bool { return s.cache.ready() }

// Close shuts the write lane down after the running task.
func (s *Service) Close() { s.lane.Close() }

// CacheInfo describes how a view was served.
type CacheInfo struct {
	Hit   bool  `json:"hit"`
	AgeMs int64 `json:"ageMs"`
	Stale bool  `json:"stale,omitempty"`
}

// ViewResult is a reconciled view plus how it was obtained.  Warning is set
// when a failed read was answered from the last good view.
type ViewResult struct {
	View    report.View
	Cache   CacheInfo
	Warning string
}

// View returns the reconciled seating view.  A fresh cached view is served
// unless force is set.  Concurrent misses share one sheet read.  When the
// read fails and a previous snapshot exists, it is rebuilt with the
// pending writes patched in and returned as stale, so a move that settled
// after that snapshot still shows at its target.
func (s *Service) View(ctx context.Context, force bool) (ViewResult, error) {
	if !force {
		if e, ok := s.cache.get(); ok {
			now := s.clock.Now()
			if e.fresh(now, s.cacheTTL) {
				return ViewResult{View: e.view, Cache: CacheInfo{Hit: true, AgeMs: now.Sub(e.storedAt).Milliseconds()}}, nil
			}
		}
	}

	ch := s.reads.DoChan("view", func() (any, error) {
		return s.load(context.WithoutCancel(ctx))
	})
	var (
		v   any
		err error
	)
	select {
	case r := <-ch:
		v, err = r.Val, r.Err
	case <-ctx.Done():
		return ViewResult{}, ctx.Err()
	}
	if err == nil {
		return ViewResult{View: v.(report.View)}, nil
	}

	e, ok := s.cache.get()
	if !ok {
		return ViewResult{}, err
	}
	age := s.clock.Now().Sub(e.storedAt)
	log.Printf("reconcile: WARN serving stale view (age %s): %v", age.Round(time.Millisecond), err)
	return ViewResult{
		View:    report.Build(s.overlay.Patch(e.snap), e.storedAt),
		Cache:   CacheInfo{Hit: true, AgeMs: age.Milliseconds(), Stale: true},
		Warning: fmt.Sprintf("sheet unavailable, showing data from %s ago: %v", age.Round(time.Second), err),
	}, nil
}

// load reads the sheet, patches pending writes in and caches the result.
func (s *Service) load(ctx context.Context) (report.View, error) {
	gen := s.cache.generation()
	snap, err := s.source.ReadSnapshot(ctx)
	if err != nil {
		return report.View{}, err
	}
	now := s.clock.Now()
	view := report.Build(s.overlay.Apply(snap), now)
	s.cache.store(view, snap, now, gen)
	return view, nil
}

// Invalidate forces the next View to read the sheet.
func (s *Service) Invalidate() { s.cache.invalidate() }

package reconcile

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/wedding-seating/internal/model"
	"github.com/iliyamo/wedding-seating/internal/sheets"
)

// MoveRequest asks to seat one guest at TargetTable.
//
// TargetTable must name a table or an unassign token ("Sin Asignar",
// "_unassigned"); an empty target is rejected so unassigning is always
// explicit.  ExpectedSourceTable is the caller's belief about the guest's
// current table: nil skips the precondition, while "" (like the unassign
// tokens) asserts the guest currently has no table, matching how an empty
// table cell reads.
type MoveRequest struct {
	GuestID             int
	GuestName           string
	TargetTable         string
	ExpectedSourceTable *string
}

// MoveResult is what a settled move reports back.  Verified is false when
// the write was issued but the sheet had not confirmed it yet.
type MoveResult struct {
	GuestID       int    `json:"guestId"`
	Guest         string `json:"guest"`
	PreviousTable string `json:"previousTable"`
	NewTable      string `json:"newTable"`
	Cell          string `json:"cell"`
	Verified      bool   `json:"verified"`
	Attempts      int    `json:"attempts"`
	Noop          bool   `json:"noop,omitempty"`
}

// MoveOutcome is handed to the Notifier once a move has settled.
type MoveOutcome struct {
	GuestID   int
	GuestName string
	FromTable string
	ToTable   string
	Cell      string
	Verified  bool
	MovedAt   time.Time
}

// parseTarget resolves a move target to a table; NoTable means unassign.
func parseTarget(raw string) (model.TableID, error) {
	if strings.TrimSpace(raw) == "" {
		return model.NoTable, fmt.Errorf("%w: empty target", ErrInvalidTarget)
	}
	if model.IsUnassignToken(raw) {
		return model.NoTable, nil
	}
	id, ok := model.ParseTableRef(raw)
	if !ok {
		return model.NoTable, fmt.Errorf("%w: %q", ErrInvalidTarget, raw)
	}
	return id, nil
}

// displayLabel names a table for API responses, including the unassigned
// pseudo-table.
func displayLabel(id model.TableID) string {
	if id == model.NoTable {
		return model.UnassignedLabel
	}
	return id.Label()
}

// Move validates req and runs the move on the write lane.
func (s *Service) Move(ctx context.Context, req MoveRequest) (MoveResult, error) {
	if s.writer == nil {
		return MoveResult{}, ErrReadOnly
	}
	if req.GuestID < model.HeaderOffset {
		return MoveResult{}, fmt.Errorf("%w: guestId %d", ErrInvalidGuest, req.GuestID)
	}
	if strings.TrimSpace(req.GuestName) == "" {
		return MoveResult{}, fmt.Errorf("%w: guestName is required", ErrInvalidGuest)
	}
	target, err := parseTarget(req.TargetTable)
	if err != nil {
		return MoveResult{}, err
	}
	expected := model.NoTable
	if req.ExpectedSourceTable != nil {
		raw := *req.ExpectedSourceTable
		if !model.IsUnassignToken(raw) {
			id, ok := model.ParseTableRef(raw)
			if !ok {
				return MoveResult{}, fmt.Errorf("%w: expectedSourceTable %q", ErrInvalidTarget, raw)
			}
			expected = id
		}
	}

	return Submit(ctx, s.lane, func(ctx context.Context) (MoveResult, error) {
		return s.move(ctx, req, target, expected)
	})
}

// move runs inside the lane: fresh read, precondition, write, verify,
// settle.
func (s *Service) move(ctx context.Context, req MoveRequest, target, expected model.TableID) (MoveResult, error) {
	snap, err := s.source.ReadSnapshot(ctx)
	if err != nil {
		return MoveResult{}, err
	}

	guest, ok := snap.Guest(req.GuestID)
	if !ok {
		return MoveResult{}, fmt.Errorf("%w: row %d", ErrGuestNotFound, req.GuestID)
	}
	if model.Normalize(guest.Name) != model.Normalize(req.GuestName) {
		return MoveResult{}, fmt.Errorf("%w: row %d holds %q, not %q", ErrIdentityMismatch, req.GuestID, guest.Name, req.GuestName)
	}

	raw := snap.TableValue(req.GuestID)
	effective := s.overlay.Effective(req.GuestID, raw)
	current, _ := model.ParseTableRef(effective)
	if req.ExpectedSourceTable != nil && current != expected {
		return MoveResult{}, &ConflictError{Expected: displayLabel(expected), Current: displayLabel(current)}
	}

	label := target.Label()
	cell := sheets.CellRef(snap.Columns.Table, req.GuestID)
	result := MoveResult{
		GuestID:       req.GuestID,
		Guest:         guest.Name,
		PreviousTable: displayLabel(current),
		NewTable:      displayLabel(target),
		Cell:          cell,
	}

	// Nothing to write when the sheet already holds the target and no
	// other write for the row is still in flight.
	pending, inFlight := s.overlay.Lookup(req.GuestID)
	if model.SameAssignment(raw, label) && (!inFlight || model.SameAssignment(pending, label)) {
		s.overlay.Drop(req.GuestID)
		result.Verified = true
		result.Noop = true
		return result, nil
	}

	if err := s.writer.WriteCell(ctx, cell, label); err != nil {
		s.cache.invalidate()
		return MoveResult{}, fmt.Errorf("%w: %s: %w", ErrWriteFailed, cell, err)
	}
	s.overlay.Record(req.GuestID, label)

	result.Verified, result.Attempts = s.verify(ctx, cell, req.GuestID, label)
	if !result.Verified {
		log.Printf("reconcile: WARN write %s=%q not confirmed after %d attempts; pending until %s",
			cell, label, result.Attempts, s.pendingTTL)
	}

	s.cache.invalidate()
	s.notify(MoveOutcome{
		GuestID:   req.GuestID,
		GuestName: guest.Name,
		FromTable: result.PreviousTable,
		ToTable:   result.NewTable,
		Cell:      cell,
		Verified:  result.Verified,
		MovedAt:   s.clock.Now(),
	})
	return result, nil
}

// verify re-reads the written cell with linear backoff until it matches
// label or the attempts run out.  The pending entry is left for the read
// path to retire once a full snapshot agrees.
func (s *Service) verify(ctx context.Context, cell string, row int, label string) (bool, int) {
	attempt := 0
	for attempt < s.verifyAttempts {
		attempt++
		if err := s.sleep(ctx, time.Duration(attempt)*s.verifyDelay); err != nil {
			return false, attempt
		}
		value, err := s.readBack(ctx, cell, row)
		if err != nil {
			log.Printf("reconcile: verify %s attempt %d: %v", cell, attempt, err)
			continue
		}
		if model.SameAssignment(value, label) {
			return true, attempt
		}
	}
	return false, attempt
}

func (s *Service) readBack(ctx context.Context, cell string, row int) (string, error) {
	if s.reader != nil {
		return s.reader.ReadCell(ctx, cell)
	}
	snap, err := s.source.ReadSnapshot(ctx)
	if err != nil {
		return "", err
	}
	return snap.TableValue(row), nil
}

func (s *Service) notify(m MoveOutcome) {
	if s.notifier == nil {
		return
	}
	go func() {
		if err := s.notifier.NotifyMove(context.Background(), m); err != nil {
			log.Printf("reconcile: notify move row=%d: %v", m.GuestID, err)
		}
	}()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

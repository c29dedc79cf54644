package reconcile

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTarget    = errors.New("invalid target table")
	ErrInvalidGuest     = errors.New("invalid guest reference")
	ErrIdentityMismatch = errors.New("guest name does not match row")
	ErrGuestNotFound    = errors.New("guest not found")
	ErrStateConflict    = errors.New("guest table changed, reload and retry")
	ErrWriteFailed      = errors.New("sheet write failed")
	ErrReadOnly         = errors.New("write capability not configured")
	ErrLaneClosed       = errors.New("write lane is shut down")
	ErrTaskPanic        = errors.New("write task panicked")
)

// ConflictError reports the table the guest is actually at when the
// caller's expected source table is stale.  It matches ErrStateConflict
// under errors.Is.
type ConflictError struct {
	Expected string
	Current  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: expected %q, found %q", ErrStateConflict, e.Expected, e.Current)
}

func (e *ConflictError) Unwrap() error { return ErrStateConflict }

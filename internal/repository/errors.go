// Package repository persists the data the service owns itself: table
// coordinates for the floor-plan editor (Redis) and the move history
// (MySQL).  The guest list is never stored here; the spreadsheet remains
// the source of truth for it.
package repository

import "errors"

// ErrInvalidCoords is returned when a coordinates payload names an unknown
// table or a point outside the 0..100 plane.  Handlers translate it into
// 400.
var ErrInvalidCoords = errors.New("invalid coordinates")

// ErrUnavailable is returned by a store whose backend is not configured.
// Handlers translate it into 503.
var ErrUnavailable = errors.New("store unavailable")

package model

import (
	"regexp"
	"strconv"
	"strings"
)

// TableID identifies a seating table.  Numbered tables use 1..MaxTable and
// the couple's table uses CoupleTable.  NoTable is the zero value and means
// "not seated".
type TableID int

const (
	NoTable     TableID = 0
	MaxTable    TableID = 35
	CoupleTable TableID = MaxTable + 1
)

// CoupleKey is the key used for the couple's table in API payloads and in
// the coordinates store.
const CoupleKey = "Novios"

// UnassignedLabel is the pseudo-table shown for guests without a table.
const UnassignedLabel = "Sin Asignar"

// CoupleCapacity is an explicit override; it is not part of the banding.
const CoupleCapacity = 15

// Status is the occupancy tier of a table, ordered by severity.
type Status string

const (
	StatusOver      Status = "OVER"
	StatusFull      Status = "FULL"
	StatusNearFull  Status = "NEAR_FULL"
	StatusAvailable Status = "AVAILABLE"
)

// capacityBand maps an inclusive range of table numbers to a capacity.
type capacityBand struct {
	from, to TableID
	capacity int
}

var capacityBands = []capacityBand{
	{1, 5, 10},
	{6, 13, 8},
	{14, 17, 20},
	{18, 25, 8},
	{26, 35, 10},
}

// AllTables returns the display order: 1..35 followed by the couple's table.
func AllTables() []TableID {
	out := make([]TableID, 0, int(CoupleTable))
	for t := TableID(1); t <= MaxTable; t++ {
		out = append(out, t)
	}
	return append(out, CoupleTable)
}

// Valid reports whether t names a real table.
func (t TableID) Valid() bool {
	return (t >= 1 && t <= MaxTable) || t == CoupleTable
}

// Key returns the identifier used in JSON payloads ("1".."35" or "Novios").
func (t TableID) Key() string {
	switch {
	case t == CoupleTable:
		return CoupleKey
	case t.Valid():
		return strconv.Itoa(int(t))
	}
	return ""
}

// Label returns the canonical label written to the sheet ("Mesa 7",
// "Mesa Novios").  NoTable yields the empty string, which is what an
// unassign writes.
func (t TableID) Label() string {
	switch {
	case t == CoupleTable:
		return "Mesa " + CoupleKey
	case t.Valid():
		return "Mesa " + strconv.Itoa(int(t))
	}
	return ""
}

// CapacityOf returns the seating capacity of a table, or 0 for an unknown
// table.  A zero capacity is a data error and callers must not seat guests
// there.
func CapacityOf(t TableID) int {
	if t == CoupleTable {
		return CoupleCapacity
	}
	for _, b := range capacityBands {
		if t >= b.from && t <= b.to {
			return b.capacity
		}
	}
	return 0
}

// StatusOf classifies occupancy.  Ties resolve to the more severe tier.
func StatusOf(used, capacity int) Status {
	switch {
	case used > capacity:
		return StatusOver
	case used == capacity:
		return StatusFull
	case capacity-used <= 2:
		return StatusNearFull
	default:
		return StatusAvailable
	}
}

var (
	digitsRe = regexp.MustCompile(`\d+`)
	coupleRe = regexp.MustCompile(`(?i)^(mesa\s+)?novios$`)
)

// ParseTableRef parses a raw sheet value into a table.  It returns false for
// empty input, out-of-range numbers ("Mesa 0", "Mesa 36") and anything
// without digits that is not the couple's table phrase.
func ParseTableRef(raw string) (TableID, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return NoTable, false
	}
	if coupleRe.MatchString(s) {
		return CoupleTable, true
	}
	m := digitsRe.FindString(s)
	if m == "" {
		return NoTable, false
	}
	n, err := strconv.Atoi(m)
	if err != nil || n < 1 || n > int(MaxTable) {
		return NoTable, false
	}
	return TableID(n), true
}

// IsUnassignToken reports whether a move target means "remove from any
// table".
func IsUnassignToken(raw string) bool {
	s := Normalize(raw)
	return s == "" || s == "sin asignar" || s == "_unassigned" || s == "unassigned"
}

// SameAssignment reports whether a raw sheet value already holds the
// assignment described by label.  An empty label only matches an empty
// cell.
func SameAssignment(raw, label string) bool {
	if strings.TrimSpace(label) == "" {
		return strings.TrimSpace(raw) == ""
	}
	want, ok := ParseTableRef(label)
	if !ok {
		return false
	}
	got, ok := ParseTableRef(raw)
	return ok && got == want
}

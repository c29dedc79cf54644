package model

import "strings"

// HeaderOffset converts a zero-based data row position into the 1-based
// sheet row number: row 1 holds the headers, so data row 0 lives on sheet
// row 2.  The resulting number is the guest's identity for the session.
const HeaderOffset = 2

// ColumnMap records which zero-based column holds each field.  Group and
// Attending are optional and set to -1 when absent.
type ColumnMap struct {
	Name      int `json:"name"`
	PlusOne   int `json:"plusOne"`
	Table     int `json:"table"`
	Group     int `json:"group"`
	Attending int `json:"attending"`
}

// Complete reports whether the three mandatory columns were found.
func (m ColumnMap) Complete() bool {
	return m.Name >= 0 && m.PlusOne >= 0 && m.Table >= 0
}

// SourceTag names the sheet a snapshot was read from.
type SourceTag struct {
	SpreadsheetID string `json:"spreadsheetId" yaml:"spreadsheetId"`
	SheetName     string `json:"sheetName" yaml:"sheetName"`
}

// Snapshot is one point-in-time read of every guest row.  It is treated as
// immutable: code that needs a different view builds a new Snapshot.
//
// Fields:
//
//	Headers – first sheet row.
//	Rows    – data rows, cell values rendered as strings.
//	Columns – classified column positions.
//	Source  – spreadsheet and sheet the data came from.
type Snapshot struct {
	Headers []string
	Rows    [][]string
	Columns ColumnMap
	Source  SourceTag
}

// RowIndex returns the guest identity for a data row position.
func RowIndex(pos int) int { return pos + HeaderOffset }

// Position converts a guest identity back to a data row position.
func Position(rowIndex int) int { return rowIndex - HeaderOffset }

// Cell returns the trimmed value at (pos, col), or "" when out of range.
func (s Snapshot) Cell(pos, col int) string {
	if pos < 0 || pos >= len(s.Rows) || col < 0 || col >= len(s.Rows[pos]) {
		return ""
	}
	return strings.TrimSpace(s.Rows[pos][col])
}

// TableValue returns the raw table cell of the guest with rowIndex.
func (s Snapshot) TableValue(rowIndex int) string {
	return s.Cell(Position(rowIndex), s.Columns.Table)
}

// Guest materializes the guest on a data row.  ok is false when the row is
// outside the snapshot or has an empty name.
func (s Snapshot) Guest(rowIndex int) (Guest, bool) {
	pos := Position(rowIndex)
	if pos < 0 || pos >= len(s.Rows) {
		return Guest{}, false
	}
	name := s.Cell(pos, s.Columns.Name)
	if name == "" {
		return Guest{}, false
	}
	g := Guest{
		RowIndex: rowIndex,
		Name:     name,
		PlusOne:  IsAffirmative(s.Cell(pos, s.Columns.PlusOne)),
		RawTable: s.Cell(pos, s.Columns.Table),
	}
	if s.Columns.Group >= 0 {
		g.Group = s.Cell(pos, s.Columns.Group)
	}
	if s.Columns.Attending >= 0 {
		g.Declined = IsNegative(s.Cell(pos, s.Columns.Attending))
	}
	g.Table, _ = ParseTableRef(g.RawTable)
	return g, true
}

// Guests returns every named guest in sheet order.
func (s Snapshot) Guests() []Guest {
	out := make([]Guest, 0, len(s.Rows))
	for pos := range s.Rows {
		if g, ok := s.Guest(RowIndex(pos)); ok {
			out = append(out, g)
		}
	}
	return out
}

// WithTableValue returns a copy of s whose table cell at rowIndex holds
// value.  Only the touched row is copied; other rows are shared.
func (s Snapshot) WithTableValue(rowIndex int, value string) Snapshot {
	pos := Position(rowIndex)
	col := s.Columns.Table
	if pos < 0 || pos >= len(s.Rows) || col < 0 {
		return s
	}
	rows := make([][]string, len(s.Rows))
	copy(rows, s.Rows)
	width := len(rows[pos])
	if col >= width {
		width = col + 1
	}
	row := make([]string, width)
	copy(row, rows[pos])
	row[col] = value
	rows[pos] = row
	s.Rows = rows
	return s
}

package reconcile

import (
	"context"
	"sync"

	"github.com/iliyamo/wedding-seating/internal/model"
	"github.com/iliyamo/wedding-seating/internal/sheets"
)

var testColumns = model.ColumnMap{Name: 0, PlusOne: 1, Table: 2, Group: 3, Attending: -1}

// fakeSheet is an in-memory sheet.  With hold set, writes are accepted but
// stay invisible to reads until flush, like a lagging spreadsheet.
type fakeSheet struct {
	mu       sync.Mutex
	rows     [][]string
	hold     bool
	held     map[string]string
	readErr  error
	writeErr error
	writes   []string
	reads    int
}

func newFakeSheet(rows ...[]string) *fakeSheet {
	return &fakeSheet{rows: rows, held: map[string]string{}}
}

// weddingSheet: table 3 holds Ana, Bea (+1) and Carlos (4 seats); table 1
// holds four couples and Dario (9 seats).
func weddingSheet() *fakeSheet {
	return newFakeSheet(
		[]string{"Ana", "No", "Mesa 3", "Familia"},
		[]string{"Bea", "Sí", "Mesa 3", "Familia"},
		[]string{"Carlos", "No", "3", "Familia"},
		[]string{"Elena", "Si", "Mesa 1", "Amigos"},
		[]string{"Fede", "si", "Mesa 1", "Amigos"},
		[]string{"Gabi", "SI", "Mesa 1", "Amigos"},
		[]string{"Hugo", "Sí", "Mesa 1", "Amigos"},
		[]string{"Dario", "No", "Mesa 1", "Amigos"},
		[]string{"Irene", "No", "", "Trabajo"},
	)
}

func (f *fakeSheet) ReadSnapshot(ctx context.Context) (model.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.readErr != nil {
		return model.Snapshot{}, f.readErr
	}
	rows := make([][]string, len(f.rows))
	for i, r := range f.rows {
		rows[i] = append([]string(nil), r...)
	}
	return model.Snapshot{
		Headers: []string{"Nombre", "Con +1", "Mesa", "Grupo"},
		Rows:    rows,
		Columns: testColumns,
		Source:  model.SourceTag{SpreadsheetID: "test", SheetName: "Invitados"},
	}, nil
}

func (f *fakeSheet) WriteCell(ctx context.Context, cell, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, cell+"="+value)
	if f.hold {
		f.held[cell] = value
		return nil
	}
	f.apply(cell, value)
	return nil
}

func (f *fakeSheet) ReadCell(ctx context.Context, cell string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	col, row, err := sheets.SplitCellRef(cell)
	if err != nil {
		return "", err
	}
	pos := model.Position(row)
	if pos < 0 || pos >= len(f.rows) || col >= len(f.rows[pos]) {
		return "", nil
	}
	return f.rows[pos][col], nil
}

func (f *fakeSheet) apply(cell, value string) {
	col, row, err := sheets.SplitCellRef(cell)
	if err != nil {
		return
	}
	pos := model.Position(row)
	for len(f.rows) <= pos {
		f.rows = append(f.rows, nil)
	}
	for len(f.rows[pos]) <= col {
		f.rows[pos] = append(f.rows[pos], "")
	}
	f.rows[pos][col] = value
}

// flush makes held writes visible.
func (f *fakeSheet) flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for cell, v := range f.held {
		f.apply(cell, v)
	}
	f.held = map[string]string{}
	f.hold = false
}

func (f *fakeSheet) set(row int, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[model.Position(row)][testColumns.Table] = value
}

func (f *fakeSheet) value(row int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[model.Position(row)][testColumns.Table]
}

func (f *fakeSheet) writeLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

func (f *fakeSheet) setReadErr(err error) {
	f.mu.Lock()
	f.readErr = err
	f.mu.Unlock()
}

// writeOnly hides ReadCell so verification falls back to snapshots.
type writeOnly struct{ CellWriter }

type recordingNotifier struct {
	ch chan MoveOutcome
}

func (n *recordingNotifier) NotifyMove(ctx context.Context, m MoveOutcome) error {
	n.ch <- m
	return nil
}

package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/wedding-seating/internal/clock"
	"github.com/iliyamo/wedding-seating/internal/model"
)

func TestOverlayApply(t *testing.T) {
	clk := clock.NewManual(time.Date(2026, 5, 9, 18, 0, 0, 0, time.UTC))
	o := NewOverlay(time.Minute, clk)
	sheet := weddingSheet()

	o.Record(2, "Mesa 1")
	snap, _ := sheet.ReadSnapshot(context.Background())

	patched := o.Apply(snap)
	assert.Equal(t, "Mesa 1", patched.TableValue(2))
	assert.Equal(t, "Mesa 3", snap.TableValue(2), "input snapshot must not change")
	assert.Equal(t, 1, o.Len())

	// sheet catches up: entry is retired
	sheet.set(2, "1")
	snap, _ = sheet.ReadSnapshot(context.Background())
	patched = o.Apply(snap)
	assert.Equal(t, "1", patched.TableValue(2))
	assert.Equal(t, 0, o.Len())
}

func TestOverlayExpiry(t *testing.T) {
	clk := clock.NewManual(time.Date(2026, 5, 9, 18, 0, 0, 0, time.UTC))
	o := NewOverlay(time.Minute, clk)
	sheet := weddingSheet()
	snap, _ := sheet.ReadSnapshot(context.Background())

	o.Record(2, "Mesa 7")
	clk.Advance(59 * time.Second)
	assert.Equal(t, "Mesa 7", o.Apply(snap).TableValue(2))

	clk.Advance(time.Second)
	assert.Equal(t, "Mesa 3", o.Apply(snap).TableValue(2), "expired entry lets the sheet win")
	assert.Equal(t, 0, o.Len())
}

func TestOverlayUnassignAndLookup(t *testing.T) {
	clk := clock.NewManual(time.Now())
	o := NewOverlay(time.Minute, clk)

	o.Record(4, "")
	label, ok := o.Lookup(4)
	require.True(t, ok)
	assert.Equal(t, "", label)
	assert.Equal(t, "", o.Effective(4, "Mesa 3"))

	// raw already empty: confirmed
	assert.Equal(t, "", o.Effective(4, ""))
	_, ok = o.Lookup(4)
	assert.False(t, ok)

	o.Record(5, "Mesa Novios")
	assert.Equal(t, "Mesa Novios", o.Effective(5, "Mesa 1"))
	o.Drop(5)
	assert.Equal(t, "Mesa 1", o.Effective(5, "Mesa 1"))
}

func TestOverlayRowOutsideSnapshot(t *testing.T) {
	clk := clock.NewManual(time.Now())
	o := NewOverlay(time.Minute, clk)
	snap := model.Snapshot{Columns: testColumns, Rows: [][]string{{"Ana", "No", "Mesa 3"}}}

	o.Record(40, "Mesa 2")
	assert.Equal(t, snap.Rows, o.Apply(snap).Rows)
	assert.Equal(t, 1, o.Len())

	clk.Advance(2 * time.Minute)
	o.Apply(snap)
	assert.Equal(t, 0, o.Len())
}

func TestOverlayPatchKeepsEntries(t *testing.T) {
	clk := clock.NewManual(time.Date(2026, 5, 9, 18, 0, 0, 0, time.UTC))
	o := NewOverlay(time.Minute, clk)
	sheet := weddingSheet()

	o.Record(2, "Mesa 3")
	snap, _ := sheet.ReadSnapshot(context.Background())

	patched := o.Patch(snap)
	assert.Equal(t, "Mesa 3", patched.TableValue(2))
	assert.Equal(t, 1, o.Len(), "a matching old snapshot must not retire the entry")

	clk.Advance(2 * time.Minute)
	patched = o.Patch(snap)
	assert.Equal(t, snap.TableValue(2), patched.TableValue(2))
}

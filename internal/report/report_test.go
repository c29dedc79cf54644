package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/wedding-seating/internal/model"
)

func snapshot(rows ...[]string) model.Snapshot {
	return model.Snapshot{
		Headers: []string{"Nombre", "+1", "Mesa", "Grupo", "Asiste"},
		Rows:    rows,
		Columns: model.ColumnMap{Name: 0, PlusOne: 1, Table: 2, Group: 3, Attending: 4},
	}
}

func TestBuild(t *testing.T) {
	at := time.Date(2026, 5, 9, 18, 0, 0, 0, time.UTC)
	v := Build(snapshot(
		[]string{"Ana", "no", "Mesa 3", "Familia", "si"},
		[]string{"Bea", "sí", "3", "", ""},
		[]string{"", "si", "Mesa 3", "", ""},
		[]string{"Carlos", "no", "Mesa 40", "", ""},
		[]string{"Dora", "si", "Mesa 5", "", "No"},
		[]string{"Eva", "x", "novios", "", ""},
	), at)

	assert.Equal(t, at, v.GeneratedAt)
	require.Len(t, v.Tables, 36)

	t3, ok := v.FindTable("3")
	require.True(t, ok)
	assert.Equal(t, 3, t3.Used)
	assert.Equal(t, "Mesa 3", t3.Label)
	require.Len(t, t3.Guests, 2)
	assert.Equal(t, Guest{ID: 2, Name: "Ana", Group: "Familia"}, t3.Guests[0])
	assert.Equal(t, Guest{ID: 3, Name: "Bea", PlusOne: true}, t3.Guests[1])

	t5, _ := v.FindTable("5")
	assert.Equal(t, 0, t5.Used, "declined guests are not seated")
	assert.Empty(t, t5.Guests)

	couple, _ := v.FindTable(model.CoupleKey)
	assert.Equal(t, 15, couple.Capacity)
	assert.Equal(t, 2, couple.Used)

	require.Len(t, v.Unassigned, 1)
	assert.Equal(t, Guest{ID: 5, Name: "Carlos", RawTable: "Mesa 40"}, v.Unassigned[0])

	assert.Equal(t, 4, v.Meta.Guests)
	assert.Equal(t, 2, v.Meta.PlusOnes)
	assert.Equal(t, 1, v.Meta.Declined)
	assert.Equal(t, 1, v.Meta.Unassigned)
	assert.Equal(t, 5, v.Meta.TotalUsed)

	_, ok = v.FindTable("36")
	assert.False(t, ok)
}

func TestBuildEmptyListsAreNotNil(t *testing.T) {
	v := Build(snapshot(), time.Time{})
	assert.NotNil(t, v.Unassigned)
	for _, tb := range v.Tables {
		assert.NotNil(t, tb.Guests, tb.Key)
	}
	assert.Equal(t, 0, v.Meta.TotalUsed)
	assert.Equal(t, 36, v.Meta.Available)
}

func TestSummarize(t *testing.T) {
	tables := []Table{
		{Capacity: 10, Used: 11},
		{Capacity: 10, Used: 10},
		{Capacity: 10, Used: 8},
		{Capacity: 10, Used: 9},
		{Capacity: 10, Used: 7},
		{Capacity: 10, Used: 0},
	}
	m := Summarize(tables, 3)
	assert.Equal(t, Meta{
		Tables:        6,
		TotalCapacity: 60,
		TotalUsed:     45,
		Occupancy:     0.75,
		Over:          1,
		Full:          1,
		NearFull:      2,
		Available:     2,
		Unassigned:    3,
	}, m)

	assert.Equal(t, Meta{}, Summarize(nil, 0))

	// total capacity of the fixed layout
	v := Build(snapshot(), time.Time{})
	assert.Equal(t, 5*10+8*8+4*20+8*8+10*10+15, v.Meta.TotalCapacity)
}

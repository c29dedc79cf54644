// Package report derives per-table occupancy and whole-event statistics
// from a reconciled snapshot.  Everything here is a pure function of its
// input; nothing is stored between calls.
package report

import (
	"time"

	"github.com/iliyamo/wedding-seating/internal/model"
)

// Guest is the public view of a guest row.
type Guest struct {
	ID       int    `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	PlusOne  bool   `json:"plus1" yaml:"plus1"`
	Group    string `json:"group,omitempty" yaml:"group,omitempty"`
	RawTable string `json:"rawTable,omitempty" yaml:"rawTable,omitempty"`
}

// Table is one seating unit with its derived occupancy.
type Table struct {
	Key      string       `json:"key" yaml:"key"`
	Label    string       `json:"label" yaml:"label"`
	Capacity int          `json:"capacity" yaml:"capacity"`
	Used     int          `json:"used" yaml:"used"`
	Ratio    float64      `json:"ratio" yaml:"ratio"`
	Status   model.Status `json:"status" yaml:"status"`
	Guests   []Guest      `json:"guests" yaml:"guests"`
}

// Meta aggregates the whole event.
type Meta struct {
	Guests        int     `json:"guests" yaml:"guests"`
	PlusOnes      int     `json:"plusOnes" yaml:"plusOnes"`
	Declined      int     `json:"declined" yaml:"declined"`
	Tables        int     `json:"tables" yaml:"tables"`
	TotalCapacity int     `json:"totalCapacity" yaml:"totalCapacity"`
	TotalUsed     int     `json:"totalUsed" yaml:"totalUsed"`
	Occupancy     float64 `json:"occupancy" yaml:"occupancy"`
	Full          int     `json:"full" yaml:"full"`
	NearFull      int     `json:"nearFull" yaml:"nearFull"`
	Over          int     `json:"over" yaml:"over"`
	Available     int     `json:"available" yaml:"available"`
	Unassigned    int     `json:"unassigned" yaml:"unassigned"`
}

// View is the full reconciled read model served by the read endpoint.
type View struct {
	Source      model.SourceTag `json:"source" yaml:"source"`
	GeneratedAt time.Time       `json:"generatedAt" yaml:"generatedAt"`
	Meta        Meta            `json:"meta" yaml:"meta"`
	Tables      []Table         `json:"tables" yaml:"tables"`
	Unassigned  []Guest         `json:"unassigned" yaml:"unassigned"`
}

// Build seats every guest of snap and computes the statistics.  Declined
// guests are counted but neither seated nor listed as unassigned.
func Build(snap model.Snapshot, at time.Time) View {
	order := model.AllTables()
	index := make(map[model.TableID]int, len(order))
	tables := make([]Table, len(order))
	for i, id := range order {
		index[id] = i
		tables[i] = Table{
			Key:      id.Key(),
			Label:    id.Label(),
			Capacity: model.CapacityOf(id),
			Guests:   []Guest{},
		}
	}

	unassigned := []Guest{}
	var guests, plusOnes, declined int
	for _, g := range snap.Guests() {
		if g.Declined {
			declined++
			continue
		}
		guests++
		if g.PlusOne {
			plusOnes++
		}
		pub := Guest{ID: g.RowIndex, Name: g.Name, PlusOne: g.PlusOne, Group: g.Group}
		i, ok := index[g.Table]
		if !ok {
			pub.RawTable = g.RawTable
			unassigned = append(unassigned, pub)
			continue
		}
		tables[i].Used += g.Seats()
		tables[i].Guests = append(tables[i].Guests, pub)
	}

	for i := range tables {
		tables[i].Status = model.StatusOf(tables[i].Used, tables[i].Capacity)
		if tables[i].Capacity > 0 {
			tables[i].Ratio = float64(tables[i].Used) / float64(tables[i].Capacity)
		}
	}

	meta := Summarize(tables, len(unassigned))
	meta.Guests = guests
	meta.PlusOnes = plusOnes
	meta.Declined = declined

	return View{
		Source:      snap.Source,
		GeneratedAt: at,
		Meta:        meta,
		Tables:      tables,
		Unassigned:  unassigned,
	}
}

// Summarize computes the capacity, occupancy and status counters over a
// set of tables.
func Summarize(tables []Table, unassigned int) Meta {
	m := Meta{Tables: len(tables), Unassigned: unassigned}
	for _, t := range tables {
		m.TotalCapacity += t.Capacity
		m.TotalUsed += t.Used
		switch model.StatusOf(t.Used, t.Capacity) {
		case model.StatusOver:
			m.Over++
		case model.StatusFull:
			m.Full++
		case model.StatusNearFull:
			m.NearFull++
		default:
			m.Available++
		}
	}
	if m.TotalCapacity > 0 {
		m.Occupancy = float64(m.TotalUsed) / float64(m.TotalCapacity)
	}
	return m
}

// FindTable returns the table with key, if present.
func (v View) FindTable(key string) (Table, bool) {
	for _, t := range v.Tables {
		if t.Key == key {
			return t, true
		}
	}
	return Table{}, false
}

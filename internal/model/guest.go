package model

// Guest is one named row of the guest list.  It is rebuilt from every
// snapshot and never stored on its own.
//
// Fields:
//
//	RowIndex – sheet row number, the guest's identity (names may repeat).
//	Name     – trimmed guest name; also used to detect row drift.
//	PlusOne  – guest brings a companion, taking two seats.
//	Group    – optional group label.
//	Declined – the attending column says "no".
//	RawTable – table cell as written in the sheet.
//	Table    – parsed table, NoTable when empty or unparseable.
type Guest struct {
	RowIndex int
	Name     string
	PlusOne  bool
	Group    string
	Declined bool
	RawTable string
	Table    TableID
}

// Seats returns how many seats the guest occupies.
func (g Guest) Seats() int {
	if g.PlusOne {
		return 2
	}
	return 1
}

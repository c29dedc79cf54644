package repository

import (
	"context"
	"database/sql"
	"time"
)

// MoveRecord mirrors one row of move_history.
type MoveRecord struct {
	ID        uint64    `json:"id"`
	EventID   string    `json:"eventId"`
	GuestID   int       `json:"guestId"`
	GuestName string    `json:"guestName"`
	FromTable string    `json:"fromTable"`
	ToTable   string    `json:"toTable"`
	Cell      string    `json:"cell"`
	Verified  bool      `json:"verified"`
	MovedAt   time.Time `json:"movedAt"`
}

// MoveHistoryRepo appends and lists settled moves.
type MoveHistoryRepo struct{ DB *sql.DB }

func NewMoveHistoryRepo(db *sql.DB) *MoveHistoryRepo { return &MoveHistoryRepo{DB: db} }

// Available reports whether a database is attached.
func (r *MoveHistoryRepo) Available() bool { return r != nil && r.DB != nil }

// Insert stores m.  Redelivered events are ignored through the unique
// event_id.
func (r *MoveHistoryRepo) Insert(ctx context.Context, m MoveRecord) error {
	if !r.Available() {
		return ErrUnavailable
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT IGNORE INTO move_history
			(event_id, guest_row, guest_name, from_table, to_table, cell, verified, moved_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		m.EventID, m.GuestID, m.GuestName, m.FromTable, m.ToTable, m.Cell, m.Verified, m.MovedAt.UTC())
	return err
}

// Recent returns up to limit moves, newest first.
func (r *MoveHistoryRepo) Recent(ctx context.Context, limit int) ([]MoveRecord, error) {
	if !r.Available() {
		return nil, ErrUnavailable
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, event_id, guest_row, guest_name, from_table, to_table, cell, verified, moved_at
		 FROM move_history ORDER BY moved_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MoveRecord{}
	for rows.Next() {
		var m MoveRecord
		if err := rows.Scan(&m.ID, &m.EventID, &m.GuestID, &m.GuestName, &m.FromTable, &m.ToTable, &m.Cell, &m.Verified, &m.MovedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

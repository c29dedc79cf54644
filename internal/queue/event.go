// Package queue defines message payloads exchanged over the message broker.
package queue

// MoveQueueName is the durable queue carrying GuestMovedEvent messages.
const MoveQueueName = "guest.moved"

// GuestMovedEvent is published after every settled move.  It carries
// enough for the history consumer to store and log the move without
// reading the sheet again.
type GuestMovedEvent struct {
	ID        string `json:"id"`
	GuestID   int    `json:"guestId"`
	GuestName string `json:"guestName"`
	FromTable string `json:"fromTable"`
	ToTable   string `json:"toTable"`
	Cell      string `json:"cell"`
	Verified  bool   `json:"verified"`
	MovedAt   string `json:"movedAt"` // RFC 3339, UTC
}

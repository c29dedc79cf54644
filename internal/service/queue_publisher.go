// Package queue_publisher publishes domain events to RabbitMQ.  Errors are
// logged and returned so callers can ignore them without interrupting the
// request that caused the event.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/wedding-seating/internal/queue"
	"github.com/iliyamo/wedding-seating/internal/reconcile"
)

// Publisher sends guest.moved events, dialing the broker per event.
type Publisher struct {
	URL string
}

func NewPublisher(url string) *Publisher { return &Publisher{URL: url} }

// EventFromOutcome builds the wire event for a settled move.
func EventFromOutcome(m reconcile.MoveOutcome) q.GuestMovedEvent {
	return q.GuestMovedEvent{
		ID:        uuid.NewString(),
		GuestID:   m.GuestID,
		GuestName: m.GuestName,
		FromTable: m.FromTable,
		ToTable:   m.ToTable,
		Cell:      m.Cell,
		Verified:  m.Verified,
		MovedAt:   m.MovedAt.UTC().Format(time.RFC3339Nano),
	}
}

// NotifyMove publishes m to the guest.moved queue.
func (p *Publisher) NotifyMove(ctx context.Context, m reconcile.MoveOutcome) error {
	return p.PublishGuestMoved(ctx, EventFromOutcome(m))
}

// PublishGuestMoved publishes event as a persistent message on the
// default exchange, routed to the guest.moved queue.
func (p *Publisher) PublishGuestMoved(ctx context.Context, event q.GuestMovedEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so moves survive a broker restart.
	if _, err := ch.QueueDeclare(q.MoveQueueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := ch.PublishWithContext(ctx, "", q.MoveQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

// Package queue contains the background consumer that listens to the
// guest.moved queue, stores each move in the history table and appends a
// line to logs/moves.log.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/wedding-seating/internal/repository"
)

// MoveSink stores consumed moves.
type MoveSink interface {
	Insert(ctx context.Context, m repository.MoveRecord) error
}

// MoveConsumer turns guest.moved messages into history rows and log lines.
// Sink may be nil, in which case moves are only logged. OnStored, when
// set, runs after each move lands in the sink.
type MoveConsumer struct {
	URL      string
	Sink     MoveSink
	LogDir   string
	OnStored func(ctx context.Context)
}

// NewMoveConsumer returns a consumer writing its log under logDir
// ("logs" when empty).
func NewMoveConsumer(url string, sink MoveSink, logDir string) *MoveConsumer {
	if logDir == "" {
		logDir = "logs"
	}
	return &MoveConsumer{URL: url, Sink: sink, LogDir: logDir}
}

// Run connects to the broker and consumes until ctx is done, reconnecting
// with exponential backoff (capped at 30s) whenever the connection drops.
func (mc *MoveConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(mc.URL)
		if err != nil {
			log.Printf("move-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = mc.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("move-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (mc *MoveConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(20, 0, false); err != nil {
		log.Printf("move-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(MoveQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(MoveQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := mc.handleMessage(ctx, d.Body); err != nil {
				log.Printf("move-consumer: handle message failed: %v", err)
				// reject without requeue so a poison message cannot loop
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (mc *MoveConsumer) handleMessage(ctx context.Context, body []byte) error {
	var ev GuestMovedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.ID == "" || ev.GuestID <= 0 {
		return fmt.Errorf("incomplete event: %s", body)
	}
	movedAt, err := time.Parse(time.RFC3339Nano, ev.MovedAt)
	if err != nil {
		return fmt.Errorf("movedAt: %w", err)
	}

	if mc.Sink != nil {
		rec := repository.MoveRecord{
			EventID:   ev.ID,
			GuestID:   ev.GuestID,
			GuestName: ev.GuestName,
			FromTable: ev.FromTable,
			ToTable:   ev.ToTable,
			Cell:      ev.Cell,
			Verified:  ev.Verified,
			MovedAt:   movedAt,
		}
		insertCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := mc.Sink.Insert(insertCtx, rec); err != nil {
			return fmt.Errorf("store move: %w", err)
		}
		if mc.OnStored != nil {
			mc.OnStored(ctx)
		}
	}
	return mc.appendLog(ev)
}

func (mc *MoveConsumer) appendLog(ev GuestMovedEvent) error {
	if err := os.MkdirAll(mc.LogDir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(mc.LogDir, "moves.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	status := "verified"
	if !ev.Verified {
		status = "unconfirmed"
	}
	line := fmt.Sprintf("[%s] Guest moved | event_id=%s | row=%d | guest=%q | from=%q | to=%q | cell=%s | %s\n",
		ev.MovedAt, ev.ID, ev.GuestID, ev.GuestName, ev.FromTable, ev.ToTable, ev.Cell, status)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

package reconcile

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Lane runs submitted tasks one at a time, in submission order, on a
// single worker goroutine.  Every mutation of the sheet goes through it so
// a verification read can never observe another write in flight.
type Lane struct {
	tasks     chan func()
	quit      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewLane starts the worker.  depth bounds how many tasks may wait; once
// full, Submit blocks until there is room or the caller gives up.
func NewLane(depth int) *Lane {
	if depth <= 0 {
		depth = 1
	}
	l := &Lane{
		tasks:   make(chan func(), depth),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Lane) run() {
	defer close(l.stopped)
	for {
		select {
		case <-l.quit:
			return
		case task := <-l.tasks:
			task()
		}
	}
}

// Close stops accepting work and waits for the running task, if any.
// Tasks still queued are abandoned and their callers get ErrLaneClosed.
func (l *Lane) Close() {
	l.closeOnce.Do(func() { close(l.quit) })
	<-l.stopped
}

// Queued returns the number of tasks waiting behind the running one.
func (l *Lane) Queued() int { return len(l.tasks) }

type laneResult[T any] struct {
	val T
	err error
}

// Submit queues task on l and waits for its result.
//
// A task whose caller context is already done when the worker reaches it
// is skipped.  Once started, a task runs on a context detached from the
// caller, so a client timeout stops the wait but never interrupts a write
// halfway.  A panicking task is reported as ErrTaskPanic and does not stop
// the lane.
func Submit[T any](ctx context.Context, l *Lane, task func(context.Context) (T, error)) (T, error) {
	var zero T
	done := make(chan laneResult[T], 1)
	detached := context.WithoutCancel(ctx)

	job := func() {
		if err := ctx.Err(); err != nil {
			done <- laneResult[T]{err: err}
			return
		}
		defer func() {
			if p := recover(); p != nil {
				log.Printf("lane: task panic: %v", p)
				done <- laneResult[T]{err: fmt.Errorf("%w: %v", ErrTaskPanic, p)}
			}
		}()
		v, err := task(detached)
		done <- laneResult[T]{val: v, err: err}
	}

	select {
	case <-l.quit:
		return zero, ErrLaneClosed
	default:
	}
	select {
	case l.tasks <- job:
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-l.quit:
		return zero, ErrLaneClosed
	}

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-l.stopped:
		select {
		case r := <-done:
			return r.val, r.err
		default:
			return zero, ErrLaneClosed
		}
	}
}

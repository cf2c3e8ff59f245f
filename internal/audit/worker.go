package audit

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	defaultQueueSize    = 1024
	defaultDrainTimeout = 5 * time.Second
)

// Queue is a bounded Store that never blocks the caller. When the buffer is
// full the event is dropped and counted; audit delivery must not fail a
// submission.
type Queue struct {
	inbox   chan Event
	dropped atomic.Int64
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Queue{inbox: make(chan Event, size)}
}

func (q *Queue) Append(_ context.Context, event Event) error {
	select {
	case q.inbox <- event:
	default:
		q.dropped.Add(1)
	}
	return nil
}

// Dropped returns how many events were discarded because the queue was full.
func (q *Queue) Dropped() int64 {
	return q.dropped.Load()
}

// Worker consumes queued events and forwards them to the downstream store.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, queue *Queue, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: queue.inbox, logger: logger}
}

// Run forwards events until ctx is cancelled, then drains whatever is still
// buffered with a short grace period. Delivery failures are logged and the
// event is skipped.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return nil
		case event := <-w.inbox:
			w.deliver(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultDrainTimeout)
	defer cancel()
	for {
		select {
		case event := <-w.inbox:
			w.deliver(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) deliver(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "failed to deliver audit event",
			"event_id", event.ID.String(),
			"action", string(event.Action),
			"request_id", event.RequestID,
			"error", err,
		)
	}
}

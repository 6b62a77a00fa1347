package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/yukikurage/release-planner/internal/metrics"
)

// Queue runs deliveries on a background worker. It is bounded: when full,
// new events are dropped and logged.
type Queue struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
	jobs       chan Event

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewQueue(d *Dispatcher, size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{dispatcher: d, logger: logger, jobs: make(chan Event, size)}
}

// Start launches the worker. It runs until Close.
func (q *Queue) Start(ctx context.Context) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for ev := range q.jobs {
			q.dispatcher.Deliver(ctx, ev)
		}
	}()
}

// Enqueue schedules ev and reports whether it was accepted.
func (q *Queue) Enqueue(ev Event) bool {
	if len(ev.Recipients) == 0 {
		return true
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}
	select {
	case q.jobs <- ev:
		return true
	default:
		metrics.Notifications.WithLabelValues(string(ev.Kind), metrics.ResultDropped).Inc()
		q.logger.Warn("notification queue full, dropping", "kind", ev.Kind, "title", ev.Title)
		return false
	}
}

// Close stops accepting events and waits for queued ones to drain.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()
	q.wg.Wait()
}

package realtime

import (
	"context"
	"sync"
	"time"
)

const subscriberBuffer = 64

// Bus is an in-process Feed. Each subscriber gets its own buffered channel
// drained by a goroutine; a subscriber that falls behind loses changes
// instead of blocking publishers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[*busSubscription]struct{}
	closed bool
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[*busSubscription]struct{})}
}

type busSubscription struct {
	bus   *Bus
	table string
	ch    chan Change
	once  sync.Once
	done  chan struct{}
}

// Publish fans the change out to every subscriber of its table.
func (b *Bus) Publish(_ context.Context, change Change) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs {
		if s.table != change.Table {
			continue
		}
		select {
		case s.ch <- change:
		default:
			// subscriber is behind; drop
		}
	}
	return nil
}

// resync sends an OpResync change to every subscriber.
func (b *Bus) resync(at time.Time) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs {
		select {
		case s.ch <- Change{Table: s.table, Op: OpResync, At: at}:
		default:
		}
	}
}

// Subscribe registers h for changes to table.
func (b *Bus) Subscribe(table string, h Handler) (Subscription, error) {
	s := &busSubscription{
		bus:   b,
		table: table,
		ch:    make(chan Change, subscriberBuffer),
		done:  make(chan struct{}),
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	go func() {
		defer close(s.done)
		for c := range s.ch {
			h(c)
		}
	}()
	return s, nil
}

// Close drops every subscription.
func (b *Bus) Close() error {
	b.mu.Lock()
	subs := b.subs
	b.subs = make(map[*busSubscription]struct{})
	b.closed = true
	b.mu.Unlock()
	for s := range subs {
		s.stop()
	}
	return nil
}

func (s *busSubscription) Unsubscribe() error {
	s.bus.mu.Lock()
	delete(s.bus.subs, s)
	s.bus.mu.Unlock()
	s.stop()
	return nil
}

func (s *busSubscription) stop() {
	s.once.Do(func() { close(s.ch) })
}

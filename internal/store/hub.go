package store

import "sync"

const listenerBuffer = 16

// Hub fans collection events out to listeners such as SSE streams.
// A listener that falls behind misses events.
type Hub struct {
	mu        sync.RWMutex
	listeners map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{listeners: make(map[chan Event]struct{})}
}

// Listen registers a listener. Call the returned func to unregister.
func (h *Hub) Listen() (<-chan Event, func()) {
	ch := make(chan Event, listenerBuffer)
	h.mu.Lock()
	h.listeners[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.listeners {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Package store holds the in-memory entity collections the API serves.
//
// A Collection is replaced wholesale by its sync adapter on every reload
// and patched optimistically by services before a write reaches the remote
// store. Hub listeners are told the collection name whenever it changes.
package store

import (
	"sync"

	"github.com/yukikurage/release-planner/internal/models"
)

// Event tells observers which collection changed.
type Event struct {
	Collection string `json:"collection"`
	Count      int    `json:"count"`
}

type Collection[T models.Entity] struct {
	name string
	hub  *Hub

	mu    sync.RWMutex
	items []T
	index map[string]int
}

// NewCollection creates an empty collection announcing changes on hub.
func NewCollection[T models.Entity](name string, hub *Hub) *Collection[T] {
	return &Collection[T]{name: name, hub: hub, index: map[string]int{}}
}

func (c *Collection[T]) Name() string { return c.name }

// Replace swaps in a freshly loaded collection, keeping its order.
func (c *Collection[T]) Replace(items []T) {
	c.mu.Lock()
	c.items = append([]T(nil), items...)
	c.reindex()
	n := len(c.items)
	c.mu.Unlock()
	c.notify(n)
}

// All returns a copy of the collection.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Filter returns the items keep accepts, in collection order.
func (c *Collection[T]) Filter(keep func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []T{}
	for _, it := range c.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return c.items[i], true
}

// Put inserts or replaces an item ahead of the remote write.
func (c *Collection[T]) Put(item T) {
	c.mu.Lock()
	if i, ok := c.index[item.GetID()]; ok {
		c.items[i] = item
	} else {
		c.index[item.GetID()] = len(c.items)
		c.items = append(c.items, item)
	}
	n := len(c.items)
	c.mu.Unlock()
	c.notify(n)
}

// Remove drops an item ahead of the remote delete.
func (c *Collection[T]) Remove(id string) bool {
	c.mu.Lock()
	i, ok := c.index[id]
	if ok {
		c.items = append(c.items[:i], c.items[i+1:]...)
		c.reindex()
	}
	n := len(c.items)
	c.mu.Unlock()
	if ok {
		c.notify(n)
	}
	return ok
}

func (c *Collection[T]) reindex() {
	c.index = make(map[string]int, len(c.items))
	for i, it := range c.items {
		c.index[it.GetID()] = i
	}
}

func (c *Collection[T]) notify(n int) {
	if c.hub != nil {
		c.hub.Publish(Event{Collection: c.name, Count: n})
	}
}

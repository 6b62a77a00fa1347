// Package realtime carries table change notifications between processes.
// Notifications are reload triggers only; consumers never apply them as diffs.
package realtime

import (
	"context"
	"time"
)

// Op is the kind of row change.
type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
	// OpResync follows a lost feed connection. Changes may have been
	// missed, so every subscriber reloads.
	OpResync Op = "resync"
)

// Change announces that a row in a table changed.
type Change struct {
	Table string    `json:"table"`
	Op    Op        `json:"op"`
	ID    string    `json:"id"`
	At    time.Time `json:"at"`
}

// Handler receives changes for a subscribed table.
type Handler func(Change)

// Subscription is a standing subscription to a table.
type Subscription interface {
	Unsubscribe() error
}

// Feed publishes and delivers table changes.
type Feed interface {
	Publish(ctx context.Context, change Change) error
	Subscribe(table string, h Handler) (Subscription, error)
	Close() error
}

// Connected reports whether f is currently receiving changes. Feeds that
// cannot lose a connection always report true.
func Connected(f Feed) bool {
	if f == nil {
		return false
	}
	if c, ok := f.(interface{ Connected() bool }); ok {
		return c.Connected()
	}
	return true
}

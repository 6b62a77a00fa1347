package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubjectPrefix namespaces change subjects: <prefix>.<table>.
const DefaultSubjectPrefix = "releaseplanner.changes"

// NATSFeed publishes changes on NATS subjects, one per table.
type NATSFeed struct {
	nc     *nats.Conn
	prefix string
	logger *slog.Logger
}

// DialNATS connects to a NATS server and returns a feed over it.
func DialNATS(url string, logger *slog.Logger) (*NATSFeed, error) {
	nc, err := nats.Connect(url,
		nats.Name("release-planner"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return NewNATSFeed(nc, DefaultSubjectPrefix, logger), nil
}

// NewNATSFeed wraps an existing connection.
func NewNATSFeed(nc *nats.Conn, prefix string, logger *slog.Logger) *NATSFeed {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSFeed{nc: nc, prefix: prefix, logger: logger}
}

// Subject returns the subject used for a table.
func (f *NATSFeed) Subject(table string) string {
	return f.prefix + "." + table
}

func (f *NATSFeed) Publish(ctx context.Context, change Change) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	return f.nc.Publish(f.Subject(change.Table), data)
}

func (f *NATSFeed) Subscribe(table string, h Handler) (Subscription, error) {
	sub, err := f.nc.Subscribe(f.Subject(table), func(msg *nats.Msg) {
		var c Change
		if err := json.Unmarshal(msg.Data, &c); err != nil {
			f.logger.Warn("undecodable change message", "subject", msg.Subject, "error", err)
			c = Change{Table: table}
		}
		h(c)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", f.Subject(table), err)
	}
	return sub, nil
}

// Connected reports whether the NATS connection is up. The client
// reconnects on its own.
func (f *NATSFeed) Connected() bool {
	return f.nc.IsConnected()
}

// Close drains the connection.
func (f *NATSFeed) Close() error {
	return f.nc.Drain()
}

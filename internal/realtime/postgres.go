package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yukikurage/release-planner/internal/metrics"
)

// DefaultChannel is the LISTEN/NOTIFY channel carrying changes.
const DefaultChannel = "release_changes"

const (
	minRedialDelay = 500 * time.Millisecond
	maxRedialDelay = 30 * time.Second
)

// listener is one connection that has issued LISTEN.
type listener interface {
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Release()
}

type pooledListener struct {
	conn *pgxpool.Conn
}

func (l pooledListener) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	return l.conn.Conn().WaitForNotification(ctx)
}

func (l pooledListener) Release() {
	l.conn.Release()
}

type dialFunc func(ctx context.Context) (listener, error)

// PostgresFeed uses LISTEN/NOTIFY on one channel and fans out locally by
// table. A dropped listen connection is redialed with backoff, and every
// subscriber is sent an OpResync once it is back.
type PostgresFeed struct {
	pool      *pgxpool.Pool
	channel   string
	logger    *slog.Logger
	local     *Bus
	dial      dialFunc
	minDelay  time.Duration
	maxDelay  time.Duration
	connected atomic.Bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// ListenPostgres opens a pool and starts the listener goroutine.
func ListenPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*PostgresFeed, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open listen pool: %w", err)
	}
	f, err := NewPostgresFeed(ctx, pool, DefaultChannel, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return f, nil
}

// NewPostgresFeed starts listening on channel using a dedicated pooled connection.
func NewPostgresFeed(ctx context.Context, pool *pgxpool.Pool, channel string, logger *slog.Logger) (*PostgresFeed, error) {
	dial := func(ctx context.Context) (listener, error) {
		conn, err := pool.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquire listen connection: %w", err)
		}
		if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
			conn.Release()
			return nil, fmt.Errorf("listen %s: %w", channel, err)
		}
		return pooledListener{conn: conn}, nil
	}
	f, err := startPostgresFeed(ctx, dial, channel, logger, minRedialDelay, maxRedialDelay)
	if err != nil {
		return nil, err
	}
	f.pool = pool
	return f, nil
}

func startPostgresFeed(ctx context.Context, dial dialFunc, channel string, logger *slog.Logger, minDelay, maxDelay time.Duration) (*PostgresFeed, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l, err := dial(ctx)
	if err != nil {
		return nil, err
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	f := &PostgresFeed{
		channel:  channel,
		logger:   logger,
		local:    NewBus(),
		dial:     dial,
		minDelay: minDelay,
		maxDelay: maxDelay,
		cancel:   cancel,
	}
	f.setConnected(true)
	f.wg.Add(1)
	go f.run(listenCtx, l)
	return f, nil
}

func (f *PostgresFeed) run(ctx context.Context, l listener) {
	defer f.wg.Done()
	for {
		err := f.consume(ctx, l)
		if ctx.Err() != nil {
			return
		}
		f.setConnected(false)
		f.logger.Error("postgres change listener lost its connection", "error", err)

		if l = f.redial(ctx); l == nil {
			return
		}
		f.setConnected(true)
		metrics.FeedReconnects.WithLabelValues("postgres").Inc()
		f.logger.Info("postgres change listener reconnected")
		f.local.resync(time.Now())
	}
}

// consume publishes notifications until the connection fails.
func (f *PostgresFeed) consume(ctx context.Context, l listener) error {
	defer l.Release()
	for {
		n, err := l.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		var c Change
		if err := json.Unmarshal([]byte(n.Payload), &c); err != nil {
			f.logger.Warn("undecodable change notification", "payload", n.Payload, "error", err)
			continue
		}
		_ = f.local.Publish(ctx, c)
	}
}

// redial returns nil once ctx is done.
func (f *PostgresFeed) redial(ctx context.Context) listener {
	delay := f.minDelay
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		l, err := f.dial(ctx)
		if err == nil {
			return l
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		f.logger.Warn("postgres change listener redial failed", "error", err, "retry_in", delay)
		delay = min(delay*2, f.maxDelay)
	}
}

func (f *PostgresFeed) setConnected(up bool) {
	f.connected.Store(up)
	v := 0.0
	if up {
		v = 1
	}
	metrics.FeedConnected.WithLabelValues("postgres").Set(v)
}

// Connected reports whether the listen connection is up.
func (f *PostgresFeed) Connected() bool {
	return f.connected.Load()
}

func (f *PostgresFeed) Publish(ctx context.Context, change Change) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	if _, err := f.pool.Exec(ctx, "SELECT pg_notify($1, $2)", f.channel, string(data)); err != nil {
		return fmt.Errorf("notify %s: %w", f.channel, err)
	}
	return nil
}

func (f *PostgresFeed) Subscribe(table string, h Handler) (Subscription, error) {
	return f.local.Subscribe(table, h)
}

// Close stops the listener and closes the pool.
func (f *PostgresFeed) Close() error {
	f.cancel()
	f.wg.Wait()
	_ = f.local.Close()
	if f.pool != nil {
		f.pool.Close()
	}
	return nil
}

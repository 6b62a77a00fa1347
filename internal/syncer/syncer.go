// Package syncer mirrors one remote table into memory.
//
// An Adapter loads the whole table, hands it to its consumer, and reloads
// the whole table again whenever the change feed reports a write to it.
// Change events carry no payload the adapter trusts: the last full reload
// wins. There are no retries; a failed reload keeps the previous state.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/yukikurage/release-planner/internal/metrics"
	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/realtime"
)

const reloadTimeout = 30 * time.Second

// Remote is the remote table an adapter mirrors.
type Remote[T models.Entity] interface {
	Table() string
	List(ctx context.Context) ([]T, error)
	Upsert(ctx context.Context, item *T) error
	Delete(ctx context.Context, id string) error
}

// Snapshots is the local cache used as fallback and for legacy data.
// Save must not replace a snapshot that still awaits upload.
type Snapshots interface {
	Load(ctx context.Context, collection string, dst any) (bool, error)
	Save(ctx context.Context, collection string, items any) error
	SaveLegacy(ctx context.Context, collection string, items any) error
	Pending(ctx context.Context, collection string, dst any) (bool, error)
	MarkMigrated(ctx context.Context, collection string) error
}

// Adapter keeps a consumer in step with one remote table.
type Adapter[T models.Entity] struct {
	name   string
	remote Remote[T]
	feed   realtime.Feed
	cache  Snapshots
	logger *slog.Logger
	less   func(a, b T) bool

	// mu serializes reloads so onChange calls arrive in order.
	mu       sync.Mutex
	onChange func([]T)
	local    []T

	ctx    context.Context
	cancel context.CancelFunc
	sub    realtime.Subscription
}

// New creates an adapter. A nil remote puts the adapter in local-only mode,
// where the collection lives in the cache under name. feed and cache may
// also be nil.
func New[T models.Entity](name string, remote Remote[T], feed realtime.Feed, cache Snapshots, logger *slog.Logger) *Adapter[T] {
	if logger == nil {
		logger = slog.Default()
	}
	if remote != nil {
		name = remote.Table()
	}
	return &Adapter[T]{
		name:     name,
		remote:   remote,
		feed:     feed,
		cache:    cache,
		logger:   logger.With("collection", name),
		onChange: func([]T) {},
	}
}

// OrderBy sets the natural-key order of a local-only collection. Remote
// collections keep the order of the remote listing.
func (a *Adapter[T]) OrderBy(less func(a, b T) bool) *Adapter[T] {
	a.less = less
	return a
}

// Name is the table or cache collection the adapter mirrors.
func (a *Adapter[T]) Name() string {
	return a.name
}

// Start loads the collection, reports it through onChange, and subscribes
// to remote changes. A failed initial load falls back to the cached
// snapshot, or to an empty collection when nothing is cached.
func (a *Adapter[T]) Start(ctx context.Context, onChange func([]T)) error {
	a.mu.Lock()
	if onChange != nil {
		a.onChange = onChange
	}
	a.ctx, a.cancel = context.WithCancel(context.WithoutCancel(ctx))
	a.mu.Unlock()

	if a.remote == nil {
		items := a.loadCached(ctx)
		a.mu.Lock()
		a.local = items
		a.sortLocal()
		a.onChange(clone(a.local))
		a.mu.Unlock()
		return nil
	}

	if _, err := a.Reload(ctx); err != nil {
		a.logger.Warn("initial load failed, using local cache", "error", err)
		metrics.SyncReloads.WithLabelValues(a.name, metrics.ResultFallback).Inc()
		items := a.loadCached(ctx)
		a.mu.Lock()
		a.onChange(items)
		a.mu.Unlock()
	}

	if a.feed == nil {
		return nil
	}
	sub, err := a.feed.Subscribe(a.name, a.handleChange)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s changes: %w", a.name, err)
	}
	a.mu.Lock()
	a.sub = sub
	a.mu.Unlock()
	return nil
}

func (a *Adapter[T]) handleChange(change realtime.Change) {
	a.mu.Lock()
	base := a.ctx
	a.mu.Unlock()
	if base == nil || base.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(base, reloadTimeout)
	defer cancel()
	if _, err := a.Reload(ctx); err != nil {
		a.logger.Error("reload after change failed", "op", change.Op, "id", change.ID, "error", err)
	}
}

// Reload fetches the whole table, refreshes the cached snapshot, and
// reports the result. On error the consumer keeps its previous state.
func (a *Adapter[T]) Reload(ctx context.Context) ([]T, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.remote == nil {
		items := clone(a.local)
		a.onChange(clone(items))
		return items, nil
	}

	items, err := a.remote.List(ctx)
	if err != nil {
		metrics.SyncReloads.WithLabelValues(a.name, metrics.ResultError).Inc()
		return nil, fmt.Errorf("failed to load %s: %w", a.name, err)
	}
	metrics.SyncReloads.WithLabelValues(a.name, metrics.ResultOK).Inc()

	if a.cache != nil {
		if err := a.cache.Save(ctx, a.name, items); err != nil {
			a.logger.Warn("failed to refresh local cache", "error", err)
		}
	}
	a.onChange(clone(items))
	return items, nil
}

// Save upserts item by id. With a remote store the consumer hears about
// the write through the change feed, not from Save.
func (a *Adapter[T]) Save(ctx context.Context, item T) error {
	if a.remote == nil {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.local = upsert(a.local, item)
		a.sortLocal()
		a.persistLocal(ctx)
		a.onChange(clone(a.local))
		return nil
	}

	if err := a.remote.Upsert(ctx, &item); err != nil {
		return fmt.Errorf("failed to save %s %s: %w", a.name, item.GetID(), err)
	}
	a.reloadWithoutFeed(ctx)
	return nil
}

// Delete removes the item with id, following the same contract as Save.
func (a *Adapter[T]) Delete(ctx context.Context, id string) error {
	if a.remote == nil {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.local = remove(a.local, id)
		a.persistLocal(ctx)
		a.onChange(clone(a.local))
		return nil
	}

	if err := a.remote.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", a.name, id, err)
	}
	a.reloadWithoutFeed(ctx)
	return nil
}

// reloadWithoutFeed stands in for the change event when nobody publishes one.
func (a *Adapter[T]) reloadWithoutFeed(ctx context.Context) {
	if a.feed != nil {
		return
	}
	if _, err := a.Reload(ctx); err != nil {
		a.logger.Error("reload after write failed", "error", err)
	}
}

// MigrateFromLocalCache uploads a collection cached before the remote store
// was configured, either imported legacy data or work done in local-only
// mode. It runs at most once per collection: items are uploaded one by
// one, failures are logged and not retried, and the snapshot is marked
// migrated afterwards. The collection is then reloaded so the consumer and
// the cache hold the merged table. It returns the number of uploaded items.
func (a *Adapter[T]) MigrateFromLocalCache(ctx context.Context) (int, error) {
	if a.remote == nil || a.cache == nil {
		return 0, nil
	}

	var items []T
	found, err := a.cache.Pending(ctx, a.name, &items)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}

	uploaded := 0
	for i := range items {
		if err := a.remote.Upsert(ctx, &items[i]); err != nil {
			a.logger.Warn("failed to migrate cached item", "id", items[i].GetID(), "error", err)
			continue
		}
		uploaded++
	}

	if err := a.cache.MarkMigrated(ctx, a.name); err != nil {
		return uploaded, fmt.Errorf("failed to mark %s migrated: %w", a.name, err)
	}
	a.logger.Info("migrated local cache", "uploaded", uploaded, "total", len(items))

	if uploaded > 0 {
		if _, err := a.Reload(ctx); err != nil {
			a.logger.Warn("reload after migration failed", "error", err)
		}
	}
	return uploaded, nil
}

// Stop tears down the change subscription. Safe to call more than once.
func (a *Adapter[T]) Stop() {
	a.mu.Lock()
	sub := a.sub
	a.sub = nil
	if a.cancel != nil {
		a.cancel()
	}
	a.mu.Unlock()

	if sub != nil {
		if err := sub.Unsubscribe(); err != nil {
			a.logger.Warn("failed to unsubscribe", "error", err)
		}
	}
}

func (a *Adapter[T]) loadCached(ctx context.Context) []T {
	items := []T{}
	if a.cache == nil {
		return items
	}
	found, err := a.cache.Load(ctx, a.name, &items)
	if err != nil {
		a.logger.Warn("failed to read local cache", "error", err)
		return []T{}
	}
	if !found || items == nil {
		return []T{}
	}
	return items
}

// persistLocal writes the local-only collection as pending, so it is
// uploaded once a remote store is configured.
func (a *Adapter[T]) persistLocal(ctx context.Context) {
	if a.cache == nil {
		return
	}
	if err := a.cache.SaveLegacy(ctx, a.name, a.local); err != nil {
		a.logger.Warn("failed to write local cache", "error", err)
	}
}

func (a *Adapter[T]) sortLocal() {
	if a.less == nil {
		return
	}
	sort.SliceStable(a.local, func(i, j int) bool { return a.less(a.local[i], a.local[j]) })
}

func clone[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}

func upsert[T models.Entity](items []T, item T) []T {
	for i := range items {
		if items[i].GetID() == item.GetID() {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

func remove[T models.Entity](items []T, id string) []T {
	out := items[:0]
	for _, it := range items {
		if it.GetID() != id {
			out = append(out, it)
		}
	}
	return out
}

// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "release_planner"

// Result label values.
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultFallback = "fallback"
	ResultSkipped  = "skipped"
	ResultDropped  = "dropped"
)

var (
	// SyncReloads counts full collection reloads per table.
	SyncReloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_reloads_total",
		Help:      "Full collection reloads by table and result.",
	}, []string{"table", "result"})

	// RemoteWrites counts upserts and deletes sent to the remote store.
	RemoteWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_writes_total",
		Help:      "Remote store writes by table, operation and result.",
	}, []string{"table", "op", "result"})

	// Notifications counts per-recipient notification deliveries.
	Notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Notification deliveries by event kind and result.",
	}, []string{"kind", "result"})

	// FeedConnected is 1 while a change feed listener is connected.
	FeedConnected = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_connected",
		Help:      "Whether the change feed listener is connected, by feed.",
	}, []string{"feed"})

	// FeedReconnects counts change feed listener reconnections.
	FeedReconnects = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_reconnects_total",
		Help:      "Change feed listener reconnections by feed.",
	}, []string{"feed"})

	// SideEffects counts secondary effects such as calendar sync.
	SideEffects = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "side_effects_total",
		Help:      "Secondary side effects (calendar, blob) by kind and result.",
	}, []string{"kind", "result"})
)

var registry = prometheus.NewRegistry()

func init() {
	registry.MustRegister(
		SyncReloads,
		RemoteWrites,
		Notifications,
		SideEffects,
		FeedConnected,
		FeedReconnects,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationsCreated records persisted notifications by type.
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsefeed_notifications_created_total",
			Help: "Total number of notifications persisted",
		},
		[]string{"type"},
	)

	// NotificationsDeduplicated counts events that refreshed an existing notification instead of creating one.
	NotificationsDeduplicated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsefeed_notifications_deduplicated_total",
			Help: "Total number of notification events collapsed into an existing row",
		},
		[]string{"type"},
	)

	// RealtimeDeliveries counts per-channel delivery attempts by result (ok|failed).
	RealtimeDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsefeed_realtime_deliveries_total",
			Help: "Total number of realtime channel deliveries",
		},
		[]string{"result"},
	)

	// ActiveConnections tracks currently open realtime channels.
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulsefeed_realtime_connections",
			Help: "Number of open realtime connections",
		},
	)

	// CacheInvalidations counts invalidation runs by entity kind.
	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsefeed_cache_invalidations_total",
			Help: "Total number of cache invalidation runs",
		},
		[]string{"entity"},
	)

	// SinkDeliveries counts best-effort sink handoffs by sink and result (ok|failed).
	SinkDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsefeed_sink_deliveries_total",
			Help: "Total number of email/push sink deliveries",
		},
		[]string{"sink", "result"},
	)
)

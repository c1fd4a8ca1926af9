package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gateway metrics
var (
	// ConnectedClients tracks currently connected WebSocket clients.
	ConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_connected_clients",
			Help: "Number of currently connected WebSocket clients",
		},
	)

	// ActiveSubscriptions tracks live (match, connection) subscription pairs.
	ActiveSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_active_subscriptions",
			Help: "Number of active match subscriptions across all clients",
		},
	)

	// BroadcastsTotal counts events fanned out locally, by event type.
	BroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_broadcasts_total",
			Help: "Events broadcast to local clients by event type",
		},
		[]string{"event"},
	)

	// HeartbeatTerminations counts connections terminated for missing pongs.
	HeartbeatTerminations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_heartbeat_terminations_total",
			Help: "Connections terminated after failing the heartbeat check",
		},
	)

	// UpgradesDenied counts upgrade requests rejected before the handshake.
	UpgradesDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_upgrades_denied_total",
			Help: "WebSocket upgrades denied by admission control, by reason",
		},
		[]string{"reason"},
	)
)

// Bus metrics
var (
	// BusPublishesTotal counts bus publishes by channel kind and status.
	BusPublishesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bus_publishes_total",
			Help: "Bus publish attempts by status",
		},
		[]string{"status"},
	)

	// BusMessagesReceived counts messages delivered to local subscribers.
	BusMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bus_messages_received_total",
			Help: "Bus messages received by subscription kind",
		},
		[]string{"kind"},
	)
)

// Scheduler metrics
var (
	// JobsProcessed counts finished transition jobs by outcome.
	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_jobs_processed_total",
			Help: "Transition jobs processed by outcome (applied/skipped/failed)",
		},
		[]string{"outcome"},
	)

	// JobRetries counts retry attempts after hard failures.
	JobRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_job_retries_total",
			Help: "Transition job retry attempts",
		},
	)

	// JobsScheduled counts jobs enqueued by edge.
	JobsScheduled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_jobs_scheduled_total",
			Help: "Transition jobs scheduled by edge",
		},
		[]string{"edge"},
	)
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Connection Metrics
var (
	// ConnectedClients tracks current connections by role (master/slave/viewer)
	ConnectedClients = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scoreboard_connected_clients",
			Help: "Current connected clients by role",
		},
		[]string{"role"},
	)

	// ConnectionsTotal tracks accepted connections since start
	ConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoreboard_connections_total",
			Help: "Total accepted WebSocket connections",
		},
	)

	// ConnectionsRejectedTotal tracks refused upgrades by reason (capacity/ip_limit/rate)
	ConnectionsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoreboard_connections_rejected_total",
			Help: "Refused WebSocket upgrades by reason",
		},
		[]string{"reason"},
	)

	// HandshakeTimeoutsTotal tracks connections auto-classified as viewers
	HandshakeTimeoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoreboard_handshake_timeouts_total",
			Help: "Connections that never sent a handshake and defaulted to viewer",
		},
	)

	// SlowClientsEvicted tracks clients dropped for unread broadcasts
	SlowClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoreboard_slow_clients_evicted_total",
			Help: "Clients disconnected because their send buffer was full",
		},
	)
)

// Arbitration Metrics
var (
	// RoleChangesTotal tracks role transitions by new role and reason
	RoleChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoreboard_role_changes_total",
			Help: "Role transitions by new role and reason",
		},
		[]string{"role", "reason"},
	)

	// GraceReconnectsTotal tracks masters restored within the reload grace period
	GraceReconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoreboard_grace_reconnects_total",
			Help: "Master reconnections accepted within the grace period",
		},
	)

	// PromotionsTotal tracks standby promotions by reason
	PromotionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoreboard_promotions_total",
			Help: "Standby promotions to master by reason",
		},
		[]string{"reason"},
	)
)

// State Update Metrics
var (
	// StateUpdatesTotal tracks processed updates by status (accepted/rejected/unauthorized)
	StateUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoreboard_state_updates_total",
			Help: "Game state updates by status",
		},
		[]string{"status"},
	)

	// BroadcastsTotal tracks state broadcasts fanned out to clients
	BroadcastsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoreboard_broadcasts_total",
			Help: "Game state broadcasts sent",
		},
	)

	// PersistenceErrors tracks snapshot save/load failures
	PersistenceErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoreboard_persistence_errors_total",
			Help: "Game state snapshot persistence failures",
		},
	)
)

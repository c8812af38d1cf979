package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ws_active_sessions",
		Help: "Currently registered live sessions",
	})
	MessagesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "messages_delivered_total",
		Help: "Chat messages persisted and broadcast",
	})
	PushesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ws_pushes_dropped_total",
		Help: "Pushes dropped because a session send buffer was full",
	})
	NotificationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_created_total",
		Help: "Durable notifications written",
	})
)

package notifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleport_notifications_total",
			Help: "Total alert notifications by outcome (dispatched, no_channels, rate_limited).",
		},
		[]string{"outcome"},
	)
	senderHandoffTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleport_sender_handoff_total",
			Help: "Total notification hand-offs per sender by status.",
		},
		[]string{"sender", "status"},
	)
	webhookSendTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleport_webhook_send_total",
			Help: "Total webhook notification send attempts by status.",
		},
		[]string{"status"},
	)
	webhookSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleport_webhook_send_duration_seconds",
			Help:    "Duration of webhook notification HTTP requests.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"status"},
	)
)

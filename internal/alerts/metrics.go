package alerts

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	alertsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleport_alerts_created_total",
			Help: "Total alerts created by source (rule or manual) and category.",
		},
		[]string{"source", "category"},
	)
	candidatesSuppressedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleport_alert_candidates_suppressed_total",
			Help: "Total candidates dropped by reconciliation, by reason.",
		},
		[]string{"reason"},
	)
	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleport_alert_transitions_total",
			Help: "Total alert lifecycle transitions by target status.",
		},
		[]string{"status"},
	)
)

package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleport_pipeline_runs_total",
			Help: "Total evaluation passes by scope (full or incremental).",
		},
		[]string{"scope"},
	)
	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fleport_pipeline_run_duration_seconds",
			Help:    "Duration of one evaluate-reconcile-dispatch pass.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

package rules

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleport_rule_evaluations_total",
			Help: "Total predicate invocations by rule.",
		},
		[]string{"rule"},
	)
	evaluationErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleport_rule_evaluation_errors_total",
			Help: "Total predicate failures by rule. Failed rules are skipped for the entity.",
		},
		[]string{"rule"},
	)
)

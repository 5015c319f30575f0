// Package metrics exposes Prometheus counters for the trigger handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationsTotal counts trigger deliveries received over HTTP,
	// including malformed payloads.
	NotificationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "docingest",
		Name:      "notifications_total",
		Help:      "Trigger notifications received.",
	})

	// DecisionsTotal counts guard decisions by outcome.
	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docingest",
		Name:      "decisions_total",
		Help:      "Dedup guard decisions by outcome.",
	}, []string{"decision"})

	// ProcessedTotal counts pipeline runs that persisted an output object.
	ProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "docingest",
		Name:      "processed_total",
		Help:      "Documents processed and persisted.",
	})

	// FailuresTotal counts pipeline runs that failed, by stage.
	FailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docingest",
		Name:      "failures_total",
		Help:      "Pipeline failures by stage.",
	}, []string{"stage"})
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "actionbot_events_received_total",
		Help: "Total number of gateway events entering dispatch, labelled by category.",
	}, []string{"category"})

	TriggersMatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "actionbot_triggers_matched_total",
		Help: "Total number of trigger matches, labelled by category.",
	}, []string{"category"})

	ActionsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "actionbot_actions_executed_total",
		Help: "Total number of actions executed, labelled by kind and status.",
	}, []string{"kind", "status"})

	PatternFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "actionbot_pattern_failures_total",
		Help: "Total number of stored match patterns that failed to compile.",
	})

	DispatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "actionbot_dispatch_duration_ms",
		Help:    "End-to-end dispatch latency per event in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})
)

// Action execution status labels.
const (
	StatusOK             = "ok"
	StatusFailed         = "failed"
	StatusSkipped        = "skipped"
	StatusNotImplemented = "not_implemented"
)

// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ListFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_list_fetches_total",
			Help: "Total number of backend list fetches",
		},
		[]string{"list", "outcome"},
	)

	ListFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "admin_list_fetch_duration_seconds",
			Help: "Duration of backend list fetches in seconds",
		},
		[]string{"list"},
	)

	StaleResponsesDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_stale_responses_discarded_total",
			Help: "Superseded search responses dropped by generation check",
		},
		[]string{"list"},
	)

	DecisionActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_decision_actions_total",
			Help: "Approve/decline actions by list, action and outcome",
		},
		[]string{"list", "action", "outcome"},
	)

	CountCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_count_cache_lookups_total",
			Help: "Count cache lookups by result",
		},
		[]string{"result"},
	)
)

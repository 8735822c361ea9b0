package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RenewalOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "renewal_outcomes_total",
			Help: "Total number of per-subscription renewal outcomes",
		},
		[]string{"result", "reason"},
	)

	TickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "renewal_tick_duration_seconds",
			Help: "Duration of one scheduler tick in seconds",
		},
	)

	DueSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "renewal_due_subscriptions",
			Help: "Number of subscriptions selected by the most recent tick",
		},
	)

	TicksSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "renewal_ticks_skipped_total",
			Help: "Ticks skipped because the previous tick was still running",
		},
	)
)

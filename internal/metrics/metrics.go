package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Bot metrics
var (
	SessionsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "leechbot",
			Subsystem: "session",
			Name:      "started_total",
			Help:      "Total sessions started via /pw",
		},
	)

	SessionsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "leechbot",
			Subsystem: "session",
			Name:      "expired_total",
			Help:      "Total sessions reclaimed by the idle sweep",
		},
	)

	SessionsCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "leechbot",
			Subsystem: "session",
			Name:      "cancelled_total",
			Help:      "Total sessions cancelled by the user",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "leechbot",
			Subsystem: "session",
			Name:      "active",
			Help:      "Live sessions currently held in the store",
		},
	)

	DispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leechbot",
			Subsystem: "dispatch",
			Name:      "total",
			Help:      "Completed dispatches by link kind and outcome",
		},
		[]string{"kind", "status"},
	)

	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "leechbot",
			Subsystem: "dispatch",
			Name:      "duration_seconds",
			Help:      "Dispatch duration in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"kind"},
	)
)

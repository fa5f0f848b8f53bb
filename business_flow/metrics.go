package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Call outcomes recorded, partitioned by outcome
	callsLoggedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialer_calls_logged_total",
			Help: "Total number of call outcomes recorded",
		},
		[]string{"outcome"},
	)

	// Do-not-call outcomes whose contact flag could not be written
	dncFlagFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dialer_dnc_flag_failures_total",
			Help: "Number of DNC outcomes recorded without flagging the contact",
		},
	)

	// Store writes that failed, partitioned by attempted action
	writeFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialer_write_failures_total",
			Help: "Number of failed store writes",
		},
		[]string{"action"},
	)

	// Calls per hour of the most recently ended block
	blockCallsPerHour = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dialer_block_calls_per_hour",
			Help: "Calls per hour of the last ended call block",
		},
	)

	// Manual order renumber passes
	reorderRenumbersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dialer_reorder_renumbers_total",
			Help: "Number of times the manual order was renumbered",
		},
	)
)

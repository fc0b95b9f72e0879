package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Throughput metrics - Track projection volume
var (
	EventsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projector_events_applied_total",
			Help: "Total number of events applied to projected state, by event type",
		},
		[]string{"event_type"},
	)

	EventsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projector_events_skipped_total",
			Help: "Total number of events deliberately skipped, by reason",
		},
		[]string{"reason"},
	)

	EventFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projector_event_failures_total",
			Help: "Total number of events whose handler returned an error, by event type",
		},
		[]string{"event_type"},
	)

	BlocksProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "projector_blocks_processed_total",
		Help: "Total number of blocks scanned for logs",
	})
)

// Resolver metrics - Track auxiliary read behavior
var (
	ResolverLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projector_resolver_lookups_total",
			Help: "Total resolver lookups by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

// Performance metrics - Track processing speed and write amplification
var (
	EventHandlingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "projector_event_handling_duration_seconds",
			Help:    "Time taken to project a single event",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"event_type"},
	)

	ActiveSetUpdateSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "projector_active_set_update_size",
		Help:    "Number of active auctions touched by a global settings event",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
	})
)

// State metrics - Track current system state
var (
	CurrentBlock = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "projector_current_block",
		Help: "Latest block number whose logs have been projected",
	})
)

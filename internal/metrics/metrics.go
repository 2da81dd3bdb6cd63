package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Event ingestion metrics
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradelog_events_total",
			Help: "Total number of webhook events received",
		},
		[]string{"listener", "status"},
	)

	EventBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradelog_event_bytes_total",
			Help: "Total bytes of event payload data received",
		},
	)

	// Append metrics
	AppendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tradelog_append_duration_seconds",
			Help:    "Duration of log partition append calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	AppendErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradelog_append_errors_total",
			Help: "Total number of failed log appends",
		},
	)

	// Sync metrics
	SyncCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradelog_sync_cycles_total",
			Help: "Total number of sync cycles by outcome",
		},
		[]string{"outcome"},
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tradelog_sync_duration_seconds",
			Help:    "Duration of completed sync cycles in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Rate limiting metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradelog_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"listener"},
	)
)

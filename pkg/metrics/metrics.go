package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DocumentsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "pntn", Name: "documents_created_total", Help: "Documents created (explicitly, lazily on join, or via import)."},
	)
	EditsApplied = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "pntn", Name: "edits_applied_total", Help: "Accepted edit events."},
	)
	ConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "pntn", Name: "connections_active", Help: "Live realtime connections."},
	)
	BroadcastsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "pntn", Name: "broadcasts_dropped_total", Help: "Outbound room messages dropped because a receiver queue was full."},
	)
	ExportsServed = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "pntn", Name: "exports_served_total", Help: "Transcript downloads served."},
	)
	Imports = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pntn", Name: "imports_total", Help: "Transcript imports by result."},
		[]string{"result"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pntn", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pntn", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(DocumentsCreated)
	reg.MustRegister(EditsApplied)
	reg.MustRegister(ConnectionsActive)
	reg.MustRegister(BroadcastsDropped)
	reg.MustRegister(ExportsServed)
	reg.MustRegister(Imports)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}

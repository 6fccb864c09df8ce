// Package metrics registers the engine's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var Module = fx.Module("metrics",
	fx.Provide(New),
)

// Metrics holds counters for the quote engine's hot paths.
type Metrics struct {
	IdempotencyHits      prometheus.Counter
	IdempotencyMisses    prometheus.Counter
	IdempotencyConflicts prometheus.Counter
	VersionsCreated      prometheus.Counter
	StatusTransitions    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		IdempotencyHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quotient_idempotency_hits_total",
			Help: "Replayed responses served from the idempotency cache.",
		}),
		IdempotencyMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quotient_idempotency_misses_total",
			Help: "Idempotency lookups that executed the underlying operation.",
		}),
		IdempotencyConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quotient_idempotency_conflicts_total",
			Help: "Idempotency keys reused with a different request fingerprint.",
		}),
		VersionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quotient_quote_versions_created_total",
			Help: "Immutable quote versions written.",
		}),
		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotient_quote_status_transitions_total",
			Help: "Applied quote status transitions.",
		}, []string{"from", "to"}),
	}

	prometheus.MustRegister(
		m.IdempotencyHits,
		m.IdempotencyMisses,
		m.IdempotencyConflicts,
		m.VersionsCreated,
		m.StatusTransitions,
	)

	return m
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActivationsTotal counts node activations by transport and outcome.
	// Outcome is one of "applied", "noop" or "error".
	ActivationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "canopy",
		Name:      "activations_total",
		Help:      "Node activations processed, by transport and outcome.",
	}, []string{"transport", "outcome"})

	// ActivationDuration tracks end-to-end activation latency, including the
	// session store round-trip.
	ActivationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "canopy",
		Name:      "activation_duration_seconds",
		Help:      "Latency of node activations, including session persistence.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"transport"})

	// SearchesTotal counts visibility queries by transport.
	SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "canopy",
		Name:      "searches_total",
		Help:      "Search visibility queries processed.",
	}, []string{"transport"})

	// SelectionSize observes the canonical selection size after each merge.
	SelectionSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "canopy",
		Name:      "selection_size",
		Help:      "Number of selected ids after a merge.",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
	})
)

// Outcome labels for ActivationsTotal.
const (
	OutcomeApplied = "applied"
	OutcomeNoop    = "noop"
	OutcomeError   = "error"
)

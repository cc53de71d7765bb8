// Package metrics exposes Prometheus instrumentation for the recommender:
// recommendation source distribution, reward distribution, zone transitions
// and persistence health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Recommendation Metrics ──────────────────────────────────────────────────

// RecommendationsTotal tracks recommendations issued by source label
// (heuristic, blended, learned, capacity).
var RecommendationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "focusband",
	Subsystem: "recommender",
	Name:      "recommendations_total",
	Help:      "Total recommendations issued, by source.",
}, []string{"kind", "source"})

// RecommendedMinutes tracks the distribution of recommended durations.
var RecommendedMinutes = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "focusband",
	Subsystem: "recommender",
	Name:      "recommended_minutes",
	Help:      "Distribution of recommended durations in minutes.",
	Buckets:   []float64{5, 10, 15, 20, 25, 30, 35, 40, 45, 50, 55, 60},
}, []string{"kind"})

// ─── Reward Metrics ──────────────────────────────────────────────────────────

// RewardObserved tracks the distribution of computed reward values.
var RewardObserved = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "focusband",
	Subsystem: "reward",
	Name:      "observed",
	Help:      "Distribution of computed reward values, before capacity scaling.",
	Buckets:   []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
})

// RejectionPenalties tracks total rejection-penalty writes.
var RejectionPenalties = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "focusband",
	Subsystem: "reward",
	Name:      "rejection_penalties_total",
	Help:      "Total rejection-penalty posterior writes.",
})

// ─── Zone Metrics ─────────────────────────────────────────────────────────────

// ZoneTransitions tracks zone transitions by direction.
var ZoneTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "focusband",
	Subsystem: "zone",
	Name:      "transitions_total",
	Help:      "Total zone transitions, by direction.",
}, []string{"direction"})

// ─── Persistence Metrics ──────────────────────────────────────────────────────

// PersistenceFailures tracks storage read/write failures by table and
// operation, mirroring the "availability over durability" failure path.
var PersistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "focusband",
	Subsystem: "storage",
	Name:      "failures_total",
	Help:      "Total storage read/write failures, by table and operation.",
}, []string{"table", "operation"})

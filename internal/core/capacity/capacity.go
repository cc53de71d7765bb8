// Package capacity implements the CapacityTracker: it captures what the
// user can actually do, independent of what the posterior prefers, from a
// bounded rolling window of recent sessions per context.
//
// Architecture ref: adaptive focus-duration recommender §4.4.
package capacity

import (
	"math"
	"time"

	"github.com/tutu-network/focusband/internal/domain"
)

// Record appends a completed-or-skipped focus session to the rolling
// window, evicts entries beyond CapacityWindow, and recomputes the derived
// stats in place.
func Record(stats *domain.CapacityStats, selected, actual int, completed bool, at time.Time) {
	stats.RecentSessions = append(stats.RecentSessions, domain.RecordedSession{
		Selected:  selected,
		Actual:    actual,
		Completed: completed,
		Timestamp: at,
	})
	if len(stats.RecentSessions) > domain.CapacityWindow {
		stats.RecentSessions = stats.RecentSessions[len(stats.RecentSessions)-domain.CapacityWindow:]
	}
	recompute(stats)
}

func recompute(stats *domain.CapacityStats) {
	window := stats.RecentSessions
	n := len(window)
	if n == 0 {
		stats.AverageCapacity = 0
		stats.CompletionRate = 0
		stats.Trend = domain.TrendStable
		return
	}

	var sumActual float64
	var completedCount int
	for _, s := range window {
		sumActual += float64(s.Actual)
		if s.Completed {
			completedCount++
		}
	}
	stats.AverageCapacity = sumActual / float64(n)
	stats.CompletionRate = float64(completedCount) / float64(n)
	stats.Trend = trend(window)
}

// trend fits a least-squares slope to actual[i]/selected[i] over indices
// 0..n-1 and classifies it growing/declining/stable. Requires at least 3
// samples; otherwise stable.
func trend(window []domain.RecordedSession) domain.Trend {
	n := len(window)
	if n < 3 {
		return domain.TrendStable
	}

	ratios := make([]float64, n)
	for i, s := range window {
		if s.Selected == 0 {
			ratios[i] = 0
			continue
		}
		ratios[i] = float64(s.Actual) / float64(s.Selected)
	}

	slope := leastSquaresSlope(ratios)
	switch {
	case slope > 0.05:
		return domain.TrendGrowing
	case slope < -0.05:
		return domain.TrendDeclining
	default:
		return domain.TrendStable
	}
}

// leastSquaresSlope fits y = a + b*x over x = 0..n-1 and returns b.
func leastSquaresSlope(y []float64) float64 {
	n := float64(len(y))
	if n == 0 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// AdjustForCapacity applies the capacity adjustment rule to a sampler/model
// recommendation in minutes. Returns the (possibly unchanged) value and
// whether capacity is what determined it.
func AdjustForCapacity(modelRec int, stats *domain.CapacityStats, energy domain.EnergyLevel) (adjusted int, changed bool) {
	if stats == nil || len(stats.RecentSessions) < 3 {
		return modelRec, false
	}
	if stats.CompletionRate < 0.5 {
		floor := roundTo5(stats.AverageCapacity)
		if floor < 10 {
			floor = 10
		}
		return floor, true
	}
	if energy == domain.EnergyLow {
		return modelRec, false
	}

	stretchThreshold := domain.StretchThresholdMid
	if energy == domain.EnergyHigh {
		stretchThreshold = domain.StretchThresholdHigh
	}
	if stats.CompletionRate >= stretchThreshold && (stats.Trend == domain.TrendStable || stats.Trend == domain.TrendGrowing) {
		return modelRec + 5, true
	}
	return modelRec, false
}

// roundTo5 rounds x to the nearest multiple of 5, ties resolved upward.
func roundTo5(x float64) int {
	q := x / 5
	floor := math.Floor(q)
	if q-floor >= 0.5 {
		floor++
	}
	return int(floor) * 5
}

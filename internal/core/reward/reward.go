// Package reward implements the deterministic mapping from a raw session
// outcome to a posterior-update weight r ∈ [0, 1], plus the dedicated
// rejection-penalty path that is the only way a negative weight can be
// written.
//
// Architecture ref: adaptive focus-duration recommender §4.5.
package reward

import "github.com/tutu-network/focusband/internal/domain"

// Inputs bundles the raw session facts the reward function needs.
type Inputs struct {
	CompletionType         domain.CompletionType
	AcceptedRecommendation bool
	FocusedMinutes         int
	SelectedMinutes        int
	RecommendedMinutes     int
}

// Compute derives r ∈ [0, 1] from a session outcome (spec §4.5 steps 1-6).
func Compute(in Inputs) float64 {
	target := in.SelectedMinutes
	if in.AcceptedRecommendation {
		target = in.RecommendedMinutes
	}

	var ratio float64
	if target != 0 {
		ratio = float64(in.FocusedMinutes) / float64(target)
		if ratio > 1 {
			ratio = 1
		}
	}

	var base float64
	switch in.CompletionType {
	case domain.CompletionSkippedFocus:
		base = 0.40 * ratio
	case domain.CompletionSkippedBreak:
		base = 0.30 + 0.30*ratio
	case domain.CompletionCompleted:
		base = 0.70 + 0.30*ratio
	default:
		base = 0
	}

	if in.AcceptedRecommendation {
		base += domain.RewardRecommendationBonus
	}

	if target > domain.IdealMax {
		over := float64(target-domain.IdealMax) / float64(domain.IdealMax)
		if over > 1 {
			over = 1
		}
		base -= 0.10 * over
	}

	if base < 0 {
		return 0
	}
	if base > 1 {
		return 1
	}
	return base
}

// ScaleToCapacity scales a completed session's reward toward the user's
// recently demonstrated capacity before it is written to the posterior.
// Without this a user who reliably completes only short sessions still
// accrues high reward for a lucky completion of a long one.
//
// The scale factor is the ratio of the user's averageCapacity to the
// recommended/selected target, clamped to [0, 1] — a session well beyond the
// user's demonstrated capacity is scaled down; one within or below it is
// left untouched.
func ScaleToCapacity(r float64, target int, averageCapacity float64) float64 {
	if averageCapacity <= 0 || target <= 0 {
		return r
	}
	scale := averageCapacity / float64(target)
	if scale > 1 {
		scale = 1
	}
	if scale < 0 {
		scale = 0
	}
	return r * scale
}

// PenaliseRejection returns the dedicated rejection-penalty weight: a fixed
// negative value that updateModel treats as β ← β + 0.3, never touching α.
// Distinct from accepting a recommendation and then failing it.
func PenaliseRejection() float64 {
	return domain.RejectionPenalty
}

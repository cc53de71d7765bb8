package domain

import "time"

// ─── Persisted State Shapes ─────────────────────────────────────────────────
// These are the exact record types written through the Storage contract
// (§4.1, §6 "Persisted state layout"). Keeping them here — alongside the
// pure Context/Arm types rather than in an infra package — mirrors the
// teacher's convention that persisted record shapes are domain types;
// infra/storage only knows how to move bytes, never what they mean.

// ArmPosterior is a Beta(α, β) belief about one arm's success probability.
type ArmPosterior struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
}

// Observations returns n(a) = α + β − α₀ − β₀.
func (p ArmPosterior) Observations() float64 {
	return p.Alpha + p.Beta - PriorAlpha0 - PriorBeta0
}

// Mean returns the posterior mean α / (α + β).
func (p ArmPosterior) Mean() float64 {
	if p.Alpha+p.Beta == 0 {
		return 0
	}
	return p.Alpha / (p.Alpha + p.Beta)
}

// DefaultPosterior returns the pessimistic prior (mean ≈ 0.40).
func DefaultPosterior() ArmPosterior {
	return ArmPosterior{Alpha: PriorAlpha0, Beta: PriorBeta0}
}

// ContextPosteriors maps arm-minutes to its posterior for one context.
type ContextPosteriors map[int]ArmPosterior

// TotalObservations returns N(C) = Σ_a n(a) over arms present in the map.
func (cp ContextPosteriors) TotalObservations() float64 {
	var total float64
	for _, p := range cp {
		total += p.Observations()
	}
	return total
}

// ModelState is the full `model` table: contextKey → arm → posterior.
type ModelState map[string]ContextPosteriors

// ZoneData is one context's entry in the `zones` table.
type ZoneData struct {
	Zone            Zone    `json:"zone"`
	Confidence      float64 `json:"confidence"`
	Selections      []int   `json:"selections"`
	TransitionReady bool    `json:"transition_ready"`
	DynamicArms     []int   `json:"dynamic_arms,omitempty"`
}

// PushSelection appends a chosen arm to the bounded selections queue,
// evicting the oldest entry once the window exceeds SelectionsWindow, and
// recomputes confidence.
func (z *ZoneData) PushSelection(arm int) {
	z.Selections = append(z.Selections, arm)
	if len(z.Selections) > SelectionsWindow {
		z.Selections = z.Selections[len(z.Selections)-SelectionsWindow:]
	}
	z.Confidence = z.computeConfidence()
}

func (z *ZoneData) computeConfidence() float64 {
	c := float64(len(z.Selections)) / float64(TransitionWindow)
	if c > 1 {
		c = 1
	}
	return c
}

// AdmitDynamicArm records a user-supplied arm outside the base set so it
// persists with the context (spec §4.3).
func (z *ZoneData) AdmitDynamicArm(arm int) {
	for _, a := range z.DynamicArms {
		if a == arm {
			return
		}
	}
	for _, a := range BaseArms(z.Zone) {
		if a == arm {
			return
		}
	}
	z.DynamicArms = append(z.DynamicArms, arm)
}

// ZoneState is the full `zones` table: contextKey → ZoneData.
type ZoneState map[string]*ZoneData

// CapacityStats is one context's entry in the `capacity` table.
type CapacityStats struct {
	RecentSessions  []RecordedSession `json:"recent_sessions"`
	AverageCapacity float64           `json:"average_capacity"`
	CompletionRate  float64           `json:"completion_rate"`
	Trend           Trend             `json:"trend"`
}

// CapacityState is the full `capacity` table: contextKey → CapacityStats.
type CapacityState map[string]*CapacityStats

// StateSnapshot is the whole-state export/import blob (§6).
type StateSnapshot struct {
	Model      ModelState    `json:"model"`
	Zones      ZoneState     `json:"zones"`
	Capacity   CapacityState `json:"capacity"`
	ExportedAt time.Time     `json:"exported_at"`

	// ExportID uniquely identifies this snapshot so an operator can tell
	// two exports of the same context apart in logs or bug reports.
	ExportID string `json:"export_id"`
}

package recommender

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/tutu-network/focusband/internal/domain"
)

// ─── Test doubles ───────────────────────────────────────────────────────────

// noopStore is a Store that never fails and never persists anywhere —
// mirrors the teacher's in-memory fakes used alongside fixedClock.
type noopStore struct{}

func (noopStore) LoadModel(context.Context) (domain.ModelState, error)       { return domain.ModelState{}, nil }
func (noopStore) SaveModel(context.Context, domain.ModelState) error         { return nil }
func (noopStore) LoadZones(context.Context) (domain.ZoneState, error)        { return domain.ZoneState{}, nil }
func (noopStore) SaveZones(context.Context, domain.ZoneState) error          { return nil }
func (noopStore) LoadCapacity(context.Context) (domain.CapacityState, error) { return domain.CapacityState{}, nil }
func (noopStore) SaveCapacity(context.Context, domain.CapacityState) error   { return nil }
func (noopStore) ClearAll(context.Context) error                            { return nil }

func fixedClock(t time.Time) Clock { return func() time.Time { return t } }

func newTestRecommender(seed int64) *Recommender {
	return New(context.Background(), Config{
		Store: noopStore{},
		Rand:  rand.New(rand.NewSource(seed)),
		Now:   fixedClock(time.Unix(0, 0)),
	})
}

func armsContain(arms []int, v int) bool {
	for _, a := range arms {
		if a == v {
			return true
		}
	}
	return false
}

// ─── Scenario 1: cold start ─────────────────────────────────────────────────

func TestRecommendFocus_ColdStart(t *testing.T) {
	r := newTestRecommender(1)
	c := domain.NewContext("coding", domain.EnergyMid)

	rec := r.RecommendFocus(context.Background(), c, 25, nil)
	if rec.Minutes != 25 || rec.Source != domain.SourceHeuristic {
		t.Errorf("cold start = %+v, want {25 heuristic}", rec)
	}
}

// ─── Scenario 2: early random exploration ───────────────────────────────────

func TestRecommendFocus_EarlyRandomExploration(t *testing.T) {
	r := newTestRecommender(2)
	c := domain.NewContext("coding", domain.EnergyMid)
	key := c.Key()

	r.model[key] = domain.ContextPosteriors{}
	for i := 0; i < 2; i++ {
		r.updatePosterior(r.model[key], 25, 0.8)
	}

	n := r.model[key].TotalObservations()
	if n < 2 || n >= domain.EarlyThreshold {
		t.Fatalf("test setup invalid: N(C) = %f, want in [2, %d)", n, domain.EarlyThreshold)
	}

	rec := r.RecommendFocus(context.Background(), c, 25, nil)
	arms := domain.ArmSet(domain.ZoneShort, nil)
	if !armsContain(arms, rec.Minutes) {
		t.Errorf("early exploration returned %d, not in zone arm set %v", rec.Minutes, arms)
	}
}

// ─── Scenario 3: learned convergence ────────────────────────────────────────

func TestRecommendFocus_LearnedConvergence(t *testing.T) {
	r := newTestRecommender(3)
	c := domain.NewContext("coding", domain.EnergyMid)
	key := c.Key()

	// Directly install strong posteriors: arm 30 a near-certain winner,
	// arm 50 a near-certain loser, mirroring 20 observations each.
	r.model[key] = domain.ContextPosteriors{
		30: {Alpha: 1 + 20*0.98, Beta: 1.5 + 20*0.02},
		50: {Alpha: 1 + 20*0.2, Beta: 1.5 + 20*0.8},
	}

	wins := 0
	for i := 0; i < 10; i++ {
		rec := r.RecommendFocus(context.Background(), c, 25, nil)
		if rec.Source != domain.SourceLearned {
			t.Errorf("call %d: source = %s, want learned", i, rec.Source)
		}
		if rec.Minutes == 30 {
			wins++
		}
	}
	if wins < 9 {
		t.Errorf("arm 30 won %d/10 calls, want >= 9", wins)
	}
}

// ─── Scenario 4: capacity clamp ─────────────────────────────────────────────

func TestRecommendFocus_CapacityClamp(t *testing.T) {
	r := newTestRecommender(4)
	c := domain.NewContext("coding", domain.EnergyMid)
	key := c.Key()

	// Establish a short zone the way a real caller would: one prior
	// recommendation at a low heuristic.
	r.RecommendFocus(context.Background(), c, 20, nil)

	for i := 0; i < 10; i++ {
		actual := []int{10, 12, 15}[i%3]
		r.ObserveOutcome(context.Background(), domain.SessionOutcome{
			Context:                 c,
			CompletionType:          domain.CompletionSkippedBreak,
			SelectedFocusMinutes:    40,
			FocusedMinutes:          actual,
			RecommendedFocusMinutes: 40,
		})
	}

	rec := r.RecommendFocus(context.Background(), c, 20, nil)
	if rec.Source != domain.SourceCapacity {
		t.Fatalf("source = %s, want capacity", rec.Source)
	}
	if rec.Minutes > 20 {
		t.Errorf("recommendation = %d, want <= 20", rec.Minutes)
	}
	if stats := r.capacity[key]; stats == nil || stats.CompletionRate != 0 {
		t.Errorf("capacity[%q] = %+v, want a recorded low completion rate", key, stats)
	}
}

// ─── Scenario 5: zone transition ────────────────────────────────────────────

func TestRecommendFocus_ZoneTransition(t *testing.T) {
	r := newTestRecommender(5)
	c := domain.NewContext("coding", domain.EnergyMid)
	key := c.Key()

	r.RecommendFocus(context.Background(), c, 20, nil) // establishes short zone

	for i := 0; i < 5; i++ {
		r.ObserveOutcome(context.Background(), domain.SessionOutcome{
			Context:                 c,
			CompletionType:          domain.CompletionCompleted,
			SelectedFocusMinutes:    30,
			SelectedBreakMinutes:    5,
			FocusedMinutes:          30,
			RecommendedFocusMinutes: 30,
		})
	}

	if r.zones[key].Zone != domain.ZoneLong {
		t.Fatalf("zone after 5 selections of 30 = %s, want long", r.zones[key].Zone)
	}

	rec := r.RecommendFocus(context.Background(), c, 20, nil)
	longArms := domain.ArmSet(domain.ZoneLong, nil)
	if !armsContain(longArms, rec.Minutes) {
		t.Errorf("post-transition recommendation %d not in long arm set %v", rec.Minutes, longArms)
	}
}

// ─── Scenario 6: cross-energy floor ─────────────────────────────────────────

func TestRecommendFocus_CrossEnergyFloor(t *testing.T) {
	r := newTestRecommender(6)
	low := domain.NewContext("coding", domain.EnergyLow)
	high := domain.NewContext("coding", domain.EnergyHigh)

	r.model[low.Key()] = domain.ContextPosteriors{
		40: {Alpha: 1 + 20*0.95, Beta: 1.5 + 20*0.05},
	}
	// high-energy context has its own (weaker) posterior; must still floor to 40.
	r.model[high.Key()] = domain.ContextPosteriors{
		25: {Alpha: 1 + 20*0.9, Beta: 1.5 + 20*0.1},
	}
	r.zones[high.Key()] = &domain.ZoneData{Zone: domain.ZoneLong}

	rec := r.RecommendFocus(context.Background(), high, 25, nil)
	if rec.Minutes < 40 {
		t.Errorf("cross-energy floor: got %d, want >= 40", rec.Minutes)
	}
}

// ─── Invariants (spec §8) ────────────────────────────────────────────────────

func TestPenaliseRejection_PosteriorNeverRegressesPriors(t *testing.T) {
	r := newTestRecommender(7)
	c := domain.NewContext("writing", domain.EnergyHigh)

	r.PenaliseRejection(context.Background(), c, 25)
	p := r.model[c.Key()][25]
	if p.Alpha < domain.PriorAlpha0 || p.Beta < domain.PriorBeta0 {
		t.Errorf("posterior regressed below priors: %+v", p)
	}
}

func TestZoneData_SelectionsNeverExceedTen(t *testing.T) {
	r := newTestRecommender(8)
	c := domain.NewContext("coding", domain.EnergyMid)
	r.RecommendFocus(context.Background(), c, 20, nil)

	for i := 0; i < 15; i++ {
		r.ObserveOutcome(context.Background(), domain.SessionOutcome{
			Context:                 c,
			CompletionType:          domain.CompletionCompleted,
			SelectedFocusMinutes:    20,
			SelectedBreakMinutes:    5,
			FocusedMinutes:          20,
			RecommendedFocusMinutes: 20,
		})
	}
	if len(r.zones[c.Key()].Selections) > domain.SelectionsWindow {
		t.Errorf("selections len = %d, want <= %d", len(r.zones[c.Key()].Selections), domain.SelectionsWindow)
	}
}

// ─── Export/import round trip ────────────────────────────────────────────────

func TestExportImport_RoundTrip(t *testing.T) {
	r := newTestRecommender(9)
	c := domain.NewContext("coding", domain.EnergyMid)
	r.model[c.Key()] = domain.ContextPosteriors{25: {Alpha: 3, Beta: 2}}

	snap := r.Export()

	r2 := newTestRecommender(10)
	r2.Import(context.Background(), snap)

	if r2.model[c.Key()][25] != r.model[c.Key()][25] {
		t.Errorf("import mismatch: got %+v, want %+v", r2.model[c.Key()][25], r.model[c.Key()][25])
	}
}

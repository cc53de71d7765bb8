// Package recommender is the orchestrator: it accepts a context and returns
// a focus/break recommendation, and accepts session outcomes and fans them
// out to the Sampler, ZoneGovernor, CapacityTracker and Reward components.
//
// Architecture ref: adaptive focus-duration recommender §4.6.
package recommender

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tutu-network/focusband/internal/core/capacity"
	"github.com/tutu-network/focusband/internal/core/reward"
	"github.com/tutu-network/focusband/internal/core/sampler"
	"github.com/tutu-network/focusband/internal/core/zone"
	"github.com/tutu-network/focusband/internal/domain"
	"github.com/tutu-network/focusband/internal/infra/metrics"
)

// Store is the persistence contract the Recommender depends on (spec §4.1).
// Reads that fail are the implementation's responsibility to degrade to an
// empty map; Recommender treats a returned error as "proceed cold" and logs
// it, never as fatal.
type Store interface {
	LoadModel(ctx context.Context) (domain.ModelState, error)
	SaveModel(ctx context.Context, m domain.ModelState) error
	LoadZones(ctx context.Context) (domain.ZoneState, error)
	SaveZones(ctx context.Context, z domain.ZoneState) error
	LoadCapacity(ctx context.Context) (domain.CapacityState, error)
	SaveCapacity(ctx context.Context, c domain.CapacityState) error
	ClearAll(ctx context.Context) error
}

// Rand is the random source used for Thompson draws and the early-exploration
// random arm pick. Satisfied by *rand.Rand; injectable for deterministic tests.
type Rand interface {
	Float64() float64
}

// Clock is the injectable time source, mirroring the teacher's
// `Now func() time.Time` convention (mlscheduler.Config.Now).
type Clock func() time.Time

// Recommender is the stateful top-level owner: it holds the in-memory model,
// zone and capacity tables behind a mutex and wires the pure components
// together, persisting through Store after every mutation.
type Recommender struct {
	mu sync.RWMutex

	store Store
	rng   Rand
	now   Clock

	model    domain.ModelState
	zones    domain.ZoneState
	capacity domain.CapacityState
}

// Config configures a new Recommender. When nil, Rand defaults to a
// math/rand source seeded with 1 and Now defaults to time.Now.
type Config struct {
	Store Store
	Rand  Rand
	Now   Clock
}

// New constructs a Recommender and loads its initial state from Store.
// Load failures degrade to an empty in-memory state (spec §4.1 failure
// semantics) rather than returning an error.
func New(ctx context.Context, cfg Config) *Recommender {
	r := &Recommender{
		store: cfg.Store,
		rng:   cfg.Rand,
		now:   cfg.Now,
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(1))
	}
	if r.now == nil {
		r.now = time.Now
	}

	model, err := cfg.Store.LoadModel(ctx)
	if err != nil {
		log.Printf("[recommender] model load failed, starting cold: %v", err)
		model = domain.ModelState{}
	}
	zones, err := cfg.Store.LoadZones(ctx)
	if err != nil {
		log.Printf("[recommender] zones load failed, starting cold: %v", err)
		zones = domain.ZoneState{}
	}
	caps, err := cfg.Store.LoadCapacity(ctx)
	if err != nil {
		log.Printf("[recommender] capacity load failed, starting cold: %v", err)
		caps = domain.CapacityState{}
	}
	if model == nil {
		model = domain.ModelState{}
	}
	if zones == nil {
		zones = domain.ZoneState{}
	}
	if caps == nil {
		caps = domain.CapacityState{}
	}
	r.model = model
	r.zones = zones
	r.capacity = caps
	return r
}

// ─── Internal lookup helpers (caller must hold the lock) ───────────────────

func (r *Recommender) postFor(key string) domain.ContextPosteriors {
	cp, ok := r.model[key]
	if !ok {
		cp = domain.ContextPosteriors{}
		r.model[key] = cp
	}
	return cp
}

func (r *Recommender) posteriorLookup(key string) sampler.PosteriorLookup {
	return func(arm int) (float64, float64) {
		cp := r.model[key]
		if p, ok := cp[arm]; ok {
			return p.Alpha, p.Beta
		}
		return domain.PriorAlpha0, domain.PriorBeta0
	}
}

func meanOf(cp domain.ContextPosteriors, arm int) float64 {
	if p, ok := cp[arm]; ok {
		return p.Mean()
	}
	return domain.DefaultPosterior().Mean()
}

func bestArmByMean(cp domain.ContextPosteriors) (int, bool) {
	if len(cp) == 0 {
		return 0, false
	}
	best := -1
	bestMean := -1.0
	for arm := range cp {
		m := meanOf(cp, arm)
		if m > bestMean {
			bestMean = m
			best = arm
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

// ─── RecommendFocus (spec §4.6) ─────────────────────────────────────────────

// RecommendFocus resolves a focus-duration recommendation for context c.
func (r *Recommender) RecommendFocus(ctx context.Context, c domain.Context, heuristicMinutes int, dynamicArms []int) domain.Recommendation {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := c.Key()
	zd := zone.EnsureInitialized(r.zones[key], heuristicMinutes, c.EnergyLevel)
	r.zones[key] = zd
	for _, a := range dynamicArms {
		zone.AdmitDynamicArm(zd, a)
	}
	arms := zone.ArmSet(zd)

	cp := r.postFor(key)
	n := cp.TotalObservations()

	if n < 2 {
		value := domain.ClampToArms(heuristicMinutes, arms)
		r.persistZonesBestEffort(ctx)
		metrics.RecommendationsTotal.WithLabelValues("focus", domain.SourceHeuristic.String()).Inc()
		metrics.RecommendedMinutes.WithLabelValues("focus").Observe(float64(value))
		return domain.Recommendation{Minutes: value, Source: domain.SourceHeuristic}
	}

	var modelRec int
	if n < domain.EarlyThreshold {
		modelRec = sampler.RandomArm(r.rng, arms)
	} else {
		modelRec = sampler.GetBestAction(r.rng, arms, r.posteriorLookup(key))
	}

	stats := r.capacity[key]
	adjusted, capacityChanged := capacity.AdjustForCapacity(modelRec, stats, c.EnergyLevel)

	adjusted = r.applyCrossEnergyFloor(c, adjusted)

	adjusted = domain.ClampToArms(adjusted, arms)

	source := domain.SourceBlended
	switch {
	case capacityChanged:
		source = domain.SourceCapacity
	case n >= 5:
		source = domain.SourceLearned
	}

	r.persistZonesBestEffort(ctx)
	metrics.RecommendationsTotal.WithLabelValues("focus", source.String()).Inc()
	metrics.RecommendedMinutes.WithLabelValues("focus").Observe(float64(adjusted))
	return domain.Recommendation{Minutes: adjusted, Source: source}
}

// applyCrossEnergyFloor raises adjusted to the best-proven arm at any lower
// energy level for the same task type, never lowering it (spec §4.6 step 6).
func (r *Recommender) applyCrossEnergyFloor(c domain.Context, adjusted int) int {
	for _, lower := range c.EnergyLevel.LowerLevels() {
		lowerCtx := domain.Context{TaskType: c.TaskType, EnergyLevel: lower}
		cp, ok := r.model[lowerCtx.Key()]
		if !ok {
			continue
		}
		if arm, found := bestArmByMean(cp); found && arm > adjusted {
			adjusted = arm
		}
	}
	return adjusted
}

// ─── RecommendBreak (spec §4.6) ─────────────────────────────────────────────

// RecommendBreak resolves a break-duration recommendation for context c
// following a focus session of focusMinutes.
func (r *Recommender) RecommendBreak(ctx context.Context, c domain.Context, heuristicBreak, focusMinutes int) domain.Recommendation {
	r.mu.Lock()
	defer r.mu.Unlock()

	permitted := domain.PermittedBreaks(focusMinutes)
	if len(permitted) == 0 {
		permitted = []int{5}
	}

	key := c.BreakKey()
	cp := r.postFor(key)
	n := cp.TotalObservations()

	if n < 2 {
		maxPermitted := permitted[len(permitted)-1]
		value := heuristicBreak
		if value > maxPermitted {
			value = maxPermitted
		}
		metrics.RecommendationsTotal.WithLabelValues("break", domain.SourceHeuristic.String()).Inc()
		metrics.RecommendedMinutes.WithLabelValues("break").Observe(float64(value))
		return domain.Recommendation{Minutes: value, Source: domain.SourceHeuristic}
	}

	value := sampler.GetBestAction(r.rng, permitted, r.posteriorLookup(key))
	metrics.RecommendationsTotal.WithLabelValues("break", domain.SourceLearned.String()).Inc()
	metrics.RecommendedMinutes.WithLabelValues("break").Observe(float64(value))
	return domain.Recommendation{Minutes: value, Source: domain.SourceLearned}
}

// ─── ObserveOutcome (spec §4.6) ─────────────────────────────────────────────

// ObserveOutcome feeds a completed session's result back into every
// component (Reward, Storage, ZoneGovernor, CapacityTracker) and applies
// spillover.
func (r *Recommender) ObserveOutcome(ctx context.Context, o domain.SessionOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := o.Context.Key()
	cp := r.postFor(key)

	rewardValue := reward.Compute(reward.Inputs{
		CompletionType:         o.CompletionType,
		AcceptedRecommendation: o.AcceptedRecommendation,
		FocusedMinutes:         o.FocusedMinutes,
		SelectedMinutes:        o.SelectedFocusMinutes,
		RecommendedMinutes:     o.RecommendedFocusMinutes,
	})
	metrics.RewardObserved.Observe(rewardValue)

	switch o.CompletionType {
	case domain.CompletionCompleted, domain.CompletionSkippedBreak:
		target := o.SelectedFocusMinutes
		if o.AcceptedRecommendation {
			target = o.RecommendedFocusMinutes
		}
		if o.CompletionType == domain.CompletionCompleted {
			stats := r.capacity[key]
			if stats != nil {
				rewardValue = reward.ScaleToCapacity(rewardValue, target, stats.AverageCapacity)
			}
		}
		r.updatePosterior(cp, o.SelectedFocusMinutes, rewardValue)

		if o.CompletionType == domain.CompletionCompleted {
			breakKey := domain.Context{TaskType: o.Context.TaskType, EnergyLevel: o.Context.EnergyLevel}.BreakKey()
			breakCP := r.postFor(breakKey)
			r.updatePosterior(breakCP, o.SelectedBreakMinutes, rewardValue)

			zd := r.zones[key]
			if zd == nil {
				zd = zone.EnsureInitialized(nil, o.SelectedFocusMinutes, o.Context.EnergyLevel)
				r.zones[key] = zd
			}
			prevZone := zd.Zone
			zone.RecordSelection(zd, o.SelectedFocusMinutes)
			if zd.Zone != prevZone {
				direction := "short_to_long"
				if zd.Zone == domain.ZoneShort {
					direction = "long_to_short"
				}
				metrics.ZoneTransitions.WithLabelValues(direction).Inc()
			}

			if rewardValue >= domain.SpilloverThreshold {
				r.applySpillover(cp, zd, o.SelectedFocusMinutes, rewardValue)
			}
		}
	case domain.CompletionSkippedFocus:
		// The arm was never really attempted; the posterior is left alone.
	}

	stats := r.capacityStatsFor(key)
	capacity.Record(stats, o.SelectedFocusMinutes, o.FocusedMinutes, o.CompletionType == domain.CompletionCompleted, r.now())

	r.persistAllBestEffort(ctx)
}

// PenaliseRejection records that the user dismissed the offered
// recommendation outright (distinct from accepting and then failing it).
func (r *Recommender) PenaliseRejection(ctx context.Context, c domain.Context, rejectedArm int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := c.Key()
	cp := r.postFor(key)
	r.updatePosterior(cp, rejectedArm, reward.PenaliseRejection())
	metrics.RejectionPenalties.Inc()
	r.persistModelBestEffort(ctx)
}

func (r *Recommender) updatePosterior(cp domain.ContextPosteriors, arm int, r2 float64) {
	current, ok := cp[arm]
	if !ok {
		current = domain.DefaultPosterior()
	}
	updated, applied := sampler.UpdateModel(sampler.PosteriorPair{Alpha: current.Alpha, Beta: current.Beta}, r2)
	if !applied {
		return
	}
	cp[arm] = domain.ArmPosterior{Alpha: updated.Alpha, Beta: updated.Beta}
}

// applySpillover writes a fractional positive update to the next arm above
// the completed arm within the same zone, warming it up so the system tries
// it sooner (spec §4.6 step 4).
func (r *Recommender) applySpillover(cp domain.ContextPosteriors, zd *domain.ZoneData, completedArm int, rewardValue float64) {
	arms := zone.ArmSet(zd)
	next, ok := nextArmAbove(arms, completedArm)
	if !ok {
		return
	}
	r.updatePosterior(cp, next, rewardValue*domain.SpilloverFactor)
}

func nextArmAbove(arms []int, arm int) (int, bool) {
	for _, a := range arms {
		if a > arm {
			return a, true
		}
	}
	return 0, false
}

func (r *Recommender) capacityStatsFor(key string) *domain.CapacityStats {
	stats, ok := r.capacity[key]
	if !ok {
		stats = &domain.CapacityStats{}
		r.capacity[key] = stats
	}
	return stats
}

// ─── Persistence (best-effort; spec §4.1 "availability over durability") ───

func (r *Recommender) persistModelBestEffort(ctx context.Context) {
	if err := r.store.SaveModel(ctx, r.model); err != nil {
		log.Printf("[recommender] model save failed: %v", err)
		metrics.PersistenceFailures.WithLabelValues("model", "save").Inc()
	}
}

func (r *Recommender) persistZonesBestEffort(ctx context.Context) {
	if err := r.store.SaveZones(ctx, r.zones); err != nil {
		log.Printf("[recommender] zones save failed: %v", err)
		metrics.PersistenceFailures.WithLabelValues("zones", "save").Inc()
	}
}

func (r *Recommender) persistAllBestEffort(ctx context.Context) {
	r.persistModelBestEffort(ctx)
	r.persistZonesBestEffort(ctx)
	if err := r.store.SaveCapacity(ctx, r.capacity); err != nil {
		log.Printf("[recommender] capacity save failed: %v", err)
		metrics.PersistenceFailures.WithLabelValues("capacity", "save").Inc()
	}
}

// ClearAll wipes all persisted state and resets the in-memory tables. Only
// ever invoked by a user-initiated clear-all-data operation (spec §3
// lifecycles).
func (r *Recommender) ClearAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.model = domain.ModelState{}
	r.zones = domain.ZoneState{}
	r.capacity = domain.CapacityState{}
	return r.store.ClearAll(ctx)
}

// Export returns a full snapshot of the in-memory state for backup.
func (r *Recommender) Export() domain.StateSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return domain.StateSnapshot{
		Model:      r.model,
		Zones:      r.zones,
		Capacity:   r.capacity,
		ExportedAt: r.now(),
		ExportID:   uuid.New().String(),
	}
}

// Import replaces the in-memory state with a previously exported snapshot
// and persists it.
func (r *Recommender) Import(ctx context.Context, snap domain.StateSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if snap.Model != nil {
		r.model = snap.Model
	}
	if snap.Zones != nil {
		r.zones = snap.Zones
	}
	if snap.Capacity != nil {
		r.capacity = snap.Capacity
	}
	r.persistAllBestEffort(ctx)
}

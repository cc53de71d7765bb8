// Package zone implements the ZoneGovernor: it restricts the Sampler's
// action space to a regime (short or long focus durations) the user
// currently operates in, and migrates between regimes on sustained drift.
//
// Architecture ref: adaptive focus-duration recommender §4.3.
package zone

import "github.com/tutu-network/focusband/internal/domain"

// DetectInitialZone applies the spec's initialisation heuristic (§4.3):
// short if the initial heuristic <= 25, long if >= 35, otherwise short for
// low energy and long otherwise.
func DetectInitialZone(heuristicMinutes int, energy domain.EnergyLevel) domain.Zone {
	switch {
	case heuristicMinutes <= 25:
		return domain.ZoneShort
	case heuristicMinutes >= 35:
		return domain.ZoneLong
	case energy == domain.EnergyLow:
		return domain.ZoneShort
	default:
		return domain.ZoneLong
	}
}

// EnsureInitialized returns zd unchanged if non-nil, or a freshly
// initialised ZoneData for a context seen for the first time.
func EnsureInitialized(zd *domain.ZoneData, heuristicMinutes int, energy domain.EnergyLevel) *domain.ZoneData {
	if zd != nil {
		return zd
	}
	return &domain.ZoneData{
		Zone: DetectInitialZone(heuristicMinutes, energy),
	}
}

// ArmSet returns the context's currently permitted arms (base zone arms
// union admitted dynamic arms).
func ArmSet(zd *domain.ZoneData) []int {
	return domain.ArmSet(zd.Zone, zd.DynamicArms)
}

// RecordSelection appends the chosen arm to the bounded selections queue and
// evaluates whether a zone transition is now due (spec §4.3 transition
// rule). Returns true if the zone changed.
func RecordSelection(zd *domain.ZoneData, arm int) (transitioned bool) {
	zd.PushSelection(arm)
	return maybeTransition(zd)
}

// maybeTransition applies the hysteresis transition rule once the selections
// window has at least TransitionWindow entries: average the last 5 and move
// short→long at >=30, long→short at <=25, otherwise hold. The 5-minute gap
// between the two thresholds is mandatory — a narrower gap has been observed
// to flip-flop.
func maybeTransition(zd *domain.ZoneData) bool {
	n := len(zd.Selections)
	if n < domain.TransitionWindow {
		zd.TransitionReady = false
		return false
	}
	zd.TransitionReady = true

	recent := zd.Selections[n-domain.TransitionWindow:]
	var sum int
	for _, a := range recent {
		sum += a
	}
	avg := float64(sum) / float64(len(recent))

	switch zd.Zone {
	case domain.ZoneShort:
		if avg >= domain.TransitionUpAvg {
			zd.Zone = domain.ZoneLong
			return true
		}
	case domain.ZoneLong:
		if avg <= domain.TransitionDownAvg {
			zd.Zone = domain.ZoneShort
			return true
		}
	}
	return false
}

// AdmitDynamicArm records a user-supplied arm outside the zone's base set.
func AdmitDynamicArm(zd *domain.ZoneData, arm int) {
	zd.AdmitDynamicArm(arm)
}

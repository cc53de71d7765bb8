package domain

import "time"

// CompletionType classifies how a focus/break session ended.
type CompletionType string

const (
	CompletionCompleted     CompletionType = "completed"
	CompletionSkippedFocus  CompletionType = "skippedFocus"
	CompletionSkippedBreak  CompletionType = "skippedBreak"
)

// SkipReason mirrors CompletionType as a dedicated skip enum (spec §4.5
// inputs name one distinct from the completion type that drives persistence
// fan-out in §4.6). reward.Compute branches on CompletionType directly and
// does not read SkipReason.
type SkipReason string

const (
	SkipNone          SkipReason = "none"
	SkipFocus         SkipReason = "skippedFocus"
	SkipBreak         SkipReason = "skippedBreak"
)

// SessionOutcome is the raw result of a single focus/break session, as
// reported by the timer collaborator (§6 external interface).
type SessionOutcome struct {
	Context                 Context
	CompletionType           CompletionType
	AcceptedRecommendation   bool
	SelectedFocusMinutes     int
	SelectedBreakMinutes     int
	FocusedMinutes           int
	RecommendedFocusMinutes  int

	// TimeOfDay is accepted for historical compatibility (spec §9 open
	// question) and never interpreted by the recommender. It is not stored:
	// the recorded capacity sessions and the export/import snapshot do not
	// carry it.
	TimeOfDay string `json:"time_of_day,omitempty"`
}

// skipReason derives the Reward-function skip reason from the completion type.
func (o SessionOutcome) skipReason() SkipReason {
	switch o.CompletionType {
	case CompletionSkippedFocus:
		return SkipFocus
	case CompletionSkippedBreak:
		return SkipBreak
	default:
		return SkipNone
	}
}

// SkipReason exposes the derived reward-function skip branch.
func (o SessionOutcome) SkipReason() SkipReason { return o.skipReason() }

// Recommendation is the value returned to collaborators for both
// recommendFocus and recommendBreak (§6).
type Recommendation struct {
	Minutes int
	Source  Source
}

// RecordedSession is one entry in a CapacityTracker's rolling window
// (spec §3 CapacityStats.recentSessions).
type RecordedSession struct {
	Selected  int       `json:"selected"`
	Actual    int       `json:"actual"`
	Completed bool      `json:"completed"`
	Timestamp time.Time `json:"timestamp"`
}

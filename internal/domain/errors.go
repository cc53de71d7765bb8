package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Storage errors (§4.1, §7 "Persistence failure")
	ErrStorageUnavailable = errors.New("storage unavailable, proceeding cold")
	ErrTableUnknown       = errors.New("unknown storage table")

	// Outcome validation errors (§7 "Invalid outcome")
	ErrInvalidReward         = errors.New("reward is non-finite or out of range")
	ErrInvalidCompletionType = errors.New("unknown completion type")
	ErrNegativeDuration      = errors.New("session duration cannot be negative")
	ErrDuplicateOutcome      = errors.New("session outcome already recorded")

	// Programmer errors (§7 "Programmer error" — fatal, surfaced to host)
	ErrInvalidZone = errors.New("zone is not short or long")
)

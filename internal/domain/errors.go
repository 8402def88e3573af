package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Policy violations carry user-facing text. State is never mutated when one
// of these is returned.

var (
	// Completion policy
	ErrPastDayLocked    = errors.New("past days are locked")
	ErrFutureDay        = errors.New("future days cannot be marked yet")
	ErrAlreadyCompleted = errors.New("completed tasks cannot be unmarked")

	// Program clock
	ErrResetLimit  = errors.New("start date reset limit reached")
	ErrNoStartDate = errors.New("program has not been started")

	// Onboarding
	ErrAnchorsAlreadySet = errors.New("week 1 anchors are already set")
	ErrAnchorCount       = errors.New("exactly 5 anchor tasks are required")

	// Urge log
	ErrUrgeNotFound       = errors.New("urge entry not found")
	ErrInvalidUrgeOutcome = errors.New("urge outcome must be resisted or slipped")

	// Daily quest
	ErrQuestAlreadyDone = errors.New("today's quest is already completed")
	ErrNoQuestToday     = errors.New("no quest assigned for today")
)

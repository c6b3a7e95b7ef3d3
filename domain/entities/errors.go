package entities

import "errors"

// Domain errors returned by the token engine. All of these are expected
// operational outcomes and are matched with errors.Is at the API boundary.
var (
	// ErrInsufficientTokens is returned when a debit exceeds the effective balance.
	ErrInsufficientTokens = errors.New("insufficient tokens")

	// ErrGrantAlreadyActive is returned when a user already has an unexpired prize grant.
	ErrGrantAlreadyActive = errors.New("prize grant already active")

	// ErrMilestoneNotEligible is returned when claiming a milestone below its target.
	ErrMilestoneNotEligible = errors.New("milestone not eligible")

	// ErrInvalidWindow is returned for malformed leaderboard windows.
	ErrInvalidWindow = errors.New("invalid leaderboard window")

	// ErrInvalidWinnerSet is returned when a prize distribution request is malformed.
	ErrInvalidWinnerSet = errors.New("invalid winner set")

	// ErrStoreConflict is returned when an optimistic concurrency check fails.
	// The whole operation is safe to retry.
	ErrStoreConflict = errors.New("store conflict")

	// ErrAccountNotFound is returned when an operation targets an unknown account.
	ErrAccountNotFound = errors.New("account not found")
)

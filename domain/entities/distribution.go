package entities

import (
	"fmt"
	"time"
)

// PrizePosition is a leaderboard placement eligible for a prize.
type PrizePosition int

const (
	PrizePositionFirst  PrizePosition = 1
	PrizePositionSecond PrizePosition = 2
	PrizePositionThird  PrizePosition = 3
)

// Label returns the prize type label recorded on the grant.
func (p PrizePosition) Label() string {
	switch p {
	case PrizePositionFirst:
		return "1st Prize"
	case PrizePositionSecond:
		return "2nd Prize"
	case PrizePositionThird:
		return "3rd Prize"
	default:
		return fmt.Sprintf("Position %d", int(p))
	}
}

// DistributionWinner is one requested prize award.
type DistributionWinner struct {
	UserID      string        `json:"userId"`
	Position    PrizePosition `json:"position"`
	TokenAmount int64         `json:"tokenAmount"`
}

// ValidateWinnerSet enforces the distribution preconditions: exactly one
// winner per position 1-3, distinct users, positive amounts. Validation
// runs before any mutation.
func ValidateWinnerSet(winners []DistributionWinner) error {
	if len(winners) != 3 {
		return fmt.Errorf("%w: expected 3 winners, got %d", ErrInvalidWinnerSet, len(winners))
	}
	positions := make(map[PrizePosition]bool, 3)
	users := make(map[string]bool, 3)
	for _, w := range winners {
		if w.Position < PrizePositionFirst || w.Position > PrizePositionThird {
			return fmt.Errorf("%w: position %d out of range", ErrInvalidWinnerSet, w.Position)
		}
		if positions[w.Position] {
			return fmt.Errorf("%w: duplicate position %d", ErrInvalidWinnerSet, w.Position)
		}
		positions[w.Position] = true
		if w.UserID == "" {
			return fmt.Errorf("%w: missing user id", ErrInvalidWinnerSet)
		}
		if users[w.UserID] {
			return fmt.Errorf("%w: duplicate user %s", ErrInvalidWinnerSet, w.UserID)
		}
		users[w.UserID] = true
		if w.TokenAmount <= 0 {
			return fmt.Errorf("%w: token amount must be positive", ErrInvalidWinnerSet)
		}
	}
	return nil
}

// AwardedWinner records one winner who actually received a grant.
type AwardedWinner struct {
	UserID      string        `json:"userId"`
	Position    PrizePosition `json:"position"`
	TokenAmount int64         `json:"tokenAmount"`
	GrantID     int64         `json:"grantId"`
}

// SkippedWinner records one winner the distribution could not award.
type SkippedWinner struct {
	UserID   string        `json:"userId"`
	Position PrizePosition `json:"position"`
	Reason   string        `json:"reason"`
}

// PrizeDistributionRecord is the immutable audit trail of one distribution
// run, including partial ones. Never mutated after creation.
type PrizeDistributionRecord struct {
	ID          int64           `db:"id"`
	ContestName string          `db:"contest_name"`
	Period      string          `db:"period"`
	PeriodStart time.Time       `db:"period_start"`
	PeriodEnd   time.Time       `db:"period_end"`
	Winners     []AwardedWinner `db:"-"`
	AwardedAt   time.Time       `db:"awarded_at"`
	CreatedAt   time.Time       `db:"created_at"`
}

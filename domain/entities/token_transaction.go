package entities

import (
	"errors"
	"time"
)

// TransactionType represents the type of token balance change.
type TransactionType string

const (
	TransactionTypeDebit           TransactionType = "debit"
	TransactionTypeCredit          TransactionType = "credit"
	TransactionTypeDailyReset      TransactionType = "daily_reset"
	TransactionTypeMonthlyReset    TransactionType = "monthly_reset"
	TransactionTypePrizeGrant      TransactionType = "prize_grant"
	TransactionTypePrizeExpiry     TransactionType = "prize_expiry"
	TransactionTypeMilestoneReward TransactionType = "milestone_reward"
	TransactionTypeInitial         TransactionType = "initial"
)

// IsSystemGenerated returns true for transactions the engine creates on its
// own rather than in response to a caller's spend or correction.
func (tt TransactionType) IsSystemGenerated() bool {
	return tt == TransactionTypeDailyReset ||
		tt == TransactionTypeMonthlyReset ||
		tt == TransactionTypePrizeExpiry ||
		tt == TransactionTypeInitial
}

// String returns the string representation of the transaction type.
func (tt TransactionType) String() string {
	return string(tt)
}

// TokenTransaction is one append-only history row for a balance change.
// DailyBefore/DailyAfter track the daily pool; prize and monthly movements
// ride in Metadata so the row stays a single consistent snapshot.
type TokenTransaction struct {
	ID          int64           `db:"id"`
	UserID      string          `db:"user_id"`
	DailyBefore int64           `db:"daily_before"`
	DailyAfter  int64           `db:"daily_after"`
	Amount      int64           `db:"amount"`
	Type        TransactionType `db:"transaction_type"`
	Reason      string          `db:"reason"`
	Metadata    map[string]any  `db:"metadata"`
	CreatedAt   time.Time       `db:"created_at"`
}

// Validate performs basic consistency checks before the row is recorded.
func (t *TokenTransaction) Validate() error {
	if t.UserID == "" {
		return errors.New("transaction requires a user id")
	}
	if t.Amount == 0 && !t.Type.IsSystemGenerated() {
		return errors.New("transaction amount cannot be zero")
	}
	return nil
}

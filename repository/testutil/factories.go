package testutil

import (
	"fmt"
	"time"

	"tokenengine/domain/entities"
)

// CreateTestAccount creates an account with the standard plan defaults
func CreateTestAccount(userID string) *entities.UserAccount {
	now := time.Now().UTC()
	return &entities.UserAccount{
		ID:             userID,
		DailyTokens:    100,
		DailyLimit:     100,
		MonthlyTotal:   1000,
		ReferralCode:   fmt.Sprintf("REF-%s", userID),
		DailyResetAt:   now,
		MonthlyResetAt: now,
	}
}

// CreateTestGrant creates an active grant valid for 24 hours from now
func CreateTestGrant(userID string, amount int64) *entities.PrizeGrant {
	return entities.NewPrizeGrant(userID, amount, "1st Prize", time.Now().UTC())
}

// CreateTestActivityEvent creates an activity event at the given instant
func CreateTestActivityEvent(userID string, kind entities.ActivityKind, points int64, at time.Time) *entities.ActivityEvent {
	return &entities.ActivityEvent{
		UserID:    userID,
		Kind:      kind,
		Points:    points,
		CreatedAt: at,
	}
}

// CreateTestTransaction creates a debit history row
func CreateTestTransaction(userID string, before, after int64) *entities.TokenTransaction {
	return &entities.TokenTransaction{
		UserID:      userID,
		DailyBefore: before,
		DailyAfter:  after,
		Amount:      before - after,
		Type:        entities.TransactionTypeDebit,
		Reason:      "test spend",
		Metadata: map[string]any{
			"test": true,
		},
	}
}

package entities

import (
	"errors"
	"time"
)

// UserAccount holds the token balances for a single user.
// Daily tokens replenish to DailyLimit at the daily boundary, monthly tokens
// only decrease within a billing month, and TotalUsedAllTime never decreases.
type UserAccount struct {
	ID               string    `db:"id"`
	DailyTokens      int64     `db:"daily_tokens"`
	DailyLimit       int64     `db:"daily_limit"`
	MonthlyTotal     int64     `db:"monthly_total"`
	MonthlyUsed      int64     `db:"monthly_used"`
	TotalUsedAllTime int64     `db:"total_used_all_time"`
	Points           int64     `db:"points"`
	ReferralCode     string    `db:"referral_code"`
	DailyResetAt     time.Time `db:"daily_reset_at"`
	MonthlyResetAt   time.Time `db:"monthly_reset_at"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// MonthlyRemaining returns the unused portion of the monthly allocation.
func (a *UserAccount) MonthlyRemaining() int64 {
	remaining := a.MonthlyTotal - a.MonthlyUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// EffectiveTokens returns the amount usable right now given the remaining
// balance on an active prize grant (0 if none). The daily pool is capped by
// the monthly remaining allocation; prize tokens sit on top of that cap.
func (a *UserAccount) EffectiveTokens(prizeRemaining int64) int64 {
	daily := a.DailyTokens
	if remaining := a.MonthlyRemaining(); daily > remaining {
		daily = remaining
	}
	return daily + prizeRemaining
}

// CanAfford reports whether a debit of amount would succeed.
func (a *UserAccount) CanAfford(amount, prizeRemaining int64) bool {
	return a.EffectiveTokens(prizeRemaining) >= amount
}

// ApplyDebit consumes amount from the account, drawing prize tokens first.
// It returns the portion taken from the prize grant. The daily portion is
// charged against both the daily pool and the monthly allocation.
func (a *UserAccount) ApplyDebit(amount, prizeRemaining int64) (prizeUsed int64, err error) {
	if amount <= 0 {
		return 0, errors.New("debit amount must be positive")
	}
	if !a.CanAfford(amount, prizeRemaining) {
		return 0, ErrInsufficientTokens
	}

	prizeUsed = amount
	if prizeUsed > prizeRemaining {
		prizeUsed = prizeRemaining
	}
	dailyUsed := amount - prizeUsed

	a.DailyTokens -= dailyUsed
	a.MonthlyUsed += dailyUsed
	a.TotalUsedAllTime += amount
	return prizeUsed, nil
}

// ApplyCredit raises the daily pool by amount, capped at DailyLimit.
// Monthly counters never increase. Returns the amount actually credited.
func (a *UserAccount) ApplyCredit(amount int64) (int64, error) {
	if amount <= 0 {
		return 0, errors.New("credit amount must be positive")
	}
	credited := amount
	if a.DailyTokens+credited > a.DailyLimit {
		credited = a.DailyLimit - a.DailyTokens
	}
	a.DailyTokens += credited
	return credited, nil
}

// DailyBoundary returns the most recent daily reset boundary (01:00
// server-local) at or before now.
func DailyBoundary(now time.Time) time.Time {
	boundary := time.Date(now.Year(), now.Month(), now.Day(), 1, 0, 0, 0, now.Location())
	if now.Before(boundary) {
		boundary = boundary.AddDate(0, 0, -1)
	}
	return boundary
}

// NeedsDailyReset reports whether the account has not yet been reset for the
// current daily boundary.
func (a *UserAccount) NeedsDailyReset(now time.Time) bool {
	return a.DailyResetAt.Before(DailyBoundary(now))
}

// ResetDaily refills the daily pool to the limit. Idempotent per boundary:
// callers gate on NeedsDailyReset.
func (a *UserAccount) ResetDaily(now time.Time) {
	a.DailyTokens = a.DailyLimit
	a.DailyResetAt = now
}

// NeedsMonthlyReset reports whether the billing month has rolled over since
// the last monthly reset.
func (a *UserAccount) NeedsMonthlyReset(now time.Time) bool {
	y1, m1, _ := a.MonthlyResetAt.Date()
	y2, m2, _ := now.Date()
	return y1 != y2 || m1 != m2
}

// ResetMonthly starts a fresh billing month allocation.
func (a *UserAccount) ResetMonthly(now time.Time) {
	a.MonthlyUsed = 0
	a.MonthlyResetAt = now
}

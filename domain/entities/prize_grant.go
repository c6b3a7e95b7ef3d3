package entities

import "time"

// GrantStatus represents the lifecycle state of a prize token grant.
type GrantStatus string

const (
	GrantStatusActive  GrantStatus = "active"
	GrantStatusExpired GrantStatus = "expired"
	GrantStatusClaimed GrantStatus = "claimed"
)

// GrantLifetime is the fixed validity window of a prize token grant.
const GrantLifetime = 24 * time.Hour

// PrizeGrant is a time-boxed bonus token balance. At most one grant per user
// may be active at any instant; expiry is evaluated lazily on read via
// Reconcile rather than by a background sweep.
type PrizeGrant struct {
	ID        int64       `db:"id"`
	UserID    string      `db:"user_id"`
	Amount    int64       `db:"amount"`
	Remaining int64       `db:"remaining"`
	PrizeType string      `db:"prize_type"`
	Status    GrantStatus `db:"status"`
	GrantedAt time.Time   `db:"granted_at"`
	ExpiresAt time.Time   `db:"expires_at"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

// NewPrizeGrant creates an active grant valid for GrantLifetime from now.
func NewPrizeGrant(userID string, amount int64, prizeType string, now time.Time) *PrizeGrant {
	return &PrizeGrant{
		UserID:    userID,
		Amount:    amount,
		Remaining: amount,
		PrizeType: prizeType,
		Status:    GrantStatusActive,
		GrantedAt: now,
		ExpiresAt: now.Add(GrantLifetime),
	}
}

// IsActive reports whether the grant is usable at the given instant.
func (g *PrizeGrant) IsActive(now time.Time) bool {
	return g.Status == GrantStatusActive && now.Before(g.ExpiresAt)
}

// Reconcile applies the lazy expiry transition. It returns true when the
// grant moved from active to expired and needs to be persisted. Calling it
// again on an already-expired grant is a no-op.
func (g *PrizeGrant) Reconcile(now time.Time) bool {
	if g.Status != GrantStatusActive {
		return false
	}
	if now.Before(g.ExpiresAt) {
		return false
	}
	g.Status = GrantStatusExpired
	return true
}

// TimeUntilExpiry returns how long the grant remains usable. Zero or
// negative durations mean the grant should be reconciled to expired.
func (g *PrizeGrant) TimeUntilExpiry(now time.Time) time.Duration {
	return g.ExpiresAt.Sub(now)
}

// Consume draws tokens from the grant's remaining balance.
func (g *PrizeGrant) Consume(amount int64) {
	g.Remaining -= amount
	if g.Remaining < 0 {
		g.Remaining = 0
	}
}

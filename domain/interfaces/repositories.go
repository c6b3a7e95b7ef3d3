package interfaces

import (
	"context"
	"time"

	"tokenengine/domain/entities"
)

// UserAccountRepository defines the interface for token account data access.
// Inside a unit of work, reads lock the account row so debit, credit, and
// lazy resets on the same user observe a total order.
type UserAccountRepository interface {
	// GetByID retrieves an account by user ID, or nil when absent
	GetByID(ctx context.Context, userID string) (*entities.UserAccount, error)

	// GetByReferralCode retrieves the account owning a referral code, or nil
	GetByReferralCode(ctx context.Context, code string) (*entities.UserAccount, error)

	// Create inserts a freshly provisioned account
	Create(ctx context.Context, account *entities.UserAccount) error

	// Update persists all mutable counters of the account
	Update(ctx context.Context, account *entities.UserAccount) error

	// GetAll returns every account
	GetAll(ctx context.Context) ([]*entities.UserAccount, error)
}

// PrizeGrantRepository defines the interface for prize grant data access
type PrizeGrantRepository interface {
	// GetActiveByUser returns the user's grant with status active, or nil.
	// Expiry is not evaluated here; callers reconcile via the grant service.
	GetActiveByUser(ctx context.Context, userID string) (*entities.PrizeGrant, error)

	// Create inserts a new grant and assigns its ID
	Create(ctx context.Context, grant *entities.PrizeGrant) error

	// Update persists status and remaining-amount changes
	Update(ctx context.Context, grant *entities.PrizeGrant) error

	// GetByUser returns the user's grants, newest first
	GetByUser(ctx context.Context, userID string, limit int) ([]*entities.PrizeGrant, error)
}

// MilestoneRepository defines the interface for referral milestone state
type MilestoneRepository interface {
	// GetOrCreateForUser returns one state row per milestone type, creating
	// zeroed rows for types the user does not have yet
	GetOrCreateForUser(ctx context.Context, userID string) ([]*entities.MilestoneState, error)

	// Get returns the state for one (user, type) pair, or nil
	Get(ctx context.Context, userID string, milestoneType entities.MilestoneType) (*entities.MilestoneState, error)

	// Update persists counter changes unconditionally
	Update(ctx context.Context, state *entities.MilestoneState) error

	// UpdateWithCycleCheck persists the state only if the stored
	// cycles_completed still equals expectedCycles, returning
	// entities.ErrStoreConflict otherwise
	UpdateWithCycleCheck(ctx context.Context, state *entities.MilestoneState, expectedCycles int) error
}

// ActivityRepository defines the interface for community activity events
type ActivityRepository interface {
	// Record appends one activity event and assigns its ID
	Record(ctx context.Context, event *entities.ActivityEvent) error

	// GetByID retrieves an event, or nil
	GetByID(ctx context.Context, id int64) (*entities.ActivityEvent, error)

	// MarkReversed flags an event as reversed by moderation
	MarkReversed(ctx context.Context, id int64) error

	// WindowTotals aggregates non-reversed points and activity counts per
	// user inside the window; an all-time window aggregates everything
	WindowTotals(ctx context.Context, window entities.Window) ([]*entities.UserWindowTotals, error)
}

// TokenTransactionRepository defines the interface for the append-only
// token transaction history
type TokenTransactionRepository interface {
	// Record creates a new history entry
	Record(ctx context.Context, transaction *entities.TokenTransaction) error

	// GetByUser returns history for a specific user, newest first
	GetByUser(ctx context.Context, userID string, limit int) ([]*entities.TokenTransaction, error)

	// GetByDateRange returns history within a date range
	GetByDateRange(ctx context.Context, userID string, from, to time.Time) ([]*entities.TokenTransaction, error)
}

// DistributionRepository defines the interface for the prize distribution
// audit trail
type DistributionRepository interface {
	// Create appends one distribution record with its winner rows
	Create(ctx context.Context, record *entities.PrizeDistributionRecord) error

	// List returns distribution records, newest first
	List(ctx context.Context, limit int) ([]*entities.PrizeDistributionRecord, error)
}

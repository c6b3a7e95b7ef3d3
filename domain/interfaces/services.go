package interfaces

import (
	"context"
	"time"

	"tokenengine/domain/entities"
	"tokenengine/domain/events"
)

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the surrounding
// transaction commits
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes all buffered events
	Flush(ctx context.Context) error

	// Discard drops all buffered events
	Discard()
}

// ProfileStore resolves display information from the external user-profile
// system. The engine only reads names for leaderboard display.
type ProfileStore interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// BalanceProjection is the read-only effective balance view
type BalanceProjection struct {
	UserID           string
	Daily            int64
	DailyLimit       int64
	MonthlyTotal     int64
	MonthlyUsed      int64
	MonthlyRemaining int64
	PrizeTokens      int64
	PrizeType        string
	PrizeExpiresAt   *time.Time
	Effective        int64
}

// LedgerService is the authority over per-user token balances
type LedgerService interface {
	// GetOrCreateAccount provisions an account with plan defaults on first use
	GetOrCreateAccount(ctx context.Context, userID string) (*entities.UserAccount, error)

	// AccountByReferralCode resolves the account owning a referral code,
	// failing with entities.ErrAccountNotFound for unknown codes
	AccountByReferralCode(ctx context.Context, code string) (*entities.UserAccount, error)

	// Debit consumes tokens, drawing from an active prize grant before the
	// daily pool. Returns entities.ErrInsufficientTokens without mutating
	// when the effective balance cannot cover the amount.
	Debit(ctx context.Context, userID string, amount int64, reason string) (*BalanceProjection, error)

	// Credit raises the daily pool for refunds and corrections, capped at
	// the daily limit
	Credit(ctx context.Context, userID string, amount int64, source string) (*BalanceProjection, error)

	// EffectiveBalance returns the current projection, reconciling expired
	// grants and pending lazy resets first
	EffectiveBalance(ctx context.Context, userID string) (*BalanceProjection, error)

	// History returns the user's token transaction trail, newest first
	History(ctx context.Context, userID string, limit int) ([]*entities.TokenTransaction, error)

	// HistoryRange returns the user's token transactions inside [from, to],
	// oldest first
	HistoryRange(ctx context.Context, userID string, from, to time.Time) ([]*entities.TokenTransaction, error)
}

// GrantService manages time-boxed prize token grants
type GrantService interface {
	// Grant issues a 24h prize grant, failing with
	// entities.ErrGrantAlreadyActive while an unexpired grant exists
	Grant(ctx context.Context, userID string, amount int64, prizeType string) (*entities.PrizeGrant, error)

	// ActiveGrant returns the user's active grant after lazy expiry, or nil
	ActiveGrant(ctx context.Context, userID string) (*entities.PrizeGrant, error)

	// TimeUntilExpiry returns the remaining validity of the active grant,
	// or nil when no grant is active
	TimeUntilExpiry(ctx context.Context, userID string) (*time.Duration, error)

	// History returns the user's grants, newest first
	History(ctx context.Context, userID string, limit int) ([]*entities.PrizeGrant, error)
}

// MilestoneClaimResult reports a successful milestone cycle completion
type MilestoneClaimResult struct {
	MilestoneType   entities.MilestoneType
	Reward          int64
	CyclesCompleted int
	Grant           *entities.PrizeGrant
}

// MilestoneProgress is the per-type view in a milestone summary
type MilestoneProgress struct {
	Type            entities.MilestoneType `json:"type"`
	Target          int                    `json:"target"`
	Reward          int64                  `json:"reward"`
	Current         int                    `json:"current"`
	Progress        float64                `json:"progress"`
	CyclesCompleted int                    `json:"cyclesCompleted"`
	IsEligible      bool                   `json:"isEligible"`
}

// MilestoneSummary is the full referral-reward view for one user
type MilestoneSummary struct {
	UserID            string              `json:"userId"`
	ActiveReferrals   int                 `json:"activeReferrals"`
	TotalCycles       int                 `json:"totalCycles"`
	TotalTokensEarned int64               `json:"totalTokensEarned"`
	Milestones        []MilestoneProgress `json:"milestones"`
}

// MilestoneService tracks referral counts against fixed thresholds and
// issues cycle rewards
type MilestoneService interface {
	// RecordActiveReferral counts one activated referral toward every
	// milestone type
	RecordActiveReferral(ctx context.Context, userID string) ([]*entities.MilestoneState, error)

	// CheckEligibility returns all milestone types currently claimable
	CheckEligibility(ctx context.Context, userID string) ([]entities.MilestoneType, error)

	// Claim completes one cycle. expectedCycles is the cyclesCompleted value
	// the caller observed; a mismatch fails with entities.ErrStoreConflict
	// so double-claims in the same tick cannot award twice.
	Claim(ctx context.Context, userID string, milestoneType entities.MilestoneType, expectedCycles int) (*MilestoneClaimResult, error)

	// Breakdown renders the "8×N, 15×M, 25×K" cycle summary
	Breakdown(ctx context.Context, userID string) (string, error)

	// Summary returns the full milestone view for display
	Summary(ctx context.Context, userID string) (*MilestoneSummary, error)
}

// LeaderboardService ranks users by window-scoped community points
type LeaderboardService interface {
	// Rank orders users descending by points in the window, ties broken by
	// earliest account creation. limit <= 0 returns all entries.
	Rank(ctx context.Context, window entities.Window, limit int) ([]*entities.LeaderboardEntry, error)
}

// DistributionMeta describes the contest a distribution run belongs to
type DistributionMeta struct {
	ContestName string
	Period      string
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// DistributionResult reports the per-recipient outcome of a run
type DistributionResult struct {
	Record      *entities.PrizeDistributionRecord
	Distributed []entities.AwardedWinner
	Skipped     []entities.SkippedWinner
}

// DistributionService awards ranked prizes to the top three
type DistributionService interface {
	// Distribute attempts a grant per winner with partial-success
	// semantics and appends one immutable audit record
	Distribute(ctx context.Context, winners []entities.DistributionWinner, meta DistributionMeta) (*DistributionResult, error)

	// History returns past distribution records, newest first
	History(ctx context.Context, limit int) ([]*entities.PrizeDistributionRecord, error)
}

// ActivityService ingests community activity into the points stream
type ActivityService interface {
	// RecordActivity appends an event and credits its points to the account
	RecordActivity(ctx context.Context, userID string, kind entities.ActivityKind) (*entities.ActivityEvent, error)

	// ReverseActivity undoes a moderated event's points. This is the only
	// path that decrements a user's points.
	ReverseActivity(ctx context.Context, activityID int64) error
}

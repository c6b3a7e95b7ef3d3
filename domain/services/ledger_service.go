package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tokenengine/clock"
	"tokenengine/domain/entities"
	"tokenengine/domain/events"
	"tokenengine/domain/interfaces"
	"tokenengine/domain/utils"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// PlanDefaults are the allocations a freshly provisioned account starts with.
type PlanDefaults struct {
	DailyLimit   int64
	MonthlyTotal int64
}

// ledgerService is the authority over per-user token balances
type ledgerService struct {
	accountRepo     interfaces.UserAccountRepository
	grantRepo       interfaces.PrizeGrantRepository
	transactionRepo interfaces.TokenTransactionRepository
	eventPublisher  interfaces.EventPublisher
	clock           clock.Clock
	defaults        PlanDefaults
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	accountRepo interfaces.UserAccountRepository,
	grantRepo interfaces.PrizeGrantRepository,
	transactionRepo interfaces.TokenTransactionRepository,
	eventPublisher interfaces.EventPublisher,
	clk clock.Clock,
	defaults PlanDefaults,
) interfaces.LedgerService {
	return &ledgerService{
		accountRepo:     accountRepo,
		grantRepo:       grantRepo,
		transactionRepo: transactionRepo,
		eventPublisher:  eventPublisher,
		clock:           clk,
		defaults:        defaults,
	}
}

// GetOrCreateAccount provisions an account with plan defaults on first use
func (s *ledgerService) GetOrCreateAccount(ctx context.Context, userID string) (*entities.UserAccount, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}

	account, err := s.accountRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", userID, err)
	}
	if account != nil {
		return s.reconcileAccount(ctx, account)
	}

	now := s.clock.Now()
	account = &entities.UserAccount{
		ID:             userID,
		DailyTokens:    s.defaults.DailyLimit,
		DailyLimit:     s.defaults.DailyLimit,
		MonthlyTotal:   s.defaults.MonthlyTotal,
		ReferralCode:   newReferralCode(),
		DailyResetAt:   now,
		MonthlyResetAt: now,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account %s: %w", userID, err)
	}

	transaction := &entities.TokenTransaction{
		UserID:      userID,
		DailyBefore: 0,
		DailyAfter:  account.DailyTokens,
		Amount:      account.DailyTokens,
		Type:        entities.TransactionTypeInitial,
		Metadata: map[string]any{
			"daily_limit":   account.DailyLimit,
			"monthly_total": account.MonthlyTotal,
		},
	}
	if err := utils.RecordTokenChange(ctx, s.transactionRepo, s.eventPublisher, transaction); err != nil {
		return nil, err
	}

	event := events.AccountCreatedEvent{
		UserID:       userID,
		DailyLimit:   account.DailyLimit,
		MonthlyTotal: account.MonthlyTotal,
		ReferralCode: account.ReferralCode,
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish account created event")
	}

	return account, nil
}

// AccountByReferralCode resolves the account owning a referral code. Used by
// the referral-activation ingress, where the community system knows the code
// but not the referrer's user ID.
func (s *ledgerService) AccountByReferralCode(ctx context.Context, code string) (*entities.UserAccount, error) {
	if code == "" {
		return nil, errors.New("referral code is required")
	}

	account, err := s.accountRepo.GetByReferralCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up referral code %s: %w", code, err)
	}
	if account == nil {
		return nil, fmt.Errorf("referral code %s: %w", code, entities.ErrAccountNotFound)
	}
	return s.reconcileAccount(ctx, account)
}

// Debit consumes tokens, drawing prize tokens before the daily pool
func (s *ledgerService) Debit(ctx context.Context, userID string, amount int64, reason string) (*interfaces.BalanceProjection, error) {
	if amount <= 0 {
		return nil, errors.New("debit amount must be positive")
	}

	account, err := s.GetOrCreateAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	grant, err := utils.ReconcileActiveGrant(ctx, s.grantRepo, s.eventPublisher, userID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	var prizeRemaining int64
	if grant != nil {
		prizeRemaining = grant.Remaining
	}

	dailyBefore := account.DailyTokens
	prizeUsed, err := account.ApplyDebit(amount, prizeRemaining)
	if err != nil {
		if errors.Is(err, entities.ErrInsufficientTokens) {
			return nil, fmt.Errorf("debit of %d for user %s: %w", amount, userID, entities.ErrInsufficientTokens)
		}
		return nil, err
	}

	if prizeUsed > 0 {
		grant.Consume(prizeUsed)
		if err := s.grantRepo.Update(ctx, grant); err != nil {
			return nil, fmt.Errorf("failed to update grant %d: %w", grant.ID, err)
		}
	}
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account %s: %w", userID, err)
	}

	transaction := &entities.TokenTransaction{
		UserID:      userID,
		DailyBefore: dailyBefore,
		DailyAfter:  account.DailyTokens,
		Amount:      -amount,
		Type:        entities.TransactionTypeDebit,
		Reason:      reason,
		Metadata: map[string]any{
			"prize_used": prizeUsed,
			"daily_used": amount - prizeUsed,
		},
	}
	if err := utils.RecordTokenChange(ctx, s.transactionRepo, s.eventPublisher, transaction); err != nil {
		return nil, err
	}

	return s.projection(account, grant), nil
}

// Credit raises the daily pool up to the daily limit. Monthly counters only
// decrease within a billing month, so corrections never touch them.
func (s *ledgerService) Credit(ctx context.Context, userID string, amount int64, source string) (*interfaces.BalanceProjection, error) {
	if amount <= 0 {
		return nil, errors.New("credit amount must be positive")
	}

	account, err := s.GetOrCreateAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	dailyBefore := account.DailyTokens
	credited, err := account.ApplyCredit(amount)
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account %s: %w", userID, err)
	}

	if credited > 0 {
		transaction := &entities.TokenTransaction{
			UserID:      userID,
			DailyBefore: dailyBefore,
			DailyAfter:  account.DailyTokens,
			Amount:      credited,
			Type:        entities.TransactionTypeCredit,
			Reason:      source,
			Metadata: map[string]any{
				"requested": amount,
			},
		}
		if err := utils.RecordTokenChange(ctx, s.transactionRepo, s.eventPublisher, transaction); err != nil {
			return nil, err
		}
	}

	grant, err := utils.ReconcileActiveGrant(ctx, s.grantRepo, s.eventPublisher, userID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	return s.projection(account, grant), nil
}

// EffectiveBalance returns the current projection after reconciling lazy
// resets and grant expiry
func (s *ledgerService) EffectiveBalance(ctx context.Context, userID string) (*interfaces.BalanceProjection, error) {
	account, err := s.GetOrCreateAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	grant, err := utils.ReconcileActiveGrant(ctx, s.grantRepo, s.eventPublisher, userID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	return s.projection(account, grant), nil
}

// History returns the user's token transaction trail, newest first
func (s *ledgerService) History(ctx context.Context, userID string, limit int) ([]*entities.TokenTransaction, error) {
	transactions, err := s.transactionRepo.GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history for user %s: %w", userID, err)
	}
	return transactions, nil
}

// HistoryRange returns the user's token transactions inside [from, to],
// oldest first, for statement-style reads by the admin console.
func (s *ledgerService) HistoryRange(ctx context.Context, userID string, from, to time.Time) ([]*entities.TokenTransaction, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("invalid history range: %s is after %s", from, to)
	}
	transactions, err := s.transactionRepo.GetByDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history for user %s: %w", userID, err)
	}
	return transactions, nil
}

// reconcileAccount applies pending lazy daily and monthly resets. Invoked on
// every account load so the first access after a boundary does the refill.
func (s *ledgerService) reconcileAccount(ctx context.Context, account *entities.UserAccount) (*entities.UserAccount, error) {
	now := s.clock.Now()
	changed := false

	if account.NeedsMonthlyReset(now) {
		account.ResetMonthly(now)
		changed = true

		transaction := &entities.TokenTransaction{
			UserID:      account.ID,
			DailyBefore: account.DailyTokens,
			DailyAfter:  account.DailyTokens,
			Type:        entities.TransactionTypeMonthlyReset,
			Metadata: map[string]any{
				"monthly_total": account.MonthlyTotal,
			},
		}
		if err := utils.RecordTokenChange(ctx, s.transactionRepo, s.eventPublisher, transaction); err != nil {
			return nil, err
		}
	}

	if account.NeedsDailyReset(now) {
		dailyBefore := account.DailyTokens
		account.ResetDaily(now)
		changed = true

		transaction := &entities.TokenTransaction{
			UserID:      account.ID,
			DailyBefore: dailyBefore,
			DailyAfter:  account.DailyTokens,
			Amount:      account.DailyTokens - dailyBefore,
			Type:        entities.TransactionTypeDailyReset,
		}
		if err := utils.RecordTokenChange(ctx, s.transactionRepo, s.eventPublisher, transaction); err != nil {
			return nil, err
		}
	}

	if changed {
		if err := s.accountRepo.Update(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to persist resets for account %s: %w", account.ID, err)
		}
	}
	return account, nil
}

// projection builds the read view from a reconciled account and grant.
func (s *ledgerService) projection(account *entities.UserAccount, grant *entities.PrizeGrant) *interfaces.BalanceProjection {
	projection := &interfaces.BalanceProjection{
		UserID:           account.ID,
		Daily:            account.DailyTokens,
		DailyLimit:       account.DailyLimit,
		MonthlyTotal:     account.MonthlyTotal,
		MonthlyUsed:      account.MonthlyUsed,
		MonthlyRemaining: account.MonthlyRemaining(),
	}
	if grant != nil {
		projection.PrizeTokens = grant.Remaining
		projection.PrizeType = grant.PrizeType
		expiresAt := grant.ExpiresAt
		projection.PrizeExpiresAt = &expiresAt
	}
	projection.Effective = account.EffectiveTokens(projection.PrizeTokens)
	return projection
}

// newReferralCode generates an immutable shareable code for a new account.
func newReferralCode() string {
	return "REF-" + strings.ToUpper(uuid.NewString()[:8])
}

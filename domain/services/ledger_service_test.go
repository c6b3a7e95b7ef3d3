package services

import (
	"context"
	"testing"
	"time"

	"tokenengine/clock"
	"tokenengine/domain/entities"
	"tokenengine/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newLedgerService(mocks *TestMocks, clk clock.Clock) *ledgerService {
	return NewLedgerService(
		mocks.AccountRepo,
		mocks.GrantRepo,
		mocks.TransactionRepo,
		mocks.EventPublisher,
		clk,
		TestPlanDefaults(),
	).(*ledgerService)
}

func TestLedgerService_Debit_InsufficientTokens(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	clk := newTestClock()
	service := newLedgerService(mocks, clk)

	// daily=3, monthlyRemaining=50, no active grant: effective is 3
	account := createTestAccount(TestUserID, func(a *entities.UserAccount) {
		a.DailyTokens = 3
		a.MonthlyUsed = TestMonthlyTotal - 50
	})
	mocks.AccountRepo.On("GetByID", mock.Anything, TestUserID).Return(account, nil)
	mocks.GrantRepo.On("GetActiveByUser", mock.Anything, TestUserID).Return(nil, nil)

	_, err := service.Debit(context.Background(), TestUserID, 7, "lead export")
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrInsufficientTokens)

	// Nothing mutated
	assert.Equal(t, int64(3), account.DailyTokens)
	assert.Equal(t, TestMonthlyTotal-50, account.MonthlyUsed)
	mocks.AccountRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	mocks.TransactionRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestLedgerService_Debit_DrainsDailyToZero(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	clk := newTestClock()
	service := newLedgerService(mocks, clk)

	account := createTestAccount(TestUserID, func(a *entities.UserAccount) {
		a.DailyTokens = 3
		a.MonthlyUsed = TestMonthlyTotal - 50
	})
	mocks.AccountRepo.On("GetByID", mock.Anything, TestUserID).Return(account, nil)
	mocks.GrantRepo.On("GetActiveByUser", mock.Anything, TestUserID).Return(nil, nil)
	mocks.AccountRepo.On("Update", mock.Anything, account).Return(nil)
	mocks.TransactionRepo.On("Record", mock.Anything, mock.Anything).Return(nil)
	mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)

	projection, err := service.Debit(context.Background(), TestUserID, 3, "lead export")
	require.NoError(t, err)

	assert.Equal(t, int64(0), projection.Effective)
	assert.Equal(t, int64(0), projection.Daily)
	assert.Equal(t, int64(3), account.TotalUsedAllTime)
	mocks.AssertAllExpectations(t)
}

func TestLedgerService_Debit_ConsumesPrizeTokensFirst(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	clk := newTestClock()
	service := newLedgerService(mocks, clk)

	account := createTestAccount(TestUserID, func(a *entities.UserAccount) {
		a.DailyTokens = 10
	})
	grant := createTestGrant(1, TestUserID, 5)
	mocks.AccountRepo.On("GetByID", mock.Anything, TestUserID).Return(account, nil)
	mocks.GrantRepo.On("GetActiveByUser", mock.Anything, TestUserID).Return(grant, nil)
	mocks.GrantRepo.On("Update", mock.Anything, grant).Return(nil)
	mocks.AccountRepo.On("Update", mock.Anything, account).Return(nil)
	mocks.TransactionRepo.On("Record", mock.Anything, mock.MatchedBy(func(tx *entities.TokenTransaction) bool {
		return tx.Type == entities.TransactionTypeDebit &&
			tx.Metadata["prize_used"] == int64(5) &&
			tx.Metadata["daily_used"] == int64(2)
	})).Return(nil)
	mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)

	projection, err := service.Debit(context.Background(), TestUserID, 7, "resource download")
	require.NoError(t, err)

	// Prize pool drained before the daily pool was touched
	assert.Equal(t, int64(0), grant.Remaining)
	assert.Equal(t, int64(8), account.DailyTokens)
	assert.Equal(t, int64(2), account.MonthlyUsed)
	assert.Equal(t, int64(7), account.TotalUsedAllTime)
	assert.Equal(t, int64(0), projection.PrizeTokens)
	mocks.AssertAllExpectations(t)
}

func TestLedgerService_Debit_MonthlyCapLimitsEffective(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	clk := newTestClock()
	service := newLedgerService(mocks, clk)

	// Full daily pool but only 20 monthly tokens left: effective is 20
	account := createTestAccount(TestUserID, func(a *entities.UserAccount) {
		a.MonthlyUsed = TestMonthlyTotal - 20
	})
	mocks.AccountRepo.On("GetByID", mock.Anything, TestUserID).Return(account, nil)
	mocks.GrantRepo.On("GetActiveByUser", mock.Anything, TestUserID).Return(nil, nil)

	_, err := service.Debit(context.Background(), TestUserID, 21, "bulk export")
	assert.ErrorIs(t, err, entities.ErrInsufficientTokens)
}

func TestLedgerService_Credit_CappedAtDailyLimit(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	clk := newTestClock()
	service := newLedgerService(mocks, clk)

	account := createTestAccount(TestUserID, func(a *entities.UserAccount) {
		a.DailyTokens = 95
	})
	mocks.AccountRepo.On("GetByID", mock.Anything, TestUserID).Return(account, nil)
	mocks.GrantRepo.On("GetActiveByUser", mock.Anything, TestUserID).Return(nil, nil)
	mocks.AccountRepo.On("Update", mock.Anything, account).Return(nil)
	mocks.TransactionRepo.On("Record", mock.Anything, mock.MatchedBy(func(tx *entities.TokenTransaction) bool {
		return tx.Type == entities.TransactionTypeCredit && tx.Amount == 5
	})).Return(nil)
	mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)

	projection, err := service.Credit(context.Background(), TestUserID, 10, "refund")
	require.NoError(t, err)

	assert.Equal(t, TestDailyLimit, projection.Daily)
	mocks.AssertAllExpectations(t)
}

func TestLedgerService_EffectiveBalance_LazyDailyReset(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	clk := newTestClock()
	service := newLedgerService(mocks, clk)

	// Last reset was yesterday; the 01:00 boundary has passed since.
	account := createTestAccount(TestUserID, func(a *entities.UserAccount) {
		a.DailyTokens = 12
		a.DailyResetAt = TestBaseTime.AddDate(0, 0, -1)
	})
	mocks.AccountRepo.On("GetByID", mock.Anything, TestUserID).Return(account, nil)
	mocks.GrantRepo.On("GetActiveByUser", mock.Anything, TestUserID).Return(nil, nil)
	mocks.AccountRepo.On("Update", mock.Anything, account).Return(nil).Once()
	mocks.TransactionRepo.On("Record", mock.Anything, mock.MatchedBy(func(tx *entities.TokenTransaction) bool {
		return tx.Type == entities.TransactionTypeDailyReset
	})).Return(nil).Once()
	mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)

	projection, err := service.EffectiveBalance(context.Background(), TestUserID)
	require.NoError(t, err)
	assert.Equal(t, TestDailyLimit, projection.Daily)

	// Second read in the same day performs no further reset
	projection, err = service.EffectiveBalance(context.Background(), TestUserID)
	require.NoError(t, err)
	assert.Equal(t, TestDailyLimit, projection.Daily)
	mocks.AssertAllExpectations(t)
}

func TestLedgerService_EffectiveBalance_MonthlyRollover(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	clk := newTestClock()
	service := newLedgerService(mocks, clk)

	account := createTestAccount(TestUserID, func(a *entities.UserAccount) {
		a.MonthlyUsed = 800
		a.MonthlyResetAt = TestBaseTime.AddDate(0, -1, 0)
		a.DailyResetAt = TestBaseTime // keep the daily pool out of this test
	})
	mocks.AccountRepo.On("GetByID", mock.Anything, TestUserID).Return(account, nil)
	mocks.GrantRepo.On("GetActiveByUser", mock.Anything, TestUserID).Return(nil, nil)
	mocks.AccountRepo.On("Update", mock.Anything, account).Return(nil).Once()
	mocks.TransactionRepo.On("Record", mock.Anything, mock.MatchedBy(func(tx *entities.TokenTransaction) bool {
		return tx.Type == entities.TransactionTypeMonthlyReset
	})).Return(nil).Once()
	mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)

	projection, err := service.EffectiveBalance(context.Background(), TestUserID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), projection.MonthlyUsed)
	assert.Equal(t, TestMonthlyTotal, projection.MonthlyRemaining)
	mocks.AssertAllExpectations(t)
}

func TestLedgerService_EffectiveBalance_ReconcilesExpiredGrant(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	clk := newTestClock()
	service := newLedgerService(mocks, clk)

	account := createTestAccount(TestUserID)
	grant := createTestGrant(1, TestUserID, 500, func(g *entities.PrizeGrant) {
		g.GrantedAt = TestBaseTime.Add(-25 * time.Hour)
		g.ExpiresAt = TestBaseTime.Add(-1 * time.Hour)
	})
	mocks.AccountRepo.On("GetByID", mock.Anything, TestUserID).Return(account, nil)
	mocks.GrantRepo.On("GetActiveByUser", mock.Anything, TestUserID).Return(grant, nil)
	mocks.GrantRepo.On("Update", mock.Anything, grant).Return(nil).Once()
	mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.PrizeExpiredEvent")).Return(nil).Once()

	projection, err := service.EffectiveBalance(context.Background(), TestUserID)
	require.NoError(t, err)

	assert.Equal(t, entities.GrantStatusExpired, grant.Status)
	assert.Equal(t, int64(0), projection.PrizeTokens)
	assert.Equal(t, TestDailyLimit, projection.Effective)
	mocks.AssertAllExpectations(t)
}

func TestLedgerService_GetOrCreateAccount_ProvisionsDefaults(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	clk := newTestClock()
	service := newLedgerService(mocks, clk)

	mocks.AccountRepo.On("GetByID", mock.Anything, TestUserID).Return(nil, nil)
	mocks.AccountRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *entities.UserAccount) bool {
		return a.ID == TestUserID &&
			a.DailyTokens == TestDailyLimit &&
			a.DailyLimit == TestDailyLimit &&
			a.MonthlyTotal == TestMonthlyTotal &&
			a.ReferralCode != ""
	})).Return(nil)
	mocks.TransactionRepo.On("Record", mock.Anything, mock.MatchedBy(func(tx *entities.TokenTransaction) bool {
		return tx.Type == entities.TransactionTypeInitial
	})).Return(nil)
	mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)
	mocks.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		created, ok := e.(events.AccountCreatedEvent)
		return ok && created.UserID == TestUserID
	})).Return(nil)

	account, err := service.GetOrCreateAccount(context.Background(), TestUserID)
	require.NoError(t, err)
	assert.Equal(t, TestDailyLimit, account.DailyTokens)
	mocks.AssertAllExpectations(t)
}

func TestLedgerService_BalanceInvariants(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	clk := newTestClock()
	service := newLedgerService(mocks, clk)

	account := createTestAccount(TestUserID)
	mocks.AccountRepo.On("GetByID", mock.Anything, TestUserID).Return(account, nil)
	mocks.GrantRepo.On("GetActiveByUser", mock.Anything, TestUserID).Return(nil, nil)
	mocks.AccountRepo.On("Update", mock.Anything, account).Return(nil)
	mocks.TransactionRepo.On("Record", mock.Anything, mock.Anything).Return(nil)
	mocks.EventPublisher.On("Publish", mock.Anything).Return(nil)

	ctx := context.Background()
	steps := []struct {
		debit  int64
		credit int64
	}{
		{debit: 40}, {credit: 10}, {debit: 70}, {credit: 200}, {debit: 99},
	}
	for _, step := range steps {
		if step.debit > 0 {
			_, _ = service.Debit(ctx, TestUserID, step.debit, "spend")
		}
		if step.credit > 0 {
			_, _ = service.Credit(ctx, TestUserID, step.credit, "correction")
		}
		assert.GreaterOrEqual(t, account.DailyTokens, int64(0))
		assert.LessOrEqual(t, account.DailyTokens, account.DailyLimit)
		assert.GreaterOrEqual(t, account.MonthlyUsed, int64(0))
		assert.LessOrEqual(t, account.MonthlyUsed, account.MonthlyTotal)
	}
}

func TestLedgerService_AccountByReferralCode(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	clk := newTestClock()
	service := newLedgerService(mocks, clk)

	account := createTestAccount(TestUserID)
	mocks.AccountRepo.On("GetByReferralCode", mock.Anything, account.ReferralCode).Return(account, nil)

	resolved, err := service.AccountByReferralCode(context.Background(), account.ReferralCode)
	require.NoError(t, err)
	assert.Equal(t, TestUserID, resolved.ID)
	mocks.AssertAllExpectations(t)
}

func TestLedgerService_AccountByReferralCode_Unknown(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	clk := newTestClock()
	service := newLedgerService(mocks, clk)

	mocks.AccountRepo.On("GetByReferralCode", mock.Anything, "REF-NOPE").Return(nil, nil)

	resolved, err := service.AccountByReferralCode(context.Background(), "REF-NOPE")
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrAccountNotFound)
	assert.Nil(t, resolved)
}

func TestLedgerService_HistoryRange(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	clk := newTestClock()
	service := newLedgerService(mocks, clk)

	from := TestBaseTime.Add(-7 * 24 * time.Hour)
	to := TestBaseTime
	rows := []*entities.TokenTransaction{
		{ID: 1, UserID: TestUserID, Amount: -40, Type: entities.TransactionTypeDebit},
		{ID: 2, UserID: TestUserID, Amount: 10, Type: entities.TransactionTypeCredit},
	}
	mocks.TransactionRepo.On("GetByDateRange", mock.Anything, TestUserID, from, to).Return(rows, nil)

	transactions, err := service.HistoryRange(context.Background(), TestUserID, from, to)
	require.NoError(t, err)
	assert.Len(t, transactions, 2)
	mocks.AssertAllExpectations(t)
}

func TestLedgerService_HistoryRange_Reversed(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	clk := newTestClock()
	service := newLedgerService(mocks, clk)

	_, err := service.HistoryRange(context.Background(), TestUserID, TestBaseTime, TestBaseTime.Add(-time.Hour))
	require.Error(t, err)
	mocks.TransactionRepo.AssertNotCalled(t, "GetByDateRange",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

package services

import (
	"testing"
	"time"

	"tokenengine/clock"
	"tokenengine/domain/entities"
	"tokenengine/domain/testhelpers"
)

// Test constants for consistent test data
const (
	TestUserID       = "user-1"
	TestUser2ID      = "user-2"
	TestUser3ID      = "user-3"
	TestDailyLimit   = int64(100)
	TestMonthlyTotal = int64(1000)
)

// TestBaseTime is a fixed instant all fake clocks start from: a Wednesday,
// 10:00 server time, mid-month.
var TestBaseTime = time.Date(2024, time.March, 13, 10, 0, 0, 0, time.UTC)

// TestPlanDefaults returns the plan allocations used across tests.
func TestPlanDefaults() PlanDefaults {
	return PlanDefaults{DailyLimit: TestDailyLimit, MonthlyTotal: TestMonthlyTotal}
}

// TestMocks aggregates all repository mocks for testing
type TestMocks struct {
	AccountRepo      *testhelpers.MockUserAccountRepository
	GrantRepo        *testhelpers.MockPrizeGrantRepository
	MilestoneRepo    *testhelpers.MockMilestoneRepository
	ActivityRepo     *testhelpers.MockActivityRepository
	TransactionRepo  *testhelpers.MockTokenTransactionRepository
	DistributionRepo *testhelpers.MockDistributionRepository
	EventPublisher   *testhelpers.MockEventPublisher
	ProfileStore     *testhelpers.MockProfileStore
}

// NewTestMocks creates a new set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		AccountRepo:      &testhelpers.MockUserAccountRepository{},
		GrantRepo:        &testhelpers.MockPrizeGrantRepository{},
		MilestoneRepo:    &testhelpers.MockMilestoneRepository{},
		ActivityRepo:     &testhelpers.MockActivityRepository{},
		TransactionRepo:  &testhelpers.MockTokenTransactionRepository{},
		DistributionRepo: &testhelpers.MockDistributionRepository{},
		EventPublisher:   &testhelpers.MockEventPublisher{},
		ProfileStore:     &testhelpers.MockProfileStore{},
	}
}

// AssertAllExpectations verifies all mock expectations were met
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.AccountRepo.AssertExpectations(t)
	m.GrantRepo.AssertExpectations(t)
	m.MilestoneRepo.AssertExpectations(t)
	m.ActivityRepo.AssertExpectations(t)
	m.TransactionRepo.AssertExpectations(t)
	m.DistributionRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
	m.ProfileStore.AssertExpectations(t)
}

// newTestClock returns a fake clock frozen at TestBaseTime.
func newTestClock() *clock.Fake {
	return clock.NewFake(TestBaseTime)
}

// createTestAccount builds an account that was reset at TestBaseTime.
func createTestAccount(userID string, opts ...func(*entities.UserAccount)) *entities.UserAccount {
	account := &entities.UserAccount{
		ID:             userID,
		DailyTokens:    TestDailyLimit,
		DailyLimit:     TestDailyLimit,
		MonthlyTotal:   TestMonthlyTotal,
		ReferralCode:   "REF-TEST" + userID,
		DailyResetAt:   TestBaseTime,
		MonthlyResetAt: TestBaseTime,
		CreatedAt:      TestBaseTime.Add(-30 * 24 * time.Hour),
	}
	for _, opt := range opts {
		opt(account)
	}
	return account
}

// createTestGrant builds an active grant issued at TestBaseTime.
func createTestGrant(id int64, userID string, amount int64, opts ...func(*entities.PrizeGrant)) *entities.PrizeGrant {
	grant := entities.NewPrizeGrant(userID, amount, "1st Prize", TestBaseTime)
	grant.ID = id
	for _, opt := range opts {
		opt(grant)
	}
	return grant
}

// createTestMilestones builds the three per-type state rows for a user.
func createTestMilestones(userID string, current int) []*entities.MilestoneState {
	states := make([]*entities.MilestoneState, 0, len(entities.MilestoneTypes))
	for i, milestoneType := range entities.MilestoneTypes {
		states = append(states, &entities.MilestoneState{
			ID:           int64(i + 1),
			UserID:       userID,
			Type:         milestoneType,
			CurrentCount: current,
			CreatedAt:    TestBaseTime,
		})
	}
	return states
}

package testhelpers

import (
	"context"
	"time"

	"tokenengine/domain/entities"
	"tokenengine/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockUserAccountRepository is a mock implementation of UserAccountRepository
type MockUserAccountRepository struct {
	mock.Mock
}

func (m *MockUserAccountRepository) GetByID(ctx context.Context, userID string) (*entities.UserAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserAccount), args.Error(1)
}

func (m *MockUserAccountRepository) GetByReferralCode(ctx context.Context, code string) (*entities.UserAccount, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserAccount), args.Error(1)
}

func (m *MockUserAccountRepository) Create(ctx context.Context, account *entities.UserAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockUserAccountRepository) Update(ctx context.Context, account *entities.UserAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockUserAccountRepository) GetAll(ctx context.Context) ([]*entities.UserAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.UserAccount), args.Error(1)
}

// MockPrizeGrantRepository is a mock implementation of PrizeGrantRepository
type MockPrizeGrantRepository struct {
	mock.Mock
}

func (m *MockPrizeGrantRepository) GetActiveByUser(ctx context.Context, userID string) (*entities.PrizeGrant, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PrizeGrant), args.Error(1)
}

func (m *MockPrizeGrantRepository) Create(ctx context.Context, grant *entities.PrizeGrant) error {
	args := m.Called(ctx, grant)
	return args.Error(0)
}

func (m *MockPrizeGrantRepository) Update(ctx context.Context, grant *entities.PrizeGrant) error {
	args := m.Called(ctx, grant)
	return args.Error(0)
}

func (m *MockPrizeGrantRepository) GetByUser(ctx context.Context, userID string, limit int) ([]*entities.PrizeGrant, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PrizeGrant), args.Error(1)
}

// MockMilestoneRepository is a mock implementation of MilestoneRepository
type MockMilestoneRepository struct {
	mock.Mock
}

func (m *MockMilestoneRepository) GetOrCreateForUser(ctx context.Context, userID string) ([]*entities.MilestoneState, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.MilestoneState), args.Error(1)
}

func (m *MockMilestoneRepository) Get(ctx context.Context, userID string, milestoneType entities.MilestoneType) (*entities.MilestoneState, error) {
	args := m.Called(ctx, userID, milestoneType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MilestoneState), args.Error(1)
}

func (m *MockMilestoneRepository) Update(ctx context.Context, state *entities.MilestoneState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockMilestoneRepository) UpdateWithCycleCheck(ctx context.Context, state *entities.MilestoneState, expectedCycles int) error {
	args := m.Called(ctx, state, expectedCycles)
	return args.Error(0)
}

// MockActivityRepository is a mock implementation of ActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Record(ctx context.Context, event *entities.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockActivityRepository) GetByID(ctx context.Context, id int64) (*entities.ActivityEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ActivityEvent), args.Error(1)
}

func (m *MockActivityRepository) MarkReversed(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockActivityRepository) WindowTotals(ctx context.Context, window entities.Window) ([]*entities.UserWindowTotals, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.UserWindowTotals), args.Error(1)
}

// MockTokenTransactionRepository is a mock implementation of TokenTransactionRepository
type MockTokenTransactionRepository struct {
	mock.Mock
}

func (m *MockTokenTransactionRepository) Record(ctx context.Context, transaction *entities.TokenTransaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *MockTokenTransactionRepository) GetByUser(ctx context.Context, userID string, limit int) ([]*entities.TokenTransaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TokenTransaction), args.Error(1)
}

func (m *MockTokenTransactionRepository) GetByDateRange(ctx context.Context, userID string, from, to time.Time) ([]*entities.TokenTransaction, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TokenTransaction), args.Error(1)
}

// MockDistributionRepository is a mock implementation of DistributionRepository
type MockDistributionRepository struct {
	mock.Mock
}

func (m *MockDistributionRepository) Create(ctx context.Context, record *entities.PrizeDistributionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockDistributionRepository) List(ctx context.Context, limit int) ([]*entities.PrizeDistributionRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PrizeDistributionRecord), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockProfileStore is a mock implementation of ProfileStore
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) DisplayName(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

// MockGrantService is a mock implementation of GrantService for services
// that issue rewards through the grant manager
type MockGrantService struct {
	mock.Mock
}

func (m *MockGrantService) Grant(ctx context.Context, userID string, amount int64, prizeType string) (*entities.PrizeGrant, error) {
	args := m.Called(ctx, userID, amount, prizeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PrizeGrant), args.Error(1)
}

func (m *MockGrantService) ActiveGrant(ctx context.Context, userID string) (*entities.PrizeGrant, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PrizeGrant), args.Error(1)
}

func (m *MockGrantService) TimeUntilExpiry(ctx context.Context, userID string) (*time.Duration, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Duration), args.Error(1)
}

func (m *MockGrantService) History(ctx context.Context, userID string, limit int) ([]*entities.PrizeGrant, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PrizeGrant), args.Error(1)
}

package services

import (
	"context"
	"testing"
	"time"

	"tokenengine/domain/entities"
	"tokenengine/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newLeaderboardService(mocks *TestMocks, grants *testhelpers.MockGrantService) *leaderboardService {
	return NewLeaderboardService(
		mocks.AccountRepo,
		mocks.ActivityRepo,
		grants,
		mocks.ProfileStore,
	).(*leaderboardService)
}

func TestLeaderboardService_Rank_AllTimeUsesCumulativePoints(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	grants := newMockGrantService()
	service := newLeaderboardService(mocks, grants)

	accounts := []*entities.UserAccount{
		createTestAccount(TestUserID, func(a *entities.UserAccount) { a.Points = 120 }),
		createTestAccount(TestUser2ID, func(a *entities.UserAccount) { a.Points = 300 }),
		createTestAccount(TestUser3ID, func(a *entities.UserAccount) { a.Points = 50 }),
	}
	mocks.AccountRepo.On("GetAll", mock.Anything).Return(accounts, nil)
	mocks.ActivityRepo.On("WindowTotals", mock.Anything, entities.AllTimeWindow()).
		Return([]*entities.UserWindowTotals{}, nil)
	grants.On("ActiveGrant", mock.Anything, mock.Anything).Return(nil, nil)
	mocks.ProfileStore.On("DisplayName", mock.Anything, mock.Anything).Return("Member", nil)

	entries, err := service.Rank(context.Background(), entities.AllTimeWindow(), 0)
	require.NoError(t, err)

	require.Len(t, entries, 3)
	assert.Equal(t, TestUser2ID, entries[0].UserID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, int64(300), entries[0].Points)
	assert.Equal(t, TestUserID, entries[1].UserID)
	assert.Equal(t, TestUser3ID, entries[2].UserID)
}

func TestLeaderboardService_Rank_TiesBreakByCreationTime(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	grants := newMockGrantService()
	service := newLeaderboardService(mocks, grants)

	older := createTestAccount(TestUserID, func(a *entities.UserAccount) {
		a.Points = 100
		a.CreatedAt = TestBaseTime.AddDate(0, -6, 0)
	})
	newer := createTestAccount(TestUser2ID, func(a *entities.UserAccount) {
		a.Points = 100
		a.CreatedAt = TestBaseTime.AddDate(0, -1, 0)
	})
	mocks.AccountRepo.On("GetAll", mock.Anything).Return([]*entities.UserAccount{newer, older}, nil)
	mocks.ActivityRepo.On("WindowTotals", mock.Anything, mock.Anything).
		Return([]*entities.UserWindowTotals{}, nil)
	grants.On("ActiveGrant", mock.Anything, mock.Anything).Return(nil, nil)
	mocks.ProfileStore.On("DisplayName", mock.Anything, mock.Anything).Return("Member", nil)

	// Repeated calls over identical data return the same order
	for i := 0; i < 3; i++ {
		entries, err := service.Rank(context.Background(), entities.AllTimeWindow(), 0)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, TestUserID, entries[0].UserID, "earliest joiner ranks higher")
		assert.Equal(t, TestUser2ID, entries[1].UserID)
	}
}

func TestLeaderboardService_Rank_WindowedUsesActivityStream(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	grants := newMockGrantService()
	service := newLeaderboardService(mocks, grants)

	// Cumulative points say user-1 leads, but this week user-2 does.
	accounts := []*entities.UserAccount{
		createTestAccount(TestUserID, func(a *entities.UserAccount) { a.Points = 500 }),
		createTestAccount(TestUser2ID, func(a *entities.UserAccount) { a.Points = 80 }),
	}
	window := entities.WeeklyWindow(TestBaseTime)
	mocks.AccountRepo.On("GetAll", mock.Anything).Return(accounts, nil)
	mocks.ActivityRepo.On("WindowTotals", mock.Anything, window).Return([]*entities.UserWindowTotals{
		{UserID: TestUserID, Points: 10, Activity: entities.ActivitySummary{PostsCreated: 1}},
		{UserID: TestUser2ID, Points: 40, Activity: entities.ActivitySummary{PostsCreated: 4}},
	}, nil)
	grants.On("ActiveGrant", mock.Anything, mock.Anything).Return(nil, nil)
	mocks.ProfileStore.On("DisplayName", mock.Anything, mock.Anything).Return("Member", nil)

	entries, err := service.Rank(context.Background(), window, 0)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, TestUser2ID, entries[0].UserID)
	assert.Equal(t, int64(40), entries[0].Points)
	assert.Equal(t, 4, entries[0].Activity.PostsCreated)
}

func TestLeaderboardService_Rank_InvalidCustomWindow(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	grants := newMockGrantService()
	service := newLeaderboardService(mocks, grants)

	window := entities.Window{
		Kind:  entities.WindowCustom,
		Start: TestBaseTime,
		End:   TestBaseTime.Add(-time.Hour),
	}
	_, err := service.Rank(context.Background(), window, 0)
	assert.ErrorIs(t, err, entities.ErrInvalidWindow)
	mocks.AccountRepo.AssertNotCalled(t, "GetAll", mock.Anything)
}

func TestLeaderboardService_Rank_LimitAndPrizeStatus(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	grants := newMockGrantService()
	service := newLeaderboardService(mocks, grants)

	accounts := []*entities.UserAccount{
		createTestAccount(TestUserID, func(a *entities.UserAccount) { a.Points = 120 }),
		createTestAccount(TestUser2ID, func(a *entities.UserAccount) { a.Points = 300 }),
		createTestAccount(TestUser3ID, func(a *entities.UserAccount) { a.Points = 50 }),
	}
	winnerGrant := createTestGrant(9, TestUser2ID, 500)
	mocks.AccountRepo.On("GetAll", mock.Anything).Return(accounts, nil)
	mocks.ActivityRepo.On("WindowTotals", mock.Anything, mock.Anything).
		Return([]*entities.UserWindowTotals{}, nil)
	grants.On("ActiveGrant", mock.Anything, TestUser2ID).Return(winnerGrant, nil)
	grants.On("ActiveGrant", mock.Anything, TestUserID).Return(nil, nil)
	mocks.ProfileStore.On("DisplayName", mock.Anything, TestUser2ID).Return("Alice", nil)
	mocks.ProfileStore.On("DisplayName", mock.Anything, TestUserID).Return("Bob", nil)

	entries, err := service.Rank(context.Background(), entities.AllTimeWindow(), 2)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "Alice", entries[0].DisplayName)
	require.NotNil(t, entries[0].PrizeGrant)
	assert.Equal(t, int64(9), entries[0].PrizeGrant.ID)
	assert.Nil(t, entries[1].PrizeGrant)
}

package services

import (
	"context"
	"testing"

	"tokenengine/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newActivityService(mocks *TestMocks) *activityService {
	return NewActivityService(
		mocks.AccountRepo,
		mocks.ActivityRepo,
		mocks.EventPublisher,
		newTestClock(),
		nil,
	).(*activityService)
}

func TestActivityService_RecordActivity_CreditsPoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind   entities.ActivityKind
		points int64
	}{
		{entities.ActivityKindPostCreated, 10},
		{entities.ActivityKindCommentMade, 5},
		{entities.ActivityKindLikeGiven, 2},
		{entities.ActivityKindLikeReceived, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()

			mocks := NewTestMocks()
			service := newActivityService(mocks)

			account := createTestAccount(TestUserID, func(a *entities.UserAccount) { a.Points = 100 })
			mocks.AccountRepo.On("GetByID", mock.Anything, TestUserID).Return(account, nil)
			mocks.ActivityRepo.On("Record", mock.Anything, mock.MatchedBy(func(e *entities.ActivityEvent) bool {
				return e.UserID == TestUserID && e.Kind == tt.kind && e.Points == tt.points
			})).Return(nil)
			mocks.AccountRepo.On("Update", mock.Anything, account).Return(nil)

			event, err := service.RecordActivity(context.Background(), TestUserID, tt.kind)
			require.NoError(t, err)

			assert.Equal(t, tt.points, event.Points)
			assert.Equal(t, TestBaseTime, event.CreatedAt)
			assert.Equal(t, int64(100)+tt.points, account.Points)
			mocks.AssertAllExpectations(t)
		})
	}
}

func TestActivityService_RecordActivity_UnknownKind(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	service := newActivityService(mocks)

	_, err := service.RecordActivity(context.Background(), TestUserID, entities.ActivityKind("spam"))
	assert.Error(t, err)
	mocks.ActivityRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestActivityService_RecordActivity_UnknownUser(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	service := newActivityService(mocks)

	mocks.AccountRepo.On("GetByID", mock.Anything, TestUserID).Return(nil, nil)

	_, err := service.RecordActivity(context.Background(), TestUserID, entities.ActivityKindPostCreated)
	assert.ErrorIs(t, err, entities.ErrAccountNotFound)
	mocks.ActivityRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestActivityService_ReverseActivity_DecrementsPoints(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	service := newActivityService(mocks)

	event := &entities.ActivityEvent{
		ID:     42,
		UserID: TestUserID,
		Kind:   entities.ActivityKindPostCreated,
		Points: 10,
	}
	account := createTestAccount(TestUserID, func(a *entities.UserAccount) { a.Points = 25 })
	mocks.ActivityRepo.On("GetByID", mock.Anything, int64(42)).Return(event, nil)
	mocks.ActivityRepo.On("MarkReversed", mock.Anything, int64(42)).Return(nil)
	mocks.AccountRepo.On("GetByID", mock.Anything, TestUserID).Return(account, nil)
	mocks.AccountRepo.On("Update", mock.Anything, account).Return(nil)

	err := service.ReverseActivity(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, int64(15), account.Points)
	mocks.AssertAllExpectations(t)
}

func TestActivityService_ReverseActivity_FloorsAtZero(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	service := newActivityService(mocks)

	event := &entities.ActivityEvent{ID: 7, UserID: TestUserID, Kind: entities.ActivityKindPostCreated, Points: 10}
	account := createTestAccount(TestUserID, func(a *entities.UserAccount) { a.Points = 4 })
	mocks.ActivityRepo.On("GetByID", mock.Anything, int64(7)).Return(event, nil)
	mocks.ActivityRepo.On("MarkReversed", mock.Anything, int64(7)).Return(nil)
	mocks.AccountRepo.On("GetByID", mock.Anything, TestUserID).Return(account, nil)
	mocks.AccountRepo.On("Update", mock.Anything, account).Return(nil)

	err := service.ReverseActivity(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(0), account.Points)
}

func TestActivityService_ReverseActivity_AlreadyReversed(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	service := newActivityService(mocks)

	event := &entities.ActivityEvent{ID: 7, UserID: TestUserID, Points: 10, Reversed: true}
	mocks.ActivityRepo.On("GetByID", mock.Anything, int64(7)).Return(event, nil)

	err := service.ReverseActivity(context.Background(), 7)
	assert.Error(t, err)
	mocks.ActivityRepo.AssertNotCalled(t, "MarkReversed", mock.Anything, mock.Anything)
	mocks.AccountRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

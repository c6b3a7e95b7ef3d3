package repository

import (
	"context"
	"testing"

	"tokenengine/domain/entities"
	"tokenengine/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMilestoneRepository_GetOrCreateForUser(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewMilestoneRepository(testDB.DB)
	ctx := context.Background()

	states, err := repo.GetOrCreateForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, states, 3)

	assert.Equal(t, entities.MilestoneType8, states[0].Type)
	assert.Equal(t, entities.MilestoneType15, states[1].Type)
	assert.Equal(t, entities.MilestoneType25, states[2].Type)
	for _, state := range states {
		assert.Zero(t, state.CurrentCount)
		assert.Zero(t, state.CyclesCompleted)
		assert.Nil(t, state.LastResetAt)
	}

	// Second call returns the same rows, not duplicates
	again, err := repo.GetOrCreateForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, again, 3)
	assert.Equal(t, states[0].ID, again[0].ID)
}

func TestMilestoneRepository_UpdateWithCycleCheck(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewMilestoneRepository(testDB.DB)
	ctx := context.Background()

	states, err := repo.GetOrCreateForUser(ctx, "user-1")
	require.NoError(t, err)
	state := states[0]

	state.CurrentCount = 3
	state.CyclesCompleted = 1
	require.NoError(t, repo.UpdateWithCycleCheck(ctx, state, 0))

	stored, err := repo.Get(ctx, "user-1", entities.MilestoneType8)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 3, stored.CurrentCount)
	assert.Equal(t, 1, stored.CyclesCompleted)

	// Stale expectation: the stored row already moved to cycle 1
	state.CyclesCompleted = 2
	err = repo.UpdateWithCycleCheck(ctx, state, 0)
	assert.ErrorIs(t, err, entities.ErrStoreConflict)

	stored, err = repo.Get(ctx, "user-1", entities.MilestoneType8)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CyclesCompleted, "conflicting update must not persist")
}

func TestMilestoneRepository_Get_MissingPair(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewMilestoneRepository(testDB.DB)
	ctx := context.Background()

	state, err := repo.Get(ctx, "missing-user", entities.MilestoneType8)
	require.NoError(t, err)
	assert.Nil(t, state)
}

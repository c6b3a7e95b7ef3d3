package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMilestoneType_Rewards(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(300), MilestoneType8.Reward())
	assert.Equal(t, int64(500), MilestoneType15.Reward())
	assert.Equal(t, int64(1000), MilestoneType25.Reward())
	assert.Zero(t, MilestoneType(99).Reward())
	assert.False(t, MilestoneType(99).Valid())
}

func TestMilestoneState_Progress(t *testing.T) {
	t.Parallel()

	state := &MilestoneState{Type: MilestoneType8, CurrentCount: 3}
	assert.InDelta(t, 37.5, state.Progress(), 0.001)

	state.CurrentCount = 11
	assert.Equal(t, float64(100), state.Progress(), "progress caps at 100 past the threshold")
}

func TestMilestoneState_CompleteCycle_CarriesRemainder(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.March, 13, 10, 0, 0, 0, time.UTC)
	state := &MilestoneState{Type: MilestoneType8, CurrentCount: 11}

	require.NoError(t, state.CompleteCycle(now))

	assert.Equal(t, 3, state.CurrentCount)
	assert.Equal(t, 1, state.CyclesCompleted)
	require.NotNil(t, state.LastResetAt)
	assert.Equal(t, now, *state.LastResetAt)
}

func TestMilestoneState_CompleteCycle_NotEligible(t *testing.T) {
	t.Parallel()

	state := &MilestoneState{Type: MilestoneType15, CurrentCount: 14}
	err := state.CompleteCycle(time.Now())
	assert.ErrorIs(t, err, ErrMilestoneNotEligible)
	assert.Equal(t, 14, state.CurrentCount)
	assert.Zero(t, state.CyclesCompleted)
}

func TestMilestoneState_String(t *testing.T) {
	t.Parallel()

	state := &MilestoneState{Type: MilestoneType8, CyclesCompleted: 2}
	assert.Equal(t, "8×2", state.String())
}

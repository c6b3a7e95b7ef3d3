package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var grantBase = time.Date(2024, time.March, 13, 10, 0, 0, 0, time.UTC)

func TestNewPrizeGrant(t *testing.T) {
	t.Parallel()

	grant := NewPrizeGrant("user-1", 500, "1st Prize", grantBase)

	assert.Equal(t, GrantStatusActive, grant.Status)
	assert.Equal(t, int64(500), grant.Remaining)
	assert.Equal(t, grantBase.Add(24*time.Hour), grant.ExpiresAt)
	assert.True(t, grant.IsActive(grantBase))
	assert.True(t, grant.IsActive(grantBase.Add(GrantLifetime-time.Second)))
	assert.False(t, grant.IsActive(grantBase.Add(GrantLifetime)))
}

func TestPrizeGrant_Reconcile(t *testing.T) {
	t.Parallel()

	grant := NewPrizeGrant("user-1", 500, "1st Prize", grantBase)

	assert.False(t, grant.Reconcile(grantBase.Add(23*time.Hour)))
	assert.Equal(t, GrantStatusActive, grant.Status)

	assert.True(t, grant.Reconcile(grantBase.Add(25*time.Hour)))
	assert.Equal(t, GrantStatusExpired, grant.Status)

	// Already expired: no further transition to persist
	assert.False(t, grant.Reconcile(grantBase.Add(48*time.Hour)))
}

func TestPrizeGrant_Consume(t *testing.T) {
	t.Parallel()

	grant := NewPrizeGrant("user-1", 500, "1st Prize", grantBase)

	grant.Consume(200)
	assert.Equal(t, int64(300), grant.Remaining)

	grant.Consume(400)
	assert.Zero(t, grant.Remaining)
}

func TestPrizeGrant_TimeUntilExpiry(t *testing.T) {
	t.Parallel()

	grant := NewPrizeGrant("user-1", 500, "1st Prize", grantBase)

	assert.Equal(t, 14*time.Hour, grant.TimeUntilExpiry(grantBase.Add(10*time.Hour)))
	assert.Negative(t, grant.TimeUntilExpiry(grantBase.Add(25*time.Hour)))
}

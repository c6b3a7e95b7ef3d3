package utils

import (
	"context"
	"fmt"
	"time"

	"tokenengine/domain/entities"
	"tokenengine/domain/events"
	"tokenengine/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// ReconcileActiveGrant loads the user's active grant and applies the lazy
// expiry transition. Every consumer path reads grants through this funnel so
// a stale "active" row can never leak past its window. Returns nil when no
// grant is usable at now.
func ReconcileActiveGrant(ctx context.Context, grantRepo interfaces.PrizeGrantRepository, eventPublisher interfaces.EventPublisher, userID string, now time.Time) (*entities.PrizeGrant, error) {
	grant, err := grantRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active grant for user %s: %w", userID, err)
	}
	if grant == nil {
		return nil, nil
	}

	if !grant.Reconcile(now) {
		return grant, nil
	}

	if err := grantRepo.Update(ctx, grant); err != nil {
		return nil, fmt.Errorf("failed to expire grant %d: %w", grant.ID, err)
	}

	event := events.PrizeExpiredEvent{
		UserID:    grant.UserID,
		GrantID:   grant.ID,
		Remaining: grant.Remaining,
		PrizeType: grant.PrizeType,
	}
	if err := eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish prize expired event")
	}

	return nil, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tokenengine/clock"
	"tokenengine/domain/entities"
	"tokenengine/domain/events"
	"tokenengine/domain/interfaces"
	"tokenengine/domain/utils"

	log "github.com/sirupsen/logrus"
)

// grantService implements business logic for prize token grants
type grantService struct {
	grantRepo       interfaces.PrizeGrantRepository
	transactionRepo interfaces.TokenTransactionRepository
	eventPublisher  interfaces.EventPublisher
	clock           clock.Clock
}

// NewGrantService creates a new grant service
func NewGrantService(
	grantRepo interfaces.PrizeGrantRepository,
	transactionRepo interfaces.TokenTransactionRepository,
	eventPublisher interfaces.EventPublisher,
	clk clock.Clock,
) interfaces.GrantService {
	return &grantService{
		grantRepo:       grantRepo,
		transactionRepo: transactionRepo,
		eventPublisher:  eventPublisher,
		clock:           clk,
	}
}

// Grant issues a 24h prize grant. A user cannot stack prize windows: while
// an unexpired grant exists the call fails with ErrGrantAlreadyActive.
func (s *grantService) Grant(ctx context.Context, userID string, amount int64, prizeType string) (*entities.PrizeGrant, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	if amount <= 0 {
		return nil, errors.New("grant amount must be positive")
	}

	now := s.clock.Now()
	existing, err := utils.ReconcileActiveGrant(ctx, s.grantRepo, s.eventPublisher, userID, now)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("user %s: %w", userID, entities.ErrGrantAlreadyActive)
	}

	grant := entities.NewPrizeGrant(userID, amount, prizeType, now)
	if err := s.grantRepo.Create(ctx, grant); err != nil {
		return nil, fmt.Errorf("failed to create grant for user %s: %w", userID, err)
	}

	transaction := &entities.TokenTransaction{
		UserID: userID,
		Amount: amount,
		Type:   entities.TransactionTypePrizeGrant,
		Reason: prizeType,
		Metadata: map[string]any{
			"grant_id":   grant.ID,
			"expires_at": grant.ExpiresAt,
		},
	}
	if err := utils.RecordTokenChange(ctx, s.transactionRepo, s.eventPublisher, transaction); err != nil {
		return nil, err
	}

	event := events.PrizeGrantedEvent{
		UserID:    userID,
		GrantID:   grant.ID,
		Amount:    amount,
		PrizeType: prizeType,
		ExpiresAt: grant.ExpiresAt,
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish prize granted event")
	}

	log.WithFields(log.Fields{
		"userID":    userID,
		"grantID":   grant.ID,
		"amount":    utils.FormatTokenAmount(amount),
		"prizeType": prizeType,
	}).Info("Prize grant issued")

	return grant, nil
}

// ActiveGrant returns the user's active grant after lazy expiry, or nil
func (s *grantService) ActiveGrant(ctx context.Context, userID string) (*entities.PrizeGrant, error) {
	return utils.ReconcileActiveGrant(ctx, s.grantRepo, s.eventPublisher, userID, s.clock.Now())
}

// TimeUntilExpiry returns the remaining validity of the active grant, or nil
func (s *grantService) TimeUntilExpiry(ctx context.Context, userID string) (*time.Duration, error) {
	grant, err := s.ActiveGrant(ctx, userID)
	if err != nil {
		return nil, err
	}
	if grant == nil {
		return nil, nil
	}
	remaining := grant.TimeUntilExpiry(s.clock.Now())
	return &remaining, nil
}

// History returns the user's grants, newest first
func (s *grantService) History(ctx context.Context, userID string, limit int) ([]*entities.PrizeGrant, error) {
	grants, err := s.grantRepo.GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get grant history for user %s: %w", userID, err)
	}
	return grants, nil
}

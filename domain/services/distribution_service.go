package services

import (
	"context"
	"errors"
	"fmt"

	"tokenengine/clock"
	"tokenengine/domain/entities"
	"tokenengine/domain/events"
	"tokenengine/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// distributionService awards leaderboard prizes to the top three
type distributionService struct {
	grantService     interfaces.GrantService
	distributionRepo interfaces.DistributionRepository
	eventPublisher   interfaces.EventPublisher
	clock            clock.Clock
}

// NewDistributionService creates a new distribution service
func NewDistributionService(
	grantService interfaces.GrantService,
	distributionRepo interfaces.DistributionRepository,
	eventPublisher interfaces.EventPublisher,
	clk clock.Clock,
) interfaces.DistributionService {
	return &distributionService{
		grantService:     grantService,
		distributionRepo: distributionRepo,
		eventPublisher:   eventPublisher,
		clock:            clk,
	}
}

// Distribute attempts one grant per winner. A winner with an active grant is
// skipped and reported, the rest still proceed; one audit record captures
// exactly who received a grant. Running the same distribution twice inside
// the grant window therefore awards nothing the second time.
func (s *distributionService) Distribute(ctx context.Context, winners []entities.DistributionWinner, meta interfaces.DistributionMeta) (*interfaces.DistributionResult, error) {
	if err := entities.ValidateWinnerSet(winners); err != nil {
		return nil, err
	}
	if meta.ContestName == "" {
		return nil, errors.New("contest name is required")
	}

	result := &interfaces.DistributionResult{
		Distributed: make([]entities.AwardedWinner, 0, len(winners)),
		Skipped:     make([]entities.SkippedWinner, 0),
	}

	for _, winner := range winners {
		grant, err := s.grantService.Grant(ctx, winner.UserID, winner.TokenAmount, winner.Position.Label())
		if err != nil {
			if errors.Is(err, entities.ErrGrantAlreadyActive) {
				log.WithFields(log.Fields{
					"userID":   winner.UserID,
					"position": winner.Position,
					"contest":  meta.ContestName,
				}).Info("Winner skipped, prize grant already active")
				result.Skipped = append(result.Skipped, entities.SkippedWinner{
					UserID:   winner.UserID,
					Position: winner.Position,
					Reason:   "prize grant already active",
				})
				continue
			}
			return nil, fmt.Errorf("failed to grant prize to user %s: %w", winner.UserID, err)
		}

		result.Distributed = append(result.Distributed, entities.AwardedWinner{
			UserID:      winner.UserID,
			Position:    winner.Position,
			TokenAmount: winner.TokenAmount,
			GrantID:     grant.ID,
		})
	}

	record := &entities.PrizeDistributionRecord{
		ContestName: meta.ContestName,
		Period:      meta.Period,
		PeriodStart: meta.PeriodStart,
		PeriodEnd:   meta.PeriodEnd,
		Winners:     result.Distributed,
		AwardedAt:   s.clock.Now(),
	}
	if err := s.distributionRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record distribution: %w", err)
	}
	result.Record = record

	event := events.PrizesDistributedEvent{
		RecordID:     record.ID,
		ContestName:  record.ContestName,
		AwardedCount: len(result.Distributed),
		SkippedCount: len(result.Skipped),
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish prizes distributed event")
	}

	return result, nil
}

// History returns past distribution records, newest first
func (s *distributionService) History(ctx context.Context, limit int) ([]*entities.PrizeDistributionRecord, error) {
	records, err := s.distributionRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list distributions: %w", err)
	}
	return records, nil
}

package services

import (
	"context"
	"fmt"

	"tokenengine/clock"
	"tokenengine/domain/entities"
	"tokenengine/domain/events"
	"tokenengine/domain/interfaces"
	"tokenengine/domain/utils"

	log "github.com/sirupsen/logrus"
)

// milestoneService tracks referral counts against the 8/15/25 thresholds
type milestoneService struct {
	milestoneRepo  interfaces.MilestoneRepository
	grantService   interfaces.GrantService
	eventPublisher interfaces.EventPublisher
	clock          clock.Clock
}

// NewMilestoneService creates a new milestone service. Rewards are issued
// through the grant service so milestone payouts obey the same
// one-active-grant rule as contest prizes.
func NewMilestoneService(
	milestoneRepo interfaces.MilestoneRepository,
	grantService interfaces.GrantService,
	eventPublisher interfaces.EventPublisher,
	clk clock.Clock,
) interfaces.MilestoneService {
	return &milestoneService{
		milestoneRepo:  milestoneRepo,
		grantService:   grantService,
		eventPublisher: eventPublisher,
		clock:          clk,
	}
}

// RecordActiveReferral counts one activated referral toward every milestone
// type. All three counters track the same referral stream against their own
// thresholds, so they advance together.
func (s *milestoneService) RecordActiveReferral(ctx context.Context, userID string) ([]*entities.MilestoneState, error) {
	states, err := s.milestoneRepo.GetOrCreateForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestones for user %s: %w", userID, err)
	}

	for _, state := range states {
		state.CurrentCount++
		if err := s.milestoneRepo.Update(ctx, state); err != nil {
			return nil, fmt.Errorf("failed to update milestone %d for user %s: %w", state.Type, userID, err)
		}
	}

	event := events.ReferralRecordedEvent{UserID: userID}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish referral recorded event")
	}

	return states, nil
}

// CheckEligibility returns all milestone types currently claimable
func (s *milestoneService) CheckEligibility(ctx context.Context, userID string) ([]entities.MilestoneType, error) {
	states, err := s.milestoneRepo.GetOrCreateForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestones for user %s: %w", userID, err)
	}

	eligible := make([]entities.MilestoneType, 0, len(states))
	for _, state := range states {
		if state.IsEligible() {
			eligible = append(eligible, state.Type)
		}
	}
	return eligible, nil
}

// Claim completes one milestone cycle. The caller passes the
// cyclesCompleted value it observed; the counter reset and cycle increment
// only commit if the stored value still matches, so two claims racing on the
// same tick cannot both award.
func (s *milestoneService) Claim(ctx context.Context, userID string, milestoneType entities.MilestoneType, expectedCycles int) (*interfaces.MilestoneClaimResult, error) {
	if !milestoneType.Valid() {
		return nil, fmt.Errorf("unknown milestone type %d", milestoneType)
	}

	state, err := s.milestoneRepo.Get(ctx, userID, milestoneType)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestone %d for user %s: %w", milestoneType, userID, err)
	}
	if state == nil || !state.IsEligible() {
		return nil, fmt.Errorf("milestone %d for user %s: %w", milestoneType, userID, entities.ErrMilestoneNotEligible)
	}
	if state.CyclesCompleted != expectedCycles {
		return nil, fmt.Errorf("milestone %d for user %s: expected %d cycles, have %d: %w",
			milestoneType, userID, expectedCycles, state.CyclesCompleted, entities.ErrStoreConflict)
	}

	now := s.clock.Now()
	if err := state.CompleteCycle(now); err != nil {
		return nil, err
	}
	if err := s.milestoneRepo.UpdateWithCycleCheck(ctx, state, expectedCycles); err != nil {
		return nil, fmt.Errorf("failed to persist milestone claim: %w", err)
	}

	// The reward grant and the counter reset share the caller's transaction:
	// if the grant fails (e.g. one is already active) the whole claim rolls
	// back and stays claimable.
	reward := milestoneType.Reward()
	grant, err := s.grantService.Grant(ctx, userID, reward, fmt.Sprintf("Referral Milestone %d", milestoneType.Target()))
	if err != nil {
		return nil, err
	}

	event := events.MilestoneClaimedEvent{
		UserID:          userID,
		MilestoneType:   milestoneType,
		Reward:          reward,
		CyclesCompleted: state.CyclesCompleted,
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish milestone claimed event")
	}

	log.WithFields(log.Fields{
		"userID":          userID,
		"milestoneType":   milestoneType,
		"reward":          reward,
		"cyclesCompleted": state.CyclesCompleted,
		"carriedForward":  state.CurrentCount,
	}).Info("Milestone cycle claimed")

	return &interfaces.MilestoneClaimResult{
		MilestoneType:   milestoneType,
		Reward:          reward,
		CyclesCompleted: state.CyclesCompleted,
		Grant:           grant,
	}, nil
}

// Breakdown renders the "8×N, 15×M, 25×K" cycle summary
func (s *milestoneService) Breakdown(ctx context.Context, userID string) (string, error) {
	states, err := s.milestoneRepo.GetOrCreateForUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load milestones for user %s: %w", userID, err)
	}
	return utils.FormatMilestoneBreakdown(states), nil
}

// Summary returns the full milestone view for display
func (s *milestoneService) Summary(ctx context.Context, userID string) (*interfaces.MilestoneSummary, error) {
	states, err := s.milestoneRepo.GetOrCreateForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestones for user %s: %w", userID, err)
	}

	summary := &interfaces.MilestoneSummary{
		UserID:     userID,
		Milestones: make([]interfaces.MilestoneProgress, 0, len(states)),
	}
	for _, state := range states {
		summary.TotalCycles += state.CyclesCompleted
		summary.TotalTokensEarned += int64(state.CyclesCompleted) * state.Type.Reward()
		summary.Milestones = append(summary.Milestones, interfaces.MilestoneProgress{
			Type:            state.Type,
			Target:          state.Type.Target(),
			Reward:          state.Type.Reward(),
			Current:         state.CurrentCount,
			Progress:        state.Progress(),
			CyclesCompleted: state.CyclesCompleted,
			IsEligible:      state.IsEligible(),
		})
	}

	// Carry-forward keeps the referral stream conserved per type:
	// lifetime referrals = cycles*target + current, identical across types.
	if len(states) > 0 {
		first := states[0]
		summary.ActiveReferrals = first.CyclesCompleted*first.Type.Target() + first.CurrentCount
	}

	return summary, nil
}

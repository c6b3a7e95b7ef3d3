package services

import (
	"context"
	"errors"
	"fmt"

	"tokenengine/clock"
	"tokenengine/domain/entities"
	"tokenengine/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// ActivityPoints maps each activity kind to the points it earns.
type ActivityPoints map[entities.ActivityKind]int64

// DefaultActivityPoints mirrors the community product's scoring.
func DefaultActivityPoints() ActivityPoints {
	return ActivityPoints{
		entities.ActivityKindPostCreated:  10,
		entities.ActivityKindCommentMade:  5,
		entities.ActivityKindLikeGiven:    2,
		entities.ActivityKindLikeReceived: 1,
	}
}

// activityService ingests community activity into the points stream
type activityService struct {
	accountRepo    interfaces.UserAccountRepository
	activityRepo   interfaces.ActivityRepository
	eventPublisher interfaces.EventPublisher
	clock          clock.Clock
	points         ActivityPoints
}

// NewActivityService creates a new activity service
func NewActivityService(
	accountRepo interfaces.UserAccountRepository,
	activityRepo interfaces.ActivityRepository,
	eventPublisher interfaces.EventPublisher,
	clk clock.Clock,
	points ActivityPoints,
) interfaces.ActivityService {
	if points == nil {
		points = DefaultActivityPoints()
	}
	return &activityService{
		accountRepo:    accountRepo,
		activityRepo:   activityRepo,
		eventPublisher: eventPublisher,
		clock:          clk,
		points:         points,
	}
}

// RecordActivity appends an event and credits its points to the cumulative
// counter on the account. The event stream stays the source of truth for
// windowed leaderboards; the counter is the all-time fast path.
func (s *activityService) RecordActivity(ctx context.Context, userID string, kind entities.ActivityKind) (*entities.ActivityEvent, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown activity kind %q", kind)
	}

	account, err := s.accountRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", userID, err)
	}
	if account == nil {
		return nil, fmt.Errorf("user %s: %w", userID, entities.ErrAccountNotFound)
	}

	event := &entities.ActivityEvent{
		UserID:    userID,
		Kind:      kind,
		Points:    s.points[kind],
		CreatedAt: s.clock.Now(),
	}
	if err := s.activityRepo.Record(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}

	account.Points += event.Points
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update points for account %s: %w", userID, err)
	}

	return event, nil
}

// ReverseActivity undoes a moderated event's points. Events are flagged, not
// deleted, so windowed aggregates exclude them without losing the audit row.
func (s *activityService) ReverseActivity(ctx context.Context, activityID int64) error {
	event, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		return fmt.Errorf("failed to get activity %d: %w", activityID, err)
	}
	if event == nil {
		return fmt.Errorf("activity %d not found", activityID)
	}
	if event.Reversed {
		return errors.New("activity already reversed")
	}

	if err := s.activityRepo.MarkReversed(ctx, activityID); err != nil {
		return fmt.Errorf("failed to reverse activity %d: %w", activityID, err)
	}

	account, err := s.accountRepo.GetByID(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("failed to get account %s: %w", event.UserID, err)
	}
	if account == nil {
		return fmt.Errorf("user %s: %w", event.UserID, entities.ErrAccountNotFound)
	}

	account.Points -= event.Points
	if account.Points < 0 {
		account.Points = 0
	}
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return fmt.Errorf("failed to update points for account %s: %w", event.UserID, err)
	}

	log.WithFields(log.Fields{
		"activityID": activityID,
		"userID":     event.UserID,
		"points":     event.Points,
	}).Info("Activity reversed by moderation")

	return nil
}

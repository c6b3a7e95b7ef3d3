package services

import (
	"context"
	"fmt"
	"sort"

	"tokenengine/domain/entities"
	"tokenengine/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// leaderboardService ranks users by window-scoped community points
type leaderboardService struct {
	accountRepo  interfaces.UserAccountRepository
	activityRepo interfaces.ActivityRepository
	grantService interfaces.GrantService
	profileStore interfaces.ProfileStore
}

// NewLeaderboardService creates a new leaderboard service. profileStore may
// be nil; entries then carry empty display names.
func NewLeaderboardService(
	accountRepo interfaces.UserAccountRepository,
	activityRepo interfaces.ActivityRepository,
	grantService interfaces.GrantService,
	profileStore interfaces.ProfileStore,
) interfaces.LeaderboardService {
	return &leaderboardService{
		accountRepo:  accountRepo,
		activityRepo: activityRepo,
		grantService: grantService,
		profileStore: profileStore,
	}
}

// Rank orders users descending by window points. Ties break by ascending
// account creation time, so repeated calls over the same data return the
// same order.
func (s *leaderboardService) Rank(ctx context.Context, window entities.Window, limit int) ([]*entities.LeaderboardEntry, error) {
	if window.Kind == entities.WindowCustom && window.Start.After(window.End) {
		return nil, entities.ErrInvalidWindow
	}

	accounts, err := s.accountRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}

	totals, err := s.activityRepo.WindowTotals(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate activity: %w", err)
	}
	totalsByUser := make(map[string]*entities.UserWindowTotals, len(totals))
	for _, t := range totals {
		totalsByUser[t.UserID] = t
	}

	entries := make([]*entities.LeaderboardEntry, 0, len(accounts))
	for _, account := range accounts {
		entry := &entities.LeaderboardEntry{
			UserID:    account.ID,
			CreatedAt: account.CreatedAt,
		}
		if t, ok := totalsByUser[account.ID]; ok {
			entry.Points = t.Points
			entry.Activity = t.Activity
		}
		// The cumulative points column is the all-time fast path; windowed
		// points always come from the raw event stream.
		if window.IsAllTime() {
			entry.Points = account.Points
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	for i, entry := range entries {
		entry.Rank = i + 1

		grant, err := s.grantService.ActiveGrant(ctx, entry.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to get prize status for user %s: %w", entry.UserID, err)
		}
		entry.PrizeGrant = grant

		if s.profileStore != nil {
			name, err := s.profileStore.DisplayName(ctx, entry.UserID)
			if err != nil {
				log.WithError(err).WithField("userID", entry.UserID).Warn("Failed to resolve display name")
			} else {
				entry.DisplayName = name
			}
		}
	}

	return entries, nil
}

package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"tokenengine/domain/interfaces"
)

// HTTPProfileStore resolves display names from the user-profile service over
// its REST API.
type HTTPProfileStore struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProfileStore creates a profile store client for the given base URL
// (e.g. "http://profile-service:8081").
func NewHTTPProfileStore(baseURL string) *HTTPProfileStore {
	return &HTTPProfileStore{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type profileResponse struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// DisplayName fetches the user's display name. A 404 from the profile
// service resolves to an empty name rather than an error: display names are
// cosmetic and an unprovisioned profile must not break leaderboard rendering.
func (s *HTTPProfileStore) DisplayName(ctx context.Context, userID string) (string, error) {
	endpoint := fmt.Sprintf("%s/users/%s/profile", s.baseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build profile request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("profile service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("profile service returned status %d for user %s", resp.StatusCode, userID)
	}

	var profile profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return "", fmt.Errorf("failed to decode profile response: %w", err)
	}
	return profile.DisplayName, nil
}

var _ interfaces.ProfileStore = (*HTTPProfileStore)(nil)

package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"crewplanner/internal/domain"
)

type httpIdentityProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewHTTPProvider returns an IdentityProvider that calls the external
// identity service's REST API.
func NewHTTPProvider(client *http.Client, baseURL, apiKey string) domain.IdentityProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpIdentityProvider{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
	}
}

type identityUserDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

func (p *httpIdentityProvider) GetUsers(ctx context.Context, userIDs []string) ([]*domain.IdentityUser, error) {
	if len(userIDs) == 0 {
		return []*domain.IdentityUser{}, nil
	}
	q := url.Values{"user_id": userIDs}
	return p.fetch(ctx, "/v1/users?"+q.Encode())
}

func (p *httpIdentityProvider) ListUsers(ctx context.Context) ([]*domain.IdentityUser, error) {
	return p.fetch(ctx, "/v1/users")
}

func (p *httpIdentityProvider) fetch(ctx context.Context, path string) ([]*domain.IdentityUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity provider returned status: %d", resp.StatusCode)
	}

	var data struct {
		Users []identityUserDTO `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}

	users := make([]*domain.IdentityUser, 0, len(data.Users))
	for _, u := range data.Users {
		role := domain.RoleMember
		if u.Role == string(domain.RoleAdmin) {
			role = domain.RoleAdmin
		}
		users = append(users, &domain.IdentityUser{
			ID:       u.ID,
			Email:    u.Email,
			Name:     u.FirstName,
			LastName: u.LastName,
			Role:     role,
		})
	}
	return users, nil
}

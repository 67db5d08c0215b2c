package services

import (
	"context"
	"fmt"

	"crewplanner/internal/domain"
)

// rosterRoleProvider answers role questions from the local roster flag.
type rosterRoleProvider struct {
	members domain.TeamMemberRepository
}

// NewRosterRoleProvider returns a RoleProvider backed by the team_members
// is_admin flag.
func NewRosterRoleProvider(members domain.TeamMemberRepository) domain.RoleProvider {
	return &rosterRoleProvider{members: members}
}

func (p *rosterRoleProvider) RoleOf(ctx context.Context, userID string) (domain.Role, error) {
	m, err := p.members.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get member: %w", err)
	}
	return m.Role(), nil
}

func (p *rosterRoleProvider) ListIDsByRole(ctx context.Context, role domain.Role) ([]string, error) {
	members, err := p.members.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	ids := []string{}
	for _, m := range members {
		if m.Role() == role {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

// identityRoleProvider answers role questions from identity-provider metadata.
type identityRoleProvider struct {
	identity domain.IdentityProvider
}

// NewIdentityRoleProvider returns a RoleProvider backed by the external
// identity service's user metadata.
func NewIdentityRoleProvider(identity domain.IdentityProvider) domain.RoleProvider {
	return &identityRoleProvider{identity: identity}
}

func (p *identityRoleProvider) RoleOf(ctx context.Context, userID string) (domain.Role, error) {
	users, err := p.identity.GetUsers(ctx, []string{userID})
	if err != nil {
		return "", fmt.Errorf("get identity user: %w", err)
	}
	if len(users) == 0 {
		return "", domain.ErrMemberNotFound
	}
	return users[0].Role, nil
}

func (p *identityRoleProvider) ListIDsByRole(ctx context.Context, role domain.Role) ([]string, error) {
	users, err := p.identity.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list identity users: %w", err)
	}
	ids := []string{}
	for _, u := range users {
		if u.Role == role {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

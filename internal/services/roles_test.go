package services

import (
	"context"
	"errors"
	"testing"

	"crewplanner/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterRoleProvider(t *testing.T) {
	ctx := context.Background()
	members := &fakeMemberRepo{members: []*domain.TeamMember{
		{ID: "admin-1", IsAdmin: true},
		{ID: "user-1"},
		{ID: "user-2"},
	}}
	provider := NewRosterRoleProvider(members)

	role, err := provider.RoleOf(ctx, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)

	role, err = provider.RoleOf(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, role)

	_, err = provider.RoleOf(ctx, "nobody")
	require.Error(t, err)

	ids, err := provider.ListIDsByRole(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin-1"}, ids)

	ids, err = provider.ListIDsByRole(ctx, domain.RoleMember)
	require.NoError(t, err)
	assert.Equal(t, []string{"user-1", "user-2"}, ids)
}

func TestIdentityRoleProvider(t *testing.T) {
	ctx := context.Background()
	identity := &fakeIdentityProvider{users: map[string]*domain.IdentityUser{
		"admin-1": {ID: "admin-1", Role: domain.RoleAdmin},
		"user-1":  {ID: "user-1", Role: domain.RoleMember},
	}}
	provider := NewIdentityRoleProvider(identity)

	role, err := provider.RoleOf(ctx, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)

	_, err = provider.RoleOf(ctx, "nobody")
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrMemberNotFound))

	ids, err := provider.ListIDsByRole(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin-1"}, ids)

	_, err = NewIdentityRoleProvider(&fakeIdentityProvider{err: errors.New("down")}).ListIDsByRole(ctx, domain.RoleAdmin)
	require.Error(t, err)
}

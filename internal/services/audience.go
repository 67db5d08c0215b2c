package services

import (
	"context"
	"fmt"

	"crewplanner/internal/domain"
)

type audienceResolver struct {
	eventRepo domain.EventRepository
	roles     domain.RoleProvider
}

// NewAudienceResolver returns an AudienceResolver backed by the given event
// store and role source.
func NewAudienceResolver(eventRepo domain.EventRepository, roles domain.RoleProvider) domain.AudienceResolver {
	return &audienceResolver{eventRepo: eventRepo, roles: roles}
}

// NonResponders returns invited users minus users with an availability
// response, preserving invitation order.
func (a *audienceResolver) NonResponders(ctx context.Context, eventID string) ([]string, error) {
	invitations, err := a.eventRepo.ListInvitations(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	responses, err := a.eventRepo.ListAvailability(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}

	responded := make(map[string]struct{}, len(responses))
	for _, resp := range responses {
		responded[resp.UserID] = struct{}{}
	}

	nonResponders := []string{}
	for _, inv := range invitations {
		if _, ok := responded[inv.UserID]; !ok {
			nonResponders = append(nonResponders, inv.UserID)
		}
	}
	return nonResponders, nil
}

// ByRole returns every user holding the role, minus the actor so nobody is
// notified of their own action.
func (a *audienceResolver) ByRole(ctx context.Context, role domain.Role, actorID string) ([]string, error) {
	ids, err := a.roles.ListIDsByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("list %s ids: %w", role, err)
	}
	return a.Explicit(ids, actorID), nil
}

// Explicit filters the actor and duplicates out of a caller-supplied list.
func (a *audienceResolver) Explicit(userIDs []string, actorID string) []string {
	seen := make(map[string]struct{}, len(userIDs))
	out := []string{}
	for _, id := range userIDs {
		if id == "" || id == actorID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

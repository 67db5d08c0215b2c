package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"crewplanner/internal/domain"
)

type availabilityService struct {
	events        domain.EventRepository
	members       domain.TeamMemberRepository
	audience      domain.AudienceResolver
	notifications domain.NotificationService
	now           func() time.Time
	logger        *slog.Logger
}

// NewAvailabilityService returns the service that records availability
// answers. After a successful upsert the admins (minus the actor) are
// notified through the same dispatchers the reminder sweep uses.
func NewAvailabilityService(
	events domain.EventRepository,
	members domain.TeamMemberRepository,
	audience domain.AudienceResolver,
	notifications domain.NotificationService,
	logger *slog.Logger,
) domain.AvailabilityService {
	return &availabilityService{
		events:        events,
		members:       members,
		audience:      audience,
		notifications: notifications,
		now:           time.Now,
		logger:        logger,
	}
}

func (s *availabilityService) Set(ctx context.Context, resp *domain.AvailabilityResponse) error {
	if err := resp.Validate(); err != nil {
		return err
	}

	event, err := s.events.GetByID(ctx, resp.EventID)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}

	invited, err := s.events.IsInvited(ctx, resp.EventID, resp.UserID)
	if err != nil {
		return fmt.Errorf("check invitation: %w", err)
	}
	if !invited {
		return domain.ErrForbidden
	}

	resp.RespondedAt = s.now()
	if err := s.events.UpsertAvailability(ctx, resp); err != nil {
		return fmt.Errorf("upsert availability: %w", err)
	}

	admins, err := s.audience.ByRole(ctx, domain.RoleAdmin, resp.UserID)
	if err != nil {
		// The response is recorded; the admin ping is best-effort.
		s.logger.Warn("resolve admins failed", "event_id", resp.EventID, "error", err)
		return nil
	}

	actorName := resp.UserID
	if m, err := s.members.GetByID(ctx, resp.UserID); err == nil {
		actorName = m.FullName()
	}

	message := fmt.Sprintf("%s responded %s to %q", actorName, resp.Status, event.Title)
	if err := s.notifications.Dispatch(ctx, &domain.Fanout{
		UserIDs:       admins,
		Type:          domain.NotificationAvailability,
		Message:       message,
		ReferenceKind: domain.ReferenceEvent,
		ReferenceID:   event.ID,
		ActorID:       resp.UserID,
		Push: &domain.PushPayload{
			Title: "CrewPlanner",
			Body:  message,
			URL:   "/events/" + event.ID,
			Tag:   "availability-" + event.ID,
		},
	}); err != nil {
		s.logger.Warn("admin notification failed", "event_id", resp.EventID, "error", err)
	}
	return nil
}

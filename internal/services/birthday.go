package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"crewplanner/internal/domain"
)

type birthdayService struct {
	members       domain.TeamMemberRepository
	notifications domain.NotificationService
	logger        *slog.Logger
}

// NewBirthdayService returns the daily birthday announcer: every roster
// member whose birth date matches today is announced to everyone else via
// in-app notification and best-effort push.
func NewBirthdayService(members domain.TeamMemberRepository, notifications domain.NotificationService, logger *slog.Logger) domain.BirthdayService {
	return &birthdayService{members: members, notifications: notifications, logger: logger}
}

func (s *birthdayService) RunSweep(ctx context.Context, now time.Time) (domain.BirthdayResult, error) {
	members, err := s.members.List(ctx)
	if err != nil {
		return domain.BirthdayResult{}, fmt.Errorf("list members: %w", err)
	}

	var birthdays []*domain.TeamMember
	for _, m := range members {
		if m.BirthDate == nil {
			continue
		}
		if m.BirthDate.Month() == now.Month() && m.BirthDate.Day() == now.Day() {
			birthdays = append(birthdays, m)
		}
	}

	result := domain.BirthdayResult{Birthdays: len(birthdays)}
	if len(birthdays) == 0 {
		return result, nil
	}

	allIDs := make([]string, 0, len(members))
	for _, m := range members {
		allIDs = append(allIDs, m.ID)
	}

	for _, person := range birthdays {
		message := fmt.Sprintf("%s has their birthday today! 🎂", person.FullName())
		if age := now.Year() - person.BirthDate.Year(); age > 0 && age < 120 {
			message = fmt.Sprintf("%s turns %d today! 🎂", person.FullName(), age)
		}

		recipients := make([]string, 0, len(allIDs)-1)
		for _, id := range allIDs {
			if id != person.ID {
				recipients = append(recipients, id)
			}
		}
		if len(recipients) == 0 {
			continue
		}

		if err := s.notifications.Dispatch(ctx, &domain.Fanout{
			UserIDs:       recipients,
			Type:          domain.NotificationBirthday,
			Message:       message,
			ReferenceKind: domain.ReferenceEvent,
			ReferenceID:   person.ID,
			ActorID:       person.ID,
			Push: &domain.PushPayload{
				Title: "CrewPlanner",
				Body:  message,
				URL:   "/",
				Tag:   "birthday-" + person.ID,
			},
		}); err != nil {
			s.logger.Error("birthday fan-out failed", "member_id", person.ID, "error", err)
			continue
		}
		result.Notified++
	}
	return result, nil
}

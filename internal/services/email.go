package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"crewplanner/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	members  domain.TeamMemberRepository
	identity domain.IdentityProvider
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that renders embedded templates and
// sends through the given Mailer. Addresses are resolved from the roster
// first, falling back to the identity provider for users not locally known.
// identity may be nil when no external provider is configured.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, members domain.TeamMemberRepository, identity domain.IdentityProvider, logger *slog.Logger) domain.EmailService {
	return &emailService{
		mailer:   mailer,
		renderer: renderer,
		members:  members,
		identity: identity,
		logger:   logger,
	}
}

// resolveAddresses maps user IDs to email addresses, skipping users that
// cannot be resolved anywhere.
func (s *emailService) resolveAddresses(ctx context.Context, userIDs []string) ([]string, error) {
	addresses := make([]string, 0, len(userIDs))
	var unresolved []string
	for _, userID := range userIDs {
		m, err := s.members.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrMemberNotFound) {
				unresolved = append(unresolved, userID)
				continue
			}
			return nil, fmt.Errorf("get member: %w", err)
		}
		if m.Email != "" {
			addresses = append(addresses, m.Email)
		}
	}

	if len(unresolved) > 0 && s.identity != nil {
		users, err := s.identity.GetUsers(ctx, unresolved)
		if err != nil {
			// Roster hits still get their mail.
			s.logger.Warn("identity lookup failed", "users", len(unresolved), "error", err)
			return addresses, nil
		}
		for _, u := range users {
			if u.Email != "" {
				addresses = append(addresses, u.Email)
			}
		}
	}
	return addresses, nil
}

// sendBatch renders the template once and sends one message per address.
func (s *emailService) sendBatch(templateName string, data any, addresses []string) error {
	if len(addresses) == 0 {
		return nil
	}
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", templateName, err)
	}
	var firstErr error
	sent := 0
	for _, to := range addresses {
		if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
			s.logger.Warn("email send failed", "template", templateName, "to", to, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		sent++
	}
	s.logger.Info("email batch sent", "template", templateName, "sent", sent, "total", len(addresses))
	if sent == 0 && firstErr != nil {
		return fmt.Errorf("failed to send %s batch: %w", templateName, firstErr)
	}
	return nil
}

func (s *emailService) SendEventInvite(ctx context.Context, data *domain.EventInviteEmailData, userIDs []string) error {
	if data == nil {
		return fmt.Errorf("event invite data is nil")
	}
	addresses, err := s.resolveAddresses(ctx, userIDs)
	if err != nil {
		return err
	}
	return s.sendBatch("event_invite", data, addresses)
}

func (s *emailService) SendReminder(ctx context.Context, data *domain.ReminderEmailData, userIDs []string) error {
	if data == nil {
		return fmt.Errorf("reminder data is nil")
	}
	addresses, err := s.resolveAddresses(ctx, userIDs)
	if err != nil {
		return err
	}
	return s.sendBatch("reminder", data, addresses)
}

func (s *emailService) SendTaskAssigned(ctx context.Context, data *domain.TaskAssignedEmailData, userID string) error {
	if data == nil {
		return fmt.Errorf("task assigned data is nil")
	}
	addresses, err := s.resolveAddresses(ctx, []string{userID})
	if err != nil {
		return err
	}
	return s.sendBatch("task_assigned", data, addresses)
}

func (s *emailService) SendWelcome(ctx context.Context, data *domain.WelcomeEmailData) error {
	if data == nil {
		return fmt.Errorf("welcome data is nil")
	}
	return s.sendBatch("welcome", data, []string{data.Email})
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"crewplanner/internal/domain"
)

type reminderService struct {
	reminders     domain.ReminderRepository
	events        domain.EventRepository
	audience      domain.AudienceResolver
	notifications domain.NotificationService
	emails        domain.EmailService
	logger        *slog.Logger
}

// NewReminderService returns the batch reminder scheduler. It is driven by an
// external, at-least-once cron trigger; the per-rule claim in the reminder
// repository is the only serialization point, so retried or overlapping
// invocations never dispatch the same rule twice.
func NewReminderService(
	reminders domain.ReminderRepository,
	events domain.EventRepository,
	audience domain.AudienceResolver,
	notifications domain.NotificationService,
	emails domain.EmailService,
	logger *slog.Logger,
) domain.ReminderService {
	return &reminderService{
		reminders:     reminders,
		events:        events,
		audience:      audience,
		notifications: notifications,
		emails:        emails,
		logger:        logger,
	}
}

func (s *reminderService) RunSweep(ctx context.Context, now time.Time) (domain.SweepResult, error) {
	runID := uuid.NewString()
	logger := s.logger.With("sweep_id", runID)

	rules, err := s.reminders.ListPending(ctx)
	if err != nil {
		return domain.SweepResult{}, fmt.Errorf("list pending reminders: %w", err)
	}

	result := domain.SweepResult{Processed: len(rules)}
	for _, rule := range rules {
		sent, err := s.processRule(ctx, logger, rule, now)
		if err != nil {
			// A single rule's failure doesn't stop the sweep; the rule is
			// either still pending or was released and will be retried on
			// the next trigger.
			logger.Error("reminder rule failed", "rule_id", rule.ID, "event_id", rule.EventID, "error", err)
			continue
		}
		if sent {
			result.Sent++
		}
	}

	logger.Info("reminder sweep finished", "processed", result.Processed, "sent", result.Sent)
	return result, nil
}

// processRule handles one pending rule. It reports whether a reminder was
// dispatched to at least one recipient.
func (s *reminderService) processRule(ctx context.Context, logger *slog.Logger, rule *domain.ReminderRule, now time.Time) (bool, error) {
	event, err := s.events.GetByID(ctx, rule.EventID)
	if err != nil {
		return false, fmt.Errorf("get event: %w", err)
	}

	// Not yet due: leave the rule pending.
	if now.Before(rule.TriggerTime(event)) {
		return false, nil
	}

	// The event already happened: a reminder is moot, not an error. Claim the
	// rule so it never fires.
	if event.Date.Before(now) {
		if _, err := s.reminders.Claim(ctx, rule.ID, now); err != nil {
			return false, fmt.Errorf("claim moot rule: %w", err)
		}
		return false, nil
	}

	nonResponders, err := s.audience.NonResponders(ctx, rule.EventID)
	if err != nil {
		return false, fmt.Errorf("resolve non-responders: %w", err)
	}

	// Claim before dispatching anything. Losing the claim means a concurrent
	// or retried invocation owns this rule.
	claimed, err := s.reminders.Claim(ctx, rule.ID, now)
	if err != nil {
		return false, fmt.Errorf("claim rule: %w", err)
	}
	if !claimed {
		logger.Debug("rule already claimed", "rule_id", rule.ID)
		return false, nil
	}

	// Everyone answered: the claim stands and nothing is dispatched.
	if len(nonResponders) == 0 {
		return false, nil
	}

	// Canonical channel first. If the in-app write fails the claim is
	// released so the next trigger retries the rule.
	if err := s.notifications.Dispatch(ctx, &domain.Fanout{
		UserIDs:       nonResponders,
		Type:          domain.NotificationReminder,
		Message:       fmt.Sprintf("Reminder: respond to %q", event.Title),
		ReferenceKind: domain.ReferenceEvent,
		ReferenceID:   event.ID,
		ActorID:       event.CreatedBy,
		Push: &domain.PushPayload{
			Title: "CrewPlanner",
			Body:  fmt.Sprintf("Reminder: respond to %q", event.Title),
			URL:   "/events/" + event.ID,
			Tag:   "reminder-" + event.ID,
		},
	}); err != nil {
		if releaseErr := s.reminders.Release(ctx, rule.ID); releaseErr != nil {
			logger.Error("failed to release claim", "rule_id", rule.ID, "error", releaseErr)
		}
		return false, fmt.Errorf("dispatch notifications: %w", err)
	}

	// Email is an accelerant: log and move on when it fails.
	deadline := event.Date
	if event.AvailabilityDeadline != nil {
		deadline = *event.AvailabilityDeadline
	}
	if err := s.emails.SendReminder(ctx, &domain.ReminderEmailData{
		EventID:  event.ID,
		Title:    event.Title,
		Deadline: deadline.Format("Monday 2 January 2006 15:04"),
	}, nonResponders); err != nil {
		logger.Warn("reminder emails failed", "rule_id", rule.ID, "error", err)
	}

	// The ledger rows record who was nudged. The claim is kept even if the
	// append fails: the canonical notifications already exist.
	if err := s.reminders.AppendLogs(ctx, event.ID, nonResponders, now); err != nil {
		logger.Error("failed to append delivery logs", "rule_id", rule.ID, "error", err)
	}

	logger.Info("reminder dispatched",
		"rule_id", rule.ID,
		"event_id", event.ID,
		"recipients", len(nonResponders),
	)
	return true, nil
}

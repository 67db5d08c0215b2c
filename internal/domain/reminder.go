package domain

import (
	"context"
	"time"
)

// ReminderOffsetKind selects how a reminder rule's trigger instant is derived.
// The two kinds coexist: rules created by the scheduling UI count backwards
// from the availability deadline, older rules count forwards from event
// creation. The sweep handles each explicitly.
type ReminderOffsetKind string

// Reminder offset kinds.
const (
	OffsetAfterCreation  ReminderOffsetKind = "after_creation"
	OffsetBeforeDeadline ReminderOffsetKind = "before_deadline"
)

// ReminderRule configures one automated nudge for an event. Immutable except
// for the sent flag, which transitions false -> true exactly once.
// swagger:model ReminderRule
type ReminderRule struct {
	ID         string             `json:"id"`
	EventID    string             `json:"event_id"`
	OffsetKind ReminderOffsetKind `json:"offset_kind"`
	OffsetDays int                `json:"offset_days"`
	Sent       bool               `json:"sent"`
	SentAt     *time.Time         `json:"sent_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// TriggerTime computes the instant at which the rule becomes due for the
// given event. Rules counting back from a deadline fall back to the event
// date when no availability deadline is set.
func (r *ReminderRule) TriggerTime(event *Event) time.Time {
	switch r.OffsetKind {
	case OffsetBeforeDeadline:
		deadline := event.Date
		if event.AvailabilityDeadline != nil {
			deadline = *event.AvailabilityDeadline
		}
		return deadline.AddDate(0, 0, -r.OffsetDays)
	default:
		return event.CreatedAt.AddDate(0, 0, r.OffsetDays)
	}
}

// ReminderDeliveryLog records one reminder delivered to one user. Append-only.
type ReminderDeliveryLog struct {
	ID      string    `json:"id"`
	EventID string    `json:"event_id"`
	UserID  string    `json:"user_id"`
	SentAt  time.Time `json:"sent_at"`
}

// ReminderRepository defines storage for reminder rules and the append-only
// delivery log.
type ReminderRepository interface {
	ListPending(ctx context.Context) ([]*ReminderRule, error)
	// Claim atomically transitions the rule from unsent to sent and reports
	// whether this caller won the transition. A false result means a
	// concurrent or earlier sweep already owns the rule.
	Claim(ctx context.Context, ruleID string, sentAt time.Time) (bool, error)
	// Release reverts a claim after a dispatch that failed outright.
	Release(ctx context.Context, ruleID string) error
	AppendLogs(ctx context.Context, eventID string, userIDs []string, sentAt time.Time) error
	CountLogs(ctx context.Context, eventID, userID string) (int, error)
}

// SweepResult is the best-effort telemetry returned by a reminder sweep.
// swagger:model SweepResult
type SweepResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
}

// ReminderService runs the batch reminder pass. It is invoked by an external,
// at-least-once cron trigger; idempotency rests on the per-rule claim.
type ReminderService interface {
	RunSweep(ctx context.Context, now time.Time) (SweepResult, error)
}

// BirthdayResult is the telemetry returned by a birthday sweep.
// swagger:model BirthdayResult
type BirthdayResult struct {
	Birthdays int `json:"birthdays"`
	Notified  int `json:"notified"`
}

// BirthdayService announces roster birthdays to everyone but the birthday person.
type BirthdayService interface {
	RunSweep(ctx context.Context, now time.Time) (BirthdayResult, error)
}

package domain

import (
	"context"
	"time"
)

// NotificationType tags the reason a notification was produced.
type NotificationType string

// Notification type values.
const (
	NotificationReminder     NotificationType = "reminder"
	NotificationBirthday     NotificationType = "birthday"
	NotificationEventInvite  NotificationType = "event_invite"
	NotificationAvailability NotificationType = "availability"
	NotificationTaskAssigned NotificationType = "task_assigned"
)

// ReferenceKind names the entity a notification points back to.
type ReferenceKind string

// Reference kinds.
const (
	ReferenceEvent ReferenceKind = "event"
	ReferencePost  ReferenceKind = "post"
	ReferenceTask  ReferenceKind = "task"
)

// Notification is the canonical in-app delivery record. Created in bulk by the
// fan-out; mutated only by the recipient's read-state transitions.
// swagger:model Notification
type Notification struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	Type          NotificationType `json:"type"`
	Message       string           `json:"message"`
	ReferenceKind ReferenceKind    `json:"reference_kind"`
	ReferenceID   string           `json:"reference_id"`
	ActorID       string           `json:"actor_id"`
	Read          bool             `json:"read"`
	CreatedAt     time.Time        `json:"created_at"`
}

// NotificationRepository defines storage for in-app notifications.
type NotificationRepository interface {
	// CreateBatch inserts all notifications in a single statement.
	// All-or-nothing: the in-app channel is the canonical record.
	CreateBatch(ctx context.Context, notifications []*Notification) error
	ListByUserID(ctx context.Context, userID string, limit int) ([]*Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	DeleteRead(ctx context.Context, userID string) (int64, error)
}

// Fanout is one logical notification addressed to a resolved recipient set.
type Fanout struct {
	UserIDs       []string
	Type          NotificationType
	Message       string
	ReferenceKind ReferenceKind
	ReferenceID   string
	ActorID       string
	// Push, when non-nil, is delivered best-effort to every registered
	// endpoint of each recipient after the in-app write succeeds.
	Push *PushPayload
}

// NotificationService dispatches a fan-out: the in-app write is canonical and
// its failure propagates; push is a best-effort accelerant.
type NotificationService interface {
	Dispatch(ctx context.Context, f *Fanout) error
}

// AudienceResolver computes recipient sets.
type AudienceResolver interface {
	// NonResponders returns invited users without an availability response.
	NonResponders(ctx context.Context, eventID string) ([]string, error)
	// ByRole returns every user with the given role, excluding the actor.
	ByRole(ctx context.Context, role Role, actorID string) ([]string, error)
	// Explicit filters the actor out of a caller-supplied recipient list.
	Explicit(userIDs []string, actorID string) []string
}

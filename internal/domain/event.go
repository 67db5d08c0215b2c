package domain

import (
	"context"
	"time"
)

// EventType categorizes a team event.
type EventType string

// Event type values.
const (
	EventCompetition EventType = "competition"
	EventTraining    EventType = "training"
	EventMaintenance EventType = "maintenance"
	EventSocial      EventType = "social"
)

// Event represents a scheduled team event. Events are authored by the CRUD
// collaborator; the reminder engine only reads them.
// swagger:model Event
type Event struct {
	ID                   string     `json:"id"`
	Type                 EventType  `json:"type"`
	Title                string     `json:"title"`
	Description          *string    `json:"description,omitempty"`
	Date                 time.Time  `json:"date"`
	EndTime              *time.Time `json:"end_time,omitempty"`
	Location             *string    `json:"location,omitempty"`
	AvailabilityDeadline *time.Time `json:"availability_deadline,omitempty"`
	CreatedBy            string     `json:"created_by"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Invitation marks a user as invited to an event. Invitations form the
// universe from which non-responders are computed.
type Invitation struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// AvailabilityStatus is a member's answer to an event invitation.
type AvailabilityStatus string

// Availability status values.
const (
	Available   AvailabilityStatus = "available"
	Maybe       AvailabilityStatus = "maybe"
	Unavailable AvailabilityStatus = "unavailable"
)

// Valid reports whether s is a known availability status.
func (s AvailabilityStatus) Valid() bool {
	switch s {
	case Available, Maybe, Unavailable:
		return true
	}
	return false
}

// AvailabilityResponse is a member's (at most one per event) availability
// answer. Reason is mandatory when the status is Unavailable.
// swagger:model AvailabilityResponse
type AvailabilityResponse struct {
	ID          string             `json:"id"`
	EventID     string             `json:"event_id"`
	UserID      string             `json:"user_id"`
	Status      AvailabilityStatus `json:"status"`
	Reason      *string            `json:"reason,omitempty"`
	RespondedAt time.Time          `json:"responded_at"`
}

// Validate checks the domain invariants of an availability response.
func (a *AvailabilityResponse) Validate() error {
	if !a.Status.Valid() {
		return ErrInvalidStatus
	}
	if a.Status == Unavailable && (a.Reason == nil || *a.Reason == "") {
		return ErrReasonRequired
	}
	return nil
}

// AvailabilityService records a member's availability answer and notifies the
// admins about it.
type AvailabilityService interface {
	Set(ctx context.Context, resp *AvailabilityResponse) error
}

// EventRepository defines read access to events and their invitation and
// availability records, plus the availability upsert used when a member answers.
type EventRepository interface {
	GetByID(ctx context.Context, id string) (*Event, error)
	ListInvitations(ctx context.Context, eventID string) ([]*Invitation, error)
	ListAvailability(ctx context.Context, eventID string) ([]*AvailabilityResponse, error)
	IsInvited(ctx context.Context, eventID, userID string) (bool, error)
	// UpsertAvailability inserts or replaces the (event, user) response and
	// refreshes RespondedAt on every call.
	UpsertAvailability(ctx context.Context, resp *AvailabilityResponse) error
}

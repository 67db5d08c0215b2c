package domain

import (
	"context"
	"time"
)

// PushSubscription registers one browser endpoint for a user. Unique per
// endpoint; removed on explicit unsubscribe or when delivery reports the
// endpoint gone.
// swagger:model PushSubscription
type PushSubscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	CreatedAt time.Time `json:"created_at"`
}

// PushSubscriptionRepository defines storage for the push registry.
type PushSubscriptionRepository interface {
	// Upsert creates the subscription or, if the endpoint is already
	// registered, re-binds it to the user and refreshes the keys.
	Upsert(ctx context.Context, sub *PushSubscription) error
	DeleteByEndpoint(ctx context.Context, userID, endpoint string) error
	ListByUserIDs(ctx context.Context, userIDs []string) ([]*PushSubscription, error)
	DeleteByIDs(ctx context.Context, ids []string) error
}

// PushPayload is the wire shape delivered to every endpoint. Tag lets the
// receiving client coalesce notifications about the same logical subject.
type PushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
	Tag   string `json:"tag"`
}

// PushTransport delivers an encrypted payload to a single endpoint
// (infrastructure port). Send returns ErrEndpointGone (possibly wrapped) when
// the endpoint reports 404/410.
type PushTransport interface {
	// Enabled reports whether the transport is configured. A disabled
	// transport makes the whole push channel a silent no-op.
	Enabled() bool
	Send(ctx context.Context, sub *PushSubscription, payload []byte) error
}

// PushSender fans one payload out to every registered endpoint of the given
// users. Best-effort: individual endpoint failures are isolated and dead
// endpoints are reaped.
type PushSender interface {
	SendToUsers(ctx context.Context, userIDs []string, payload PushPayload) error
}

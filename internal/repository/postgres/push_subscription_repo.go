package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"crewplanner/internal/domain"
)

type pushSubscriptionRepository struct {
	DB *sql.DB
}

func NewPushSubscriptionRepository(db *sql.DB) domain.PushSubscriptionRepository {
	return &pushSubscriptionRepository{DB: db}
}

func (r *pushSubscriptionRepository) Upsert(ctx context.Context, sub *domain.PushSubscription) error {
	query := `
		INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (endpoint)
		DO UPDATE SET user_id = EXCLUDED.user_id, p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, sub.UserID, sub.Endpoint, sub.P256dh, sub.Auth, sub.CreatedAt).
		Scan(&sub.ID)
}

func (r *pushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, userID, endpoint string) error {
	query := `
		DELETE FROM push_subscriptions
		WHERE user_id = $1 AND endpoint = $2
	`
	_, err := r.DB.ExecContext(ctx, query, userID, endpoint)
	return err
}

func (r *pushSubscriptionRepository) ListByUserIDs(ctx context.Context, userIDs []string) ([]*domain.PushSubscription, error) {
	if len(userIDs) == 0 {
		return []*domain.PushSubscription{}, nil
	}
	query := `
		SELECT id, user_id, endpoint, p256dh, auth, created_at
		FROM push_subscriptions
		WHERE user_id = ANY($1)
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*domain.PushSubscription
	for rows.Next() {
		sub := &domain.PushSubscription{}
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dh, &sub.Auth, &sub.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []*domain.PushSubscription{}
	}
	return subs, nil
}

func (r *pushSubscriptionRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
		DELETE FROM push_subscriptions
		WHERE id = ANY($1)
	`
	_, err := r.DB.ExecContext(ctx, query, pq.Array(ids))
	return err
}

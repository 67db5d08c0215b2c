package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"crewplanner/internal/domain"
)

type notificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) domain.NotificationRepository {
	return &notificationRepository{DB: db}
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO notifications (user_id, type, message, reference_kind, reference_id, actor_id, read, created_at) VALUES `)
	args := make([]any, 0, len(notifications)*8)
	for i, n := range notifications {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 8
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8)
		args = append(args, n.UserID, n.Type, n.Message, n.ReferenceKind, n.ReferenceID, n.ActorID, n.Read, n.CreatedAt)
	}
	_, err := r.DB.ExecContext(ctx, sb.String(), args...)
	return err
}

func (r *notificationRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	query := `
		SELECT id, user_id, type, message, reference_kind, reference_id, actor_id, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ns []*domain.Notification
	for rows.Next() {
		n := &domain.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.ReferenceKind, &n.ReferenceID, &n.ActorID, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		ns = append(ns, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if ns == nil {
		ns = []*domain.Notification{}
	}
	return ns, nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1 AND read = false
	`
	var count int
	if err := r.DB.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	// Scoped to the recipient so nobody can mark someone else's notification.
	query := `
		UPDATE notifications
		SET read = true
		WHERE id = $1 AND user_id = $2
	`
	_, err := r.DB.ExecContext(ctx, query, id, userID)
	return err
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	query := `
		UPDATE notifications
		SET read = true
		WHERE user_id = $1 AND read = false
	`
	_, err := r.DB.ExecContext(ctx, query, userID)
	return err
}

func (r *notificationRepository) DeleteRead(ctx context.Context, userID string) (int64, error) {
	query := `
		DELETE FROM notifications
		WHERE user_id = $1 AND read = true
	`
	res, err := r.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"crewplanner/internal/domain"
)

type reminderRepository struct {
	DB *sql.DB
}

func NewReminderRepository(db *sql.DB) domain.ReminderRepository {
	return &reminderRepository{DB: db}
}

func (r *reminderRepository) ListPending(ctx context.Context) ([]*domain.ReminderRule, error) {
	query := `
		SELECT id, event_id, offset_kind, offset_days, sent, sent_at, created_at
		FROM reminder_rules
		WHERE sent = false
		ORDER BY created_at
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*domain.ReminderRule
	for rows.Next() {
		rule := &domain.ReminderRule{}
		var sentAtNull sql.NullTime
		if err := rows.Scan(&rule.ID, &rule.EventID, &rule.OffsetKind, &rule.OffsetDays, &rule.Sent, &sentAtNull, &rule.CreatedAt); err != nil {
			return nil, err
		}
		if sentAtNull.Valid {
			rule.SentAt = &sentAtNull.Time
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if rules == nil {
		rules = []*domain.ReminderRule{}
	}
	return rules, nil
}

// Claim is the sweep's only serialization point: the conditional update wins
// for exactly one caller, so overlapping cron invocations never dispatch the
// same rule twice.
func (r *reminderRepository) Claim(ctx context.Context, ruleID string, sentAt time.Time) (bool, error) {
	query := `
		UPDATE reminder_rules
		SET sent = true, sent_at = $2
		WHERE id = $1 AND sent = false
	`
	res, err := r.DB.ExecContext(ctx, query, ruleID, sentAt)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *reminderRepository) Release(ctx context.Context, ruleID string) error {
	query := `
		UPDATE reminder_rules
		SET sent = false, sent_at = NULL
		WHERE id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, ruleID)
	return err
}

func (r *reminderRepository) AppendLogs(ctx context.Context, eventID string, userIDs []string, sentAt time.Time) error {
	if len(userIDs) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO reminder_delivery_logs (event_id, user_id, sent_at) VALUES `)
	args := make([]any, 0, len(userIDs)*3)
	for i, userID := range userIDs {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($%d, $%d, $%d)", i*3+1, i*3+2, i*3+3)
		args = append(args, eventID, userID, sentAt)
	}
	_, err := r.DB.ExecContext(ctx, sb.String(), args...)
	return err
}

func (r *reminderRepository) CountLogs(ctx context.Context, eventID, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM reminder_delivery_logs
		WHERE event_id = $1 AND user_id = $2
	`
	var count int
	if err := r.DB.QueryRowContext(ctx, query, eventID, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

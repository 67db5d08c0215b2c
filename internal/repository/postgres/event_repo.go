package postgres

import (
	"context"
	"database/sql"
	"errors"

	"crewplanner/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, type, title, description, date, end_time, location, availability_deadline, created_by, created_at, updated_at
		FROM events
		WHERE id = $1
	`
	e := &domain.Event{}
	var descNull, locNull sql.NullString
	var endNull, deadlineNull sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Type, &e.Title, &descNull, &e.Date, &endNull, &locNull,
		&deadlineNull, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if descNull.Valid {
		e.Description = &descNull.String
	}
	if locNull.Valid {
		e.Location = &locNull.String
	}
	if endNull.Valid {
		e.EndTime = &endNull.Time
	}
	if deadlineNull.Valid {
		e.AvailabilityDeadline = &deadlineNull.Time
	}
	return e, nil
}

func (r *eventRepository) ListInvitations(ctx context.Context, eventID string) ([]*domain.Invitation, error) {
	query := `
		SELECT id, event_id, user_id, created_at
		FROM invitations
		WHERE event_id = $1
		ORDER BY created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []*domain.Invitation
	for rows.Next() {
		inv := &domain.Invitation{}
		if err := rows.Scan(&inv.ID, &inv.EventID, &inv.UserID, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	return invs, nil
}

func (r *eventRepository) ListAvailability(ctx context.Context, eventID string) ([]*domain.AvailabilityResponse, error) {
	query := `
		SELECT id, event_id, user_id, status, reason, responded_at
		FROM availability_responses
		WHERE event_id = $1
		ORDER BY responded_at
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resps []*domain.AvailabilityResponse
	for rows.Next() {
		resp := &domain.AvailabilityResponse{}
		var reasonNull sql.NullString
		if err := rows.Scan(&resp.ID, &resp.EventID, &resp.UserID, &resp.Status, &reasonNull, &resp.RespondedAt); err != nil {
			return nil, err
		}
		if reasonNull.Valid {
			resp.Reason = &reasonNull.String
		}
		resps = append(resps, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if resps == nil {
		resps = []*domain.AvailabilityResponse{}
	}
	return resps, nil
}

func (r *eventRepository) IsInvited(ctx context.Context, eventID, userID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM invitations WHERE event_id = $1 AND user_id = $2
		)
	`
	var invited bool
	if err := r.DB.QueryRowContext(ctx, query, eventID, userID).Scan(&invited); err != nil {
		return false, err
	}
	return invited, nil
}

func (r *eventRepository) UpsertAvailability(ctx context.Context, resp *domain.AvailabilityResponse) error {
	query := `
		INSERT INTO availability_responses (event_id, user_id, status, reason, responded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id, user_id)
		DO UPDATE SET status = EXCLUDED.status, reason = EXCLUDED.reason, responded_at = EXCLUDED.responded_at
		RETURNING id
	`
	var reason sql.NullString
	if resp.Reason != nil {
		reason = sql.NullString{String: *resp.Reason, Valid: true}
	}
	return r.DB.QueryRowContext(ctx, query, resp.EventID, resp.UserID, resp.Status, reason, resp.RespondedAt).
		Scan(&resp.ID)
}

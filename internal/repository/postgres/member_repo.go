package postgres

import (
	"context"
	"database/sql"
	"errors"

	"crewplanner/internal/domain"
)

type teamMemberRepository struct {
	DB *sql.DB
}

func NewTeamMemberRepository(db *sql.DB) domain.TeamMemberRepository {
	return &teamMemberRepository{DB: db}
}

const memberColumns = `id, email, name, last_name, is_admin, birth_date, password_hash, salt, created_at, updated_at`

func (r *teamMemberRepository) scanMember(row *sql.Row) (*domain.TeamMember, error) {
	m := &domain.TeamMember{}
	var birthNull sql.NullTime
	err := row.Scan(&m.ID, &m.Email, &m.Name, &m.LastName, &m.IsAdmin, &birthNull, &m.PasswordHash, &m.Salt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	if birthNull.Valid {
		m.BirthDate = &birthNull.Time
	}
	return m, nil
}

func (r *teamMemberRepository) GetByID(ctx context.Context, id string) (*domain.TeamMember, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM team_members
		WHERE id = $1
	`
	return r.scanMember(r.DB.QueryRowContext(ctx, query, id))
}

func (r *teamMemberRepository) GetByEmail(ctx context.Context, email string) (*domain.TeamMember, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM team_members
		WHERE email = $1
	`
	return r.scanMember(r.DB.QueryRowContext(ctx, query, email))
}

func (r *teamMemberRepository) List(ctx context.Context) ([]*domain.TeamMember, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM team_members
		ORDER BY name, last_name
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*domain.TeamMember
	for rows.Next() {
		m := &domain.TeamMember{}
		var birthNull sql.NullTime
		if err := rows.Scan(&m.ID, &m.Email, &m.Name, &m.LastName, &m.IsAdmin, &birthNull, &m.PasswordHash, &m.Salt, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		if birthNull.Valid {
			m.BirthDate = &birthNull.Time
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if members == nil {
		members = []*domain.TeamMember{}
	}
	return members, nil
}

func (r *teamMemberRepository) SetAdmin(ctx context.Context, userID string, isAdmin bool) error {
	query := `
		UPDATE team_members
		SET is_admin = $2, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, userID, isAdmin)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

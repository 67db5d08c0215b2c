package domain

import (
	"context"
	"time"
)

// Role is an application role.
type Role string

// Role values.
const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// TeamMember is a roster entry: the locally persisted view of a user,
// including the local role flag and login credentials.
// swagger:model TeamMember
type TeamMember struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	LastName     string     `json:"last_name"`
	IsAdmin      bool       `json:"is_admin"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	PasswordHash string     `json:"-"`
	Salt         string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// FullName joins the member's name parts.
func (m *TeamMember) FullName() string {
	if m.LastName == "" {
		return m.Name
	}
	return m.Name + " " + m.LastName
}

// Role derives the member's role from the local flag.
func (m *TeamMember) Role() Role {
	if m.IsAdmin {
		return RoleAdmin
	}
	return RoleMember
}

// TeamMemberRepository defines storage for the roster.
type TeamMemberRepository interface {
	GetByID(ctx context.Context, id string) (*TeamMember, error)
	GetByEmail(ctx context.Context, email string) (*TeamMember, error)
	List(ctx context.Context) ([]*TeamMember, error)
	// SetAdmin is the single write path for the local role flag. Callers that
	// also maintain identity-provider metadata must update both.
	SetAdmin(ctx context.Context, userID string, isAdmin bool) error
}

// IdentityUser is a user as resolved by the external identity provider.
type IdentityUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Role     Role   `json:"role"`
}

// IdentityProvider resolves users through the external identity service.
type IdentityProvider interface {
	GetUsers(ctx context.Context, userIDs []string) ([]*IdentityUser, error)
	ListUsers(ctx context.Context) ([]*IdentityUser, error)
}

// RoleProvider answers role questions from a single authoritative source.
// Implementations exist for the local roster flag and for identity-provider
// metadata; the audience resolver does not care which is wired.
type RoleProvider interface {
	RoleOf(ctx context.Context, userID string) (Role, error)
	ListIDsByRole(ctx context.Context, role Role) ([]string, error)
}

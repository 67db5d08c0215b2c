package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crewplanner/internal/domain"
)

const sessionTokenExpiry = 24 * time.Hour

type authService struct {
	members domain.TeamMemberRepository
	hasher  domain.PasswordHasher
	issuer  domain.TokenIssuer
}

// NewAuthService returns an AuthService that authenticates against the roster
// and issues session JWTs.
func NewAuthService(members domain.TeamMemberRepository, hasher domain.PasswordHasher, issuer domain.TokenIssuer) domain.AuthService {
	return &authService{members: members, hasher: hasher, issuer: issuer}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.TeamMember, error) {
	m, err := s.members.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get member: %w", err)
	}
	if err := s.hasher.Compare(m.PasswordHash, m.Salt, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	token, err := s.issuer.Issue(m.ID, m.Email, []string{string(m.Role())}, sessionTokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, m, nil
}

package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"crewplanner/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersJSON = `{
	"users": [
		{"id": "user-1", "email": "anna@example.com", "first_name": "Anna", "last_name": "Visser", "role": "admin"},
		{"id": "user-2", "email": "bram@example.com", "first_name": "Bram", "last_name": "de Boer", "role": "member"},
		{"id": "user-3", "email": "carla@example.com", "first_name": "Carla", "last_name": "Smit", "role": "superuser"}
	]
}`

func TestHTTPProvider_GetUsers(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(usersJSON))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.Client(), srv.URL+"/", "secret-key")
	users, err := p.GetUsers(context.Background(), []string{"user-1", "user-2", "user-3"})
	require.NoError(t, err)

	assert.Equal(t, "/v1/users", gotPath)
	assert.Equal(t, "user_id=user-1&user_id=user-2&user_id=user-3", gotQuery)
	assert.Equal(t, "Bearer secret-key", gotAuth)

	require.Len(t, users, 3)
	assert.Equal(t, "user-1", users[0].ID)
	assert.Equal(t, "Anna", users[0].Name)
	assert.Equal(t, domain.RoleAdmin, users[0].Role)
	assert.Equal(t, domain.RoleMember, users[1].Role)
	// Unknown roles collapse to member.
	assert.Equal(t, domain.RoleMember, users[2].Role)
}

func TestHTTPProvider_GetUsers_EmptyInput(t *testing.T) {
	p := NewHTTPProvider(nil, "http://identity.invalid", "")
	users, err := p.GetUsers(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestHTTPProvider_ListUsers(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(usersJSON))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.Client(), srv.URL, "")
	users, err := p.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 3)
	assert.Empty(t, gotAuth, "no auth header without an api key")
}

func TestHTTPProvider_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.Client(), srv.URL, "")
	_, err := p.ListUsers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPProvider_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"users": [`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.Client(), srv.URL, "")
	_, err := p.ListUsers(context.Background())
	assert.Error(t, err)
}

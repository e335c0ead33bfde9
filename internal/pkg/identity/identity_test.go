package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvios/backend/internal/pkg/apperrors"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *GoTrue {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewGoTrue(Config{URL: server.URL, AnonKey: "anon", ServiceRoleKey: "service"}, zerolog.Nop())
}

func TestSignInSendsPasswordGrant(t *testing.T) {
	g := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@example.com", body["email"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","token_type":"bearer","expires_in":3600,"user":{"id":"u-1","email":"ada@example.com"}}`))
	})

	session, err := g.SignIn(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "at", session.AccessToken)
	assert.Equal(t, "u-1", session.User.ID)
}

func TestUpdateUserRoleUsesServiceKey(t *testing.T) {
	g := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/auth/v1/admin/users/u-1", r.URL.Path)
		assert.Equal(t, "Bearer service", r.Header.Get("Authorization"))
		assert.Equal(t, "service", r.Header.Get("apikey"))

		var body struct {
			UserMetadata map[string]string `json:"user_metadata"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "AGENT", body.UserMetadata["role"])
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, g.UpdateUserRole(context.Background(), "u-1", "AGENT"))
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		call   func(g *GoTrue) error
		want   error
	}{
		{"bad login", http.StatusBadRequest, func(g *GoTrue) error {
			_, err := g.SignIn(context.Background(), "a@b.c", "x")
			return err
		}, apperrors.ErrInvalidCredentials},
		{"unknown user on delete", http.StatusNotFound, func(g *GoTrue) error {
			return g.DeleteUser(context.Background(), "missing")
		}, apperrors.ErrResourceNotFound},
		{"provider outage", http.StatusBadGateway, func(g *GoTrue) error {
			return g.UpdateUserRole(context.Background(), "u-1", "AGENT")
		}, apperrors.ErrExternalService},
		{"expired session on refresh", http.StatusUnauthorized, func(g *GoTrue) error {
			_, err := g.Refresh(context.Background(), "stale")
			return err
		}, apperrors.ErrInvalidCredentials},
		{"rejected service key on role sync", http.StatusUnauthorized, func(g *GoTrue) error {
			return g.UpdateUserRole(context.Background(), "u-1", "AGENT")
		}, apperrors.ErrExternalService},
		{"forbidden service key on delete", http.StatusForbidden, func(g *GoTrue) error {
			return g.DeleteUser(context.Background(), "u-1")
		}, apperrors.ErrExternalService},
		{"weak password on sign up", http.StatusUnprocessableEntity, func(g *GoTrue) error {
			_, err := g.SignUp(context.Background(), "a@b.c", "x", nil)
			return err
		}, apperrors.ErrBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"msg":"nope"}`))
			})
			err := tc.call(g)
			assert.ErrorIs(t, err, tc.want)
			if tc.want != apperrors.ErrInvalidCredentials {
				assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
			}
		})
	}
}

func TestUnreachableProvider(t *testing.T) {
	g := NewGoTrue(Config{URL: "http://127.0.0.1:1"}, zerolog.Nop())
	err := g.DeleteUser(context.Background(), "u-1")
	assert.ErrorIs(t, err, apperrors.ErrExternalService)
}

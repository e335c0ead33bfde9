package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/app/repositories/inmem"
	"github.com/edvios/backend/internal/pkg/apperrors"
	"github.com/edvios/backend/internal/pkg/auth"
)

type fakeValidator struct {
	subjects map[string]string
}

func (f fakeValidator) ValidateToken(_ context.Context, token string) (*auth.Claims, error) {
	switch token {
	case "expired":
		return nil, fmt.Errorf("validate: %w", apperrors.ErrTokenExpired)
	}
	subject, ok := f.subjects[token]
	if !ok {
		return nil, apperrors.ErrTokenInvalid
	}
	return &auth.Claims{
		Email:            subject + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
	}, nil
}

func newTestAuthMiddleware(t *testing.T) *AuthMiddleware {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos, _ := inmem.New()
	ctx := context.Background()
	require.NoError(t, repos.Users.Create(ctx, &models.User{ID: "student-1", Email: "student@example.com", Role: models.RoleStudent}))
	require.NoError(t, repos.Users.Create(ctx, &models.User{ID: "selected-1", Email: "selected@example.com", Role: models.RoleSelectedAgent}))
	require.NoError(t, repos.Users.Create(ctx, &models.User{ID: "admin-1", Email: "admin@example.com", Role: models.RoleAdmin}))

	validator := fakeValidator{subjects: map[string]string{
		"student-token":  "student-1",
		"selected-token": "selected-1",
		"admin-token":    "admin-1",
		"orphan-token":   "orphan-1",
	}}
	return NewAuthMiddleware(validator, repos.Users, zerolog.Nop())
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func TestJWTAuth(t *testing.T) {
	m := newTestAuthMiddleware(t)

	router := gin.New()
	router.GET("/me", m.JWTAuth(), func(c *gin.Context) {
		actor := CurrentActor(c)
		c.JSON(http.StatusOK, gin.H{"id": actor.UserID, "role": actor.Role})
	})

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
		wantCode   dto.ErrorCode
		wantRole   models.RoleType
	}{
		{name: "missing token", wantStatus: http.StatusUnauthorized, wantCode: dto.ErrorCodeUnauthorized},
		{name: "invalid token", header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantCode: dto.ErrorCodeInvalidToken},
		{name: "expired token", header: "Bearer expired", wantStatus: http.StatusUnauthorized, wantCode: dto.ErrorCodeExpiredToken},
		{name: "no user row", header: "Bearer orphan-token", wantStatus: http.StatusForbidden, wantCode: dto.ErrorCodeForbidden},
		{name: "student", header: "Bearer student-token", wantStatus: http.StatusOK, wantRole: models.RoleStudent},
		{name: "quoted header", header: "\"Bearer admin-token\"", wantStatus: http.StatusOK, wantRole: models.RoleAdmin},
		{name: "query token", query: "?token=selected-token", wantStatus: http.StatusOK, wantRole: models.RoleSelectedAgent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, tt.wantCode, decodeError(t, w).Error.Code)
				return
			}
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, string(tt.wantRole), body["role"])
		})
	}
}

func TestTokenAuthDoesNotRequireUserRow(t *testing.T) {
	m := newTestAuthMiddleware(t)

	router := gin.New()
	router.POST("/auth/users", m.TokenAuth(), func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"id": CurrentUserID(c), "email": c.GetString(ContextEmail)})
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/users", nil)
	req.Header.Set("Authorization", "Bearer orphan-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "orphan-1", body["id"])
	assert.Equal(t, "orphan-1@example.com", body["email"])
}

func TestRoleRequired(t *testing.T) {
	m := newTestAuthMiddleware(t)

	router := gin.New()
	group := router.Group("/", m.JWTAuth())
	group.GET("/agents-only", m.RoleRequired(models.RoleAgent), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	group.GET("/admin-only", m.RoleRequired(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	tests := []struct {
		name       string
		path       string
		token      string
		wantStatus int
	}{
		{"selected agent counts as agent", "/agents-only", "selected-token", http.StatusNoContent},
		{"student is not an agent", "/agents-only", "student-token", http.StatusForbidden},
		{"admin allowed", "/admin-only", "admin-token", http.StatusNoContent},
		{"selected agent is not admin", "/admin-only", "selected-token", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRoleRequiredWithoutAuthentication(t *testing.T) {
	m := newTestAuthMiddleware(t)

	router := gin.New()
	router.GET("/x", m.RoleRequired(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appAuth "github.com/edvios/backend/internal/app/auth"
	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/pkg/apperrors"
	"github.com/edvios/backend/internal/pkg/auth"
)

// Context keys set by the auth middleware
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// TokenValidator verifies identity provider access tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	verifier TokenValidator
	userRepo repositories.UserRepository
	logger   zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier TokenValidator, userRepo repositories.UserRepository, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		userRepo: userRepo,
		logger:   logger,
	}
}

func abortAuth(c *gin.Context, status int, code dto.ErrorCode, message, details string) {
	detail := dto.NewErrorDetail(code, message).WithDetails(details)
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// tokenFromRequest reads the bearer token. Browsers cannot set headers on websocket
// upgrades, so the token query parameter is accepted as well.
func tokenFromRequest(c *gin.Context) (string, error) {
	header := strings.Trim(c.GetHeader("Authorization"), "\"'")
	if header == "" {
		header = c.Query("token")
	}
	return auth.ExtractBearerToken(header)
}

// verify validates the token and stores the subject and email in the context
func (m *AuthMiddleware) verify(c *gin.Context) bool {
	tokenString, err := tokenFromRequest(c)
	if err != nil {
		abortAuth(c, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required", "Authorization header missing")
		return false
	}

	claims, err := m.verifier.ValidateToken(c.Request.Context(), tokenString)
	if err != nil {
		code, details := dto.ErrorCodeInvalidToken, "Invalid token"
		if errors.Is(err, apperrors.ErrTokenExpired) {
			code, details = dto.ErrorCodeExpiredToken, "Token has expired"
		}
		abortAuth(c, http.StatusUnauthorized, code, "Authentication failed", details)
		return false
	}

	c.Set(ContextUserID, claims.UserID())
	c.Set(ContextEmail, claims.Email)
	return true
}

// TokenAuth only verifies the access token. It guards the endpoint that creates the
// user row, where no row exists yet.
func (m *AuthMiddleware) TokenAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.verify(c) {
			return
		}
		c.Next()
	}
}

// JWTAuth verifies the access token and loads the caller's role from the user store.
// Roles cached in token metadata are ignored.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.verify(c) {
			return
		}

		userID := c.GetString(ContextUserID)
		user, err := m.userRepo.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				abortAuth(c, http.StatusForbidden, dto.ErrorCodeForbidden, "User profile not found", "Create your user profile first")
				return
			}
			m.logger.Error().Err(err).Str("userID", userID).Msg("Failed to load user for request")
			abortAuth(c, http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error", "Failed to load user")
			return
		}

		c.Set(ContextRole, user.Role)
		c.Next()
	}
}

// RoleRequired middleware to check if user has one of the required roles.
// SELECTED_AGENT satisfies AGENT.
func (m *AuthMiddleware) RoleRequired(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(ContextRole)
		current, isRole := role.(models.RoleType)
		if !ok || !isRole {
			abortAuth(c, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required", "User role not found")
			return
		}

		current = current.Normalized()
		for _, r := range roles {
			if current == r.Normalized() {
				c.Next()
				return
			}
		}
		abortAuth(c, http.StatusForbidden, dto.ErrorCodeForbidden, "Access denied", "You don't have sufficient permissions for this operation")
	}
}

// CurrentUserID returns the authenticated subject
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// CurrentActor returns the authenticated user and role
func CurrentActor(c *gin.Context) appAuth.Actor {
	role, _ := c.Get(ContextRole)
	r, _ := role.(models.RoleType)
	return appAuth.Actor{UserID: c.GetString(ContextUserID), Role: r}
}

// Package identity talks to the external identity provider (Supabase GoTrue).
// The relational store owns roles; the provider's user metadata is a cache synced on write.
package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/edvios/backend/internal/pkg/apperrors"
)

// Session is a token pair issued by the provider
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// Provider is the identity provider surface the backend uses
type Provider interface {
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	// UpdateUserRole writes role into the user's metadata
	UpdateUserRole(ctx context.Context, userID, role string) error
	DeleteUser(ctx context.Context, userID string) error
}

// Config defines the GoTrue client settings
type Config struct {
	URL            string
	AnonKey        string
	ServiceRoleKey string
	Timeout        time.Duration
}

// GoTrue implements Provider over the GoTrue REST API
type GoTrue struct {
	client *resty.Client
	config Config
	log    zerolog.Logger
}

type goTrueError struct {
	Code        int    `json:"code"`
	ErrorCode   string `json:"error_code"`
	Msg         string `json:"msg"`
	Message     string `json:"message"`
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

func (e *goTrueError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.Description, e.Error} {
		if s != "" {
			return s
		}
	}
	return "identity provider error"
}

// NewGoTrue creates a new GoTrue client
func NewGoTrue(config Config, log zerolog.Logger) *GoTrue {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(config.URL, "/") + "/auth/v1").
		SetTimeout(config.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("apikey", config.AnonKey).
		SetError(&goTrueError{})

	return &GoTrue{
		client: client,
		config: config,
		log:    log.With().Str("component", "identity").Logger(),
	}
}

// SignUp registers a new user with email and password
func (g *GoTrue) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*Session, error) {
	var session Session
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"email": email, "password": password, "data": metadata}).
		SetResult(&session).
		Post("/signup")
	if err := g.check(resp, err, "sign up"); err != nil {
		return nil, err
	}
	return &session, nil
}

// SignIn exchanges email and password for a session
func (g *GoTrue) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&session).
		Post("/token")
	if err := g.check(resp, err, "sign in"); err != nil {
		return nil, err
	}
	return &session, nil
}

// Refresh exchanges a refresh token for a new session
func (g *GoTrue) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	var session Session
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "refresh_token").
		SetBody(map[string]string{"refresh_token": refreshToken}).
		SetResult(&session).
		Post("/token")
	if err := g.check(resp, err, "refresh"); err != nil {
		return nil, err
	}
	return &session, nil
}

func (g *GoTrue) admin(ctx context.Context) *resty.Request {
	return g.client.R().
		SetContext(ctx).
		SetHeader("apikey", g.config.ServiceRoleKey).
		SetAuthToken(g.config.ServiceRoleKey)
}

// UpdateUserRole syncs the role into the user's metadata
func (g *GoTrue) UpdateUserRole(ctx context.Context, userID, role string) error {
	resp, err := g.admin(ctx).
		SetPathParam("id", userID).
		SetBody(map[string]any{"user_metadata": map[string]string{"role": role}}).
		Put("/admin/users/{id}")
	return g.check(resp, err, "update user role")
}

// DeleteUser removes the user from the provider
func (g *GoTrue) DeleteUser(ctx context.Context, userID string) error {
	resp, err := g.admin(ctx).
		SetPathParam("id", userID).
		Delete("/admin/users/{id}")
	return g.check(resp, err, "delete user")
}

// check maps transport failures and provider responses onto the error taxonomy
func (g *GoTrue) check(resp *resty.Response, err error, op string) error {
	if err != nil {
		g.log.Error().Err(err).Str("operation", op).Msg("Identity provider unreachable")
		return apperrors.NewExternalServiceError("identity provider unavailable", err)
	}
	if !resp.IsError() {
		return nil
	}

	msg := "identity provider error"
	if e, ok := resp.Error().(*goTrueError); ok {
		msg = e.text()
	}
	g.log.Warn().Int("status", resp.StatusCode()).Str("operation", op).Str("reason", msg).Msg("Identity provider rejected request")

	userCredentials := op == "sign in" || op == "refresh"
	switch resp.StatusCode() {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if userCredentials {
			return fmt.Errorf("%w: %s", apperrors.ErrInvalidCredentials, msg)
		}
		return apperrors.NewBadRequestError(msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		if userCredentials {
			return fmt.Errorf("%w: %s", apperrors.ErrInvalidCredentials, msg)
		}
		// the service key itself was refused; the caller's credentials are not at fault
		g.log.Error().Int("status", resp.StatusCode()).Str("operation", op).Msg("Identity provider refused service credentials")
		return apperrors.NewExternalServiceError("identity provider refused the request", fmt.Errorf("%s: status %d", op, resp.StatusCode()))
	case http.StatusNotFound:
		return apperrors.NewResourceNotFoundError("identity user not found")
	case http.StatusConflict:
		return apperrors.NewConflictError(msg)
	}
	return apperrors.NewExternalServiceError(msg, fmt.Errorf("%s: status %d", op, resp.StatusCode()))
}

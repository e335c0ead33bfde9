package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/pkg/apperrors"
	"github.com/edvios/backend/internal/pkg/email"
	"github.com/edvios/backend/internal/pkg/identity"
)

// DefaultVerificationTokenTTL is how long an emailed verification link stays valid
const DefaultVerificationTokenTTL = 24 * time.Hour

// AuthService handles sign-up, sign-in and the local user record
type AuthService struct {
	transactor repositories.Transactor
	userRepo   repositories.UserRepository
	tokenRepo  repositories.VerificationTokenRepository
	provider   identity.Provider
	mailer     email.Mailer
	tokenTTL   time.Duration
	now        func() time.Time
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	repos *repositories.Repositories,
	provider identity.Provider,
	mailer email.Mailer,
	tokenTTL time.Duration,
	logger zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultVerificationTokenTTL
	}
	return &AuthService{
		transactor: repos.Transactor,
		userRepo:   repos.Users,
		tokenRepo:  repos.VerificationTokens,
		provider:   provider,
		mailer:     mailer,
		tokenTTL:   tokenTTL,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
}

func toSessionResponse(session *identity.Session) *dto.SessionResponse {
	return &dto.SessionResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    session.ExpiresIn,
		TokenType:    session.TokenType,
		UserID:       session.User.ID,
	}
}

// Register signs a new account up with the identity provider. The local user row is
// created afterwards through CreateUser by the authenticated client.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.SessionResponse, error) {
	session, err := s.provider.SignUp(ctx, strings.ToLower(req.Email), req.Password, map[string]any{
		"first_name": req.FirstName,
		"last_name":  req.LastName,
		"role":       string(models.RoleStudent),
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("email", req.Email).Msg("Sign-up rejected")
		return nil, err
	}
	return toSessionResponse(session), nil
}

// Login exchanges email and password for a session
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.SessionResponse, error) {
	session, err := s.provider.SignIn(ctx, strings.ToLower(req.Email), req.Password)
	if err != nil {
		s.logger.Debug().Err(err).Str("email", req.Email).Msg("Sign-in rejected")
		return nil, err
	}
	return toSessionResponse(session), nil
}

// RefreshToken exchanges a refresh token for a new session
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.SessionResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrTokenNotFound
	}
	session, err := s.provider.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(session), nil
}

// CreateUser creates the user row for the token subject. Every self-created user starts as STUDENT.
func (s *AuthService) CreateUser(ctx context.Context, subject, tokenEmail string, req *dto.CreateUserRequest) (*models.User, error) {
	if req.Role != "" && req.Role != models.RoleStudent {
		return nil, apperrors.NewBadRequestError("Only the STUDENT role can be self-assigned")
	}
	if strings.TrimSpace(tokenEmail) == "" {
		return nil, apperrors.NewBadRequestError("Token does not carry an email address")
	}

	user := &models.User{
		ID:        subject,
		Email:     strings.ToLower(tokenEmail),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     req.Phone,
		Role:      models.RoleStudent,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.NewConflictError("User already exists")
		}
		s.logger.Error().Err(err).Str("userID", subject).Msg("Failed to create user")
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info().Str("userID", user.ID).Str("email", user.Email).Msg("User created")

	if err := s.sendVerification(ctx, user); err != nil {
		s.logger.Warn().Err(err).Str("userID", user.ID).Msg("Verification email not sent")
	}
	return user, nil
}

// sendVerification replaces the user's pending tokens with a fresh one and mails it
func (s *AuthService) sendVerification(ctx context.Context, user *models.User) error {
	token, err := email.GenerateVerificationToken()
	if err != nil {
		return err
	}

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.tokenRepo.DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		return s.tokenRepo.Create(ctx, &models.VerificationToken{
			Token:     token,
			UserID:    user.ID,
			ExpiresAt: s.now().Add(s.tokenTTL),
		})
	})
	if err != nil {
		return fmt.Errorf("error storing verification token: %w", err)
	}

	return s.mailer.SendVerificationEmail(user.Email, user.FullName(), token)
}

// Me returns the caller's user record. The role comes from the user store, not the token.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("User not found")
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return user, nil
}

// VerifyEmail consumes a verification token
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	return s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		stored, err := s.tokenRepo.Get(ctx, token)
		if err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				return apperrors.NewBadRequestError(apperrors.ErrInvalidEmailToken.Error())
			}
			return fmt.Errorf("error getting verification token: %w", err)
		}
		if stored.Expired(s.now()) {
			return apperrors.NewBadRequestError(apperrors.ErrInvalidEmailToken.Error())
		}

		if err := s.userRepo.SetEmailVerified(ctx, stored.UserID); err != nil {
			return fmt.Errorf("error marking email verified: %w", err)
		}
		if err := s.tokenRepo.DeleteByUser(ctx, stored.UserID); err != nil {
			return fmt.Errorf("error deleting verification tokens: %w", err)
		}

		s.logger.Info().Str("userID", stored.UserID).Msg("Email verified")
		return nil
	})
}

// ResendVerification issues a new verification email
func (s *AuthService) ResendVerification(ctx context.Context, address string) error {
	user, err := s.userRepo.GetByEmail(ctx, address)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.NewResourceNotFoundError("User not found")
		}
		return fmt.Errorf("error getting user by email: %w", err)
	}
	if user.EmailVerified {
		return apperrors.NewBadRequestError(apperrors.ErrEmailAlreadyVerified.Error())
	}

	if err := s.sendVerification(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("userID", user.ID).Msg("Failed to resend verification email")
		return apperrors.NewExternalServiceError("Failed to send verification email", err)
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/app/repositories/inmem"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

func TestCreateUserAndVerifyEmail(t *testing.T) {
	ctx := context.Background()
	repos, _ := inmem.New()
	mailer := &fakeMailer{}
	svc := NewAuthService(repos, newFakeProvider(), mailer, time.Hour, zerolog.Nop())

	user, err := svc.CreateUser(ctx, "subject-1", "Ada@Example.com", &dto.CreateUserRequest{FirstName: " Ada ", LastName: "Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada", user.FirstName)

	_, err = svc.CreateUser(ctx, "subject-1", "ada@example.com", &dto.CreateUserRequest{FirstName: "Ada", LastName: "Lovelace"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	token := mailer.tokens["ada@example.com"]
	require.Len(t, token, 64)

	assert.ErrorIs(t, svc.VerifyEmail(ctx, "not-a-token"), apperrors.ErrBadRequest)
	require.NoError(t, svc.VerifyEmail(ctx, token))
	assert.ErrorIs(t, svc.VerifyEmail(ctx, token), apperrors.ErrBadRequest)

	me, err := svc.Me(ctx, "subject-1")
	require.NoError(t, err)
	assert.True(t, me.EmailVerified)

	assert.ErrorIs(t, svc.ResendVerification(ctx, "ada@example.com"), apperrors.ErrBadRequest)
	assert.ErrorIs(t, svc.ResendVerification(ctx, "nobody@example.com"), apperrors.ErrResourceNotFound)
}

func TestCreateUserRejectsOtherRoles(t *testing.T) {
	repos, _ := inmem.New()
	svc := NewAuthService(repos, newFakeProvider(), &fakeMailer{}, 0, zerolog.Nop())

	_, err := svc.CreateUser(context.Background(), "subject-2", "x@example.com",
		&dto.CreateUserRequest{FirstName: "X", LastName: "Y", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestVerificationTokenExpiry(t *testing.T) {
	ctx := context.Background()
	repos, _ := inmem.New()
	mailer := &fakeMailer{}
	svc := NewAuthService(repos, newFakeProvider(), mailer, time.Hour, zerolog.Nop())

	_, err := svc.CreateUser(ctx, "subject-3", "late@example.com", &dto.CreateUserRequest{FirstName: "Late", LastName: "User"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	assert.ErrorIs(t, svc.VerifyEmail(ctx, mailer.tokens["late@example.com"]), apperrors.ErrBadRequest)
}

func TestMailFailureDoesNotBlockCreateUser(t *testing.T) {
	ctx := context.Background()
	repos, _ := inmem.New()
	mailer := &fakeMailer{err: errors.New("smtp down")}
	svc := NewAuthService(repos, newFakeProvider(), mailer, time.Hour, zerolog.Nop())

	_, err := svc.CreateUser(ctx, "subject-4", "mail@example.com", &dto.CreateUserRequest{FirstName: "M", LastName: "F"})
	require.NoError(t, err)

	err = svc.ResendVerification(ctx, "mail@example.com")
	assert.ErrorIs(t, err, apperrors.ErrExternalService)
}

func TestRegisterReturnsSession(t *testing.T) {
	repos, _ := inmem.New()
	svc := NewAuthService(repos, newFakeProvider(), &fakeMailer{}, 0, zerolog.Nop())

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{Email: "new@example.com", Password: "s3cret-pass", FirstName: "N", LastName: "U"})
	require.NoError(t, err)
	assert.Equal(t, "access", resp.AccessToken)
	assert.NotEmpty(t, resp.UserID)
}

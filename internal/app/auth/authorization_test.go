package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories/inmem"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

func TestCanAccessStudent(t *testing.T) {
	ctx := context.Background()
	repos, _ := inmem.New()

	for _, u := range []models.User{
		{ID: "student", Email: "s@example.com", Role: models.RoleStudent},
		{ID: "agent", Email: "a@example.com", Role: models.RoleAgent},
		{ID: "selected", Email: "sa@example.com", Role: models.RoleSelectedAgent},
		{ID: "pending", Email: "p@example.com", Role: models.RolePendingAgent},
	} {
		u := u
		require.NoError(t, repos.Users.Create(ctx, &u))
	}
	require.NoError(t, repos.Students.Create(ctx, &models.Student{ID: "student", Email: "s@example.com"}))
	_, err := repos.Assignments.Upsert(ctx, "student", "selected")
	require.NoError(t, err)

	authz := NewAuthorizationService(repos.Assignments, zerolog.Nop())

	tests := []struct {
		name    string
		actor   Actor
		allowed bool
	}{
		{"admin", Actor{UserID: "root", Role: models.RoleAdmin}, true},
		{"self", Actor{UserID: "student", Role: models.RoleStudent}, true},
		{"other student", Actor{UserID: "someone", Role: models.RoleStudent}, false},
		{"assigned selected agent", Actor{UserID: "selected", Role: models.RoleSelectedAgent}, true},
		{"unassigned agent", Actor{UserID: "agent", Role: models.RoleAgent}, false},
		{"pending agent", Actor{UserID: "pending", Role: models.RolePendingAgent}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, err := authz.CanAccessStudent(ctx, tt.actor, "student")
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, allowed)

			err = authz.ValidateStudentAccess(ctx, tt.actor, "student")
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
			}
		})
	}

	err = authz.ValidateAssignedAgent(ctx, Actor{UserID: "root", Role: models.RoleAdmin}, "student")
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
}

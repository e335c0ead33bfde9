package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsWrapSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"not found", NewResourceNotFoundError("agent not found"), ErrResourceNotFound},
		{"conflict", NewConflictError("selected agent exists"), ErrConflict},
		{"forbidden", NewForbiddenError("not a participant"), ErrPermissionDenied},
		{"bad request", NewBadRequestError("bad status"), ErrBadRequest},
		{"unauthorized", NewUnauthorizedError("no token"), ErrUnauthorized},
		{"external", NewExternalServiceError("sync failed", errors.New("502")), ErrExternalService},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("service layer: %w", tc.err)
			assert.ErrorIs(t, wrapped, tc.sentinel)

			msg, ok := MessageOf(wrapped)
			assert.True(t, ok)
			assert.Equal(t, tc.err.Error(), msg)
		})
	}
}

func TestExternalServiceErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewExternalServiceError("identity provider unavailable", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "identity provider unavailable", err.Error())
}

func TestIs(t *testing.T) {
	err := NewConflictError("duplicate")
	assert.True(t, Is(err, ErrResourceNotFound, ErrBadRequest, ErrConflict))
	assert.False(t, Is(err, ErrResourceNotFound, ErrBadRequest))

	_, ok := MessageOf(errors.New("plain"))
	assert.False(t, ok)
}

package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roleBody struct {
	Role string `validate:"required,role"`
}

type statusBody struct {
	Status string `validate:"omitempty,appstatus"`
}

func TestRegister(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	tests := []struct {
		name  string
		value interface{}
		valid bool
	}{
		{"selected agent", roleBody{Role: "SELECTED_AGENT"}, true},
		{"admin", roleBody{Role: "ADMIN"}, true},
		{"lowercase role", roleBody{Role: "agent"}, false},
		{"unknown role", roleBody{Role: "SUPERUSER"}, false},
		{"accepted", statusBody{Status: "ACCEPTED"}, true},
		{"empty status", statusBody{}, true},
		{"approved is not a status", statusBody{Status: "APPROVED"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(tc.value)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

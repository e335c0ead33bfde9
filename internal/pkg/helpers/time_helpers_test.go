package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Duration
	}{
		{"valid", "90s", 90 * time.Second},
		{"surrounding spaces", " 2h ", 2 * time.Hour},
		{"empty", "", time.Minute},
		{"malformed", "ten minutes", time.Minute},
		{"zero", "0s", time.Minute},
		{"negative", "-5m", time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDuration(tt.input, time.Minute))
		})
	}
}

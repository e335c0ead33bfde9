package email

import (
	"regexp"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationToken(t *testing.T) {
	a, err := GenerateVerificationToken()
	require.NoError(t, err)
	b, err := GenerateVerificationToken()
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), a)
	assert.NotEqual(t, a, b)
}

func TestSendWithoutCredentialsOnlyLogs(t *testing.T) {
	var out strings.Builder
	m := NewSMTPMailer(SMTPConfig{FrontendURL: "https://app.example.com/"}, zerolog.New(&out))

	require.NoError(t, m.SendVerificationEmail("ada@example.com", "Ada", "abc"))
	assert.Contains(t, out.String(), "https://app.example.com/verify-email?token=abc")
}

func TestBuildMessage(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{From: "Edvios <no-reply@example.com>"}, zerolog.Nop())
	msg := string(m.buildMessage("ada@example.com", "Hi", "<p>body</p>"))

	assert.True(t, strings.HasPrefix(msg, "From: Edvios <no-reply@example.com>\r\nTo: ada@example.com\r\n"))
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>body</p>"))
	assert.Equal(t, "no-reply@example.com", senderAddress("Edvios <no-reply@example.com>"))
	assert.Equal(t, "plain@example.com", senderAddress("plain@example.com"))
}

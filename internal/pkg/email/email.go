package email

import (
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"html"
	"net/smtp"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// implicitTLSPort is the SMTPS port; other ports upgrade with STARTTLS when offered
const implicitTLSPort = 465

// Mailer sends transactional email
type Mailer interface {
	SendVerificationEmail(toEmail, toName, token string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// FrontendURL is where the verification page lives
	FrontendURL string
}

// SMTPMailer implements Mailer over net/smtp
type SMTPMailer struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewSMTPMailer creates a new SMTPMailer
func NewSMTPMailer(config SMTPConfig, logger zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{
		config: config,
		logger: logger.With().Str("component", "mailer").Logger(),
	}
}

// VerificationURL is the link embedded in the verification email
func (s *SMTPMailer) VerificationURL(token string) string {
	return strings.TrimRight(s.config.FrontendURL, "/") + "/verify-email?token=" + url.QueryEscape(token)
}

// SendVerificationEmail sends an email with a verification link/token
func (s *SMTPMailer) SendVerificationEmail(toEmail, toName, token string) error {
	verificationURL := s.VerificationURL(token)

	// Without credentials only log, so local setups can still verify
	if s.config.Host == "" || s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("verificationURL", verificationURL).
			Msg("SMTP credentials not configured - verification email not sent")
		return nil
	}

	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Welcome to Edvios!</h2>
				<p>Hello %s,</p>
				<p>Please confirm your email address to finish setting up your account:</p>
				<div style="text-align: center; margin: 30px 0;">
					<a href="%s" style="background-color: #4a86e8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Verify Email</a>
				</div>
				<p>This link expires in 24 hours. If you did not create an account, ignore this email.</p>
				<p>Best regards,<br>The Edvios Team</p>
			</div>
		</body>
		</html>
	`, html.EscapeString(toName), html.EscapeString(verificationURL))

	return s.sendHTMLEmail(toEmail, "Verify your email address - Edvios", body)
}

func (s *SMTPMailer) buildMessage(toEmail, subject, htmlBody string) []byte {
	var b strings.Builder
	for _, h := range [][2]string{
		{"From", s.config.From},
		{"To", toEmail},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	} {
		fmt.Fprintf(&b, "%s: %s\r\n", h[0], h[1])
	}
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

// sendHTMLEmail sends an HTML email
func (s *SMTPMailer) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	message := s.buildMessage(toEmail, subject, htmlBody)
	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)
	from := senderAddress(s.config.From)

	if s.config.Port != implicitTLSPort {
		if err := smtp.SendMail(serverAddress, auth, from, []string{toEmail}, message); err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	return w.Close()
}

// senderAddress extracts the bare address from `Name <addr>`
func senderAddress(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		return strings.TrimSuffix(from[i+1:], ">")
	}
	return from
}

// GenerateVerificationToken returns 32 random bytes hex encoded
func GenerateVerificationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate verification token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Invitation is the content of an event invitation email
type Invitation struct {
	EventID    string
	Title      string
	Date       time.Time
	Time       string
	Location   string
	InviteLink string
}

// Notifier delivers event notifications
type Notifier interface {
	// SendEventInvitation sends one batched invitation to every recipient
	SendEventInvitation(ctx context.Context, recipients []string, invite Invitation) error
}

// PasswordReset is the content of a password reset email
type PasswordReset struct {
	Email    string
	Name     string
	Token    string
	ValidFor time.Duration
}

// PasswordResetMailer delivers password reset links
type PasswordResetMailer interface {
	SendPasswordReset(ctx context.Context, reset PasswordReset) error
}

// SMTPConfig holds configuration for the SMTP server
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	AppURL   string
}

// Sender sends email through an SMTP dialer
type Sender struct {
	config SMTPConfig
	dialer *gomail.Dialer
	logger zerolog.Logger
}

// NewSender creates a new Sender
func NewSender(config SMTPConfig, logger zerolog.Logger) *Sender {
	return &Sender{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
		logger: logger,
	}
}

var invitationTemplate = template.Must(template.New("invitation").Parse(`
<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2 style="color: #333;">You're invited: {{.Title}}</h2>
		<p><strong>When:</strong> {{.Date.Format "Monday, January 2, 2006"}} at {{.Time}}</p>
		<p><strong>Where:</strong> {{.Location}}</p>
		<div style="text-align: center; margin: 30px 0;">
			<a href="{{.InviteLink}}" style="background-color: #4a86e8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">View event and RSVP</a>
		</div>
	</div>
</body>
</html>
`))

// SendEventInvitation sends a single message with all recipients in Bcc.
// Without SMTP credentials the invitation is only logged.
func (s *Sender) SendEventInvitation(ctx context.Context, recipients []string, invite Invitation) error {
	if len(recipients) == 0 {
		return nil
	}
	if invite.InviteLink == "" {
		invite.InviteLink = fmt.Sprintf("%s/events/%s", s.config.AppURL, invite.EventID)
	}

	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Strs("recipients", recipients).
			Str("event", invite.Title).
			Str("link", invite.InviteLink).
			Msg("SMTP credentials not configured - invitation not sent")
		return nil
	}

	var body bytes.Buffer
	if err := invitationTemplate.Execute(&body, invite); err != nil {
		return fmt.Errorf("failed to render invitation: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.From)
	m.SetHeader("To", s.config.From)
	m.SetHeader("Bcc", recipients...)
	m.SetHeader("Subject", "You're invited to "+invite.Title)
	m.SetBody("text/html", body.String())

	if err := s.send(ctx, m); err != nil {
		s.logger.Error().Err(err).Int("recipients", len(recipients)).Msg("Failed to send invitation")
		return fmt.Errorf("failed to send invitation: %w", err)
	}

	s.logger.Info().Int("recipients", len(recipients)).Str("event", invite.Title).Msg("Invitation sent")
	return nil
}

var passwordResetTemplate = template.Must(template.New("password_reset").Parse(`
<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2 style="color: #333;">Reset your password</h2>
		<p>Hello {{.Name}},</p>
		<p>We received a request to reset the password of your account. Click the button below to choose a new one:</p>
		<div style="text-align: center; margin: 30px 0;">
			<a href="{{.ResetLink}}" style="background-color: #4a86e8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Reset Password</a>
		</div>
		<p>This link expires in {{.ValidFor}}.</p>
		<p>If you did not request a password reset, please ignore this email.</p>
	</div>
</body>
</html>
`))

// SendPasswordReset emails the reset link for token to one recipient.
// Without SMTP credentials the link is only logged.
func (s *Sender) SendPasswordReset(ctx context.Context, reset PasswordReset) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.config.AppURL, reset.Token)

	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", reset.Email).
			Str("resetURL", link).
			Msg("SMTP credentials not configured - password reset email not sent. Use the URL above for testing.")
		return nil
	}

	var body bytes.Buffer
	err := passwordResetTemplate.Execute(&body, struct {
		Name      string
		ResetLink string
		ValidFor  string
	}{reset.Name, link, reset.ValidFor.String()})
	if err != nil {
		return fmt.Errorf("failed to render password reset email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.From)
	m.SetHeader("To", reset.Email)
	m.SetHeader("Subject", "Password reset request")
	m.SetBody("text/html", body.String())

	if err := s.send(ctx, m); err != nil {
		s.logger.Error().Err(err).Str("toEmail", reset.Email).Msg("Failed to send password reset email")
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	s.logger.Info().Str("toEmail", reset.Email).Msg("Password reset email sent")
	return nil
}

// send dials the SMTP server without outliving ctx
func (s *Sender) send(ctx context.Context, m *gomail.Message) error {
	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

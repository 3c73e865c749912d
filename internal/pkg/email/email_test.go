package email

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSenderWithoutCredentialsOnlyLogs(t *testing.T) {
	sender := NewSender(SMTPConfig{Host: "smtp.invalid", Port: 587, AppURL: "http://localhost:3000"}, zerolog.Nop())
	ctx := context.Background()

	tests := []struct {
		name string
		send func() error
	}{
		{"invitation", func() error {
			return sender.SendEventInvitation(ctx, []string{"guest@example.com"}, Invitation{EventID: "abc", Title: "Meetup"})
		}},
		{"no recipients", func() error {
			return sender.SendEventInvitation(ctx, nil, Invitation{Title: "Meetup"})
		}},
		{"password reset", func() error {
			return sender.SendPasswordReset(ctx, PasswordReset{Email: "jane@example.com", Token: "t", ValidFor: 10 * time.Minute})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.send(); err != nil {
				t.Errorf("Expected no error without SMTP credentials, got %v", err)
			}
		})
	}
}

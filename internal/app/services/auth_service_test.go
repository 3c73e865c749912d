package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/app/models/dto"
	"github.com/yigit/eventsphere/internal/app/repositories"
	"github.com/yigit/eventsphere/internal/app/repositories/memory"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
	pkgauth "github.com/yigit/eventsphere/internal/pkg/auth"
	"github.com/yigit/eventsphere/internal/pkg/email"
	"golang.org/x/crypto/bcrypt"
)

const strongPassword = "Sup3r$ecretPassw0rd"

func newTestAuthService(t *testing.T) (*AuthService, *pkgauth.JWTService) {
	t.Helper()
	jwtService := pkgauth.NewJWTService(pkgauth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "eventsphere.test",
	})
	repos := memory.NewStore().Repositories()
	svc := NewAuthService(repos.Users, repos.PasswordResets, jwtService, pkgauth.NewPasswordHasher(bcrypt.MinCost), &recordingMailer{}, nil, zerolog.Nop())
	return svc, jwtService
}

func TestRegisterAndLogin(t *testing.T) {
	svc, jwtService := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, &dto.RegisterRequest{
		Name:     "  Alice  ",
		Email:    " Alice@Example.com ",
		Password: strongPassword,
	})
	mustNoErr(t, err, "Register")
	if res.User.Email != "alice@example.com" || res.User.Name != "Alice" {
		t.Errorf("Expected normalized email and name, got %q / %q", res.User.Email, res.User.Name)
	}
	if res.User.Role != string(models.RoleUser) {
		t.Errorf("Expected role user, got %q", res.User.Role)
	}
	if len(res.User.Username) != 8 {
		t.Errorf("Expected an 8 digit username, got %q", res.User.Username)
	}
	if res.TokenType != "Bearer" || res.ExpiresIn != 3600 {
		t.Errorf("Expected Bearer token valid for 3600s, got %q / %d", res.TokenType, res.ExpiresIn)
	}

	claims, err := jwtService.ValidateToken(res.AccessToken)
	mustNoErr(t, err, "ValidateToken")
	actor, err := claims.Actor()
	mustNoErr(t, err, "claims.Actor")
	if actor.Email != "alice@example.com" || actor.IsAdmin() {
		t.Errorf("Unexpected actor from token: %+v", actor)
	}

	_, err = svc.Register(ctx, &dto.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: strongPassword})
	expectKind(t, err, apperrors.ErrConflict)

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "ALICE@example.com", Password: strongPassword})
	mustNoErr(t, err, "Login")
	if login.User.ID != res.User.ID {
		t.Errorf("Expected login to return the registered user")
	}

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	expectKind(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: strongPassword})
	expectKind(t, err, apperrors.ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestAuthService(t)

	tests := []struct {
		name string
		req  dto.RegisterRequest
	}{
		{"bad email", dto.RegisterRequest{Name: "Alice", Email: "alice", Password: strongPassword}},
		{"short name", dto.RegisterRequest{Name: "A", Email: "a@example.com", Password: strongPassword}},
		{"short password", dto.RegisterRequest{Name: "Alice", Email: "a@example.com", Password: "abc"}},
		{"guessable password", dto.RegisterRequest{Name: "Alice", Email: "a@example.com", Password: "aaaaaaa"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), &tt.req)
			expectKind(t, err, apperrors.ErrValidation)
		})
	}
}

func TestEnsureAdminPromotesExistingUser(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "root@example.com", "first-pass", "")
	mustNoErr(t, err, "EnsureAdmin create")
	if created.Role != models.RoleAdmin || created.Name != "Administrator" {
		t.Errorf("Expected admin named Administrator, got %q / %q", created.Role, created.Name)
	}

	again, err := svc.EnsureAdmin(ctx, "root@example.com", "second-pass", "Root")
	mustNoErr(t, err, "EnsureAdmin repeat")
	if again.ID != created.ID {
		t.Error("Expected repeated EnsureAdmin to reuse the account")
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "root@example.com", Password: "second-pass"}); err != nil {
		t.Errorf("Expected the latest admin password to work, got %v", err)
	}

	reg, err := svc.Register(ctx, &dto.RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: strongPassword})
	mustNoErr(t, err, "Register")
	promoted, err := svc.EnsureAdmin(ctx, "bob@example.com", strongPassword, "Bob")
	mustNoErr(t, err, "EnsureAdmin promote")
	if promoted.ID.Hex() != reg.User.ID || promoted.Role != models.RoleAdmin {
		t.Errorf("Expected bob to be promoted in place, got %+v", promoted)
	}

	_, err = svc.EnsureAdmin(ctx, "root@example.com", "", "Root")
	expectKind(t, err, apperrors.ErrValidation)
}

// recordingMailer keeps the reset emails instead of sending them
type recordingMailer struct {
	mu   sync.Mutex
	sent []email.PasswordReset
	err  error
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, reset email.PasswordReset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, reset)
	return nil
}

func (m *recordingMailer) last(t *testing.T) email.PasswordReset {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("Expected a password reset email")
	}
	return m.sent[len(m.sent)-1]
}

type resetFixture struct {
	svc    *AuthService
	repos  *repositories.Repositories
	mailer *recordingMailer
	now    time.Time
}

func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()
	f := &resetFixture{
		repos:  memory.NewStore().Repositories(),
		mailer: &recordingMailer{},
		now:    testNow,
	}
	jwtService := pkgauth.NewJWTService(pkgauth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour})
	f.svc = NewAuthService(f.repos.Users, f.repos.PasswordResets, jwtService,
		pkgauth.NewPasswordHasher(bcrypt.MinCost), f.mailer, func() time.Time { return f.now }, zerolog.Nop())

	_, err := f.svc.Register(context.Background(), &dto.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: strongPassword})
	mustNoErr(t, err, "Register")
	return f
}

func TestForgotAndResetPassword(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()
	const newPassword = "N3w$ecretPassw0rd!"

	mustNoErr(t, f.svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: " ALICE@example.com "}), "ForgotPassword")
	mail := f.mailer.last(t)
	if mail.Email != "alice@example.com" || mail.Token == "" || mail.ValidFor != PasswordResetTTL {
		t.Fatalf("Unexpected reset email %+v", mail)
	}

	stored, err := f.repos.PasswordResets.GetTokenByHash(ctx, pkgauth.HashResetToken(mail.Token))
	mustNoErr(t, err, "GetTokenByHash")
	if !stored.ExpiresAt.Equal(testNow.Add(PasswordResetTTL)) {
		t.Errorf("Expected expiry %v, got %v", testNow.Add(PasswordResetTTL), stored.ExpiresAt)
	}

	err = f.svc.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: mail.Token, Password: "abc"})
	expectKind(t, err, apperrors.ErrValidation)

	mustNoErr(t, f.svc.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: mail.Token, Password: newPassword}), "ResetPassword")

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: strongPassword})
	expectKind(t, err, apperrors.ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: newPassword})
	mustNoErr(t, err, "Login with new password")

	// tokens are single use
	err = f.svc.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: mail.Token, Password: strongPassword})
	expectKind(t, err, apperrors.ErrValidation)
}

func TestResetPasswordRejectsBadTokens(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()

	mustNoErr(t, f.svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "alice@example.com"}), "first ForgotPassword")
	first := f.mailer.last(t)
	mustNoErr(t, f.svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "alice@example.com"}), "second ForgotPassword")
	second := f.mailer.last(t)

	tests := []struct {
		name  string
		token string
		at    time.Time
	}{
		{"empty", "  ", testNow},
		{"unknown", "deadbeef", testNow},
		{"superseded by a newer request", first.Token, testNow},
		{"expired", second.Token, testNow.Add(PasswordResetTTL + time.Second)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.now = tt.at
			err := f.svc.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: tt.token, Password: "N3w$ecretPassw0rd!"})
			expectKind(t, err, apperrors.ErrValidation)
		})
	}
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()

	mustNoErr(t, f.svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "nobody@example.com"}), "ForgotPassword")
	if len(f.mailer.sent) != 0 {
		t.Errorf("Expected no email for an unknown address, got %d", len(f.mailer.sent))
	}

	err := f.svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "not-an-email"})
	expectKind(t, err, apperrors.ErrValidation)
}

func TestForgotPasswordDeliveryFailure(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()
	f.mailer.err = errors.New("smtp down")

	err := f.svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "alice@example.com"})
	expectKind(t, err, apperrors.ErrNotification)

	// the undelivered token must not linger
	user, err := f.repos.Users.GetByEmail(ctx, "alice@example.com")
	mustNoErr(t, err, "GetByEmail")
	n, err := f.repos.PasswordResets.DeleteExpiredTokens(ctx, testNow.Add(24*time.Hour))
	mustNoErr(t, err, "DeleteExpiredTokens")
	if n != 0 {
		t.Errorf("Expected no stored token for %s, found %d", user.ID.Hex(), n)
	}
}

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/yigit/eventsphere/internal/app/models"
)

func newTestJWTService(secret string) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      secret,
		AccessTokenExp: time.Hour,
		TokenIssuer:    "eventsphere.test",
	})
}

func testUser(role models.RoleType) *models.User {
	return &models.User{ID: models.NewID(), Email: "alice@example.com", Role: role}
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService("secret")
	user := testUser(models.RoleAdmin)

	token, expiresIn, err := svc.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if expiresIn != 3600 {
		t.Errorf("Expected expiresIn 3600, got %d", expiresIn)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	actor, err := claims.Actor()
	if err != nil {
		t.Fatalf("claims.Actor failed: %v", err)
	}
	if actor.ID != user.ID || !actor.IsAdmin() || actor.Email != user.Email {
		t.Errorf("Unexpected actor %+v", actor)
	}
}

func TestValidateTokenFailures(t *testing.T) {
	svc := newTestJWTService("secret")
	token, _, err := svc.GenerateAccessToken(testUser(models.RoleUser))
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	t.Run("wrong secret", func(t *testing.T) {
		_, err := newTestJWTService("other").ValidateToken(token)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		later := newTestJWTService("secret")
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.ValidateToken(token)
		if !errors.Is(err, ErrExpiredToken) {
			t.Errorf("Expected ErrExpiredToken, got %v", err)
		}
	})
}

func TestClaimsActorRejectsUnknownRole(t *testing.T) {
	claims := &Claims{UserID: models.NewID().Hex(), Email: "a@example.com", Role: "superuser"}
	if _, err := claims.Actor(); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc.def", "abc.def", false},
		{"abc.def", "abc.def", false},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

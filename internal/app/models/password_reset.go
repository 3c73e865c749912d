package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PasswordResetToken is a single-use reset grant. Only the SHA-256 of the emailed token is stored.
type PasswordResetToken struct {
	TokenHash string             `json:"-" db:"token_hash"`
	UserID    primitive.ObjectID `json:"userId" db:"user_id"`
	ExpiresAt time.Time          `json:"expiresAt" db:"expires_at"`
	CreatedAt time.Time          `json:"createdAt" db:"created_at"`
	UsedAt    *time.Time         `json:"usedAt,omitempty" db:"used_at"`
}

// Usable reports whether the token can still reset a password at now
func (t *PasswordResetToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}

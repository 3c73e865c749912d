package memory

import (
	"context"
	"time"

	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PasswordResetTokenRepository is the in-memory reset token table
type PasswordResetTokenRepository struct {
	s *Store
}

func copyResetToken(t *models.PasswordResetToken) *models.PasswordResetToken {
	c := *t
	if t.UsedAt != nil {
		used := *t.UsedAt
		c.UsedAt = &used
	}
	return &c
}

// dropResetTokens removes every token of the user. The caller holds the lock.
func (s *Store) dropResetTokens(userID primitive.ObjectID) {
	for hash, t := range s.resetTokens {
		if t.UserID == userID {
			delete(s.resetTokens, hash)
		}
	}
}

// CreateToken stores the token, replacing the user's earlier tokens
func (r *PasswordResetTokenRepository) CreateToken(_ context.Context, token *models.PasswordResetToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[token.UserID]; !ok {
		return apperrors.NewNotFoundError("user not found")
	}
	if _, dup := r.s.resetTokens[token.TokenHash]; dup {
		return apperrors.NewConflictError("reset token already exists")
	}
	r.s.dropResetTokens(token.UserID)
	r.s.resetTokens[token.TokenHash] = copyResetToken(token)
	return nil
}

// GetTokenByHash retrieves a token by its hash
func (r *PasswordResetTokenRepository) GetTokenByHash(_ context.Context, hash string) (*models.PasswordResetToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.resetTokens[hash]
	if !ok {
		return nil, apperrors.NewNotFoundError("reset token not found")
	}
	return copyResetToken(t), nil
}

// MarkTokenAsUsed stamps the token so it cannot be replayed
func (r *PasswordResetTokenRepository) MarkTokenAsUsed(_ context.Context, hash string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.resetTokens[hash]
	if !ok {
		return apperrors.NewNotFoundError("reset token not found")
	}
	if t.UsedAt != nil {
		return apperrors.NewConflictError("reset token already used")
	}
	used := at
	t.UsedAt = &used
	return nil
}

// DeleteTokensByUserID removes all tokens for a user
func (r *PasswordResetTokenRepository) DeleteTokensByUserID(_ context.Context, userID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.dropResetTokens(userID)
	return nil
}

// DeleteExpiredTokens removes tokens that expired before the given time
func (r *PasswordResetTokenRepository) DeleteExpiredTokens(_ context.Context, before time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for hash, t := range r.s.resetTokens {
		if t.ExpiresAt.Before(before) {
			delete(r.s.resetTokens, hash)
			n++
		}
	}
	return n, nil
}

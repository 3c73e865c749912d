package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/db"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
	"github.com/yigit/eventsphere/internal/pkg/dberrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PasswordResetTokenRepository manages password reset tokens in the database
type PasswordResetTokenRepository struct {
	db *db.PostgresDB
}

// NewPasswordResetTokenRepository creates a new PasswordResetTokenRepository
func NewPasswordResetTokenRepository(database *db.PostgresDB) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{db: database}
}

// CreateToken stores a new token and removes the user's earlier ones in one transaction
func (r *PasswordResetTokenRepository) CreateToken(ctx context.Context, token *models.PasswordResetToken) error {
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, token.UserID.Hex()); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO password_reset_tokens (token_hash, user_id, expires_at, created_at)
			VALUES ($1, $2, $3, $4)`,
			token.TokenHash, token.UserID.Hex(), token.ExpiresAt, token.CreatedAt,
		)
		return err
	})
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.NewNotFoundError("user not found")
		}
		if dberrors.IsDuplicateConstraintError(err, "") {
			return apperrors.NewConflictError("reset token already exists")
		}
		return fmt.Errorf("error creating password reset token: %w", err)
	}
	return nil
}

// GetTokenByHash retrieves a token by its hash
func (r *PasswordResetTokenRepository) GetTokenByHash(ctx context.Context, hash string) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	err := r.db.Pool.QueryRow(ctx, `
		SELECT token_hash, user_id, expires_at, created_at, used_at
		FROM password_reset_tokens
		WHERE token_hash = $1`, hash,
	).Scan(&t.TokenHash, scanID(&t.UserID), &t.ExpiresAt, &t.CreatedAt, &t.UsedAt)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewNotFoundError("reset token not found")
		}
		return nil, fmt.Errorf("error retrieving password reset token: %w", err)
	}
	return &t, nil
}

// MarkTokenAsUsed marks a token as used to prevent reuse
func (r *PasswordResetTokenRepository) MarkTokenAsUsed(ctx context.Context, hash string, at time.Time) error {
	result, err := r.db.Pool.Exec(ctx, `
		UPDATE password_reset_tokens
		SET used_at = $2
		WHERE token_hash = $1 AND used_at IS NULL`, hash, at,
	)
	if err != nil {
		return fmt.Errorf("error marking token as used: %w", err)
	}
	if result.RowsAffected() == 0 {
		// tell a replay apart from an unknown token
		if _, err := r.GetTokenByHash(ctx, hash); err != nil {
			return err
		}
		return apperrors.NewConflictError("reset token already used")
	}
	return nil
}

// DeleteTokensByUserID removes all tokens for a specific user
func (r *PasswordResetTokenRepository) DeleteTokensByUserID(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, userID.Hex()); err != nil {
		return fmt.Errorf("error deleting password reset tokens for user: %w", err)
	}
	return nil
}

// DeleteExpiredTokens removes all tokens that expired before the given time
func (r *PasswordResetTokenRepository) DeleteExpiredTokens(ctx context.Context, before time.Time) (int, error) {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM password_reset_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("error deleting expired password reset tokens: %w", err)
	}
	return int(result.RowsAffected()), nil
}

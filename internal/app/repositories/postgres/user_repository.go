package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/db"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
	"github.com/yigit/eventsphere/internal/pkg/dberrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const userColumns = `id, name, email, username, password_hash, role, profile_picture, phone, address,
	receive_email_notifications, receive_sms_notifications, created_at, updated_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db *db.PostgresDB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(database *db.PostgresDB) *UserRepository {
	return &UserRepository{db: database}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		scanID(&u.ID),
		&u.Name,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.Role,
		&u.ProfilePicture,
		&u.Phone,
		&u.Address,
		&u.ReceiveEmailNotifications,
		&u.ReceiveSmsNotifications,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		user.ID.Hex(),
		user.Name,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.Role,
		user.ProfilePicture,
		user.Phone,
		user.Address,
		user.ReceiveEmailNotifications,
		user.ReceiveSmsNotifications,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return apperrors.NewConflictError("email already registered")
		}
		if dberrors.IsDuplicateConstraintError(err, "users_username_key") {
			return apperrors.NewConflictError("username already taken")
		}
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := scanUser(r.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id.Hex()))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewNotFoundError("user not found")
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(r.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewNotFoundError("user not found")
		}
		return nil, fmt.Errorf("error retrieving user by email: %w", err)
	}
	return user, nil
}

// Update writes the mutable user fields
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE users SET
			name = $2, email = $3, password_hash = $4, role = $5, profile_picture = $6,
			phone = $7, address = $8, receive_email_notifications = $9,
			receive_sms_notifications = $10, updated_at = $11
		WHERE id = $1`,
		user.ID.Hex(),
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.ProfilePicture,
		user.Phone,
		user.Address,
		user.ReceiveEmailNotifications,
		user.ReceiveSmsNotifications,
		user.UpdatedAt,
	)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return apperrors.NewConflictError("email already registered")
		}
		return fmt.Errorf("error updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("user not found")
	}
	return nil
}

// Delete removes a user. Organized events, attendances and chats go with it through ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id.Hex())
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("user not found")
	}
	return nil
}

// List returns a page of users ordered by creation time with the total count
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting users: %w", err)
	}

	query, args, err := psql.Select(userColumns).
		From("users").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, total, nil
}

// ListNotificationEmails returns the addresses of users that opted into email notifications
func (r *UserRepository) ListNotificationEmails(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT email FROM users WHERE receive_email_notifications ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("error listing notification emails: %w", err)
	}
	emails, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("error scanning notification emails: %w", err)
	}
	return emails, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/db"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
	"github.com/yigit/eventsphere/internal/pkg/dberrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const deleteRequestColumns = `id, user_id, user_email, user_name, reason, status, admin_comment,
	requested_at, resolved_at, resolved_by`

// DeleteRequestRepository handles database operations for account deletion requests
type DeleteRequestRepository struct {
	db *db.PostgresDB
}

// NewDeleteRequestRepository creates a new DeleteRequestRepository
func NewDeleteRequestRepository(database *db.PostgresDB) *DeleteRequestRepository {
	return &DeleteRequestRepository{db: database}
}

func scanDeleteRequest(row pgx.Row) (*models.DeleteRequest, error) {
	var d models.DeleteRequest
	err := row.Scan(
		scanID(&d.ID),
		scanID(&d.UserID),
		&d.UserEmail,
		&d.UserName,
		&d.Reason,
		&d.Status,
		&d.AdminComment,
		&d.RequestedAt,
		&d.ResolvedAt,
		scanNullableID(&d.ResolvedBy),
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a pending request
func (r *DeleteRequestRepository) Create(ctx context.Context, req *models.DeleteRequest) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO delete_requests (`+deleteRequestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		req.ID.Hex(),
		req.UserID.Hex(),
		req.UserEmail,
		req.UserName,
		req.Reason,
		req.Status,
		req.AdminComment,
		req.RequestedAt,
		req.ResolvedAt,
		nullableHex(req.ResolvedBy),
	)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "delete_requests_one_pending_per_user") {
			return apperrors.NewConflictError("a pending delete request already exists")
		}
		return fmt.Errorf("error creating delete request: %w", err)
	}
	return nil
}

// GetByID retrieves a request by ID
func (r *DeleteRequestRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.DeleteRequest, error) {
	req, err := scanDeleteRequest(r.db.Pool.QueryRow(ctx,
		`SELECT `+deleteRequestColumns+` FROM delete_requests WHERE id = $1`, id.Hex()))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewNotFoundError("delete request not found")
		}
		return nil, fmt.Errorf("error retrieving delete request: %w", err)
	}
	return req, nil
}

// List returns every request, newest first
func (r *DeleteRequestRepository) List(ctx context.Context) ([]*models.DeleteRequest, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+deleteRequestColumns+` FROM delete_requests ORDER BY requested_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("error listing delete requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.DeleteRequest, 0)
	for rows.Next() {
		req, err := scanDeleteRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning delete request row: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// Resolve stores the final state of a request that is still pending
func (r *DeleteRequestRepository) Resolve(ctx context.Context, req *models.DeleteRequest) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE delete_requests
		SET status = $2, admin_comment = $3, resolved_at = $4, resolved_by = $5
		WHERE id = $1 AND status = $6`,
		req.ID.Hex(), req.Status, req.AdminComment, req.ResolvedAt, nullableHex(req.ResolvedBy), models.DeleteRequestPending,
	)
	if err != nil {
		return fmt.Errorf("error resolving delete request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, req.ID); err != nil {
			return err
		}
		return apperrors.NewConflictError("delete request already resolved")
	}
	return nil
}

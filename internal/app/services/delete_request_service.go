package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/eventsphere/internal/app/auth"
	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/app/models/dto"
	"github.com/yigit/eventsphere/internal/app/repositories"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
)

// DeleteRequestService defines the interface for account deletion requests
type DeleteRequestService interface {
	Submit(ctx context.Context, actor models.Actor, req *dto.SubmitDeleteRequest) (*models.DeleteRequest, error)
	List(ctx context.Context, actor models.Actor) ([]*models.DeleteRequest, error)
	Resolve(ctx context.Context, actor models.Actor, id string, req *dto.ResolveDeleteRequest) (*models.DeleteRequest, error)
}

type deleteRequestServiceImpl struct {
	requests   repositories.DeleteRequestRepository
	users      repositories.UserRepository
	authorizer *auth.Authorizer
	now        Clock
	logger     zerolog.Logger
}

// NewDeleteRequestService creates a new DeleteRequestService
func NewDeleteRequestService(
	requests repositories.DeleteRequestRepository,
	users repositories.UserRepository,
	authorizer *auth.Authorizer,
	clock Clock,
	logger zerolog.Logger,
) DeleteRequestService {
	return &deleteRequestServiceImpl{
		requests:   requests,
		users:      users,
		authorizer: authorizer,
		now:        clockOrDefault(clock),
		logger:     logger,
	}
}

// Submit files a deletion request for the caller. Only one may be pending at a time.
func (s *deleteRequestServiceImpl) Submit(ctx context.Context, actor models.Actor, req *dto.SubmitDeleteRequest) (*models.DeleteRequest, error) {
	if err := s.authorizer.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return nil, apperrors.NewForbiddenError("admin accounts cannot request deletion")
	}

	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, storageError("load user", err)
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = models.DefaultDeleteReason
	}

	request := &models.DeleteRequest{
		ID:          models.NewID(),
		UserID:      user.ID,
		UserEmail:   user.Email,
		UserName:    user.Name,
		Reason:      reason,
		Status:      models.DeleteRequestPending,
		RequestedAt: s.now(),
	}
	if err := s.requests.Create(ctx, request); err != nil {
		if !apperrors.Is(err, apperrors.ErrConflict) {
			s.logger.Error().Err(err).Str("userID", user.ID.Hex()).Msg("Failed to store delete request")
		}
		return nil, storageError("submit delete request", err)
	}

	s.logger.Info().Str("requestID", request.ID.Hex()).Str("userID", user.ID.Hex()).Msg("Delete request submitted")
	return request, nil
}

// List returns every request, newest first. Admin only.
func (s *deleteRequestServiceImpl) List(ctx context.Context, actor models.Actor) ([]*models.DeleteRequest, error) {
	if err := s.authorizer.RequireAdmin(actor, "list_delete_requests"); err != nil {
		return nil, err
	}
	requests, err := s.requests.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list delete requests")
		return nil, storageError("list delete requests", err)
	}
	return requests, nil
}

// Resolve approves or rejects a pending request. Approval removes the account and everything it owns.
func (s *deleteRequestServiceImpl) Resolve(ctx context.Context, actor models.Actor, id string, req *dto.ResolveDeleteRequest) (*models.DeleteRequest, error) {
	requestID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireAdmin(actor, "resolve_delete_request"); err != nil {
		return nil, err
	}

	var status models.DeleteRequestStatus
	switch req.Action {
	case "approve":
		status = models.DeleteRequestApproved
	case "reject":
		status = models.DeleteRequestRejected
	default:
		return nil, apperrors.NewValidationError("action must be approve or reject").WithField("field", "action")
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, storageError("load delete request", err)
	}
	if request.Status != models.DeleteRequestPending {
		return nil, apperrors.NewConflictError("delete request already resolved")
	}

	// the request stays pending if the account cannot be removed, so it can be retried
	if status == models.DeleteRequestApproved {
		err := s.users.Delete(ctx, request.UserID)
		if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
			s.logger.Error().Err(err).Str("userID", request.UserID.Hex()).Msg("Failed to delete user")
			return nil, storageError("delete user", err)
		}
	}

	now := s.now()
	admin := actor.ID
	request.Status = status
	request.AdminComment = strings.TrimSpace(req.AdminComment)
	request.ResolvedAt = &now
	request.ResolvedBy = &admin

	if err := s.requests.Resolve(ctx, request); err != nil {
		if !apperrors.Is(err, apperrors.ErrConflict) {
			s.logger.Error().Err(err).Str("requestID", id).Msg("Failed to resolve delete request")
		}
		return nil, storageError("resolve delete request", err)
	}

	s.logger.Info().
		Str("requestID", id).
		Str("status", string(status)).
		Str("admin", admin.Hex()).
		Msg("Delete request resolved")
	return request, nil
}

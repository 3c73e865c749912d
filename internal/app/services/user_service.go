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
	"github.com/yigit/eventsphere/internal/pkg/helpers"
)

// UserService defines the interface for user operations
type UserService interface {
	GetProfile(ctx context.Context, actor models.Actor) (*models.User, error)
	UpdateProfile(ctx context.Context, actor models.Actor, req *dto.UpdateProfileRequest) (*models.User, error)
	ListUsers(ctx context.Context, actor models.Actor, page, size int) ([]*models.User, int, error)
	GetUser(ctx context.Context, actor models.Actor, id string) (*models.User, error)
	ChangeRole(ctx context.Context, actor models.Actor, id string, req *dto.ChangeRoleRequest) (*models.User, error)
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	users      repositories.UserRepository
	authorizer *auth.Authorizer
	now        Clock
	logger     zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	users repositories.UserRepository,
	authorizer *auth.Authorizer,
	clock Clock,
	logger zerolog.Logger,
) UserService {
	return &userServiceImpl{
		users:      users,
		authorizer: authorizer,
		now:        clockOrDefault(clock),
		logger:     logger,
	}
}

// GetProfile returns the authenticated user's account
func (s *userServiceImpl) GetProfile(ctx context.Context, actor models.Actor) (*models.User, error) {
	if err := s.authorizer.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			s.logger.Error().Err(err).Str("userID", actor.ID.Hex()).Msg("Failed to load profile")
		}
		return nil, storageError("load user", err)
	}
	return user, nil
}

// UpdateProfile updates a user's profile information
func (s *userServiceImpl) UpdateProfile(ctx context.Context, actor models.Actor, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetProfile(ctx, actor)
	if err != nil {
		return nil, err
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if email != user.Email {
		existing, err := s.users.GetByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != user.ID:
			return nil, apperrors.NewConflictError("email already registered")
		case err != nil && !apperrors.Is(err, apperrors.ErrNotFound):
			s.logger.Error().Err(err).Str("email", email).Msg("Error checking email availability")
			return nil, storageError("check email", err)
		}
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required").WithField("field", "name")
	}

	user.Name = name
	user.Email = email
	user.Phone = strings.TrimSpace(req.Phone)
	user.Address = strings.TrimSpace(req.Address)
	user.ProfilePicture = strings.TrimSpace(req.ProfilePicture)
	if req.ReceiveEmailNotifications != nil {
		user.ReceiveEmailNotifications = *req.ReceiveEmailNotifications
	}
	if req.ReceiveSmsNotifications != nil {
		user.ReceiveSmsNotifications = *req.ReceiveSmsNotifications
	}
	user.UpdatedAt = s.now()

	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("userID", user.ID.Hex()).Msg("Failed to update profile")
		return nil, storageError("update user", err)
	}
	return user, nil
}

// ListUsers returns a page of accounts. Admin only.
func (s *userServiceImpl) ListUsers(ctx context.Context, actor models.Actor, page, size int) ([]*models.User, int, error) {
	if err := s.authorizer.RequireAdmin(actor, "list_users"); err != nil {
		return nil, 0, err
	}
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	users, total, err := s.users.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list users")
		return nil, 0, storageError("list users", err)
	}
	return users, total, nil
}

// GetUser returns one account to its owner or an admin
func (s *userServiceImpl) GetUser(ctx context.Context, actor models.Actor, id string) (*models.User, error) {
	userID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.ValidateUserAccess(actor, userID, "get_user"); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storageError("load user", err)
	}
	return user, nil
}

// ChangeRole sets another account's role. Admin only.
func (s *userServiceImpl) ChangeRole(ctx context.Context, actor models.Actor, id string, req *dto.ChangeRoleRequest) (*models.User, error) {
	userID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireAdmin(actor, "change_role"); err != nil {
		return nil, err
	}
	role := models.RoleType(strings.TrimSpace(req.Role))
	if !role.Valid() {
		return nil, apperrors.NewValidationError("role must be admin or user").WithField("field", "role")
	}
	// an admin demoting themselves could leave the system without one
	if userID == actor.ID {
		return nil, apperrors.NewForbiddenError("admins cannot change their own role")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storageError("load user", err)
	}
	if user.Role == role {
		return user, nil
	}

	previous := user.Role
	user.Role = role
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("userID", user.ID.Hex()).Msg("Failed to change role")
		return nil, storageError("update user", err)
	}

	s.logger.Info().
		Str("userID", user.ID.Hex()).
		Str("admin", actor.ID.Hex()).
		Str("from", string(previous)).
		Str("to", string(role)).
		Msg("User role changed")
	return user, nil
}

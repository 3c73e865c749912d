package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/eventsphere/internal/app/auth"
	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/app/repositories"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
)

// PresenceService defines the interface for the online/offline switches
type PresenceService interface {
	GetPresence(ctx context.Context, tag models.PresenceTag) (*models.PresenceFlag, error)
	SetPresence(ctx context.Context, actor models.Actor, tag models.PresenceTag, isOnline bool) (*models.PresenceFlag, error)
	IsOnline(ctx context.Context, tag models.PresenceTag) (bool, error)
}

type presenceServiceImpl struct {
	presence   repositories.PresenceRepository
	authorizer *auth.Authorizer
	now        Clock
	logger     zerolog.Logger
}

// NewPresenceService creates a new PresenceService
func NewPresenceService(
	presence repositories.PresenceRepository,
	authorizer *auth.Authorizer,
	clock Clock,
	logger zerolog.Logger,
) PresenceService {
	return &presenceServiceImpl{
		presence:   presence,
		authorizer: authorizer,
		now:        clockOrDefault(clock),
		logger:     logger,
	}
}

// GetPresence returns the flag for tag. A flag that was never set reads as offline.
func (s *presenceServiceImpl) GetPresence(ctx context.Context, tag models.PresenceTag) (*models.PresenceFlag, error) {
	if !tag.Valid() {
		return nil, apperrors.NewValidationError("unknown presence tag").WithField("tag", string(tag))
	}
	flag, err := s.presence.Get(ctx, tag, s.now())
	if err != nil {
		s.logger.Error().Err(err).Str("tag", string(tag)).Msg("Failed to load presence flag")
		return nil, storageError("load presence", err)
	}
	return flag, nil
}

// SetPresence switches a flag on or off. Admin only.
func (s *presenceServiceImpl) SetPresence(ctx context.Context, actor models.Actor, tag models.PresenceTag, isOnline bool) (*models.PresenceFlag, error) {
	if !tag.Valid() {
		return nil, apperrors.NewValidationError("unknown presence tag").WithField("tag", string(tag))
	}
	if err := s.authorizer.RequireAdmin(actor, "set_presence"); err != nil {
		return nil, err
	}

	admin := actor.ID
	flag := &models.PresenceFlag{
		Tag:         tag,
		IsOnline:    isOnline,
		LastUpdated: s.now(),
		UpdatedBy:   &admin,
	}
	if err := s.presence.Set(ctx, flag); err != nil {
		s.logger.Error().Err(err).Str("tag", string(tag)).Msg("Failed to update presence flag")
		return nil, storageError("update presence", err)
	}

	s.logger.Info().
		Str("tag", string(tag)).
		Bool("online", isOnline).
		Str("admin", admin.Hex()).
		Msg("Presence updated")
	return flag, nil
}

// IsOnline reports the current value of the flag
func (s *presenceServiceImpl) IsOnline(ctx context.Context, tag models.PresenceTag) (bool, error) {
	flag, err := s.GetPresence(ctx, tag)
	if err != nil {
		return false, err
	}
	return flag.IsOnline, nil
}

package auth

import (
	"github.com/rs/zerolog"
	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Authorizer holds every "who may do what" rule used by the services.
// Checks are pure functions of the actor and the already loaded resource.
type Authorizer struct {
	logger zerolog.Logger
}

// NewAuthorizer creates a new Authorizer
func NewAuthorizer(logger zerolog.Logger) *Authorizer {
	return &Authorizer{logger: logger.With().Str("component", "authorizer").Logger()}
}

func (a *Authorizer) deny(actor models.Actor, action, message string) error {
	a.logger.Debug().
		Str("actor", actor.ID.Hex()).
		Str("role", string(actor.Role)).
		Str("action", action).
		Msg("Authorization denied")
	return apperrors.NewForbiddenError(message)
}

// RequireAuthenticated rejects anonymous actors
func (a *Authorizer) RequireAuthenticated(actor models.Actor) error {
	if actor.ID.IsZero() {
		return apperrors.NewUnauthenticatedError("authentication required")
	}
	return nil
}

// RequireAdmin allows only administrators
func (a *Authorizer) RequireAdmin(actor models.Actor, action string) error {
	if err := a.RequireAuthenticated(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return a.deny(actor, action, "admin access required")
	}
	return nil
}

// ValidateEventManagement allows the organizer or an administrator to modify an event
func (a *Authorizer) ValidateEventManagement(actor models.Actor, event *models.Event, action string) error {
	if err := a.RequireAuthenticated(actor); err != nil {
		return err
	}
	if actor.IsAdmin() || event.Organizer == actor.ID {
		return nil
	}
	return a.deny(actor, action, "only the organizer or an admin can modify this event")
}

// ValidateChatAccess allows the chat owner or any administrator
func (a *Authorizer) ValidateChatAccess(actor models.Actor, chat *models.Chat, action string) error {
	if err := a.RequireAuthenticated(actor); err != nil {
		return err
	}
	if actor.IsAdmin() || chat.User == actor.ID {
		return nil
	}
	return a.deny(actor, action, "you do not have access to this chat")
}

// ValidateChatOwnership allows only regular users to own chats
func (a *Authorizer) ValidateChatOwnership(actor models.Actor) error {
	if err := a.RequireAuthenticated(actor); err != nil {
		return err
	}
	if actor.IsAdmin() {
		return a.deny(actor, "start_chat", "admins cannot start support chats")
	}
	return nil
}

// ValidateUserAccess allows a user to read their own account data and admins to read anyone's
func (a *Authorizer) ValidateUserAccess(actor models.Actor, userID primitive.ObjectID, action string) error {
	if err := a.RequireAuthenticated(actor); err != nil {
		return err
	}
	if actor.IsAdmin() || actor.ID == userID {
		return nil
	}
	return a.deny(actor, action, "you can only access your own account")
}

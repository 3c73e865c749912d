package services

import (
	"context"
	"errors"
	"time"

	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/app/repositories"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Clock returns the current time. Services take one so deadline and date rules are testable.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return systemClock
	}
	return c
}

// storageError passes classified errors through and wraps anything else as a persistence failure
func storageError(op string, err error) error {
	var ce *apperrors.CustomError
	if errors.As(err, &ce) {
		return err
	}
	return apperrors.NewPersistenceError(op, err)
}

// parseID validates a hexadecimal identifier before any storage access
func parseID(raw, field string) (primitive.ObjectID, error) {
	id, err := models.ParseID(raw)
	if err != nil {
		return primitive.NilObjectID, apperrors.NewValidationError("invalid " + field).WithField("field", field)
	}
	return id, nil
}

// requireAccount rejects actors whose account was removed after their token was issued
func requireAccount(ctx context.Context, users repositories.UserRepository, actor models.Actor) error {
	if _, err := users.GetByID(ctx, actor.ID); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewUnauthenticatedError("account no longer exists")
		}
		return storageError("load account", err)
	}
	return nil
}

package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yigit/eventsphere/internal/app/models/dto"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
)

const tryAgainLater = "Something went wrong, please try again later"

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, errorDetail := classify(err)

	var ce *apperrors.CustomError
	if errors.As(err, &ce) && len(ce.Details) > 0 && status < http.StatusInternalServerError {
		if field, ok := ce.Details["field"].(string); ok {
			errorDetail = errorDetail.WithField(field)
		}
		errorDetail = errorDetail.WithDetails(ce.Details)
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(errorDetail))
}

func classify(err error) (int, *dto.ErrorDetail) {
	msg := func(fallback string) string { return apperrors.Message(err, fallback) }

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, msg("Validation failed"))
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, msg("Invalid credentials"))
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, msg("Authentication required"))
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, msg("Permission denied"))
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, msg("Resource not found"))
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConflict, msg("Conflict"))
	case errors.Is(err, apperrors.ErrCapacityExceeded):
		return http.StatusUnprocessableEntity, dto.NewErrorDetail(dto.ErrorCodeCapacityExceeded, msg("Not enough spots available"))
	case errors.Is(err, apperrors.ErrDeadlinePassed):
		return http.StatusUnprocessableEntity, dto.NewErrorDetail(dto.ErrorCodeDeadlinePassed, msg("Registration deadline has passed"))
	case errors.Is(err, apperrors.ErrChatOffline):
		return http.StatusServiceUnavailable, dto.NewErrorDetail(dto.ErrorCodeChatOffline, msg("Support chat is offline")).
			WithSeverity(dto.ErrorSeverityWarning)
	case errors.Is(err, apperrors.ErrPersistence):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeDatabaseError, tryAgainLater).
			WithSeverity(dto.ErrorSeverityCritical)
	case errors.Is(err, apperrors.ErrNotification):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeExternalServiceError, tryAgainLater)
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, tryAgainLater).
			WithSeverity(dto.ErrorSeverityCritical)
	}
}

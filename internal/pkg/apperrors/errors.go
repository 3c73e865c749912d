package apperrors

import "errors"

// Error kinds shared by both engines. Callers match them with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("permission denied")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrConflict           = errors.New("conflict")
	ErrCapacityExceeded   = errors.New("event capacity exceeded")
	ErrDeadlinePassed     = errors.New("registration deadline has passed")
	ErrChatOffline        = errors.New("support chat is offline")
	ErrPersistence        = errors.New("persistence failure")
	ErrNotification       = errors.New("notification failure")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Cause   error
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap exposes both the kind and the underlying cause to errors.Is / errors.As
func (e *CustomError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithField adds a single detail entry
func (e *CustomError) WithField(key string, value interface{}) *CustomError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewCustomError creates a CustomError of the given kind
func NewCustomError(kind error, message string) *CustomError {
	return &CustomError{
		Err:     kind,
		Message: message,
	}
}

// NewValidationError creates a validation error with a message
func NewValidationError(message string) *CustomError {
	return NewCustomError(ErrValidation, message)
}

// NewNotFoundError creates a not found error with a message
func NewNotFoundError(message string) *CustomError {
	return NewCustomError(ErrNotFound, message)
}

// NewForbiddenError creates a permission denied error with a message
func NewForbiddenError(message string) *CustomError {
	return NewCustomError(ErrForbidden, message)
}

// NewConflictError creates a conflict error with a message
func NewConflictError(message string) *CustomError {
	return NewCustomError(ErrConflict, message)
}

// NewUnauthenticatedError creates an authentication error with a message
func NewUnauthenticatedError(message string) *CustomError {
	return NewCustomError(ErrUnauthenticated, message)
}

// NewPersistenceError wraps a storage failure. The cause is kept for logging only.
func NewPersistenceError(op string, cause error) *CustomError {
	return &CustomError{
		Err:     ErrPersistence,
		Message: "failed to " + op,
		Cause:   cause,
	}
}

// NewNotificationError wraps a delivery failure
func NewNotificationError(cause error) *CustomError {
	return &CustomError{
		Err:     ErrNotification,
		Message: "failed to send notification",
		Cause:   cause,
	}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// Message returns the user facing message carried by err, or fallback
func Message(err error, fallback string) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}

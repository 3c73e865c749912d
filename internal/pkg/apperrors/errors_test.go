package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestCustomErrorMatching(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("wrapped: %w", NewPersistenceError("load event", cause))

	if !errors.Is(err, ErrPersistence) {
		t.Error("Expected the persistence kind to match")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected the cause to stay reachable")
	}
	if Message(err, "fallback") != "failed to load event" {
		t.Errorf("Unexpected message %q", Message(err, "fallback"))
	}
	if Message(errors.New("plain"), "fallback") != "fallback" {
		t.Error("Expected fallback for a plain error")
	}
	if !Is(NewConflictError("taken"), ErrNotFound, ErrConflict) {
		t.Error("Expected Is to check the extra targets")
	}
}

func TestWithField(t *testing.T) {
	err := NewValidationError("bad").WithField("field", "title").WithField("max", 100)
	if err.Details["field"] != "title" || err.Details["max"] != 100 {
		t.Errorf("Unexpected details %v", err.Details)
	}
	if err.Error() != "bad" {
		t.Errorf("Expected message as error text, got %q", err.Error())
	}
}

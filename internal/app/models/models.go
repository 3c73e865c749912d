package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleType defines the user role type
type RoleType string

const (
	RoleUser  RoleType = "user"
	RoleAdmin RoleType = "admin"
)

// Valid reports whether r is a known role
func (r RoleType) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Actor is the authenticated principal performing an operation
type Actor struct {
	ID    primitive.ObjectID
	Email string
	Role  RoleType
}

// IsAdmin reports whether the actor holds the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// ParseID parses a 24 character hexadecimal identifier
func ParseID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id %q: %w", raw, err)
	}
	return id, nil
}

// NewID returns a fresh identifier
func NewID() primitive.ObjectID {
	return primitive.NewObjectID()
}

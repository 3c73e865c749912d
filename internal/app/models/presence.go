package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PresenceTag identifies which surface a presence flag controls
type PresenceTag string

const (
	PresenceChat  PresenceTag = "chat"
	PresenceStore PresenceTag = "store"
)

// Valid reports whether t is a known tag
func (t PresenceTag) Valid() bool {
	return t == PresenceChat || t == PresenceStore
}

// PresenceFlag records whether a surface is currently online
type PresenceFlag struct {
	Tag         PresenceTag         `json:"tag" db:"tag"`
	IsOnline    bool                `json:"isOnline" db:"is_online"`
	LastUpdated time.Time           `json:"lastUpdated" db:"last_updated"`
	UpdatedBy   *primitive.ObjectID `json:"updatedBy,omitempty" db:"updated_by"`
}

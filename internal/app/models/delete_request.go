package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeleteRequestStatus is the resolution state of an account deletion request
type DeleteRequestStatus string

const (
	DeleteRequestPending  DeleteRequestStatus = "pending"
	DeleteRequestApproved DeleteRequestStatus = "approved"
	DeleteRequestRejected DeleteRequestStatus = "rejected"
)

// DefaultDeleteReason is stored when the user gives no reason
const DefaultDeleteReason = "No reason provided"

// DeleteRequest is a user's request to have their account removed
type DeleteRequest struct {
	ID           primitive.ObjectID  `json:"id" db:"id"`
	UserID       primitive.ObjectID  `json:"userId" db:"user_id"`
	UserEmail    string              `json:"userEmail" db:"user_email"`
	UserName     string              `json:"userName" db:"user_name"`
	Reason       string              `json:"reason" db:"reason"`
	Status       DeleteRequestStatus `json:"status" db:"status"`
	AdminComment string              `json:"adminComment,omitempty" db:"admin_comment"`
	RequestedAt  time.Time           `json:"requestedAt" db:"requested_at"`
	ResolvedAt   *time.Time          `json:"resolvedAt,omitempty" db:"resolved_at"`
	ResolvedBy   *primitive.ObjectID `json:"resolvedBy,omitempty" db:"resolved_by"`
}

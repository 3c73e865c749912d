package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat is a support conversation owned by a regular user
type Chat struct {
	ID          primitive.ObjectID `json:"id" db:"id"`
	User        primitive.ObjectID `json:"user" db:"user_id"`
	Messages    []Message          `json:"messages" db:"-"`
	LastUpdated time.Time          `json:"lastUpdated" db:"last_updated"`
	IsActive    bool               `json:"isActive" db:"is_active"`
	CreatedAt   time.Time          `json:"createdAt" db:"created_at"`
}

// Message is a single entry in a chat
type Message struct {
	ID         primitive.ObjectID `json:"id" db:"id"`
	Sender     primitive.ObjectID `json:"sender" db:"sender_id"`
	SenderRole RoleType           `json:"senderRole" db:"sender_role"`
	Content    string             `json:"content" db:"content"`
	FileURL    string             `json:"fileUrl,omitempty" db:"file_url"`
	IsRead     bool               `json:"isRead" db:"is_read"`
	Timestamp  time.Time          `json:"timestamp" db:"created_at"`
}

// UnreadFor counts unread messages in the chat that the reader did not author.
// Regular users only count messages written by admins.
func (c *Chat) UnreadFor(reader Actor) int {
	count := 0
	for _, m := range c.Messages {
		if m.IsRead || m.Sender == reader.ID {
			continue
		}
		if !reader.IsAdmin() && m.SenderRole != RoleAdmin {
			continue
		}
		count++
	}
	return count
}

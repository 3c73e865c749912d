package repositories

import (
	"context"
	"time"

	"github.com/yigit/eventsphere/internal/app/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Implementations report a missing row with apperrors.ErrNotFound and a violated
// uniqueness rule with apperrors.ErrConflict. Any other error is a storage failure.

// UserRepository defines the persistence operations for users
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// Delete removes the user together with their organized events, their RSVPs and their chats
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, limit, offset int) ([]*models.User, int, error)
	ListNotificationEmails(ctx context.Context) ([]string, error)
}

// EventMutation edits an event loaded under an exclusive lock. Returning an error aborts the write.
type EventMutation func(event *models.Event) error

// EventRepository defines the persistence operations for events and their embedded entries
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	List(ctx context.Context, filter models.EventFilter) ([]*models.Event, int, error)
	// Mutate performs an atomic read-modify-write of a single event
	Mutate(ctx context.Context, id primitive.ObjectID, fn EventMutation) (*models.Event, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountOrganizedBy(ctx context.Context, user primitive.ObjectID) (int, error)
	CountAttendingBy(ctx context.Context, user primitive.ObjectID) (int, error)
	// ListByAttendee returns every event the user has an RSVP on, sorted by date ascending
	ListByAttendee(ctx context.Context, user primitive.ObjectID) ([]*models.Event, error)
}

// ChatRepository defines the persistence operations for chats and messages
type ChatRepository interface {
	// Create fails with ErrConflict when the owner already has an active chat
	Create(ctx context.Context, chat *models.Chat) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error)
	FindActiveByUser(ctx context.Context, user primitive.ObjectID) (*models.Chat, error)
	// ListActive returns active chats sorted by last update, newest first. A nil owner lists all.
	ListActive(ctx context.Context, owner *primitive.ObjectID) ([]*models.Chat, error)
	// AppendMessage fails with ErrConflict when the chat is archived
	AppendMessage(ctx context.Context, chatID primitive.ObjectID, msg *models.Message) error
	// SetActive fails with ErrConflict when reactivating would give the owner two active chats
	SetActive(ctx context.Context, chatID primitive.ObjectID, active bool, at time.Time) error
	// MarkRead flips unread messages not authored by reader. Empty ids means every message.
	MarkRead(ctx context.Context, chatID, reader primitive.ObjectID, ids []primitive.ObjectID) (int, error)
	CountUnread(ctx context.Context, reader models.Actor) (int, error)
}

// PresenceRepository stores one presence flag per tag
type PresenceRepository interface {
	// Get returns the flag, creating it offline and stamped with at on first access
	Get(ctx context.Context, tag models.PresenceTag, at time.Time) (*models.PresenceFlag, error)
	Set(ctx context.Context, flag *models.PresenceFlag) error
}

// DeleteRequestRepository defines the persistence operations for account deletion requests
type DeleteRequestRepository interface {
	// Create fails with ErrConflict when the user already has a pending request
	Create(ctx context.Context, req *models.DeleteRequest) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.DeleteRequest, error)
	List(ctx context.Context) ([]*models.DeleteRequest, error)
	// Resolve moves a pending request to its final state, ErrConflict when it is no longer pending
	Resolve(ctx context.Context, req *models.DeleteRequest) error
}

// PasswordResetTokenRepository manages password reset tokens
type PasswordResetTokenRepository interface {
	// CreateToken stores the token and drops any earlier tokens of the same user
	CreateToken(ctx context.Context, token *models.PasswordResetToken) error
	GetTokenByHash(ctx context.Context, hash string) (*models.PasswordResetToken, error)
	// MarkTokenAsUsed fails with ErrConflict when the token was already used
	MarkTokenAsUsed(ctx context.Context, hash string, at time.Time) error
	DeleteTokensByUserID(ctx context.Context, userID primitive.ObjectID) error
	DeleteExpiredTokens(ctx context.Context, before time.Time) (int, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	Users          UserRepository
	Events         EventRepository
	Chats          ChatRepository
	Presence       PresenceRepository
	DeleteRequests DeleteRequestRepository
	PasswordResets PasswordResetTokenRepository
}

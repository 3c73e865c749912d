package memory

import (
	"context"
	"slices"
	"time"

	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatRepository is the in-memory chat collection
type ChatRepository struct {
	s *Store
}

func (r *ChatRepository) activeFor(user primitive.ObjectID) *models.Chat {
	for _, c := range r.s.chats {
		if c.User == user && c.IsActive {
			return c
		}
	}
	return nil
}

// Create inserts a chat, rejecting a second active chat for the same owner
func (r *ChatRepository) Create(_ context.Context, chat *models.Chat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if chat.IsActive && r.activeFor(chat.User) != nil {
		return apperrors.NewConflictError("user already has an active chat")
	}
	r.s.chats[chat.ID] = copyChat(chat)
	return nil
}

// GetByID retrieves a chat
func (r *ChatRepository) GetByID(_ context.Context, id primitive.ObjectID) (*models.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.chats[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("chat not found")
	}
	return copyChat(c), nil
}

// FindActiveByUser retrieves the user's active chat
func (r *ChatRepository) FindActiveByUser(_ context.Context, user primitive.ObjectID) (*models.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if c := r.activeFor(user); c != nil {
		return copyChat(c), nil
	}
	return nil, apperrors.NewNotFoundError("no active chat")
}

// ListActive returns active chats, newest activity first
func (r *ChatRepository) ListActive(_ context.Context, owner *primitive.ObjectID) ([]*models.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	chats := make([]*models.Chat, 0)
	for _, c := range r.s.chats {
		if !c.IsActive || (owner != nil && c.User != *owner) {
			continue
		}
		chats = append(chats, copyChat(c))
	}
	sortChats(chats)
	return chats, nil
}

// AppendMessage adds a message to an active chat
func (r *ChatRepository) AppendMessage(_ context.Context, chatID primitive.ObjectID, msg *models.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.chats[chatID]
	if !ok {
		return apperrors.NewNotFoundError("chat not found")
	}
	if !c.IsActive {
		return apperrors.NewConflictError("chat is archived")
	}
	c.Messages = append(c.Messages, *msg)
	c.LastUpdated = msg.Timestamp
	return nil
}

// SetActive archives or reactivates a chat
func (r *ChatRepository) SetActive(_ context.Context, chatID primitive.ObjectID, active bool, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.chats[chatID]
	if !ok {
		return apperrors.NewNotFoundError("chat not found")
	}
	if active && !c.IsActive && r.activeFor(c.User) != nil {
		return apperrors.NewConflictError("user already has an active chat")
	}
	c.IsActive = active
	c.LastUpdated = at
	return nil
}

// MarkRead flips unread messages not authored by reader
func (r *ChatRepository) MarkRead(_ context.Context, chatID, reader primitive.ObjectID, ids []primitive.ObjectID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.chats[chatID]
	if !ok {
		return 0, apperrors.NewNotFoundError("chat not found")
	}
	n := 0
	for i := range c.Messages {
		m := &c.Messages[i]
		if m.IsRead || m.Sender == reader {
			continue
		}
		if len(ids) > 0 && !slices.Contains(ids, m.ID) {
			continue
		}
		m.IsRead = true
		n++
	}
	return n, nil
}

// CountUnread counts unread messages addressed to the reader across active chats
func (r *ChatRepository) CountUnread(_ context.Context, reader models.Actor) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for _, c := range r.s.chats {
		if !c.IsActive || (!reader.IsAdmin() && c.User != reader.ID) {
			continue
		}
		n += c.UnreadFor(reader)
	}
	return n, nil
}

package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/eventsphere/internal/app/auth"
	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/app/models/dto"
	"github.com/yigit/eventsphere/internal/app/repositories"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatService defines the interface for support chat operations
type ChatService interface {
	StartOrAppend(ctx context.Context, actor models.Actor, req *dto.StartChatRequest) (*models.Chat, error)
	PostMessage(ctx context.Context, actor models.Actor, chatID string, req *dto.PostMessageRequest) (*models.Chat, error)
	MarkRead(ctx context.Context, actor models.Actor, req *dto.MarkReadRequest) (int, error)
	MarkAllRead(ctx context.Context, actor models.Actor, chatID string) (int, error)
	ListChats(ctx context.Context, actor models.Actor) ([]*models.Chat, error)
	GetChat(ctx context.Context, actor models.Actor, chatID string) (*models.Chat, error)
	CountUnread(ctx context.Context, actor models.Actor) (int, error)
	CloseChat(ctx context.Context, actor models.Actor, chatID string) (*models.Chat, error)
	ReopenChat(ctx context.Context, actor models.Actor, chatID string) (*models.Chat, error)
}

// chatServiceImpl implements ChatService
type chatServiceImpl struct {
	chats      repositories.ChatRepository
	users      repositories.UserRepository
	presence   PresenceService
	authorizer *auth.Authorizer
	now        Clock
	logger     zerolog.Logger
}

// NewChatService creates a new ChatService
func NewChatService(
	chats repositories.ChatRepository,
	users repositories.UserRepository,
	presence PresenceService,
	authorizer *auth.Authorizer,
	clock Clock,
	logger zerolog.Logger,
) ChatService {
	return &chatServiceImpl{
		chats:      chats,
		users:      users,
		presence:   presence,
		authorizer: authorizer,
		now:        clockOrDefault(clock),
		logger:     logger,
	}
}

// StartOrAppend appends to the caller's active chat, opening a new one when none exists
func (s *chatServiceImpl) StartOrAppend(ctx context.Context, actor models.Actor, req *dto.StartChatRequest) (*models.Chat, error) {
	if err := s.authorizer.ValidateChatOwnership(actor); err != nil {
		return nil, err
	}
	msg, err := s.newMessage(actor, req.InitialMessage, req.FileURL)
	if err != nil {
		return nil, err
	}
	if err := s.requireOnline(ctx, actor); err != nil {
		return nil, err
	}
	if err := requireAccount(ctx, s.users, actor); err != nil {
		return nil, err
	}

	chat, err := s.chats.FindActiveByUser(ctx, actor.ID)
	switch {
	case err == nil:
		return s.appendTo(ctx, chat.ID, msg)
	case !apperrors.Is(err, apperrors.ErrNotFound):
		s.logger.Error().Err(err).Str("user", actor.ID.Hex()).Msg("Failed to look up active chat")
		return nil, storageError("load chat", err)
	}

	chat = &models.Chat{
		ID:          models.NewID(),
		User:        actor.ID,
		Messages:    []models.Message{*msg},
		LastUpdated: msg.Timestamp,
		IsActive:    true,
		CreatedAt:   msg.Timestamp,
	}
	err = s.chats.Create(ctx, chat)
	if apperrors.Is(err, apperrors.ErrConflict) {
		// a concurrent request opened the chat first
		existing, findErr := s.chats.FindActiveByUser(ctx, actor.ID)
		if findErr != nil {
			return nil, storageError("load chat", findErr)
		}
		return s.appendTo(ctx, existing.ID, msg)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user", actor.ID.Hex()).Msg("Failed to create chat")
		return nil, storageError("create chat", err)
	}

	s.logger.Info().Str("chatID", chat.ID.Hex()).Str("user", actor.ID.Hex()).Msg("Chat opened")
	return chat, nil
}

// PostMessage appends a message to an existing chat as its owner or an admin
func (s *chatServiceImpl) PostMessage(ctx context.Context, actor models.Actor, chatID string, req *dto.PostMessageRequest) (*models.Chat, error) {
	if err := s.authorizer.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	id, err := parseID(chatID, "chatId")
	if err != nil {
		return nil, err
	}
	msg, err := s.newMessage(actor, req.Content, req.FileURL)
	if err != nil {
		return nil, err
	}

	if _, err := s.loadAccessible(ctx, actor, id, "post_message"); err != nil {
		return nil, err
	}
	if err := s.requireOnline(ctx, actor); err != nil {
		return nil, err
	}
	return s.appendTo(ctx, id, msg)
}

// MarkRead flips the listed messages that the actor did not write
func (s *chatServiceImpl) MarkRead(ctx context.Context, actor models.Actor, req *dto.MarkReadRequest) (int, error) {
	if err := s.authorizer.RequireAuthenticated(actor); err != nil {
		return 0, err
	}
	id, err := parseID(req.ChatID, "chatId")
	if err != nil {
		return 0, err
	}
	if len(req.MessageIDs) == 0 {
		return 0, apperrors.NewValidationError("messageIds must not be empty").WithField("field", "messageIds")
	}
	ids := make([]primitive.ObjectID, 0, len(req.MessageIDs))
	for _, raw := range req.MessageIDs {
		msgID, err := parseID(raw, "messageIds")
		if err != nil {
			return 0, err
		}
		ids = append(ids, msgID)
	}

	if _, err := s.loadAccessible(ctx, actor, id, "mark_read"); err != nil {
		return 0, err
	}
	return s.markRead(ctx, actor, id, ids)
}

// MarkAllRead flips every unread message in the chat that the actor did not write
func (s *chatServiceImpl) MarkAllRead(ctx context.Context, actor models.Actor, chatID string) (int, error) {
	if err := s.authorizer.RequireAuthenticated(actor); err != nil {
		return 0, err
	}
	id, err := parseID(chatID, "chatId")
	if err != nil {
		return 0, err
	}
	if _, err := s.loadAccessible(ctx, actor, id, "mark_read"); err != nil {
		return 0, err
	}
	return s.markRead(ctx, actor, id, nil)
}

// ListChats returns every active chat for admins and the caller's own otherwise
func (s *chatServiceImpl) ListChats(ctx context.Context, actor models.Actor) ([]*models.Chat, error) {
	if err := s.authorizer.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	var owner *primitive.ObjectID
	if !actor.IsAdmin() {
		owner = &actor.ID
	}
	chats, err := s.chats.ListActive(ctx, owner)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list chats")
		return nil, storageError("list chats", err)
	}
	return chats, nil
}

// GetChat returns one chat to its owner or an admin
func (s *chatServiceImpl) GetChat(ctx context.Context, actor models.Actor, chatID string) (*models.Chat, error) {
	if err := s.authorizer.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	id, err := parseID(chatID, "chatId")
	if err != nil {
		return nil, err
	}
	return s.loadAccessible(ctx, actor, id, "get_chat")
}

// CountUnread counts the messages waiting for the actor across active chats
func (s *chatServiceImpl) CountUnread(ctx context.Context, actor models.Actor) (int, error) {
	if err := s.authorizer.RequireAuthenticated(actor); err != nil {
		return 0, err
	}
	n, err := s.chats.CountUnread(ctx, actor)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to count unread messages")
		return 0, storageError("count unread messages", err)
	}
	return n, nil
}

// CloseChat archives an active chat
func (s *chatServiceImpl) CloseChat(ctx context.Context, actor models.Actor, chatID string) (*models.Chat, error) {
	return s.setActive(ctx, actor, chatID, false)
}

// ReopenChat reactivates an archived chat unless its owner already has another active one
func (s *chatServiceImpl) ReopenChat(ctx context.Context, actor models.Actor, chatID string) (*models.Chat, error) {
	return s.setActive(ctx, actor, chatID, true)
}

func (s *chatServiceImpl) setActive(ctx context.Context, actor models.Actor, chatID string, active bool) (*models.Chat, error) {
	if err := s.authorizer.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	id, err := parseID(chatID, "chatId")
	if err != nil {
		return nil, err
	}
	chat, err := s.loadAccessible(ctx, actor, id, "set_chat_state")
	if err != nil {
		return nil, err
	}
	if chat.IsActive == active {
		return chat, nil
	}

	if err := s.chats.SetActive(ctx, id, active, s.now()); err != nil {
		if !apperrors.Is(err, apperrors.ErrConflict) {
			s.logger.Error().Err(err).Str("chatID", chatID).Msg("Failed to change chat state")
		}
		return nil, storageError("update chat", err)
	}

	s.logger.Info().Str("chatID", chatID).Bool("active", active).Str("actor", actor.ID.Hex()).Msg("Chat state changed")
	return s.reload(ctx, id)
}

func (s *chatServiceImpl) newMessage(actor models.Actor, content, fileURL string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("message content is required").WithField("field", "content")
	}
	return &models.Message{
		ID:         models.NewID(),
		Sender:     actor.ID,
		SenderRole: actor.Role,
		Content:    content,
		FileURL:    strings.TrimSpace(fileURL),
		Timestamp:  s.now(),
	}, nil
}

// requireOnline blocks regular users while support is offline
func (s *chatServiceImpl) requireOnline(ctx context.Context, actor models.Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	online, err := s.presence.IsOnline(ctx, models.PresenceChat)
	if err != nil {
		return err
	}
	if !online {
		return apperrors.NewCustomError(apperrors.ErrChatOffline, "support chat is currently offline")
	}
	return nil
}

func (s *chatServiceImpl) loadAccessible(ctx context.Context, actor models.Actor, id primitive.ObjectID, action string) (*models.Chat, error) {
	chat, err := s.chats.GetByID(ctx, id)
	if err != nil {
		return nil, storageError("load chat", err)
	}
	if err := s.authorizer.ValidateChatAccess(actor, chat, action); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *chatServiceImpl) appendTo(ctx context.Context, id primitive.ObjectID, msg *models.Message) (*models.Chat, error) {
	if err := s.chats.AppendMessage(ctx, id, msg); err != nil {
		if !apperrors.Is(err, apperrors.ErrConflict, apperrors.ErrNotFound) {
			s.logger.Error().Err(err).Str("chatID", id.Hex()).Msg("Failed to append message")
		}
		return nil, storageError("send message", err)
	}

	s.logger.Debug().
		Str("chatID", id.Hex()).
		Str("sender", msg.Sender.Hex()).
		Str("role", string(msg.SenderRole)).
		Msg("Message appended")
	return s.reload(ctx, id)
}

func (s *chatServiceImpl) markRead(ctx context.Context, actor models.Actor, id primitive.ObjectID, ids []primitive.ObjectID) (int, error) {
	n, err := s.chats.MarkRead(ctx, id, actor.ID, ids)
	if err != nil {
		s.logger.Error().Err(err).Str("chatID", id.Hex()).Msg("Failed to mark messages as read")
		return 0, storageError("mark messages as read", err)
	}
	return n, nil
}

func (s *chatServiceImpl) reload(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	chat, err := s.chats.GetByID(ctx, id)
	if err != nil {
		return nil, storageError("load chat", err)
	}
	return chat, nil
}

package dto

import "github.com/yigit/eventsphere/internal/app/models"

// StartChatRequest opens a support chat or appends to the caller's active one
type StartChatRequest struct {
	InitialMessage string `json:"initialMessage" binding:"required,max=5000"`
	FileURL        string `json:"fileUrl" binding:"omitempty,max=2048"`
}

// PostMessageRequest appends a message to an existing chat
type PostMessageRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
	FileURL string `json:"fileUrl" binding:"omitempty,max=2048"`
}

// MarkReadRequest flips the read flag of the listed messages
type MarkReadRequest struct {
	ChatID     string   `json:"chatId" binding:"required,len=24,hexadecimal"`
	MessageIDs []string `json:"messageIds" binding:"required,min=1,dive,len=24,hexadecimal"`
}

// MarkReadResponse reports how many messages changed state
type MarkReadResponse struct {
	UpdatedCount int `json:"updatedCount" example:"2"`
}

// UnreadCountResponse reports the caller's unread messages
type UnreadCountResponse struct {
	Count int `json:"count" example:"4"`
}

// ChatListResponse lists chats
type ChatListResponse struct {
	Chats []*models.Chat `json:"chats"`
}

// SetPresenceRequest toggles a presence flag
type SetPresenceRequest struct {
	IsOnline *bool `json:"isOnline" binding:"required"`
}

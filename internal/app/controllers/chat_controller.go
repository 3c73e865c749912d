package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/eventsphere/internal/app/models/dto"
	"github.com/yigit/eventsphere/internal/app/services"
	"github.com/yigit/eventsphere/internal/middleware"
)

// ChatController handles support chat endpoints
type ChatController struct {
	chatService services.ChatService
}

// NewChatController creates a new ChatController
func NewChatController(chatService services.ChatService) *ChatController {
	return &ChatController{chatService: chatService}
}

// ListChats returns the active chats visible to the caller
// @Summary List chats
// @Description Admins see every active chat, users see their own
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ChatListResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /chat [get]
func (c *ChatController) ListChats(ctx *gin.Context) {
	actor, _ := middleware.ActorFrom(ctx)
	chats, err := c.chatService.ListChats(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ChatListResponse{Chats: chats}, ""))
}

// StartChat opens a chat or appends to the caller's active one
// @Summary Start a support chat
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StartChatRequest true "First message"
// @Success 201 {object} dto.APIResponse{data=models.Chat}
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 403 {object} dto.ErrorResponse "Admins cannot start chats"
// @Failure 503 {object} dto.ErrorResponse "Support chat is offline"
// @Router /chat [post]
func (c *ChatController) StartChat(ctx *gin.Context) {
	var req dto.StartChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	actor, _ := middleware.ActorFrom(ctx)
	chat, err := c.chatService.StartOrAppend(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(chat, "Message sent"))
}

// GetChat returns a single chat
// @Summary Get a chat
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path string true "Chat id"
// @Success 200 {object} dto.APIResponse{data=models.Chat}
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Chat not found"
// @Router /chat/{id} [get]
func (c *ChatController) GetChat(ctx *gin.Context) {
	actor, _ := middleware.ActorFrom(ctx)
	chat, err := c.chatService.GetChat(ctx.Request.Context(), actor, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(chat, ""))
}

// PostMessage appends a message to a chat
// @Summary Send a message
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Chat id"
// @Param request body dto.PostMessageRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=models.Chat}
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Chat not found"
// @Failure 409 {object} dto.ErrorResponse "Chat is archived"
// @Failure 503 {object} dto.ErrorResponse "Support chat is offline"
// @Router /chat/{id}/message [post]
func (c *ChatController) PostMessage(ctx *gin.Context) {
	var req dto.PostMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	actor, _ := middleware.ActorFrom(ctx)
	chat, err := c.chatService.PostMessage(ctx.Request.Context(), actor, ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(chat, "Message sent"))
}

// MarkAllRead marks every message addressed to the caller in a chat as read
// @Summary Mark a chat as read
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path string true "Chat id"
// @Success 200 {object} dto.APIResponse{data=dto.MarkReadResponse}
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Chat not found"
// @Router /chat/{id}/message [put]
func (c *ChatController) MarkAllRead(ctx *gin.Context) {
	actor, _ := middleware.ActorFrom(ctx)
	n, err := c.chatService.MarkAllRead(ctx.Request.Context(), actor, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MarkReadResponse{UpdatedCount: n}, ""))
}

// MarkRead marks the listed messages as read
// @Summary Mark messages as read
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MarkReadRequest true "Chat and message ids"
// @Success 200 {object} dto.APIResponse{data=dto.MarkReadResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid ids"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Chat not found"
// @Router /chat/messages/read [put]
func (c *ChatController) MarkRead(ctx *gin.Context) {
	var req dto.MarkReadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	actor, _ := middleware.ActorFrom(ctx)
	n, err := c.chatService.MarkRead(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MarkReadResponse{UpdatedCount: n}, ""))
}

// CountUnread reports how many messages wait for the caller
// @Summary Count unread messages
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UnreadCountResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /chat/unread [get]
func (c *ChatController) CountUnread(ctx *gin.Context) {
	actor, _ := middleware.ActorFrom(ctx)
	n, err := c.chatService.CountUnread(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.UnreadCountResponse{Count: n}, ""))
}

// CloseChat archives a chat
// @Summary Close a chat
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path string true "Chat id"
// @Success 200 {object} dto.APIResponse{data=models.Chat}
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Chat not found"
// @Router /chat/{id} [delete]
func (c *ChatController) CloseChat(ctx *gin.Context) {
	actor, _ := middleware.ActorFrom(ctx)
	chat, err := c.chatService.CloseChat(ctx.Request.Context(), actor, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(chat, "Chat closed"))
}

// ReopenChat reactivates an archived chat
// @Summary Reopen a chat
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path string true "Chat id"
// @Success 200 {object} dto.APIResponse{data=models.Chat}
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Chat not found"
// @Failure 409 {object} dto.ErrorResponse "Owner already has an active chat"
// @Router /chat/{id}/reopen [post]
func (c *ChatController) ReopenChat(ctx *gin.Context) {
	actor, _ := middleware.ActorFrom(ctx)
	chat, err := c.chatService.ReopenChat(ctx.Request.Context(), actor, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(chat, "Chat reopened"))
}

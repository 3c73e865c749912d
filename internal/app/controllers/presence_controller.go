package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/app/models/dto"
	"github.com/yigit/eventsphere/internal/app/services"
	"github.com/yigit/eventsphere/internal/middleware"
)

// PresenceController exposes the chat and store online switches
type PresenceController struct {
	presenceService services.PresenceService
}

// NewPresenceController creates a new PresenceController
func NewPresenceController(presenceService services.PresenceService) *PresenceController {
	return &PresenceController{presenceService: presenceService}
}

// GetStatus returns a handler reporting the flag for tag
// @Summary Get presence status
// @Tags presence
// @Produce json
// @Success 200 {object} dto.APIResponse{data=models.PresenceFlag}
// @Router /chat/status [get]
// @Router /store/status [get]
func (c *PresenceController) GetStatus(tag models.PresenceTag) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		flag, err := c.presenceService.GetPresence(ctx.Request.Context(), tag)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(flag, ""))
	}
}

// SetStatus returns a handler switching the flag for tag
// @Summary Set presence status
// @Description Admin only
// @Tags presence
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SetPresenceRequest true "New state"
// @Success 200 {object} dto.APIResponse{data=models.PresenceFlag}
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /chat/status [put]
// @Router /store/status [put]
func (c *PresenceController) SetStatus(tag models.PresenceTag) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req dto.SetPresenceRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			middleware.HandleBindError(ctx, err)
			return
		}

		actor, _ := middleware.ActorFrom(ctx)
		flag, err := c.presenceService.SetPresence(ctx.Request.Context(), actor, tag, *req.IsOnline)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(flag, "Status updated"))
	}
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/eventsphere/internal/app/models/dto"
	"github.com/yigit/eventsphere/internal/app/services"
	"github.com/yigit/eventsphere/internal/middleware"
)

// DeleteRequestController handles account deletion requests
type DeleteRequestController struct {
	service services.DeleteRequestService
}

// NewDeleteRequestController creates a new DeleteRequestController
func NewDeleteRequestController(service services.DeleteRequestService) *DeleteRequestController {
	return &DeleteRequestController{service: service}
}

// Submit files a deletion request for the caller
// @Summary Request account deletion
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitDeleteRequest false "Reason"
// @Success 201 {object} dto.APIResponse{data=models.DeleteRequest}
// @Failure 409 {object} dto.ErrorResponse "A request is already pending"
// @Router /users/delete-request [post]
func (c *DeleteRequestController) Submit(ctx *gin.Context) {
	var req dto.SubmitDeleteRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			middleware.HandleBindError(ctx, err)
			return
		}
	}

	actor, _ := middleware.ActorFrom(ctx)
	request, err := c.service.Submit(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(request, "Delete request submitted"))
}

// List returns every deletion request
// @Summary List delete requests
// @Description Admin only
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.DeleteRequest}
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /users/delete-request [get]
func (c *DeleteRequestController) List(ctx *gin.Context) {
	actor, _ := middleware.ActorFrom(ctx)
	requests, err := c.service.List(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(requests, ""))
}

// Resolve approves or rejects a pending request
// @Summary Resolve a delete request
// @Description Admin only. Approval removes the account with its events, RSVPs and chats.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request id"
// @Param request body dto.ResolveDeleteRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=models.DeleteRequest}
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Failure 409 {object} dto.ErrorResponse "Request already resolved"
// @Router /users/delete-request/{id} [patch]
func (c *DeleteRequestController) Resolve(ctx *gin.Context) {
	var req dto.ResolveDeleteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	actor, _ := middleware.ActorFrom(ctx)
	request, err := c.service.Resolve(ctx.Request.Context(), actor, ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(request, "Delete request "+string(request.Status)))
}

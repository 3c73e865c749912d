package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/app/models/dto"
	"github.com/yigit/eventsphere/internal/app/services"
	"github.com/yigit/eventsphere/internal/middleware"
	"github.com/yigit/eventsphere/internal/pkg/helpers"
)

// EventController handles event and RSVP endpoints
type EventController struct {
	eventService services.EventService
	logger       zerolog.Logger
}

// NewEventController creates a new EventController
func NewEventController(eventService services.EventService, logger zerolog.Logger) *EventController {
	return &EventController{
		eventService: eventService,
		logger:       logger,
	}
}

// CreateEvent handles event submission
// @Summary Create an event
// @Description Admin events are published immediately, other events wait for approval
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEventRequest true "Event details"
// @Success 201 {object} dto.APIResponse{data=models.Event}
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /events [post]
func (c *EventController) CreateEvent(ctx *gin.Context) {
	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Debug().Err(err).Msg("Invalid create event payload")
		middleware.HandleBindError(ctx, err)
		return
	}

	actor, _ := middleware.ActorFrom(ctx)
	event, err := c.eventService.CreateEvent(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	message := "Event submitted for approval"
	if event.Status != models.EventStatusPendingApproval {
		message = "Event created successfully"
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(event, message))
}

// ListEvents returns a page of events sorted by date
// @Summary List events
// @Tags events
// @Produce json
// @Param status query string false "Status filter" Enums(pending_approval, upcoming, ongoing, completed, cancelled, rejected)
// @Param organizer query string false "Organizer id"
// @Param category query string false "Category"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.EventListResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /events [get]
func (c *EventController) ListEvents(ctx *gin.Context) {
	var query dto.EventListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)
	actor, _ := middleware.ActorFrom(ctx)

	events, total, err := c.eventService.ListEvents(ctx.Request.Context(), actor, query, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.EventListResponse{
		Events:     events,
		Pagination: helpers.NewPaginationInfo(int64(total), page, size),
	}, ""))
}

// GetEvent returns a single event
// @Summary Get an event
// @Tags events
// @Produce json
// @Param id path string true "Event id"
// @Success 200 {object} dto.APIResponse{data=models.Event}
// @Failure 400 {object} dto.ErrorResponse "Malformed id"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [get]
func (c *EventController) GetEvent(ctx *gin.Context) {
	actor, _ := middleware.ActorFrom(ctx)
	event, err := c.eventService.GetEvent(ctx.Request.Context(), actor, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(event, ""))
}

// ReviewEvent approves or rejects a pending event
// @Summary Approve or reject an event
// @Description Admin only. Approval sends invitations to invitees not yet notified.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event id"
// @Param request body dto.ApproveEventRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=models.Event}
// @Failure 400 {object} dto.ErrorResponse "Invalid decision"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Failure 409 {object} dto.ErrorResponse "Event is not awaiting approval"
// @Router /events/{id} [patch]
func (c *EventController) ReviewEvent(ctx *gin.Context) {
	var req dto.ApproveEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	actor, _ := middleware.ActorFrom(ctx)
	event, err := c.eventService.ApproveOrReject(ctx.Request.Context(), actor, ctx.Param("id"), models.EventStatus(req.Status))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(event, "Event "+string(event.Status)))
}

// UpdateEvent edits an event
// @Summary Update an event
// @Description Organizer or admin. Absent fields are left unchanged.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event id"
// @Param request body dto.UpdateEventRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Event}
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [put]
func (c *EventController) UpdateEvent(ctx *gin.Context) {
	var req dto.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	actor, _ := middleware.ActorFrom(ctx)
	event, err := c.eventService.EditEvent(ctx.Request.Context(), actor, ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(event, "Event updated successfully"))
}

// DeleteEvent removes an event
// @Summary Delete an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event id"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [delete]
func (c *EventController) DeleteEvent(ctx *gin.Context) {
	actor, _ := middleware.ActorFrom(ctx)
	if err := c.eventService.DeleteEvent(ctx.Request.Context(), actor, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Event deleted successfully"))
}

// SubmitRSVP records the caller's response to an event
// @Summary RSVP to an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event id"
// @Param request body dto.RSVPRequest true "RSVP"
// @Success 200 {object} dto.APIResponse{data=dto.RSVPResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Failure 422 {object} dto.ErrorResponse "Capacity exceeded or deadline passed"
// @Router /events/{id}/rsvp [post]
func (c *EventController) SubmitRSVP(ctx *gin.Context) {
	var req dto.RSVPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	actor, _ := middleware.ActorFrom(ctx)
	resp, err := c.eventService.SubmitRSVP(ctx.Request.Context(), actor, ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "RSVP updated successfully"))
}

package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/eventsphere/internal/app/auth"
	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/app/models/dto"
	"github.com/yigit/eventsphere/internal/app/repositories"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
	"github.com/yigit/eventsphere/internal/pkg/email"
	"github.com/yigit/eventsphere/internal/pkg/filestorage"
	"github.com/yigit/eventsphere/internal/pkg/helpers"
	"github.com/yigit/eventsphere/internal/pkg/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventService defines the interface for event and RSVP operations
type EventService interface {
	CreateEvent(ctx context.Context, actor models.Actor, req *dto.CreateEventRequest) (*models.Event, error)
	GetEvent(ctx context.Context, actor models.Actor, id string) (*models.Event, error)
	ListEvents(ctx context.Context, actor models.Actor, query dto.EventListQuery, page, size int) ([]*models.Event, int, error)
	ApproveOrReject(ctx context.Context, actor models.Actor, id string, decision models.EventStatus) (*models.Event, error)
	SubmitRSVP(ctx context.Context, actor models.Actor, id string, req *dto.RSVPRequest) (*dto.RSVPResponse, error)
	EditEvent(ctx context.Context, actor models.Actor, id string, req *dto.UpdateEventRequest) (*models.Event, error)
	DeleteEvent(ctx context.Context, actor models.Actor, id string) error
	UserStats(ctx context.Context, actor models.Actor) (*dto.UserStatsResponse, error)
	UserEvents(ctx context.Context, actor models.Actor, userID string) (*dto.UserEventsResponse, error)
}

// eventServiceImpl implements EventService
type eventServiceImpl struct {
	events     repositories.EventRepository
	users      repositories.UserRepository
	authorizer *auth.Authorizer
	notifier   email.Notifier
	storage    filestorage.FileStorage
	now        Clock
	logger     zerolog.Logger
}

// NewEventService creates a new EventService. storage may be nil.
func NewEventService(
	events repositories.EventRepository,
	users repositories.UserRepository,
	authorizer *auth.Authorizer,
	notifier email.Notifier,
	storage filestorage.FileStorage,
	clock Clock,
	logger zerolog.Logger,
) EventService {
	return &eventServiceImpl{
		events:     events,
		users:      users,
		authorizer: authorizer,
		notifier:   notifier,
		storage:    storage,
		now:        clockOrDefault(clock),
		logger:     logger,
	}
}

// CreateEvent validates and stores a new event. Admin events skip the approval queue.
func (s *eventServiceImpl) CreateEvent(ctx context.Context, actor models.Actor, req *dto.CreateEventRequest) (*models.Event, error) {
	if err := s.authorizer.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	now := s.now()
	date, err := s.validateEventDate(req.Date, now)
	if err != nil {
		return nil, err
	}
	if err := requireText("title", req.Title, validation.TitleMaxLength); err != nil {
		return nil, err
	}
	for _, f := range [][2]string{
		{"description", req.Description},
		{"time", req.Time},
		{"location", req.Location},
	} {
		if err := requireText(f[0], f[1], 0); err != nil {
			return nil, err
		}
	}
	if req.Capacity <= 0 {
		return nil, apperrors.NewValidationError("capacity must be a positive number").WithField("field", "capacity")
	}
	deadline, err := parseDeadline(req.RegistrationDeadline)
	if err != nil {
		return nil, err
	}

	invitees := validation.CleanEmailList(req.InvitedEmails)
	if actor.IsAdmin() && len(invitees) == 0 {
		invitees, err = s.users.ListNotificationEmails(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to load notification recipients")
			return nil, storageError("load notification recipients", err)
		}
	}

	status := models.EventStatusPendingApproval
	if actor.IsAdmin() {
		status = models.EventStatusUpcoming
	}

	event := &models.Event{
		ID:                   models.NewID(),
		Title:                strings.TrimSpace(req.Title),
		Description:          strings.TrimSpace(req.Description),
		Date:                 date,
		Time:                 strings.TrimSpace(req.Time),
		Location:             strings.TrimSpace(req.Location),
		Capacity:             req.Capacity,
		Image:                strings.TrimSpace(req.Image),
		Organizer:            actor.ID,
		Status:               status,
		IsPrivate:            req.IsPrivate,
		RegistrationDeadline: deadline,
		Categories:           cleanCategories(req.Categories),
		InvitedEmails:        newInvitations(invitees, now),
		Attendees:            []models.Attendance{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := requireAccount(ctx, s.users, actor); err != nil {
		return nil, err
	}
	if err := s.events.Create(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("title", event.Title).Msg("Failed to create event")
		return nil, storageError("create event", err)
	}

	s.logger.Info().
		Str("eventID", event.ID.Hex()).
		Str("organizer", actor.ID.Hex()).
		Str("status", string(status)).
		Int("invitees", len(invitees)).
		Msg("Event created")

	if status != models.EventStatusPendingApproval {
		event = s.notifyInvitees(ctx, event)
	}
	return event, nil
}

// GetEvent returns one event. Events awaiting approval or rejected are visible to their organizer and admins only.
func (s *eventServiceImpl) GetEvent(ctx context.Context, actor models.Actor, id string) (*models.Event, error) {
	eventID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, storageError("load event", err)
	}

	if isUnpublished(event.Status) && !actor.IsAdmin() && event.Organizer != actor.ID {
		return nil, apperrors.NewNotFoundError("event not found")
	}
	return event, nil
}

// ListEvents returns a page of events visible to the actor
func (s *eventServiceImpl) ListEvents(ctx context.Context, actor models.Actor, query dto.EventListQuery, page, size int) ([]*models.Event, int, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	filter := models.EventFilter{
		Category: strings.TrimSpace(query.Category),
		Limit:    limit,
		Offset:   offset,
	}

	if query.Organizer != "" {
		organizer, err := parseID(query.Organizer, "organizer")
		if err != nil {
			return nil, 0, err
		}
		filter.Organizer = &organizer
	}

	if query.Status != "" {
		status := models.EventStatus(query.Status)
		if !status.Valid() {
			return nil, 0, apperrors.NewValidationError("invalid status filter").WithField("field", "status")
		}
		filter.Statuses = []models.EventStatus{status}

		if isUnpublished(status) && !actor.IsAdmin() {
			// non-admins only ever see their own unpublished events
			if actor.ID.IsZero() || (filter.Organizer != nil && *filter.Organizer != actor.ID) {
				return []*models.Event{}, 0, nil
			}
			own := actor.ID
			filter.Organizer = &own
		}
	} else if !actor.IsAdmin() {
		filter.ExcludeStatuses = []models.EventStatus{models.EventStatusPendingApproval, models.EventStatusRejected}
	}

	events, total, err := s.events.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list events")
		return nil, 0, storageError("list events", err)
	}
	return events, total, nil
}

// ApproveOrReject moves a pending event to upcoming or rejected and notifies invitees on approval
func (s *eventServiceImpl) ApproveOrReject(ctx context.Context, actor models.Actor, id string, decision models.EventStatus) (*models.Event, error) {
	eventID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireAdmin(actor, "approve_event"); err != nil {
		return nil, err
	}
	if decision != models.EventStatusUpcoming && decision != models.EventStatusRejected {
		return nil, apperrors.NewValidationError("status must be upcoming or rejected").WithField("field", "status")
	}

	now := s.now()
	event, err := s.events.Mutate(ctx, eventID, func(e *models.Event) error {
		if e.Status != models.EventStatusPendingApproval {
			return apperrors.NewConflictError("event is not awaiting approval").
				WithField("status", string(e.Status))
		}
		e.Status = decision
		e.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, storageError("update event status", err)
	}

	s.logger.Info().
		Str("eventID", event.ID.Hex()).
		Str("admin", actor.ID.Hex()).
		Str("status", string(decision)).
		Msg("Event reviewed")

	if decision == models.EventStatusUpcoming {
		event = s.notifyInvitees(ctx, event)
	}
	return event, nil
}

// SubmitRSVP records or replaces the actor's response under the event lock
func (s *eventServiceImpl) SubmitRSVP(ctx context.Context, actor models.Actor, id string, req *dto.RSVPRequest) (*dto.RSVPResponse, error) {
	if err := s.authorizer.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	eventID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	status := models.RSVPStatus(req.Status)
	if !status.Valid() {
		return nil, apperrors.NewValidationError("status must be attending, maybe or declined").WithField("field", "status")
	}
	if req.AdditionalGuests < 0 {
		return nil, apperrors.NewValidationError("additionalGuests cannot be negative").WithField("field", "additionalGuests")
	}

	if err := requireAccount(ctx, s.users, actor); err != nil {
		return nil, err
	}

	now := s.now()
	attendance := models.Attendance{
		User:             actor.ID,
		Status:           status,
		ResponseDate:     now,
		AdditionalGuests: req.AdditionalGuests,
		Notes:            strings.TrimSpace(req.Notes),
	}

	event, err := s.events.Mutate(ctx, eventID, func(e *models.Event) error {
		if e.RegistrationDeadline != nil && now.After(*e.RegistrationDeadline) {
			return apperrors.NewCustomError(apperrors.ErrDeadlinePassed, "registration deadline has passed")
		}
		if status == models.RSVPAttending {
			taken := e.AttendingHeadcount(actor.ID)
			if taken+attendance.Headcount() > e.Capacity {
				return apperrors.NewCustomError(apperrors.ErrCapacityExceeded, "event capacity exceeded").
					WithField("capacity", e.Capacity).
					WithField("available", max(e.Capacity-taken, 0))
			}
		}
		e.UpsertAttendance(attendance)
		e.UpdatedAt = now
		return nil
	})
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrCapacityExceeded, apperrors.ErrDeadlinePassed, apperrors.ErrNotFound) {
			s.logger.Error().Err(err).Str("eventID", id).Msg("Failed to submit RSVP")
		}
		return nil, storageError("submit RSVP", err)
	}

	s.logger.Debug().
		Str("eventID", id).
		Str("user", actor.ID.Hex()).
		Str("status", string(status)).
		Int("guests", req.AdditionalGuests).
		Msg("RSVP recorded")

	return &dto.RSVPResponse{
		Attendance:     attendance,
		AttendingCount: event.AttendingHeadcount(primitive.NilObjectID),
		Capacity:       event.Capacity,
	}, nil
}

// EditEvent applies a partial update by the organizer or an admin
func (s *eventServiceImpl) EditEvent(ctx context.Context, actor models.Actor, id string, req *dto.UpdateEventRequest) (*models.Event, error) {
	if err := s.authorizer.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	eventID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	now := s.now()
	event, err := s.events.Mutate(ctx, eventID, func(e *models.Event) error {
		if err := s.authorizer.ValidateEventManagement(actor, e, "edit_event"); err != nil {
			return err
		}
		return s.applyUpdate(e, req, now)
	})
	if err != nil {
		return nil, storageError("update event", err)
	}

	s.logger.Info().Str("eventID", event.ID.Hex()).Str("actor", actor.ID.Hex()).Msg("Event updated")

	if !isUnpublished(event.Status) {
		event = s.notifyInvitees(ctx, event)
	}
	return event, nil
}

func (s *eventServiceImpl) applyUpdate(e *models.Event, req *dto.UpdateEventRequest, now time.Time) error {
	if req.Title != nil {
		if err := requireText("title", *req.Title, validation.TitleMaxLength); err != nil {
			return err
		}
		e.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		if err := requireText("description", *req.Description, 0); err != nil {
			return err
		}
		e.Description = strings.TrimSpace(*req.Description)
	}
	if req.Time != nil {
		if err := requireText("time", *req.Time, 0); err != nil {
			return err
		}
		e.Time = strings.TrimSpace(*req.Time)
	}
	if req.Location != nil {
		if err := requireText("location", *req.Location, 0); err != nil {
			return err
		}
		e.Location = strings.TrimSpace(*req.Location)
	}
	if req.Date != nil {
		date, err := s.validateEventDate(*req.Date, now)
		if err != nil {
			return err
		}
		e.Date = date
	}
	if req.Capacity != nil {
		if *req.Capacity <= 0 {
			return apperrors.NewValidationError("capacity must be a positive number").WithField("field", "capacity")
		}
		if attending := e.AttendingHeadcount(primitive.NilObjectID); *req.Capacity < attending {
			return apperrors.NewValidationError("capacity cannot be lower than the current attendance").
				WithField("field", "capacity").
				WithField("attending", attending)
		}
		e.Capacity = *req.Capacity
	}
	if req.Image != nil {
		e.Image = strings.TrimSpace(*req.Image)
	}
	if req.IsPrivate != nil {
		e.IsPrivate = *req.IsPrivate
	}
	if req.RegistrationDeadline != nil {
		deadline, err := parseDeadline(req.RegistrationDeadline)
		if err != nil {
			return err
		}
		e.RegistrationDeadline = deadline
	}
	if req.Categories != nil {
		e.Categories = cleanCategories(*req.Categories)
	}
	if req.InvitedEmails != nil {
		e.InvitedEmails = mergeInvitations(e.InvitedEmails, validation.CleanEmailList(*req.InvitedEmails), now)
	}
	if req.Status != nil {
		next := models.EventStatus(*req.Status)
		switch next {
		case models.EventStatusOngoing, models.EventStatusCompleted, models.EventStatusCancelled:
		default:
			return apperrors.NewValidationError("status must be ongoing, completed or cancelled").WithField("field", "status")
		}
		// approval is the only way out of the review queue, except cancelling
		if isUnpublished(e.Status) && next != models.EventStatusCancelled {
			return apperrors.NewConflictError("event has not been approved").WithField("status", string(e.Status))
		}
		e.Status = next
	}
	e.UpdatedAt = now
	return nil
}

// DeleteEvent removes an event with its RSVPs and invitations
func (s *eventServiceImpl) DeleteEvent(ctx context.Context, actor models.Actor, id string) error {
	if err := s.authorizer.RequireAuthenticated(actor); err != nil {
		return err
	}
	eventID, err := parseID(id, "id")
	if err != nil {
		return err
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return storageError("load event", err)
	}
	if err := s.authorizer.ValidateEventManagement(actor, event, "delete_event"); err != nil {
		return err
	}

	if err := s.events.Delete(ctx, eventID); err != nil {
		s.logger.Error().Err(err).Str("eventID", id).Msg("Failed to delete event")
		return storageError("delete event", err)
	}

	// image URLs are client supplied, so only files in the organizer's own upload folder are removed
	if s.storage != nil && filestorage.IsOwnedBy(event.Image, event.Organizer.Hex()) {
		if err := s.storage.DeleteFile(event.Image); err != nil {
			s.logger.Warn().Err(err).Str("image", event.Image).Msg("Failed to remove event image")
		}
	}

	s.logger.Info().Str("eventID", id).Str("actor", actor.ID.Hex()).Msg("Event deleted")
	return nil
}

// UserStats counts the events the actor organizes and attends
func (s *eventServiceImpl) UserStats(ctx context.Context, actor models.Actor) (*dto.UserStatsResponse, error) {
	if err := s.authorizer.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	organized, err := s.events.CountOrganizedBy(ctx, actor.ID)
	if err != nil {
		return nil, storageError("count organized events", err)
	}
	attending, err := s.events.CountAttendingBy(ctx, actor.ID)
	if err != nil {
		return nil, storageError("count attended events", err)
	}

	return &dto.UserStatsResponse{OrganizedEvents: organized, AttendingEvents: attending}, nil
}

// UserEvents groups a user's events for their profile page. Events dated today still count as upcoming.
func (s *eventServiceImpl) UserEvents(ctx context.Context, actor models.Actor, userID string) (*dto.UserEventsResponse, error) {
	id, err := parseID(userID, "id")
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.ValidateUserAccess(actor, id, "user_events"); err != nil {
		return nil, err
	}

	organized, _, err := s.events.List(ctx, models.EventFilter{Organizer: &id})
	if err != nil {
		s.logger.Error().Err(err).Str("userID", userID).Msg("Failed to list organized events")
		return nil, storageError("list organized events", err)
	}
	responded, err := s.events.ListByAttendee(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("userID", userID).Msg("Failed to list attended events")
		return nil, storageError("list attended events", err)
	}

	today := helpers.StartOfDay(s.now())
	resp := &dto.UserEventsResponse{
		OrganizedEvents: reversed(organized),
		AttendingEvents: []*models.Event{},
		MaybeEvents:     []*models.Event{},
		PastEvents:      []*models.Event{},
	}
	// responded is sorted by date ascending
	for _, e := range responded {
		if e.Date.Before(today) {
			resp.PastEvents = append(resp.PastEvents, e)
			continue
		}
		attendance, _ := e.AttendanceOf(id)
		switch attendance.Status {
		case models.RSVPAttending:
			resp.AttendingEvents = append(resp.AttendingEvents, e)
		case models.RSVPMaybe:
			resp.MaybeEvents = append(resp.MaybeEvents, e)
		}
	}
	resp.PastEvents = reversed(resp.PastEvents)
	return resp, nil
}

// notifyInvitees sends one batched invitation to every unsent invitee and marks them sent.
// Failures are logged and never surface to the caller.
func (s *eventServiceImpl) notifyInvitees(ctx context.Context, event *models.Event) *models.Event {
	recipients := event.UnsentInvitations()
	if len(recipients) == 0 || s.notifier == nil {
		return event
	}

	err := s.notifier.SendEventInvitation(ctx, recipients, email.Invitation{
		EventID:  event.ID.Hex(),
		Title:    event.Title,
		Date:     event.Date,
		Time:     event.Time,
		Location: event.Location,
	})
	if err != nil {
		s.logger.Warn().
			Err(apperrors.NewNotificationError(err)).
			Str("eventID", event.ID.Hex()).
			Int("recipients", len(recipients)).
			Msg("Invitation delivery failed")
		return event
	}

	sent := make(map[string]struct{}, len(recipients))
	for _, r := range recipients {
		sent[r] = struct{}{}
	}
	updated, err := s.events.Mutate(ctx, event.ID, func(e *models.Event) error {
		for i := range e.InvitedEmails {
			if _, ok := sent[e.InvitedEmails[i].Email]; ok {
				e.InvitedEmails[i].NotificationSent = true
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("eventID", event.ID.Hex()).Msg("Failed to mark invitations as sent")
		return event
	}
	return updated
}

func (s *eventServiceImpl) validateEventDate(raw string, now time.Time) (time.Time, error) {
	date, err := helpers.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("date must be YYYY-MM-DD or RFC3339").WithField("field", "date")
	}
	if !helpers.StartOfDay(date).After(helpers.StartOfDay(now)) {
		return time.Time{}, apperrors.NewValidationError("event date must be in the future").WithField("field", "date")
	}
	return date, nil
}

func parseDeadline(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	deadline, err := helpers.ParseDate(strings.TrimSpace(*raw))
	if err != nil {
		return nil, apperrors.NewValidationError("invalid registrationDeadline").WithField("field", "registrationDeadline")
	}
	return &deadline, nil
}

func requireText(field, value string, maxLen int) error {
	if !validation.NewStringValidation(value).WithMaxLength(maxLen).Validate() {
		if strings.TrimSpace(value) == "" {
			return apperrors.NewValidationError(field + " is required").WithField("field", field)
		}
		return apperrors.NewValidationError(field + " is too long").WithField("field", field)
	}
	return nil
}

func isUnpublished(status models.EventStatus) bool {
	return status == models.EventStatusPendingApproval || status == models.EventStatusRejected
}

func cleanCategories(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, c := range raw {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func newInvitations(emails []string, now time.Time) []models.Invitation {
	invitations := make([]models.Invitation, 0, len(emails))
	for _, e := range emails {
		invitations = append(invitations, models.Invitation{Email: e, InvitedAt: now})
	}
	return invitations
}

// mergeInvitations keeps the records of addresses still invited and appends new ones
func mergeInvitations(current []models.Invitation, emails []string, now time.Time) []models.Invitation {
	existing := make(map[string]models.Invitation, len(current))
	for _, inv := range current {
		existing[inv.Email] = inv
	}
	merged := make([]models.Invitation, 0, len(emails))
	for _, e := range emails {
		if inv, ok := existing[e]; ok {
			merged = append(merged, inv)
			continue
		}
		merged = append(merged, models.Invitation{Email: e, InvitedAt: now})
	}
	return merged
}

// reversed returns the events in reverse order, turning a date ascending list into a newest first one
func reversed(events []*models.Event) []*models.Event {
	out := make([]*models.Event, len(events))
	for i, e := range events {
		out[len(events)-1-i] = e
	}
	return out
}

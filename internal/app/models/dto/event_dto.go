package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yigit/eventsphere/internal/app/models"
)

// EmailList accepts either a JSON array of addresses or a comma separated string
type EmailList []string

// UnmarshalJSON implements json.Unmarshaler
func (l *EmailList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*l = strings.Split(raw, ",")
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("invitedEmails must be a string or a list of strings: %w", err)
	}
	*l = items
	return nil
}

// CreateEventRequest represents a new event submission
type CreateEventRequest struct {
	Title                string    `json:"title" binding:"required,max=100"`
	Description          string    `json:"description" binding:"required"`
	Date                 string    `json:"date" binding:"required" example:"2026-12-01"`
	Time                 string    `json:"time" binding:"required" example:"18:30"`
	Location             string    `json:"location" binding:"required"`
	Capacity             int       `json:"capacity" binding:"required,gt=0"`
	Image                string    `json:"image" binding:"omitempty,max=2048"`
	IsPrivate            bool      `json:"isPrivate"`
	RegistrationDeadline *string   `json:"registrationDeadline"`
	Categories           []string  `json:"categories" binding:"omitempty,dive,max=50"`
	InvitedEmails        EmailList `json:"invitedEmails" swaggertype:"array,string"`
	// Status is accepted for compatibility and ignored; the initial status follows the creator's role
	Status string `json:"status"`
}

// UpdateEventRequest is a partial edit; absent fields are left unchanged
type UpdateEventRequest struct {
	Title                *string    `json:"title" binding:"omitempty,max=100"`
	Description          *string    `json:"description"`
	Date                 *string    `json:"date"`
	Time                 *string    `json:"time"`
	Location             *string    `json:"location"`
	Capacity             *int       `json:"capacity" binding:"omitempty,gt=0"`
	Image                *string    `json:"image" binding:"omitempty,max=2048"`
	IsPrivate            *bool      `json:"isPrivate"`
	RegistrationDeadline *string    `json:"registrationDeadline"`
	Categories           *[]string  `json:"categories"`
	InvitedEmails        *EmailList `json:"invitedEmails" swaggertype:"array,string"`
	Status               *string    `json:"status" binding:"omitempty,oneof=ongoing completed cancelled"`
}

// ApproveEventRequest is an admin decision on a pending event
type ApproveEventRequest struct {
	Status string `json:"status" binding:"required,oneof=upcoming rejected"`
}

// RSVPRequest represents a user's response to an event
type RSVPRequest struct {
	Status           string `json:"status" binding:"required"`
	AdditionalGuests int    `json:"additionalGuests" binding:"min=0,max=100"`
	Notes            string `json:"notes" binding:"omitempty,max=500"`
}

// EventListQuery holds listing filters
type EventListQuery struct {
	Status    string `form:"status"`
	Organizer string `form:"organizer"`
	Category  string `form:"category"`
}

// EventListResponse represents a page of events
type EventListResponse struct {
	Events     []*models.Event `json:"events"`
	Pagination PaginationInfo  `json:"pagination"`
}

// RSVPResponse returns the caller's attendance and the event headcount after the change
type RSVPResponse struct {
	Attendance     models.Attendance `json:"attendance"`
	AttendingCount int               `json:"attendingCount" example:"12"`
	Capacity       int               `json:"capacity" example:"50"`
}

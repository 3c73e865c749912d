package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventStatus is the lifecycle state of an event
type EventStatus string

const (
	EventStatusPendingApproval EventStatus = "pending_approval"
	EventStatusUpcoming        EventStatus = "upcoming"
	EventStatusOngoing         EventStatus = "ongoing"
	EventStatusCompleted       EventStatus = "completed"
	EventStatusCancelled       EventStatus = "cancelled"
	EventStatusRejected        EventStatus = "rejected"
)

// Valid reports whether s is a known event status
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusPendingApproval, EventStatusUpcoming, EventStatusOngoing,
		EventStatusCompleted, EventStatusCancelled, EventStatusRejected:
		return true
	}
	return false
}

// RSVPStatus is an attendee's response to an event
type RSVPStatus string

const (
	RSVPAttending RSVPStatus = "attending"
	RSVPMaybe     RSVPStatus = "maybe"
	RSVPDeclined  RSVPStatus = "declined"
)

// Valid reports whether s is a known RSVP status
func (s RSVPStatus) Valid() bool {
	return s == RSVPAttending || s == RSVPMaybe || s == RSVPDeclined
}

// Event defines the event model based on the 'events' table
type Event struct {
	ID                   primitive.ObjectID `json:"id" db:"id"`
	Title                string             `json:"title" db:"title"`
	Description          string             `json:"description" db:"description"`
	Date                 time.Time          `json:"date" db:"date"`
	Time                 string             `json:"time" db:"time"`
	Location             string             `json:"location" db:"location"`
	Capacity             int                `json:"capacity" db:"capacity"`
	Image                string             `json:"image,omitempty" db:"image"`
	Organizer            primitive.ObjectID `json:"organizer" db:"organizer_id"`
	Status               EventStatus        `json:"status" db:"status"`
	IsPrivate            bool               `json:"isPrivate" db:"is_private"`
	RegistrationDeadline *time.Time         `json:"registrationDeadline,omitempty" db:"registration_deadline"`
	Categories           []string           `json:"categories" db:"categories"`
	InvitedEmails        []Invitation       `json:"invitedEmails" db:"-"`
	Attendees            []Attendance       `json:"attendees" db:"-"`
	CreatedAt            time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time          `json:"updatedAt" db:"updated_at"`
}

// Invitation is an email address invited to an event
type Invitation struct {
	Email            string    `json:"email" db:"email"`
	InvitedAt        time.Time `json:"invitedAt" db:"invited_at"`
	NotificationSent bool      `json:"notificationSent" db:"notification_sent"`
}

// Attendance is a single user's RSVP for an event
type Attendance struct {
	User             primitive.ObjectID `json:"user" db:"user_id"`
	Status           RSVPStatus         `json:"status" db:"status"`
	ResponseDate     time.Time          `json:"responseDate" db:"response_date"`
	AdditionalGuests int                `json:"additionalGuests" db:"additional_guests"`
	Notes            string             `json:"notes,omitempty" db:"notes"`
}

// Headcount is the number of seats taken by the attendance
func (a Attendance) Headcount() int {
	return 1 + a.AdditionalGuests
}

// AttendingHeadcount sums the seats held by attending RSVPs, skipping the given user
func (e *Event) AttendingHeadcount(exclude primitive.ObjectID) int {
	total := 0
	for _, a := range e.Attendees {
		if a.Status != RSVPAttending || a.User == exclude {
			continue
		}
		total += a.Headcount()
	}
	return total
}

// UpsertAttendance replaces the user's previous RSVP or appends a new one
func (e *Event) UpsertAttendance(att Attendance) {
	for i := range e.Attendees {
		if e.Attendees[i].User == att.User {
			e.Attendees[i] = att
			return
		}
	}
	e.Attendees = append(e.Attendees, att)
}

// AttendanceOf returns the RSVP of the given user, if any
func (e *Event) AttendanceOf(user primitive.ObjectID) (Attendance, bool) {
	for _, a := range e.Attendees {
		if a.User == user {
			return a, true
		}
	}
	return Attendance{}, false
}

// UnsentInvitations returns the invitee addresses not notified yet
func (e *Event) UnsentInvitations() []string {
	var emails []string
	for _, inv := range e.InvitedEmails {
		if !inv.NotificationSent {
			emails = append(emails, inv.Email)
		}
	}
	return emails
}

// EventFilter narrows event listings
type EventFilter struct {
	Statuses        []EventStatus
	ExcludeStatuses []EventStatus
	Organizer       *primitive.ObjectID
	Category        string
	Limit           int
	Offset          int
}

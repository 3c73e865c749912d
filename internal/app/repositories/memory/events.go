package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/app/repositories"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventRepository is the in-memory event collection
type EventRepository struct {
	s *Store
}

// Create inserts an event
func (r *EventRepository) Create(_ context.Context, event *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[event.Organizer]; !ok {
		return apperrors.NewValidationError("organizer does not exist")
	}
	r.s.events[event.ID] = copyEvent(event)
	return nil
}

// GetByID retrieves an event
func (r *EventRepository) GetByID(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.events[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("event not found")
	}
	return copyEvent(e), nil
}

func matchesFilter(e *models.Event, f models.EventFilter) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, e.Status) {
		return false
	}
	if slices.Contains(f.ExcludeStatuses, e.Status) {
		return false
	}
	if f.Organizer != nil && e.Organizer != *f.Organizer {
		return false
	}
	if f.Category != "" && !slices.Contains(e.Categories, f.Category) {
		return false
	}
	return true
}

// List returns matching events sorted by date ascending
func (r *EventRepository) List(_ context.Context, filter models.EventFilter) ([]*models.Event, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := make([]*models.Event, 0)
	for _, e := range r.s.events {
		if matchesFilter(e, filter) {
			matched = append(matched, copyEvent(e))
		}
	}
	sortByDate(matched)
	return page(matched, filter.Limit, filter.Offset), len(matched), nil
}

func sortByDate(events []*models.Event) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
}

// Mutate applies fn to a copy under the store lock and commits it only when fn succeeds
func (r *EventRepository) Mutate(_ context.Context, id primitive.ObjectID, fn repositories.EventMutation) (*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.events[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("event not found")
	}
	working := copyEvent(current)
	if err := fn(working); err != nil {
		return nil, err
	}
	working.ID = id
	r.s.events[id] = working
	return copyEvent(working), nil
}

// Delete removes an event
func (r *EventRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[id]; !ok {
		return apperrors.NewNotFoundError("event not found")
	}
	delete(r.s.events, id)
	return nil
}

// CountOrganizedBy counts events organized by the user
func (r *EventRepository) CountOrganizedBy(_ context.Context, user primitive.ObjectID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for _, e := range r.s.events {
		if e.Organizer == user {
			n++
		}
	}
	return n, nil
}

// CountAttendingBy counts events where the user RSVPed attending
func (r *EventRepository) CountAttendingBy(_ context.Context, user primitive.ObjectID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for _, e := range r.s.events {
		if a, ok := e.AttendanceOf(user); ok && a.Status == models.RSVPAttending {
			n++
		}
	}
	return n, nil
}

// ListByAttendee returns the events the user responded to, sorted by date ascending
func (r *EventRepository) ListByAttendee(_ context.Context, user primitive.ObjectID) ([]*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	events := make([]*models.Event, 0)
	for _, e := range r.s.events {
		if _, ok := e.AttendanceOf(user); ok {
			events = append(events, copyEvent(e))
		}
	}
	sortByDate(events)
	return events, nil
}

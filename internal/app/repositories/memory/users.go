package memory

import (
	"context"
	"sort"

	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository is the in-memory user collection
type UserRepository struct {
	s *Store
}

func (r *UserRepository) uniqueViolation(user *models.User) error {
	for id, u := range r.s.users {
		if id == user.ID {
			continue
		}
		if u.Email == user.Email {
			return apperrors.NewConflictError("email already registered")
		}
		if u.Username == user.Username {
			return apperrors.NewConflictError("username already taken")
		}
	}
	return nil
}

// Create inserts a new user
func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.uniqueViolation(user); err != nil {
		return err
	}
	r.s.users[user.ID] = copyUser(user)
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("user not found")
	}
	return copyUser(u), nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, apperrors.NewNotFoundError("user not found")
}

// Update replaces the stored user
func (r *UserRepository) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; !ok {
		return apperrors.NewNotFoundError("user not found")
	}
	if err := r.uniqueViolation(user); err != nil {
		return err
	}
	r.s.users[user.ID] = copyUser(user)
	return nil
}

// Delete removes the user, their organized events, their RSVPs, their chats and their reset tokens
func (r *UserRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return apperrors.NewNotFoundError("user not found")
	}
	delete(r.s.users, id)

	for eventID, e := range r.s.events {
		if e.Organizer == id {
			delete(r.s.events, eventID)
			continue
		}
		kept := e.Attendees[:0]
		for _, a := range e.Attendees {
			if a.User != id {
				kept = append(kept, a)
			}
		}
		e.Attendees = kept
	}
	for chatID, c := range r.s.chats {
		if c.User == id {
			delete(r.s.chats, chatID)
		}
	}
	r.s.dropResetTokens(id)
	return nil
}

// List returns a page of users, newest first
func (r *UserRepository) List(_ context.Context, limit, offset int) ([]*models.User, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	all := make([]*models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		all = append(all, copyUser(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, limit, offset), len(all), nil
}

// ListNotificationEmails returns the addresses of users that opted into email notifications
func (r *UserRepository) ListNotificationEmails(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	users := make([]*models.User, 0)
	for _, u := range r.s.users {
		if u.ReceiveEmailNotifications {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })

	emails := make([]string, len(users))
	for i, u := range users {
		emails[i] = u.Email
	}
	return emails, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

package memory

import (
	"context"
	"sort"

	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeleteRequestRepository is the in-memory delete request collection
type DeleteRequestRepository struct {
	s *Store
}

// Create inserts a request, rejecting a second pending one for the same user
func (r *DeleteRequestRepository) Create(_ context.Context, req *models.DeleteRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.deleteRequests {
		if existing.UserID == req.UserID && existing.Status == models.DeleteRequestPending {
			return apperrors.NewConflictError("a pending delete request already exists")
		}
	}
	r.s.deleteRequests[req.ID] = copyDeleteRequest(req)
	return nil
}

// GetByID retrieves a request
func (r *DeleteRequestRepository) GetByID(_ context.Context, id primitive.ObjectID) (*models.DeleteRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.deleteRequests[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("delete request not found")
	}
	return copyDeleteRequest(req), nil
}

// List returns every request, newest first
func (r *DeleteRequestRepository) List(_ context.Context) ([]*models.DeleteRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*models.DeleteRequest, 0, len(r.s.deleteRequests))
	for _, req := range r.s.deleteRequests {
		out = append(out, copyDeleteRequest(req))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

// Resolve stores the final state of a pending request
func (r *DeleteRequestRepository) Resolve(_ context.Context, req *models.DeleteRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.deleteRequests[req.ID]
	if !ok {
		return apperrors.NewNotFoundError("delete request not found")
	}
	if current.Status != models.DeleteRequestPending {
		return apperrors.NewConflictError("delete request already resolved")
	}
	r.s.deleteRequests[req.ID] = copyDeleteRequest(req)
	return nil
}

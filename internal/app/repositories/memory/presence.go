package memory

import (
	"context"
	"time"

	"github.com/yigit/eventsphere/internal/app/models"
)

// PresenceRepository is the in-memory presence flag table
type PresenceRepository struct {
	s *Store
}

// Get returns the flag for tag, creating it offline on first access
func (r *PresenceRepository) Get(_ context.Context, tag models.PresenceTag, at time.Time) (*models.PresenceFlag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	flag, ok := r.s.presence[tag]
	if !ok {
		flag = &models.PresenceFlag{Tag: tag, LastUpdated: at}
		r.s.presence[tag] = flag
	}
	c := *flag
	return &c, nil
}

// Set upserts the flag
func (r *PresenceRepository) Set(_ context.Context, flag *models.PresenceFlag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := *flag
	r.s.presence[flag.Tag] = &c
	return nil
}

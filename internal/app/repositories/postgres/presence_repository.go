package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/db"
)

// PresenceRepository stores presence flags keyed by tag
type PresenceRepository struct {
	db *db.PostgresDB
}

// NewPresenceRepository creates a new PresenceRepository
func NewPresenceRepository(database *db.PostgresDB) *PresenceRepository {
	return &PresenceRepository{db: database}
}

// Get returns the flag for tag, inserting an offline record on first access
func (r *PresenceRepository) Get(ctx context.Context, tag models.PresenceTag, at time.Time) (*models.PresenceFlag, error) {
	var flag models.PresenceFlag
	err := r.db.Pool.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO presence_flags (tag, is_online, last_updated)
			VALUES ($1, FALSE, $2)
			ON CONFLICT (tag) DO NOTHING
			RETURNING tag, is_online, last_updated, updated_by
		)
		SELECT tag, is_online, last_updated, updated_by FROM ins
		UNION ALL
		SELECT tag, is_online, last_updated, updated_by FROM presence_flags WHERE tag = $1
		LIMIT 1`, tag, at,
	).Scan(&flag.Tag, &flag.IsOnline, &flag.LastUpdated, scanNullableID(&flag.UpdatedBy))
	if err != nil {
		return nil, fmt.Errorf("error reading presence flag: %w", err)
	}
	return &flag, nil
}

// Set upserts the flag atomically
func (r *PresenceRepository) Set(ctx context.Context, flag *models.PresenceFlag) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO presence_flags (tag, is_online, last_updated, updated_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tag) DO UPDATE
		SET is_online = EXCLUDED.is_online, last_updated = EXCLUDED.last_updated, updated_by = EXCLUDED.updated_by`,
		flag.Tag, flag.IsOnline, flag.LastUpdated, nullableHex(flag.UpdatedBy),
	)
	if err != nil {
		return fmt.Errorf("error writing presence flag: %w", err)
	}
	return nil
}

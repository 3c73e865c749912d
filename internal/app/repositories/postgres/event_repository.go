package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/app/repositories"
	"github.com/yigit/eventsphere/internal/db"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
	"github.com/yigit/eventsphere/internal/pkg/dberrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const eventColumns = `id, title, description, date, time, location, capacity, image, organizer_id,
	status, is_private, registration_deadline, categories, created_at, updated_at`

// EventRepository handles database operations for events, attendees and invitations
type EventRepository struct {
	db *db.PostgresDB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(database *db.PostgresDB) *EventRepository {
	return &EventRepository{db: database}
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(
		scanID(&e.ID),
		&e.Title,
		&e.Description,
		&e.Date,
		&e.Time,
		&e.Location,
		&e.Capacity,
		&e.Image,
		scanID(&e.Organizer),
		&e.Status,
		&e.IsPrivate,
		&e.RegistrationDeadline,
		&e.Categories,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if e.Categories == nil {
		e.Categories = []string{}
	}
	e.Attendees = []models.Attendance{}
	e.InvitedEmails = []models.Invitation{}
	return &e, nil
}

// Create inserts an event with its attendees and invitations
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO events (`+eventColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			event.ID.Hex(),
			event.Title,
			event.Description,
			event.Date,
			event.Time,
			event.Location,
			event.Capacity,
			event.Image,
			event.Organizer.Hex(),
			event.Status,
			event.IsPrivate,
			event.RegistrationDeadline,
			categoriesOrEmpty(event.Categories),
			event.CreatedAt,
			event.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return writeEventChildren(ctx, tx, event)
	})
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.NewValidationError("organizer does not exist")
		}
		return fmt.Errorf("error creating event: %w", err)
	}
	return nil
}

// GetByID retrieves an event with its attendees and invitations
func (r *EventRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	return r.load(ctx, r.db.Pool, id, false)
}

func (r *EventRepository) load(ctx context.Context, q querier, id primitive.ObjectID, forUpdate bool) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	event, err := scanEvent(q.QueryRow(ctx, query, id.Hex()))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewNotFoundError("event not found")
		}
		return nil, fmt.Errorf("error retrieving event: %w", err)
	}
	if err := loadEventChildren(ctx, q, []*models.Event{event}); err != nil {
		return nil, err
	}
	return event, nil
}

func applyEventFilter(qb squirrel.SelectBuilder, filter models.EventFilter) squirrel.SelectBuilder {
	if len(filter.Statuses) > 0 {
		qb = qb.Where(squirrel.Eq{"status": statusStrings(filter.Statuses)})
	}
	if len(filter.ExcludeStatuses) > 0 {
		qb = qb.Where(squirrel.NotEq{"status": statusStrings(filter.ExcludeStatuses)})
	}
	if filter.Organizer != nil {
		qb = qb.Where(squirrel.Eq{"organizer_id": filter.Organizer.Hex()})
	}
	if filter.Category != "" {
		qb = qb.Where("? = ANY(categories)", filter.Category)
	}
	return qb
}

// List returns events matching the filter sorted by date ascending, with the total match count
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]*models.Event, int, error) {
	countSQL, countArgs, err := applyEventFilter(psql.Select("COUNT(*)").From("events"), filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}
	var total int
	if err := r.db.Pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting events: %w", err)
	}

	qb := applyEventFilter(psql.Select(eventColumns).From("events"), filter).OrderBy("date ASC", "created_at ASC")
	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		qb = qb.Offset(uint64(filter.Offset))
	}
	events, err := r.queryEvents(ctx, qb)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ListByAttendee returns the events the user responded to, sorted by date ascending
func (r *EventRepository) ListByAttendee(ctx context.Context, user primitive.ObjectID) ([]*models.Event, error) {
	qb := psql.Select(eventColumns).From("events").
		Where("id IN (SELECT event_id FROM event_attendees WHERE user_id = ?)", user.Hex()).
		OrderBy("date ASC", "created_at ASC")
	return r.queryEvents(ctx, qb)
}

// queryEvents runs a select over eventColumns and loads the children of every row
func (r *EventRepository) queryEvents(ctx context.Context, qb squirrel.SelectBuilder) ([]*models.Event, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning event row: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	rows.Close()

	if err := loadEventChildren(ctx, r.db.Pool, events); err != nil {
		return nil, err
	}
	return events, nil
}

// Mutate locks the event row, applies fn and writes the result back in one transaction
func (r *EventRepository) Mutate(ctx context.Context, id primitive.ObjectID, fn repositories.EventMutation) (*models.Event, error) {
	var updated *models.Event
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		event, err := r.load(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := fn(event); err != nil {
			return err
		}
		event.ID = id

		_, err = tx.Exec(ctx, `
			UPDATE events SET
				title = $2, description = $3, date = $4, time = $5, location = $6, capacity = $7,
				image = $8, status = $9, is_private = $10, registration_deadline = $11,
				categories = $12, updated_at = $13
			WHERE id = $1`,
			event.ID.Hex(),
			event.Title,
			event.Description,
			event.Date,
			event.Time,
			event.Location,
			event.Capacity,
			event.Image,
			event.Status,
			event.IsPrivate,
			event.RegistrationDeadline,
			categoriesOrEmpty(event.Categories),
			event.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("error updating event: %w", err)
		}

		batch := &pgx.Batch{}
		batch.Queue(`DELETE FROM event_attendees WHERE event_id = $1`, event.ID.Hex())
		batch.Queue(`DELETE FROM event_invitations WHERE event_id = $1`, event.ID.Hex())
		if err := execBatch(ctx, tx, batch); err != nil {
			return fmt.Errorf("error clearing event entries: %w", err)
		}
		if err := writeEventChildren(ctx, tx, event); err != nil {
			if dberrors.IsForeignKeyError(err) {
				return apperrors.NewNotFoundError("attendee account not found")
			}
			return fmt.Errorf("error writing event entries: %w", err)
		}

		updated = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an event; attendees and invitations cascade
func (r *EventRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id.Hex())
	if err != nil {
		return fmt.Errorf("error deleting event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("event not found")
	}
	return nil
}

// CountOrganizedBy counts events organized by the user
func (r *EventRepository) CountOrganizedBy(ctx context.Context, user primitive.ObjectID) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM events WHERE organizer_id = $1`, user.Hex()).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting organized events: %w", err)
	}
	return n, nil
}

// CountAttendingBy counts events where the user RSVPed attending
func (r *EventRepository) CountAttendingBy(ctx context.Context, user primitive.ObjectID) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM event_attendees WHERE user_id = $1 AND status = $2`,
		user.Hex(), models.RSVPAttending,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting attended events: %w", err)
	}
	return n, nil
}

func writeEventChildren(ctx context.Context, q querier, event *models.Event) error {
	batch := &pgx.Batch{}
	for i, a := range event.Attendees {
		batch.Queue(`
			INSERT INTO event_attendees (event_id, user_id, status, response_date, additional_guests, notes, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			event.ID.Hex(), a.User.Hex(), a.Status, a.ResponseDate, a.AdditionalGuests, a.Notes, i,
		)
	}
	for i, inv := range event.InvitedEmails {
		batch.Queue(`
			INSERT INTO event_invitations (event_id, email, invited_at, notification_sent, position)
			VALUES ($1, $2, $3, $4, $5)`,
			event.ID.Hex(), inv.Email, inv.InvitedAt, inv.NotificationSent, i,
		)
	}
	return execBatch(ctx, q, batch)
}

func loadEventChildren(ctx context.Context, q querier, events []*models.Event) error {
	if len(events) == 0 {
		return nil
	}
	byID := make(map[primitive.ObjectID]*models.Event, len(events))
	ids := make([]primitive.ObjectID, 0, len(events))
	for _, e := range events {
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}

	rows, err := q.Query(ctx, `
		SELECT event_id, user_id, status, response_date, additional_guests, notes
		FROM event_attendees WHERE event_id = ANY($1) ORDER BY event_id, position`, hexList(ids))
	if err != nil {
		return fmt.Errorf("error loading attendees: %w", err)
	}
	for rows.Next() {
		var eventID primitive.ObjectID
		var a models.Attendance
		if err := rows.Scan(scanID(&eventID), scanID(&a.User), &a.Status, &a.ResponseDate, &a.AdditionalGuests, &a.Notes); err != nil {
			rows.Close()
			return fmt.Errorf("error scanning attendee row: %w", err)
		}
		e := byID[eventID]
		e.Attendees = append(e.Attendees, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating attendee rows: %w", err)
	}

	rows, err = q.Query(ctx, `
		SELECT event_id, email, invited_at, notification_sent
		FROM event_invitations WHERE event_id = ANY($1) ORDER BY event_id, position`, hexList(ids))
	if err != nil {
		return fmt.Errorf("error loading invitations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var eventID primitive.ObjectID
		var inv models.Invitation
		if err := rows.Scan(scanID(&eventID), &inv.Email, &inv.InvitedAt, &inv.NotificationSent); err != nil {
			return fmt.Errorf("error scanning invitation row: %w", err)
		}
		e := byID[eventID]
		e.InvitedEmails = append(e.InvitedEmails, inv)
	}
	return rows.Err()
}

func statusStrings(statuses []models.EventStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func categoriesOrEmpty(categories []string) []string {
	if categories == nil {
		return []string{}
	}
	return categories
}

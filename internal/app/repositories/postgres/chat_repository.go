package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/db"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
	"github.com/yigit/eventsphere/internal/pkg/dberrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const activeChatConstraint = "chats_one_active_per_user"

// ChatRepository handles database operations for support chats and their messages
type ChatRepository struct {
	db *db.PostgresDB
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(database *db.PostgresDB) *ChatRepository {
	return &ChatRepository{db: database}
}

func scanChat(row pgx.Row) (*models.Chat, error) {
	var c models.Chat
	if err := row.Scan(scanID(&c.ID), scanID(&c.User), &c.LastUpdated, &c.IsActive, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Messages = []models.Message{}
	return &c, nil
}

func insertMessage(ctx context.Context, q querier, chatID primitive.ObjectID, m *models.Message) error {
	_, err := q.Exec(ctx, `
		INSERT INTO chat_messages (id, chat_id, sender_id, sender_role, content, file_url, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID.Hex(), chatID.Hex(), m.Sender.Hex(), m.SenderRole, m.Content, m.FileURL, m.IsRead, m.Timestamp,
	)
	return err
}

// Create inserts a chat and its initial messages
func (r *ChatRepository) Create(ctx context.Context, chat *models.Chat) error {
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO chats (id, user_id, last_updated, is_active, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			chat.ID.Hex(), chat.User.Hex(), chat.LastUpdated, chat.IsActive, chat.CreatedAt,
		)
		if err != nil {
			return err
		}
		for i := range chat.Messages {
			if err := insertMessage(ctx, tx, chat.ID, &chat.Messages[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, activeChatConstraint) {
			return apperrors.NewConflictError("user already has an active chat")
		}
		if dberrors.IsForeignKeyError(err) {
			return apperrors.NewNotFoundError("user not found")
		}
		return fmt.Errorf("error creating chat: %w", err)
	}
	return nil
}

// GetByID retrieves a chat with its messages in send order
func (r *ChatRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	chat, err := scanChat(r.db.Pool.QueryRow(ctx,
		`SELECT id, user_id, last_updated, is_active, created_at FROM chats WHERE id = $1`, id.Hex()))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewNotFoundError("chat not found")
		}
		return nil, fmt.Errorf("error retrieving chat: %w", err)
	}
	if err := r.loadMessages(ctx, []*models.Chat{chat}); err != nil {
		return nil, err
	}
	return chat, nil
}

// FindActiveByUser retrieves the user's active chat
func (r *ChatRepository) FindActiveByUser(ctx context.Context, user primitive.ObjectID) (*models.Chat, error) {
	chat, err := scanChat(r.db.Pool.QueryRow(ctx,
		`SELECT id, user_id, last_updated, is_active, created_at FROM chats WHERE user_id = $1 AND is_active`, user.Hex()))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewNotFoundError("no active chat")
		}
		return nil, fmt.Errorf("error retrieving active chat: %w", err)
	}
	if err := r.loadMessages(ctx, []*models.Chat{chat}); err != nil {
		return nil, err
	}
	return chat, nil
}

// ListActive returns active chats, newest activity first
func (r *ChatRepository) ListActive(ctx context.Context, owner *primitive.ObjectID) ([]*models.Chat, error) {
	qb := psql.Select("id", "user_id", "last_updated", "is_active", "created_at").
		From("chats").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("last_updated DESC")
	if owner != nil {
		qb = qb.Where(squirrel.Eq{"user_id": owner.Hex()})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing chats: %w", err)
	}
	defer rows.Close()

	chats := make([]*models.Chat, 0)
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning chat row: %w", err)
		}
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat rows: %w", err)
	}
	rows.Close()

	if err := r.loadMessages(ctx, chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// AppendMessage adds a message to an active chat and bumps its last update time
func (r *ChatRepository) AppendMessage(ctx context.Context, chatID primitive.ObjectID, msg *models.Message) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var active bool
		err := tx.QueryRow(ctx, `SELECT is_active FROM chats WHERE id = $1 FOR UPDATE`, chatID.Hex()).Scan(&active)
		if err != nil {
			if dberrors.IsNoRows(err) {
				return apperrors.NewNotFoundError("chat not found")
			}
			return fmt.Errorf("error locking chat: %w", err)
		}
		if !active {
			return apperrors.NewConflictError("chat is archived")
		}
		if err := insertMessage(ctx, tx, chatID, msg); err != nil {
			return fmt.Errorf("error inserting message: %w", err)
		}
		if _, err := tx.Exec(ctx, `UPDATE chats SET last_updated = $2 WHERE id = $1`, chatID.Hex(), msg.Timestamp); err != nil {
			return fmt.Errorf("error touching chat: %w", err)
		}
		return nil
	})
}

// SetActive archives or reactivates a chat
func (r *ChatRepository) SetActive(ctx context.Context, chatID primitive.ObjectID, active bool, at time.Time) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE chats SET is_active = $2, last_updated = $3 WHERE id = $1`, chatID.Hex(), active, at)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, activeChatConstraint) {
			return apperrors.NewConflictError("user already has an active chat")
		}
		return fmt.Errorf("error updating chat state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("chat not found")
	}
	return nil
}

// MarkRead flips unread messages authored by someone other than reader in a single conditional update
func (r *ChatRepository) MarkRead(ctx context.Context, chatID, reader primitive.ObjectID, ids []primitive.ObjectID) (int, error) {
	qb := psql.Update("chat_messages").
		Set("is_read", true).
		Where(squirrel.Eq{"chat_id": chatID.Hex()}).
		Where(squirrel.NotEq{"sender_id": reader.Hex()}).
		Where(squirrel.Eq{"is_read": false})
	if len(ids) > 0 {
		qb = qb.Where(squirrel.Eq{"id": hexList(ids)})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}
	tag, err := r.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("error marking messages read: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// CountUnread counts unread messages addressed to the reader across active chats
func (r *ChatRepository) CountUnread(ctx context.Context, reader models.Actor) (int, error) {
	qb := psql.Select("COUNT(*)").
		From("chat_messages m").
		Join("chats c ON c.id = m.chat_id").
		Where(squirrel.Eq{"c.is_active": true}).
		Where(squirrel.Eq{"m.is_read": false}).
		Where(squirrel.NotEq{"m.sender_id": reader.ID.Hex()})
	if !reader.IsAdmin() {
		qb = qb.Where(squirrel.Eq{"c.user_id": reader.ID.Hex()}).
			Where(squirrel.Eq{"m.sender_role": string(models.RoleAdmin)})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}
	var n int
	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting unread messages: %w", err)
	}
	return n, nil
}

func (r *ChatRepository) loadMessages(ctx context.Context, chats []*models.Chat) error {
	if len(chats) == 0 {
		return nil
	}
	byID := make(map[primitive.ObjectID]*models.Chat, len(chats))
	ids := make([]primitive.ObjectID, 0, len(chats))
	for _, c := range chats {
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT chat_id, id, sender_id, sender_role, content, file_url, is_read, created_at
		FROM chat_messages WHERE chat_id = ANY($1) ORDER BY chat_id, seq`, hexList(ids))
	if err != nil {
		return fmt.Errorf("error loading messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var chatID primitive.ObjectID
		var m models.Message
		if err := rows.Scan(scanID(&chatID), scanID(&m.ID), scanID(&m.Sender), &m.SenderRole, &m.Content, &m.FileURL, &m.IsRead, &m.Timestamp); err != nil {
			return fmt.Errorf("error scanning message row: %w", err)
		}
		c := byID[chatID]
		c.Messages = append(c.Messages, m)
	}
	return rows.Err()
}

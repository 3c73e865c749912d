package postgres

import (
	"github.com/yigit/eventsphere/internal/app/repositories"
	"github.com/yigit/eventsphere/internal/db"
)

// NewRepositories wires every Postgres-backed repository onto the shared pool
func NewRepositories(database *db.PostgresDB) *repositories.Repositories {
	return &repositories.Repositories{
		Users:          NewUserRepository(database),
		Events:         NewEventRepository(database),
		Chats:          NewChatRepository(database),
		Presence:       NewPresenceRepository(database),
		DeleteRequests: NewDeleteRequestRepository(database),
		PasswordResets: NewPasswordResetTokenRepository(database),
	}
}

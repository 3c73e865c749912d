// Package memory provides mutex-guarded in-process implementations of the repository
// interfaces. It backs the "memory" database driver and the service tests.
package memory

import (
	"sort"
	"sync"

	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/app/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds every collection behind a single lock so cascades stay consistent
type Store struct {
	mu             sync.Mutex
	users          map[primitive.ObjectID]*models.User
	events         map[primitive.ObjectID]*models.Event
	chats          map[primitive.ObjectID]*models.Chat
	presence       map[models.PresenceTag]*models.PresenceFlag
	deleteRequests map[primitive.ObjectID]*models.DeleteRequest
	resetTokens    map[string]*models.PasswordResetToken
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:          make(map[primitive.ObjectID]*models.User),
		events:         make(map[primitive.ObjectID]*models.Event),
		chats:          make(map[primitive.ObjectID]*models.Chat),
		presence:       make(map[models.PresenceTag]*models.PresenceFlag),
		deleteRequests: make(map[primitive.ObjectID]*models.DeleteRequest),
		resetTokens:    make(map[string]*models.PasswordResetToken),
	}
}

// Repositories exposes the store through the repository interfaces
func (s *Store) Repositories() *repositories.Repositories {
	return &repositories.Repositories{
		Users:          &UserRepository{s: s},
		Events:         &EventRepository{s: s},
		Chats:          &ChatRepository{s: s},
		Presence:       &PresenceRepository{s: s},
		DeleteRequests: &DeleteRequestRepository{s: s},
		PasswordResets: &PasswordResetTokenRepository{s: s},
	}
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func copyEvent(e *models.Event) *models.Event {
	c := *e
	c.Categories = append([]string{}, e.Categories...)
	c.InvitedEmails = append([]models.Invitation{}, e.InvitedEmails...)
	c.Attendees = append([]models.Attendance{}, e.Attendees...)
	if e.RegistrationDeadline != nil {
		d := *e.RegistrationDeadline
		c.RegistrationDeadline = &d
	}
	return &c
}

func copyChat(ch *models.Chat) *models.Chat {
	c := *ch
	c.Messages = append([]models.Message{}, ch.Messages...)
	return &c
}

func copyDeleteRequest(d *models.DeleteRequest) *models.DeleteRequest {
	c := *d
	return &c
}

func sortChats(chats []*models.Chat) {
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].LastUpdated.After(chats[j].LastUpdated)
	})
}

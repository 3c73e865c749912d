//go:build integration

package postgres

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/eventsphere/internal/app/migrations"
	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/app/repositories"
	"github.com/yigit/eventsphere/internal/config"
	"github.com/yigit/eventsphere/internal/db"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Run with: TEST_DB_HOST=localhost go test -tags integration ./internal/app/repositories/postgres/...
// The target database is truncated before every test.

var testTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func openTestDB(t *testing.T) *repositories.Repositories {
	t.Helper()

	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set")
	}

	cfg := &config.Config{}
	cfg.Database.Host = host
	cfg.Database.Port = envOr("TEST_DB_PORT", "5432")
	cfg.Database.User = envOr("TEST_DB_USER", "postgres")
	cfg.Database.Password = envOr("TEST_DB_PASSWORD", "postgres")
	cfg.Database.DBName = envOr("TEST_DB_NAME", "eventsphere_test")
	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxOpenConns = 5
	cfg.Database.MaxIdleConns = 1
	cfg.Database.ConnMaxLifetime = "5m"
	cfg.Database.ConnectTimeout = "5s"

	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(database.Close)

	ctx := context.Background()
	migrator := migrations.NewMigrator(database.Pool, zerolog.Nop())
	if err := migrator.MigrateFromDirectory(ctx, "../../../../migrations"); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	_, err = database.Pool.Exec(ctx, `TRUNCATE users, events, event_attendees, event_invitations,
		chats, chat_messages, presence_flags, delete_requests, password_reset_tokens CASCADE`)
	if err != nil {
		t.Fatalf("Failed to truncate: %v", err)
	}
	return NewRepositories(database)
}

func seedUser(t *testing.T, repos *repositories.Repositories, addr string, role models.RoleType) *models.User {
	t.Helper()
	user := &models.User{
		ID:           models.NewID(),
		Name:         addr,
		Email:        addr,
		Username:     models.NewID().Hex()[16:],
		PasswordHash: "x",
		Role:         role,
		CreatedAt:    testTime,
		UpdatedAt:    testTime,
	}
	if err := repos.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func seedEvent(t *testing.T, repos *repositories.Repositories, organizer *models.User, date time.Time) *models.Event {
	t.Helper()
	event := &models.Event{
		ID:          models.NewID(),
		Title:       "Meetup " + date.Format(time.DateOnly),
		Description: "Talks",
		Date:        date,
		Time:        "18:30",
		Location:    "Main Hall",
		Capacity:    5,
		Organizer:   organizer.ID,
		Status:      models.EventStatusUpcoming,
		Categories:  []string{"tech"},
		CreatedAt:   testTime,
		UpdatedAt:   testTime,
	}
	if err := repos.Events.Create(context.Background(), event); err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}
	return event
}

func TestPresenceGetInsertsOnce(t *testing.T) {
	repos := openTestDB(t)
	ctx := context.Background()

	flag, err := repos.Presence.Get(ctx, models.PresenceChat, testTime)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if flag.IsOnline || !flag.LastUpdated.Equal(testTime) {
		t.Errorf("Expected an offline flag stamped %v, got %+v", testTime, flag)
	}

	flag, err = repos.Presence.Get(ctx, models.PresenceChat, testTime.Add(time.Hour))
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	if !flag.LastUpdated.Equal(testTime) {
		t.Errorf("Expected the first stamp to be kept, got %v", flag.LastUpdated)
	}

	admin := seedUser(t, repos, "admin@example.com", models.RoleAdmin)
	set := &models.PresenceFlag{Tag: models.PresenceChat, IsOnline: true, LastUpdated: testTime.Add(2 * time.Hour), UpdatedBy: &admin.ID}
	if err := repos.Presence.Set(ctx, set); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	flag, _ = repos.Presence.Get(ctx, models.PresenceChat, testTime)
	if !flag.IsOnline || flag.UpdatedBy == nil || *flag.UpdatedBy != admin.ID {
		t.Errorf("Expected the stored flag back, got %+v", flag)
	}
	store, _ := repos.Presence.Get(ctx, models.PresenceStore, testTime)
	if store.IsOnline {
		t.Error("Expected the store flag to be independent")
	}
}

func TestEventMutateRoundTrip(t *testing.T) {
	repos := openTestDB(t)
	ctx := context.Background()
	organizer := seedUser(t, repos, "org@example.com", models.RoleUser)
	alice := seedUser(t, repos, "alice@example.com", models.RoleUser)
	bob := seedUser(t, repos, "bob@example.com", models.RoleUser)
	event := seedEvent(t, repos, organizer, testTime.AddDate(0, 0, 7))

	_, err := repos.Events.Mutate(ctx, event.ID, func(e *models.Event) error {
		e.Attendees = append(e.Attendees,
			models.Attendance{User: alice.ID, Status: models.RSVPAttending, AdditionalGuests: 2, ResponseDate: testTime},
			models.Attendance{User: bob.ID, Status: models.RSVPMaybe, ResponseDate: testTime})
		e.InvitedEmails = append(e.InvitedEmails, models.Invitation{Email: "guest@example.com", InvitedAt: testTime})
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}

	stored, err := repos.Events.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(stored.Attendees) != 2 || stored.Attendees[0].User != alice.ID || stored.Attendees[1].User != bob.ID {
		t.Fatalf("Expected attendees in response order, got %+v", stored.Attendees)
	}
	if stored.Attendees[0].AdditionalGuests != 2 || stored.AttendingHeadcount(bob.ID) != 3 {
		t.Errorf("Expected alice with 2 guests, got %+v", stored.Attendees[0])
	}
	if len(stored.InvitedEmails) != 1 || stored.InvitedEmails[0].NotificationSent {
		t.Errorf("Expected one unsent invitation, got %+v", stored.InvitedEmails)
	}

	// an aborted mutation leaves the rows alone
	_, err = repos.Events.Mutate(ctx, event.ID, func(e *models.Event) error {
		e.Attendees = nil
		return apperrors.NewValidationError("nope")
	})
	if !apperrors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("Expected the mutation error back, got %v", err)
	}
	stored, _ = repos.Events.GetByID(ctx, event.ID)
	if len(stored.Attendees) != 2 {
		t.Errorf("Expected attendees to survive the aborted mutation, got %d", len(stored.Attendees))
	}

	_, err = repos.Events.Mutate(ctx, event.ID, func(e *models.Event) error {
		e.Attendees = append(e.Attendees, models.Attendance{User: models.NewID(), Status: models.RSVPAttending, ResponseDate: testTime})
		return nil
	})
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected a missing attendee account to map to not found, got %v", err)
	}

	attended, err := repos.Events.ListByAttendee(ctx, bob.ID)
	if err != nil {
		t.Fatalf("ListByAttendee failed: %v", err)
	}
	if len(attended) != 1 || attended[0].ID != event.ID {
		t.Errorf("Expected bob's one event, got %d", len(attended))
	}

	// removing the account removes its RSVPs
	if err := repos.Users.Delete(ctx, alice.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	stored, _ = repos.Events.GetByID(ctx, event.ID)
	if len(stored.Attendees) != 1 || stored.Attendees[0].User != bob.ID {
		t.Errorf("Expected only bob's RSVP to remain, got %+v", stored.Attendees)
	}
}

func TestListByAttendeeOrder(t *testing.T) {
	repos := openTestDB(t)
	ctx := context.Background()
	organizer := seedUser(t, repos, "org@example.com", models.RoleUser)
	alice := seedUser(t, repos, "alice@example.com", models.RoleUser)

	late := seedEvent(t, repos, organizer, testTime.AddDate(0, 1, 0))
	early := seedEvent(t, repos, organizer, testTime.AddDate(0, 0, 3))
	seedEvent(t, repos, organizer, testTime.AddDate(0, 0, 5))
	for _, e := range []*models.Event{late, early} {
		_, err := repos.Events.Mutate(ctx, e.ID, func(e *models.Event) error {
			e.Attendees = append(e.Attendees, models.Attendance{User: alice.ID, Status: models.RSVPDeclined, ResponseDate: testTime})
			return nil
		})
		if err != nil {
			t.Fatalf("Mutate failed: %v", err)
		}
	}

	events, err := repos.Events.ListByAttendee(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListByAttendee failed: %v", err)
	}
	if len(events) != 2 || events[0].ID != early.ID || events[1].ID != late.ID {
		t.Errorf("Expected [early late], got %d events", len(events))
	}
}

func TestChatUnreadAndMarkRead(t *testing.T) {
	repos := openTestDB(t)
	ctx := context.Background()
	user := seedUser(t, repos, "u@example.com", models.RoleUser)
	admin := seedUser(t, repos, "admin@example.com", models.RoleAdmin)

	own := models.Message{ID: models.NewID(), Sender: user.ID, SenderRole: models.RoleUser, Content: "hi", Timestamp: testTime}
	reply := models.Message{ID: models.NewID(), Sender: admin.ID, SenderRole: models.RoleAdmin, Content: "hello", Timestamp: testTime.Add(time.Minute)}
	chat := &models.Chat{ID: models.NewID(), User: user.ID, IsActive: true, LastUpdated: testTime, CreatedAt: testTime, Messages: []models.Message{own, reply}}
	if err := repos.Chats.Create(ctx, chat); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	dup := &models.Chat{ID: models.NewID(), User: user.ID, IsActive: true, LastUpdated: testTime, CreatedAt: testTime}
	if err := repos.Chats.Create(ctx, dup); !apperrors.Is(err, apperrors.ErrConflict) {
		t.Errorf("Expected conflict for a second active chat, got %v", err)
	}
	orphan := &models.Chat{ID: models.NewID(), User: models.NewID(), IsActive: true, LastUpdated: testTime, CreatedAt: testTime}
	if err := repos.Chats.Create(ctx, orphan); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected not found for a missing owner, got %v", err)
	}

	for _, reader := range []models.Actor{user.Actor(), admin.Actor()} {
		n, err := repos.Chats.CountUnread(ctx, reader)
		if err != nil {
			t.Fatalf("CountUnread failed: %v", err)
		}
		if n != 1 {
			t.Errorf("Expected 1 unread for %s, got %d", reader.Role, n)
		}
	}

	n, err := repos.Chats.MarkRead(ctx, chat.ID, user.ID, []primitive.ObjectID{own.ID, reply.ID})
	if err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected only the reply to flip, got %d", n)
	}
	if n, _ := repos.Chats.MarkRead(ctx, chat.ID, user.ID, nil); n != 0 {
		t.Errorf("Expected a second pass to change nothing, got %d", n)
	}
	if unread, _ := repos.Chats.CountUnread(ctx, user.Actor()); unread != 0 {
		t.Errorf("Expected 0 unread for the owner, got %d", unread)
	}

	if err := repos.Chats.SetActive(ctx, chat.ID, false, testTime.Add(time.Hour)); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	if unread, _ := repos.Chats.CountUnread(ctx, admin.Actor()); unread != 0 {
		t.Errorf("Expected archived chats to be left out of the admin count, got %d", unread)
	}
	err = repos.Chats.AppendMessage(ctx, chat.ID, &models.Message{ID: models.NewID(), Sender: user.ID, SenderRole: models.RoleUser, Content: "x", Timestamp: testTime})
	if !apperrors.Is(err, apperrors.ErrConflict) {
		t.Errorf("Expected conflict when appending to an archived chat, got %v", err)
	}
}

func TestPasswordResetTokenLifecycle(t *testing.T) {
	repos := openTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, repos, "alice@example.com", models.RoleUser)

	token := func(hash string, expires time.Time) *models.PasswordResetToken {
		return &models.PasswordResetToken{TokenHash: hash, UserID: alice.ID, ExpiresAt: expires, CreatedAt: testTime}
	}
	first := token(strings.Repeat("a", 64), testTime.Add(10*time.Minute))
	if err := repos.PasswordResets.CreateToken(ctx, first); err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}
	second := token(strings.Repeat("b", 64), testTime.Add(10*time.Minute))
	if err := repos.PasswordResets.CreateToken(ctx, second); err != nil {
		t.Fatalf("second CreateToken failed: %v", err)
	}
	if _, err := repos.PasswordResets.GetTokenByHash(ctx, first.TokenHash); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected the earlier token to be replaced, got %v", err)
	}

	orphan := &models.PasswordResetToken{TokenHash: strings.Repeat("c", 64), UserID: models.NewID(), ExpiresAt: testTime, CreatedAt: testTime}
	if err := repos.PasswordResets.CreateToken(ctx, orphan); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected not found for a missing user, got %v", err)
	}

	used := testTime.Add(time.Minute)
	if err := repos.PasswordResets.MarkTokenAsUsed(ctx, second.TokenHash, used); err != nil {
		t.Fatalf("MarkTokenAsUsed failed: %v", err)
	}
	if err := repos.PasswordResets.MarkTokenAsUsed(ctx, second.TokenHash, used); !apperrors.Is(err, apperrors.ErrConflict) {
		t.Errorf("Expected conflict for a used token, got %v", err)
	}
	if err := repos.PasswordResets.MarkTokenAsUsed(ctx, first.TokenHash, used); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected not found for an unknown token, got %v", err)
	}
	stored, err := repos.PasswordResets.GetTokenByHash(ctx, second.TokenHash)
	if err != nil {
		t.Fatalf("GetTokenByHash failed: %v", err)
	}
	if stored.UsedAt == nil || !stored.UsedAt.Equal(used) || stored.Usable(testTime) {
		t.Errorf("Expected the token to be spent at %v, got %+v", used, stored)
	}

	removed, err := repos.PasswordResets.DeleteExpiredTokens(ctx, testTime.Add(time.Hour))
	if err != nil {
		t.Fatalf("DeleteExpiredTokens failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 expired token removed, got %d", removed)
	}
}

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/eventsphere/internal/app/auth"
	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/app/repositories"
	"github.com/yigit/eventsphere/internal/app/repositories/memory"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
	"github.com/yigit/eventsphere/internal/pkg/email"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

// recordingNotifier captures invitation batches instead of sending them
type recordingNotifier struct {
	mu      sync.Mutex
	batches [][]string
	err     error
}

func (n *recordingNotifier) SendEventInvitation(_ context.Context, recipients []string, _ email.Invitation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.batches = append(n.batches, append([]string{}, recipients...))
	return nil
}

type testEnv struct {
	repos     *repositories.Repositories
	notifier  *recordingNotifier
	now       time.Time
	events    EventService
	chats     ChatService
	presence  PresenceService
	deletions DeleteRequestService
	users     UserService
}

func (e *testEnv) clock() time.Time { return e.now }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		repos:    memory.NewStore().Repositories(),
		notifier: &recordingNotifier{},
		now:      testNow,
	}
	lgr := zerolog.Nop()
	authorizer := auth.NewAuthorizer(lgr)

	env.events = NewEventService(env.repos.Events, env.repos.Users, authorizer, env.notifier, nil, env.clock, lgr)
	env.presence = NewPresenceService(env.repos.Presence, authorizer, env.clock, lgr)
	env.chats = NewChatService(env.repos.Chats, env.repos.Users, env.presence, authorizer, env.clock, lgr)
	env.deletions = NewDeleteRequestService(env.repos.DeleteRequests, env.repos.Users, authorizer, env.clock, lgr)
	env.users = NewUserService(env.repos.Users, authorizer, env.clock, lgr)
	return env
}

func (e *testEnv) createUser(t *testing.T, name, addr string, role models.RoleType) models.Actor {
	t.Helper()
	user := &models.User{
		ID:                        models.NewID(),
		Name:                      name,
		Email:                     addr,
		Username:                  models.NewID().Hex()[16:],
		Role:                      role,
		ReceiveEmailNotifications: true,
		CreatedAt:                 e.now,
		UpdatedAt:                 e.now,
	}
	if err := e.repos.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to create user %s: %v", addr, err)
	}
	return user.Actor()
}

func (e *testEnv) setChatOnline(t *testing.T, admin models.Actor, online bool) {
	t.Helper()
	if _, err := e.presence.SetPresence(context.Background(), admin, models.PresenceChat, online); err != nil {
		t.Fatalf("SetPresence failed: %v", err)
	}
}

func expectKind(t *testing.T, err, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %q, got nil", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected error of kind %q, got %v", kind, err)
	}
}

func mustNoErr(t *testing.T, err error, what string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", what, err)
	}
}

func asCustom(err error, target **apperrors.CustomError) bool {
	return errors.As(err, target)
}

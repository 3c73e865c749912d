package services

import (
	"context"
	"testing"
	"time"

	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/app/models/dto"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
)

func TestStartChatRequiresSupportOnline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "Root", "root@example.com", models.RoleAdmin)
	alice := env.createUser(t, "Alice", "alice@example.com", models.RoleUser)

	_, err := env.chats.StartOrAppend(ctx, alice, &dto.StartChatRequest{InitialMessage: "hello?"})
	expectKind(t, err, apperrors.ErrChatOffline)

	_, err = env.chats.StartOrAppend(ctx, admin, &dto.StartChatRequest{InitialMessage: "hi"})
	expectKind(t, err, apperrors.ErrForbidden)

	env.setChatOnline(t, admin, true)

	_, err = env.chats.StartOrAppend(ctx, alice, &dto.StartChatRequest{InitialMessage: "   "})
	expectKind(t, err, apperrors.ErrValidation)

	first, err := env.chats.StartOrAppend(ctx, alice, &dto.StartChatRequest{InitialMessage: "hello"})
	mustNoErr(t, err, "start chat")
	if !first.IsActive || len(first.Messages) != 1 {
		t.Fatalf("Expected an active chat with 1 message, got %+v", first)
	}

	env.now = testNow.Add(time.Minute)
	second, err := env.chats.StartOrAppend(ctx, alice, &dto.StartChatRequest{InitialMessage: "anyone there?"})
	mustNoErr(t, err, "append via start")
	if second.ID != first.ID {
		t.Errorf("Expected the active chat %s to be reused, got %s", first.ID.Hex(), second.ID.Hex())
	}
	if len(second.Messages) != 2 || !second.LastUpdated.Equal(env.now) {
		t.Errorf("Expected 2 messages and lastUpdated %v, got %d / %v", env.now, len(second.Messages), second.LastUpdated)
	}
}

func TestPostMessageAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "Root", "root@example.com", models.RoleAdmin)
	alice := env.createUser(t, "Alice", "alice@example.com", models.RoleUser)
	bob := env.createUser(t, "Bob", "bob@example.com", models.RoleUser)

	env.setChatOnline(t, admin, true)
	chat, err := env.chats.StartOrAppend(ctx, alice, &dto.StartChatRequest{InitialMessage: "help"})
	mustNoErr(t, err, "start chat")
	id := chat.ID.Hex()

	_, err = env.chats.PostMessage(ctx, bob, id, &dto.PostMessageRequest{Content: "snooping"})
	expectKind(t, err, apperrors.ErrForbidden)
	_, err = env.chats.GetChat(ctx, bob, id)
	expectKind(t, err, apperrors.ErrForbidden)

	env.setChatOnline(t, admin, false)

	// admins answer even while support is marked offline
	reply, err := env.chats.PostMessage(ctx, admin, id, &dto.PostMessageRequest{Content: "on it"})
	mustNoErr(t, err, "admin reply")
	last := reply.Messages[len(reply.Messages)-1]
	if last.SenderRole != models.RoleAdmin || last.Sender != admin.ID {
		t.Errorf("Expected last message from admin, got %+v", last)
	}

	_, err = env.chats.PostMessage(ctx, alice, id, &dto.PostMessageRequest{Content: "thanks"})
	expectKind(t, err, apperrors.ErrChatOffline)

	_, err = env.chats.PostMessage(ctx, alice, models.NewID().Hex(), &dto.PostMessageRequest{Content: "hi"})
	expectKind(t, err, apperrors.ErrNotFound)
}

func TestMarkReadNeverCountsOwnMessages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "Root", "root@example.com", models.RoleAdmin)
	alice := env.createUser(t, "Alice", "alice@example.com", models.RoleUser)

	env.setChatOnline(t, admin, true)
	chat, err := env.chats.StartOrAppend(ctx, alice, &dto.StartChatRequest{InitialMessage: "question"})
	mustNoErr(t, err, "start chat")
	chat, err = env.chats.PostMessage(ctx, admin, chat.ID.Hex(), &dto.PostMessageRequest{Content: "answer"})
	mustNoErr(t, err, "admin reply")

	userMsg, adminMsg := chat.Messages[0].ID.Hex(), chat.Messages[1].ID.Hex()

	for _, tc := range []struct {
		actor models.Actor
		want  int
	}{{alice, 1}, {admin, 1}} {
		n, err := env.chats.CountUnread(ctx, tc.actor)
		mustNoErr(t, err, "CountUnread")
		if n != tc.want {
			t.Errorf("Expected %d unread for %s, got %d", tc.want, tc.actor.Role, n)
		}
	}

	req := &dto.MarkReadRequest{ChatID: chat.ID.Hex(), MessageIDs: []string{userMsg, adminMsg}}
	n, err := env.chats.MarkRead(ctx, alice, req)
	mustNoErr(t, err, "MarkRead")
	if n != 1 {
		t.Errorf("Expected only the admin message to flip, got %d", n)
	}

	n, err = env.chats.MarkRead(ctx, alice, req)
	mustNoErr(t, err, "MarkRead again")
	if n != 0 {
		t.Errorf("Expected second MarkRead to change nothing, got %d", n)
	}

	unread, err := env.chats.CountUnread(ctx, alice)
	mustNoErr(t, err, "CountUnread")
	if unread != 0 {
		t.Errorf("Expected 0 unread for alice, got %d", unread)
	}

	n, err = env.chats.MarkAllRead(ctx, admin, chat.ID.Hex())
	mustNoErr(t, err, "MarkAllRead")
	if n != 1 {
		t.Errorf("Expected admin to flip the user message, got %d", n)
	}

	stored, err := env.chats.GetChat(ctx, alice, chat.ID.Hex())
	mustNoErr(t, err, "GetChat")
	for _, m := range stored.Messages {
		if !m.IsRead {
			t.Errorf("Expected message %s to be read", m.ID.Hex())
		}
	}

	_, err = env.chats.MarkRead(ctx, alice, &dto.MarkReadRequest{ChatID: chat.ID.Hex()})
	expectKind(t, err, apperrors.ErrValidation)
	_, err = env.chats.MarkRead(ctx, alice, &dto.MarkReadRequest{ChatID: chat.ID.Hex(), MessageIDs: []string{"zz"}})
	expectKind(t, err, apperrors.ErrValidation)
}

func TestCloseAndReopenChat(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "Root", "root@example.com", models.RoleAdmin)
	alice := env.createUser(t, "Alice", "alice@example.com", models.RoleUser)
	bob := env.createUser(t, "Bob", "bob@example.com", models.RoleUser)

	env.setChatOnline(t, admin, true)
	old, err := env.chats.StartOrAppend(ctx, alice, &dto.StartChatRequest{InitialMessage: "first issue"})
	mustNoErr(t, err, "start chat")
	_, err = env.chats.StartOrAppend(ctx, bob, &dto.StartChatRequest{InitialMessage: "bob here"})
	mustNoErr(t, err, "bob chat")

	all, err := env.chats.ListChats(ctx, admin)
	mustNoErr(t, err, "ListChats admin")
	if len(all) != 2 {
		t.Errorf("Expected admin to see 2 chats, got %d", len(all))
	}
	own, err := env.chats.ListChats(ctx, alice)
	mustNoErr(t, err, "ListChats alice")
	if len(own) != 1 || own[0].User != alice.ID {
		t.Errorf("Expected alice to see only her chat, got %d", len(own))
	}

	closed, err := env.chats.CloseChat(ctx, alice, old.ID.Hex())
	mustNoErr(t, err, "CloseChat")
	if closed.IsActive {
		t.Fatal("Expected chat to be archived")
	}

	_, err = env.chats.PostMessage(ctx, alice, old.ID.Hex(), &dto.PostMessageRequest{Content: "hello?"})
	expectKind(t, err, apperrors.ErrConflict)

	fresh, err := env.chats.StartOrAppend(ctx, alice, &dto.StartChatRequest{InitialMessage: "second issue"})
	mustNoErr(t, err, "start second chat")
	if fresh.ID == old.ID {
		t.Fatal("Expected a new chat after closing the previous one")
	}

	_, err = env.chats.ReopenChat(ctx, alice, old.ID.Hex())
	expectKind(t, err, apperrors.ErrConflict)

	_, err = env.chats.CloseChat(ctx, admin, fresh.ID.Hex())
	mustNoErr(t, err, "admin CloseChat")
	reopened, err := env.chats.ReopenChat(ctx, alice, old.ID.Hex())
	mustNoErr(t, err, "ReopenChat")
	if !reopened.IsActive {
		t.Error("Expected reopened chat to be active")
	}
}

func TestPresence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "Root", "root@example.com", models.RoleAdmin)
	alice := env.createUser(t, "Alice", "alice@example.com", models.RoleUser)

	flag, err := env.presence.GetPresence(ctx, models.PresenceStore)
	mustNoErr(t, err, "GetPresence")
	if flag.IsOnline {
		t.Error("Expected a never-set flag to read offline")
	}
	if !flag.LastUpdated.Equal(testNow) {
		t.Errorf("Expected a new flag to be stamped with the service clock, got %v", flag.LastUpdated)
	}

	// the stamp is kept on later reads
	env.now = testNow.Add(time.Hour)
	flag, err = env.presence.GetPresence(ctx, models.PresenceStore)
	mustNoErr(t, err, "GetPresence again")
	if !flag.LastUpdated.Equal(testNow) {
		t.Errorf("Expected the first stamp to be kept, got %v", flag.LastUpdated)
	}

	_, err = env.presence.SetPresence(ctx, alice, models.PresenceStore, true)
	expectKind(t, err, apperrors.ErrForbidden)
	_, err = env.presence.SetPresence(ctx, admin, models.PresenceTag("radio"), true)
	expectKind(t, err, apperrors.ErrValidation)

	flag, err = env.presence.SetPresence(ctx, admin, models.PresenceStore, true)
	mustNoErr(t, err, "SetPresence")
	if flag.UpdatedBy == nil || *flag.UpdatedBy != admin.ID {
		t.Errorf("Expected updatedBy to be the admin, got %v", flag.UpdatedBy)
	}

	online, err := env.presence.IsOnline(ctx, models.PresenceStore)
	mustNoErr(t, err, "IsOnline")
	if !online {
		t.Error("Expected store to be online")
	}
	chatOnline, err := env.presence.IsOnline(ctx, models.PresenceChat)
	mustNoErr(t, err, "IsOnline chat")
	if chatOnline {
		t.Error("Expected chat flag to be independent of the store flag")
	}
}

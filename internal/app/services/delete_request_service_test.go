package services

import (
	"context"
	"testing"

	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/app/models/dto"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
)

func TestDeleteRequestApprovalCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "Root", "root@example.com", models.RoleAdmin)
	alice := env.createUser(t, "Alice", "alice@example.com", models.RoleUser)

	env.setChatOnline(t, admin, true)
	own, err := env.events.CreateEvent(ctx, alice, newEventRequest("Alice's party", 5))
	mustNoErr(t, err, "CreateEvent")
	other := publishedEvent(t, env, admin, 5)
	_, err = env.events.SubmitRSVP(ctx, alice, other.ID.Hex(), rsvp("attending", 1))
	mustNoErr(t, err, "RSVP")
	_, err = env.chats.StartOrAppend(ctx, alice, &dto.StartChatRequest{InitialMessage: "bye"})
	mustNoErr(t, err, "start chat")

	_, err = env.deletions.Submit(ctx, admin, &dto.SubmitDeleteRequest{})
	expectKind(t, err, apperrors.ErrForbidden)

	req, err := env.deletions.Submit(ctx, alice, &dto.SubmitDeleteRequest{})
	mustNoErr(t, err, "Submit")
	if req.Reason != models.DefaultDeleteReason || req.Status != models.DeleteRequestPending {
		t.Errorf("Expected a pending request with the default reason, got %+v", req)
	}
	_, err = env.deletions.Submit(ctx, alice, &dto.SubmitDeleteRequest{Reason: "changed my mind"})
	expectKind(t, err, apperrors.ErrConflict)

	_, err = env.deletions.List(ctx, alice)
	expectKind(t, err, apperrors.ErrForbidden)

	resolved, err := env.deletions.Resolve(ctx, admin, req.ID.Hex(), &dto.ResolveDeleteRequest{Action: "approve", AdminComment: "done"})
	mustNoErr(t, err, "Resolve")
	if resolved.Status != models.DeleteRequestApproved || resolved.ResolvedBy == nil || *resolved.ResolvedBy != admin.ID {
		t.Errorf("Unexpected resolved request: %+v", resolved)
	}

	_, err = env.repos.Users.GetByID(ctx, alice.ID)
	expectKind(t, err, apperrors.ErrNotFound)
	_, err = env.repos.Events.GetByID(ctx, own.ID)
	expectKind(t, err, apperrors.ErrNotFound)
	stored, err := env.repos.Events.GetByID(ctx, other.ID)
	mustNoErr(t, err, "load other event")
	if len(stored.Attendees) != 0 {
		t.Errorf("Expected alice's RSVP to be removed, got %+v", stored.Attendees)
	}
	chats, err := env.chats.ListChats(ctx, admin)
	mustNoErr(t, err, "ListChats")
	if len(chats) != 0 {
		t.Errorf("Expected alice's chat to be removed, got %d", len(chats))
	}

	_, err = env.deletions.Resolve(ctx, admin, req.ID.Hex(), &dto.ResolveDeleteRequest{Action: "reject"})
	expectKind(t, err, apperrors.ErrConflict)

	all, err := env.deletions.List(ctx, admin)
	mustNoErr(t, err, "List")
	if len(all) != 1 {
		t.Errorf("Expected the resolved request to remain listed, got %d", len(all))
	}
}

func TestDeleteRequestRejectionKeepsAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "Root", "root@example.com", models.RoleAdmin)
	alice := env.createUser(t, "Alice", "alice@example.com", models.RoleUser)

	req, err := env.deletions.Submit(ctx, alice, &dto.SubmitDeleteRequest{Reason: "  moving away "})
	mustNoErr(t, err, "Submit")
	if req.Reason != "moving away" {
		t.Errorf("Expected trimmed reason, got %q", req.Reason)
	}

	_, err = env.deletions.Resolve(ctx, admin, req.ID.Hex(), &dto.ResolveDeleteRequest{Action: "archive"})
	expectKind(t, err, apperrors.ErrValidation)

	resolved, err := env.deletions.Resolve(ctx, admin, req.ID.Hex(), &dto.ResolveDeleteRequest{Action: "reject"})
	mustNoErr(t, err, "Resolve")
	if resolved.Status != models.DeleteRequestRejected {
		t.Errorf("Expected rejected, got %q", resolved.Status)
	}
	if _, err := env.repos.Users.GetByID(ctx, alice.ID); err != nil {
		t.Errorf("Expected alice to keep her account, got %v", err)
	}

	// a rejected request does not block a new one
	_, err = env.deletions.Submit(ctx, alice, &dto.SubmitDeleteRequest{})
	mustNoErr(t, err, "Submit again")
}

func TestRemovedAccountCannotAct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "Root", "root@example.com", models.RoleAdmin)
	bob := env.createUser(t, "Bob", "bob@example.com", models.RoleUser)
	carol := env.createUser(t, "Carol", "carol@example.com", models.RoleUser)

	env.setChatOnline(t, admin, true)
	event := publishedEvent(t, env, admin, 1)

	req, err := env.deletions.Submit(ctx, bob, &dto.SubmitDeleteRequest{})
	mustNoErr(t, err, "Submit")
	_, err = env.deletions.Resolve(ctx, admin, req.ID.Hex(), &dto.ResolveDeleteRequest{Action: "approve"})
	mustNoErr(t, err, "Resolve")

	// bob still holds a valid actor but the account is gone
	_, err = env.events.SubmitRSVP(ctx, bob, event.ID.Hex(), rsvp("attending", 0))
	expectKind(t, err, apperrors.ErrUnauthenticated)
	_, err = env.events.CreateEvent(ctx, bob, newEventRequest("Ghost party", 3))
	expectKind(t, err, apperrors.ErrUnauthenticated)
	_, err = env.chats.StartOrAppend(ctx, bob, &dto.StartChatRequest{InitialMessage: "still here"})
	expectKind(t, err, apperrors.ErrUnauthenticated)

	resp, err := env.events.SubmitRSVP(ctx, carol, event.ID.Hex(), rsvp("attending", 0))
	mustNoErr(t, err, "carol RSVP")
	if resp.AttendingCount != 1 {
		t.Errorf("Expected carol to hold the only seat, got %d attending", resp.AttendingCount)
	}
	chats, err := env.chats.ListChats(ctx, admin)
	mustNoErr(t, err, "ListChats")
	if len(chats) != 0 {
		t.Errorf("Expected no chat for the removed account, got %d", len(chats))
	}
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/app/models/dto"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
)

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "Alice", "alice@example.com", models.RoleUser)
	env.createUser(t, "Bob", "bob@example.com", models.RoleUser)

	optOut := false
	updated, err := env.users.UpdateProfile(ctx, alice, &dto.UpdateProfileRequest{
		Name:                      "Alice Liddell",
		Email:                     "alice@example.com",
		Phone:                     " 555-0100 ",
		ReceiveEmailNotifications: &optOut,
	})
	mustNoErr(t, err, "UpdateProfile")
	if updated.Name != "Alice Liddell" || updated.Phone != "555-0100" || updated.ReceiveEmailNotifications {
		t.Errorf("Unexpected profile after update: %+v", updated)
	}

	emails, err := env.repos.Users.ListNotificationEmails(ctx)
	mustNoErr(t, err, "ListNotificationEmails")
	if len(emails) != 1 || emails[0] != "bob@example.com" {
		t.Errorf("Expected only bob to receive notifications, got %v", emails)
	}

	_, err = env.users.UpdateProfile(ctx, alice, &dto.UpdateProfileRequest{Name: "Alice", Email: "bob@example.com"})
	expectKind(t, err, apperrors.ErrConflict)
	_, err = env.users.UpdateProfile(ctx, alice, &dto.UpdateProfileRequest{Name: " ", Email: "alice@example.com"})
	expectKind(t, err, apperrors.ErrValidation)
}

func TestListUsersIsAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "Root", "root@example.com", models.RoleAdmin)
	alice := env.createUser(t, "Alice", "alice@example.com", models.RoleUser)

	_, _, err := env.users.ListUsers(ctx, alice, 1, 10)
	expectKind(t, err, apperrors.ErrForbidden)

	users, total, err := env.users.ListUsers(ctx, admin, 1, 1)
	mustNoErr(t, err, "ListUsers")
	if total != 2 || len(users) != 1 {
		t.Errorf("Expected total 2 with a page of 1, got %d / %d", total, len(users))
	}
}

func TestGetUserAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "Root", "root@example.com", models.RoleAdmin)
	alice := env.createUser(t, "Alice", "alice@example.com", models.RoleUser)
	bob := env.createUser(t, "Bob", "bob@example.com", models.RoleUser)

	tests := []struct {
		name  string
		actor models.Actor
		id    string
		kind  error
	}{
		{"self", alice, alice.ID.Hex(), nil},
		{"admin", admin, alice.ID.Hex(), nil},
		{"other user", bob, alice.ID.Hex(), apperrors.ErrForbidden},
		{"anonymous", models.Actor{}, alice.ID.Hex(), apperrors.ErrUnauthenticated},
		{"malformed id", admin, "nope", apperrors.ErrValidation},
		{"missing", admin, models.NewID().Hex(), apperrors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := env.users.GetUser(ctx, tt.actor, tt.id)
			if tt.kind != nil {
				expectKind(t, err, tt.kind)
				return
			}
			mustNoErr(t, err, "GetUser")
			if user.ID != alice.ID {
				t.Errorf("Expected alice, got %s", user.ID.Hex())
			}
		})
	}
}

func TestChangeRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "Root", "root@example.com", models.RoleAdmin)
	alice := env.createUser(t, "Alice", "alice@example.com", models.RoleUser)

	_, err := env.users.ChangeRole(ctx, alice, alice.ID.Hex(), &dto.ChangeRoleRequest{Role: "admin"})
	expectKind(t, err, apperrors.ErrForbidden)
	_, err = env.users.ChangeRole(ctx, admin, alice.ID.Hex(), &dto.ChangeRoleRequest{Role: "superuser"})
	expectKind(t, err, apperrors.ErrValidation)
	_, err = env.users.ChangeRole(ctx, admin, admin.ID.Hex(), &dto.ChangeRoleRequest{Role: "user"})
	expectKind(t, err, apperrors.ErrForbidden)
	_, err = env.users.ChangeRole(ctx, admin, models.NewID().Hex(), &dto.ChangeRoleRequest{Role: "admin"})
	expectKind(t, err, apperrors.ErrNotFound)

	env.now = testNow.Add(time.Hour)
	promoted, err := env.users.ChangeRole(ctx, admin, alice.ID.Hex(), &dto.ChangeRoleRequest{Role: "admin"})
	mustNoErr(t, err, "ChangeRole")
	if promoted.Role != models.RoleAdmin || !promoted.UpdatedAt.Equal(env.now) {
		t.Errorf("Expected alice promoted at %v, got %q at %v", env.now, promoted.Role, promoted.UpdatedAt)
	}
	stored, err := env.repos.Users.GetByID(ctx, alice.ID)
	mustNoErr(t, err, "GetByID")
	if stored.Role != models.RoleAdmin {
		t.Errorf("Expected the stored role to be admin, got %q", stored.Role)
	}

	// the promoted admin can demote the original one
	_, err = env.users.ChangeRole(ctx, stored.Actor(), admin.ID.Hex(), &dto.ChangeRoleRequest{Role: "user"})
	mustNoErr(t, err, "demote")
}

func TestUserEventsGrouping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "Root", "root@example.com", models.RoleAdmin)
	alice := env.createUser(t, "Alice", "alice@example.com", models.RoleUser)
	bob := env.createUser(t, "Bob", "bob@example.com", models.RoleUser)

	create := func(actor models.Actor, title, date string) *models.Event {
		t.Helper()
		req := newEventRequest(title, 10)
		req.Date = date
		event, err := env.events.CreateEvent(ctx, actor, req)
		mustNoErr(t, err, "CreateEvent "+title)
		return event
	}
	respond := func(event *models.Event, status string) {
		t.Helper()
		_, err := env.events.SubmitRSVP(ctx, alice, event.ID.Hex(), rsvp(status, 0))
		mustNoErr(t, err, "RSVP "+event.Title)
	}

	april := create(admin, "April", "2026-04-01")
	may := create(admin, "May", "2026-05-01")
	june := create(admin, "June", "2026-06-01")
	respond(april, "attending")
	respond(may, "maybe")
	respond(june, "declined")
	own1 := create(alice, "Own April", "2026-04-10")
	own2 := create(alice, "Own May", "2026-05-10")

	titles := func(events []*models.Event) []string {
		out := make([]string, len(events))
		for i, e := range events {
			out[i] = e.Title
		}
		return out
	}
	check := func(what string, got []*models.Event, want ...string) {
		t.Helper()
		g := titles(got)
		if len(g) != len(want) {
			t.Errorf("%s: expected %v, got %v", what, want, g)
			return
		}
		for i := range want {
			if g[i] != want[i] {
				t.Errorf("%s: expected %v, got %v", what, want, g)
				return
			}
		}
	}

	res, err := env.events.UserEvents(ctx, alice, alice.ID.Hex())
	mustNoErr(t, err, "UserEvents")
	check("organized", res.OrganizedEvents, own2.Title, own1.Title)
	check("attending", res.AttendingEvents, "April")
	check("maybe", res.MaybeEvents, "May")
	check("past", res.PastEvents)

	// an event dated today is still upcoming
	env.now = time.Date(2026, time.April, 1, 20, 0, 0, 0, time.UTC)
	res, err = env.events.UserEvents(ctx, alice, alice.ID.Hex())
	mustNoErr(t, err, "UserEvents on the event day")
	check("attending on the day", res.AttendingEvents, "April")

	env.now = time.Date(2026, time.June, 2, 9, 0, 0, 0, time.UTC)
	res, err = env.events.UserEvents(ctx, admin, alice.ID.Hex())
	mustNoErr(t, err, "admin UserEvents")
	check("attending later", res.AttendingEvents)
	check("maybe later", res.MaybeEvents)
	check("past later", res.PastEvents, "June", "May", "April")

	_, err = env.events.UserEvents(ctx, bob, alice.ID.Hex())
	expectKind(t, err, apperrors.ErrForbidden)
	_, err = env.events.UserEvents(ctx, alice, "bad")
	expectKind(t, err, apperrors.ErrValidation)
}

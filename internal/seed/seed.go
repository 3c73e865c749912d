package seed

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/eventsphere/internal/app/models"
	appRepos "github.com/yigit/eventsphere/internal/app/repositories"
)

// AdminEnsurer creates or promotes the administrator account
type AdminEnsurer interface {
	EnsureAdmin(ctx context.Context, email, password, name string) (*appModels.User, error)
}

// AdminAccount is the configured bootstrap administrator
type AdminAccount struct {
	Email    string
	Password string
	Name     string
}

// CreateDefaultData makes sure the presence flags exist and, when configured, the admin account.
// Every step runs even if an earlier one failed; the errors are joined.
func CreateDefaultData(
	ctx context.Context,
	admins AdminEnsurer,
	presence appRepos.PresenceRepository,
	admin AdminAccount,
	lgr zerolog.Logger,
) error {
	lgr.Info().Msg("Checking/Creating default data (presence flags, admin account)...")
	var finalErr error

	for _, tag := range []appModels.PresenceTag{appModels.PresenceChat, appModels.PresenceStore} {
		flag, err := presence.Get(ctx, tag, time.Now().UTC())
		if err != nil {
			lgr.Error().Err(err).Str("tag", string(tag)).Msg("Error initializing presence flag")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		lgr.Debug().Str("tag", string(tag)).Bool("online", flag.IsOnline).Msg("Presence flag ready")
	}

	if admin.Email == "" {
		lgr.Info().Msg("No admin account configured, skipping admin bootstrap")
		return finalErr
	}

	user, err := admins.EnsureAdmin(ctx, admin.Email, admin.Password, admin.Name)
	if err != nil {
		lgr.Error().Err(err).Str("email", admin.Email).Msg("Error ensuring admin account")
		return errors.Join(finalErr, err)
	}
	lgr.Info().Str("userID", user.ID.Hex()).Str("email", user.Email).Msg("Admin account ready")

	return finalErr
}

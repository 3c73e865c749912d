// Command create-admin creates an administrator account or promotes an existing user.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/yigit/eventsphere/internal/bootstrap"
	"github.com/yigit/eventsphere/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", bootstrap.DefaultConfigPath, "path to the YAML configuration file")
	email := flag.String("email", os.Getenv("ADMIN_EMAIL"), "admin email")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	name := flag.String("name", "Administrator", "admin display name")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: create-admin -email <email> -password <password> [-name <name>]")
		os.Exit(2)
	}

	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(*configPath)
	if err != nil {
		os.Exit(1)
	}
	if cfg.Database.Driver == "memory" {
		lgr.Warn().Msg("Memory driver configured, the account will not outlive this process")
	}

	storage, err := bootstrap.SetupStorage(cfg, lgr)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open storage")
		os.Exit(1)
	}
	defer storage.Close()

	deps, err := bootstrap.BuildDependencies(cfg, storage.Repos, lgr)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build dependencies")
		storage.Close()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := deps.AuthService.EnsureAdmin(ctx, *email, *password, *name)
	if err != nil {
		logger.Error().Err(err).Str("email", *email).Msg("Failed to create admin")
		cancel()
		storage.Close()
		os.Exit(1)
	}

	lgr.Info().Str("userID", user.ID.Hex()).Str("email", user.Email).Msg("Admin account ready")
}

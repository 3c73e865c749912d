package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/app/models/dto"
	"github.com/yigit/eventsphere/internal/app/repositories"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
	"github.com/yigit/eventsphere/internal/pkg/auth"
	"github.com/yigit/eventsphere/internal/pkg/email"
	"github.com/yigit/eventsphere/internal/pkg/validation"
)

const (
	// usernameAttempts bounds the retries when a generated username is already taken
	usernameAttempts = 5
	// PasswordResetTTL is how long an emailed reset link stays valid
	PasswordResetTTL = 10 * time.Minute
)

// AuthService handles registration, login, password resets and the admin bootstrap
type AuthService struct {
	users      repositories.UserRepository
	resets     repositories.PasswordResetTokenRepository
	jwtService *auth.JWTService
	hasher     *auth.PasswordHasher
	mailer     email.PasswordResetMailer
	now        Clock
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users repositories.UserRepository,
	resets repositories.PasswordResetTokenRepository,
	jwtService *auth.JWTService,
	hasher *auth.PasswordHasher,
	mailer email.PasswordResetMailer,
	clock Clock,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		resets:     resets,
		jwtService: jwtService,
		hasher:     hasher,
		mailer:     mailer,
		now:        clockOrDefault(clock),
		logger:     logger,
	}
}

// Register creates a regular user account and signs it in
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	addr, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if !validation.NewStringValidation(name).
		WithMinLength(validation.NameMinLength).
		WithMaxLength(validation.NameMaxLength).
		Validate() {
		return nil, apperrors.NewValidationError("name must be between 2 and 100 characters").WithField("field", "name")
	}
	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		return nil, apperrors.NewValidationError(err.Error()).WithField("field", "password")
	}

	if _, err := s.users.GetByEmail(ctx, addr); err == nil {
		return nil, apperrors.NewConflictError("email already registered")
	} else if !apperrors.Is(err, apperrors.ErrNotFound) {
		s.logger.Error().Err(err).Msg("Failed to check email availability")
		return nil, storageError("check email", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.NewPersistenceError("hash password", err)
	}

	now := s.now()
	user := &models.User{
		Name:                      name,
		Email:                     addr,
		PasswordHash:              hash,
		Role:                      models.RoleUser,
		Phone:                     strings.TrimSpace(req.Phone),
		Address:                   strings.TrimSpace(req.Address),
		ReceiveEmailNotifications: true,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}
	if err := s.createWithUsername(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("userID", user.ID.Hex()).Msg("User registered")
	return s.generateTokenResponse(user)
}

// Login verifies credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	addr := strings.ToLower(strings.TrimSpace(req.Email))
	if addr == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, addr)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "invalid email or password")
		}
		s.logger.Error().Err(err).Msg("Failed to load user for login")
		return nil, storageError("load user", err)
	}

	if !s.hasher.Check(user.PasswordHash, req.Password) {
		s.logger.Debug().Str("userID", user.ID.Hex()).Msg("Password mismatch")
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "invalid email or password")
	}

	return s.generateTokenResponse(user)
}

// ForgotPassword emails a single-use reset link. Unknown addresses succeed silently so
// the endpoint cannot be used to probe for accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	addr, err := normalizeEmail(req.Email)
	if err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, addr)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			s.logger.Debug().Msg("Password reset requested for an unknown email")
			return nil
		}
		s.logger.Error().Err(err).Msg("Failed to load user for password reset")
		return storageError("load user", err)
	}

	now := s.now()
	if n, err := s.resets.DeleteExpiredTokens(ctx, now); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to sweep expired reset tokens")
	} else if n > 0 {
		s.logger.Debug().Int("count", n).Msg("Expired reset tokens removed")
	}

	token, hash, err := auth.GenerateResetToken()
	if err != nil {
		return apperrors.NewPersistenceError("generate reset token", err)
	}
	err = s.resets.CreateToken(ctx, &models.PasswordResetToken{
		TokenHash: hash,
		UserID:    user.ID,
		ExpiresAt: now.Add(PasswordResetTTL),
		CreatedAt: now,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("userID", user.ID.Hex()).Msg("Failed to store reset token")
		return storageError("store reset token", err)
	}

	err = s.mailer.SendPasswordReset(ctx, email.PasswordReset{
		Email:    user.Email,
		Name:     user.Name,
		Token:    token,
		ValidFor: PasswordResetTTL,
	})
	if err != nil {
		// the token is useless if it never reached the user
		if delErr := s.resets.DeleteTokensByUserID(ctx, user.ID); delErr != nil {
			s.logger.Warn().Err(delErr).Str("userID", user.ID.Hex()).Msg("Failed to drop undelivered reset token")
		}
		return apperrors.NewNotificationError(err)
	}

	s.logger.Info().Str("userID", user.ID.Hex()).Msg("Password reset requested")
	return nil
}

// ResetPassword swaps the password of the token's owner and burns the token
func (s *AuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	raw := strings.TrimSpace(req.Token)
	if raw == "" {
		return apperrors.NewValidationError("token is required").WithField("field", "token")
	}
	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		return apperrors.NewValidationError(err.Error()).WithField("field", "password")
	}

	invalid := apperrors.NewValidationError("invalid or expired reset token").WithField("field", "token")
	hash := auth.HashResetToken(raw)
	now := s.now()

	token, err := s.resets.GetTokenByHash(ctx, hash)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return invalid
		}
		return storageError("load reset token", err)
	}
	if !token.Usable(now) {
		return invalid
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return invalid
		}
		return storageError("load user", err)
	}

	newHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return apperrors.NewPersistenceError("hash password", err)
	}

	// claiming the token first makes a concurrent replay lose
	if err := s.resets.MarkTokenAsUsed(ctx, hash, now); err != nil {
		if apperrors.Is(err, apperrors.ErrConflict, apperrors.ErrNotFound) {
			return invalid
		}
		return storageError("consume reset token", err)
	}

	user.PasswordHash = newHash
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("userID", user.ID.Hex()).Msg("Failed to store new password")
		return storageError("update password", err)
	}

	s.logger.Info().Str("userID", user.ID.Hex()).Msg("Password reset completed")
	return nil
}

// EnsureAdmin creates the administrator account or promotes an existing one.
// The password is always re-hashed so repeated runs converge on the configured credentials.
func (s *AuthService) EnsureAdmin(ctx context.Context, addr, password, name string) (*models.User, error) {
	addr, err := normalizeEmail(addr)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, apperrors.NewValidationError("admin password is required").WithField("field", "password")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Administrator"
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.NewPersistenceError("hash password", err)
	}
	now := s.now()

	user, err := s.users.GetByEmail(ctx, addr)
	switch {
	case err == nil:
		user.Role = models.RoleAdmin
		user.PasswordHash = hash
		user.UpdatedAt = now
		if err := s.users.Update(ctx, user); err != nil {
			return nil, storageError("promote admin", err)
		}
		s.logger.Info().Str("userID", user.ID.Hex()).Str("email", addr).Msg("Existing user promoted to admin")
		return user, nil
	case !apperrors.Is(err, apperrors.ErrNotFound):
		return nil, storageError("load admin", err)
	}

	user = &models.User{
		Name:                      name,
		Email:                     addr,
		PasswordHash:              hash,
		Role:                      models.RoleAdmin,
		ReceiveEmailNotifications: true,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}
	if err := s.createWithUsername(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info().Str("userID", user.ID.Hex()).Str("email", addr).Msg("Admin account created")
	return user, nil
}

// createWithUsername stores the user under a random 8 digit username, retrying on collisions
func (s *AuthService) createWithUsername(ctx context.Context, user *models.User) error {
	var err error
	for attempt := 0; attempt < usernameAttempts; attempt++ {
		user.ID = models.NewID()
		user.Username = fmt.Sprintf("%08d", rand.Intn(100_000_000))

		err = s.users.Create(ctx, user)
		if err == nil {
			return nil
		}
		if !apperrors.Is(err, apperrors.ErrConflict) {
			s.logger.Error().Err(err).Msg("Failed to create user")
			return storageError("create user", err)
		}
		// the email may have been taken concurrently
		if _, lookupErr := s.users.GetByEmail(ctx, user.Email); lookupErr == nil {
			return apperrors.NewConflictError("email already registered")
		}
	}
	s.logger.Error().Err(err).Int("attempts", usernameAttempts).Msg("Could not allocate a username")
	return storageError("create user", err)
}

// generateTokenResponse creates token response
func (s *AuthService) generateTokenResponse(user *models.User) (*dto.TokenResponse, error) {
	accessToken, expiresIn, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign access token")
		return nil, apperrors.NewPersistenceError("issue token", err)
	}

	return &dto.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		User:        dto.ToUserResponse(user),
	}, nil
}

func normalizeEmail(raw string) (string, error) {
	addr := strings.ToLower(strings.TrimSpace(raw))
	if !validation.IsEmail(addr) {
		return "", apperrors.NewValidationError("invalid email address").WithField("field", "email")
	}
	return addr, nil
}

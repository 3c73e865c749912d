package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/eventsphere/internal/app/models"
	"github.com/yigit/eventsphere/internal/app/models/dto"
	"github.com/yigit/eventsphere/internal/pkg/apperrors"
	"github.com/yigit/eventsphere/internal/pkg/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// actorKey is the gin context key holding the authenticated models.Actor
const actorKey = "actor"

// AccountLookup resolves the account a token was issued for
type AccountLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// errAccountRemoved marks a valid token whose account no longer exists
var errAccountRemoved = errors.New("account no longer exists")

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	accounts   AccountLookup
	logger     zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, accounts AccountLookup, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		accounts:   accounts,
		logger:     logger,
	}
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := requestToken(c)
		if authHeader == "" {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		actor, err := m.authenticate(c.Request.Context(), authHeader)
		if err != nil {
			var ce *apperrors.CustomError
			if errors.As(err, &ce) {
				// the account store failed, not the token
				HandleAPIError(c, err)
				c.Abort()
				return
			}

			errorCode := dto.ErrorCodeInvalidToken
			errorDetails := "Invalid token"
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				errorCode = dto.ErrorCodeExpiredToken
				errorDetails = "Token has expired"
			case errors.Is(err, errAccountRemoved):
				errorCode = dto.ErrorCodeUnauthorized
				errorDetails = "Account no longer exists"
			}
			m.logger.Debug().Err(err).Str("path", c.FullPath()).Msg("Rejected token")

			errorDetail := dto.NewErrorDetail(errorCode, "Authentication failed").WithDetails(errorDetails)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// OptionalAuth attaches the actor when a valid token is present and lets anonymous requests through
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if authHeader := requestToken(c); authHeader != "" {
			if actor, err := m.authenticate(c.Request.Context(), authHeader); err == nil {
				c.Set(actorKey, actor)
			}
		}
		c.Next()
	}
}

// AdminRequired middleware restricts a route to administrators. JWTAuth must run first.
func (m *AuthMiddleware) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("User information not found")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}
		if !actor.IsAdmin() {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("You don't have sufficient permissions for this operation")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}
		c.Next()
	}
}

// authenticate validates the token and reloads its account, so removed accounts and role
// changes take effect before the token expires
func (m *AuthMiddleware) authenticate(ctx context.Context, authHeader string) (models.Actor, error) {
	tokenString, err := auth.ExtractBearerToken(strings.Trim(authHeader, "\"'"))
	if err != nil {
		return models.Actor{}, err
	}
	claims, err := m.jwtService.ValidateToken(tokenString)
	if err != nil {
		return models.Actor{}, err
	}
	actor, err := claims.Actor()
	if err != nil {
		return models.Actor{}, err
	}

	user, err := m.accounts.GetByID(ctx, actor.ID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return models.Actor{}, errAccountRemoved
		}
		m.logger.Error().Err(err).Str("userID", actor.ID.Hex()).Msg("Failed to load account for token")
		return models.Actor{}, apperrors.NewPersistenceError("load account", err)
	}
	return user.Actor(), nil
}

// requestToken reads the Authorization header, falling back to the query parameters Swagger UI uses
func requestToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		return h
	}
	for _, key := range []string{"authorization", "Authorization", "token"} {
		if q := c.Query(key); q != "" {
			return q
		}
	}
	return ""
}

// ActorFrom returns the authenticated actor stored by JWTAuth or OptionalAuth
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	value, exists := c.Get(actorKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := value.(models.Actor)
	return actor, ok
}

// SetActor stores an actor on the context
func SetActor(c *gin.Context, actor models.Actor) {
	c.Set(actorKey, actor)
}

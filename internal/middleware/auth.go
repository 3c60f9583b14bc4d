// Package middleware holds the gin middleware shared by every route: request
// logging and bearer-token authentication.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/feedback-board/backend/internal/auth"
	"github.com/emilythestrangee/feedback-board/backend/internal/models"
)

const (
	userKey   = "user"
	userIDKey = "user_id"
)

type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

type UserSyncer interface {
	SyncUser(ctx context.Context, id auth.Identity) (*models.User, error)
}

// Authenticate resolves the bearer token to a local user and stores it on the
// context. Requests without a usable token continue anonymously; routes that
// need a user add RequireUser or RequireAdmin.
func Authenticate(verifier TokenVerifier, users UserSyncer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.Next()
			return
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			slog.Warn("rejected bearer token",
				"request_id", RequestID(c),
				"error", err,
			)
			c.Next()
			return
		}

		user, err := users.SyncUser(c.Request.Context(), identity)
		if err != nil {
			slog.Error("user sync failed",
				"request_id", RequestID(c),
				"subject", identity.Subject,
				"error", err,
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.Set(userKey, user)
		c.Set(userIDKey, user.ID)
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// RequireAdmin answers 401 rather than 403 for signed-in members too.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentUser(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"media-market/internal/backend"
	"media-market/internal/logging"
	"media-market/internal/models"
	"media-market/internal/session"
)

// TokenKey is where the raw access token is kept on the gin context.
const TokenKey = "accessToken"

type Resolver interface {
	Resolve(ctx context.Context, accessToken string) (*models.User, error)
}

// Session resolves the caller, if any, and stores the user in the request
// context. A missing token leaves the request anonymous.
func Session(r Resolver, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearer(c)
		if !ok {
			log.Debug("auth header format is not Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}
		if token == "" {
			c.Next()
			return
		}

		user, err := r.Resolve(c.Request.Context(), token)
		switch {
		case errors.Is(err, session.ErrBanned):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account is banned"})
			return
		case errors.Is(err, backend.ErrInvalidSession):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		case err != nil:
			log.Error("failed to resolve session", logging.Err(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve session"})
			return
		}

		c.Set(TokenKey, token)
		c.Request = c.Request.WithContext(session.WithUser(c.Request.Context(), user))
		c.Next()
	}
}

// bearer reads the token from the Authorization header, or from the
// access_token query parameter for websocket upgrades. ok is false for a
// malformed header.
func bearer(c *gin.Context) (token string, ok bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return c.Query("access_token"), true
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := session.CurrentUser(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects every non-admin before the handler runs, so nothing
// is read on their behalf.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := session.CurrentUser(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.Next()
	}
}

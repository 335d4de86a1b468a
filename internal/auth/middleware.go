package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/libris/internal/entities"
)

// ContextKeyUser holds the *entities.User of an authenticated request.
const ContextKeyUser = "auth_user"

// UserFinder resolves a session's username to the current user record.
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*entities.User, error)
}

// Middleware resolves the session user and guards routes by role.
type Middleware struct {
	users    UserFinder
	sessions *SessionManager
	log      *zap.Logger
}

func NewMiddleware(users UserFinder, sessions *SessionManager, log *zap.Logger) *Middleware {
	return &Middleware{users: users, sessions: sessions, log: log}
}

// Handler attaches the logged-in user to the context when the session
// names one that still exists. It never rejects a request.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.sessions.IsAuthenticated(c.Request) {
			c.Next()
			return
		}
		username := m.sessions.GetUsername(c.Request)

		user, err := m.users.FindByUsername(c.Request.Context(), username)
		if err != nil {
			// Deleted account or unreadable store; either way not logged in.
			m.log.Debug("session user not resolved", zap.String("username", username), zap.Error(err))
			c.Next()
			return
		}
		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// RequireLogin rejects anonymous requests with 401.
func (m *Middleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Please login first"})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with 403.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Please login first"})
			return
		}
		if !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(c *gin.Context) *entities.User {
	if v, ok := c.Get(ContextKeyUser); ok {
		if user, ok := v.(*entities.User); ok {
			return user
		}
	}
	return nil
}

// Username returns the authenticated username, or "".
func Username(c *gin.Context) string {
	if user := CurrentUser(c); user != nil {
		return user.Username
	}
	return ""
}

package http

import (
	"go.uber.org/zap"

	"github.com/mrlokans/libris/internal/auth"
	"github.com/mrlokans/libris/internal/database"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	Library   Library
	Database  *database.Database // health checks; may be nil in tests
	TaskQueue TaskQueue          // nil when background tasks are disabled

	Sessions       *auth.SessionManager
	AuthMiddleware *auth.Middleware
	RateLimiter    *auth.RateLimiter

	// CSRFSecret enables CSRF protection when non-empty.
	CSRFSecret    []byte
	SecureCookies bool

	CORSAllowedOrigins []string

	Log     *zap.Logger
	Version string
}

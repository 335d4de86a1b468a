package auth

import (
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/mrlokans/libris/internal/config"
	"github.com/mrlokans/libris/internal/entities"
)

// Session data keys
const (
	SessionKeyUsername = "username"
	SessionKeyLoginAt  = "login_at"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "libris_session"

func init() {
	gob.Register(time.Time{})
}

// SessionManager wraps scs.SessionManager with library-specific accessors.
// Only the username is stored; the user record is re-read on every request
// so admin changes take effect immediately.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a session manager persisting to the sessions
// table of sqlDB. A nil sqlDB keeps sessions in process memory.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	sm := scs.New()
	if sqlDB == nil {
		sm.Store = memstore.New()
	} else {
		_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
		if err != nil {
			return nil, err
		}
		sm.Store = sqlite3store.New(sqlDB)
	}

	sm.Lifetime = cfg.SessionLifetime
	sm.IdleTimeout = cfg.SessionLifetime / 2

	sm.Cookie.Name = SessionCookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// CreateSession starts an authenticated session for user. Call it only
// after the password has been verified.
func (sm *SessionManager) CreateSession(r *http.Request, user *entities.User) error {
	// Renew token to prevent session fixation
	if err := sm.RenewToken(r.Context()); err != nil {
		return err
	}
	sm.Put(r.Context(), SessionKeyUsername, user.Username)
	sm.Put(r.Context(), SessionKeyLoginAt, time.Now().Unix())
	return nil
}

func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// GetUsername returns the session's username, or "" when not logged in.
func (sm *SessionManager) GetUsername(r *http.Request) string {
	return sm.GetString(r.Context(), SessionKeyUsername)
}

// IsAuthenticated reports whether the session names a user.
func (sm *SessionManager) IsAuthenticated(r *http.Request) bool {
	return sm.GetUsername(r) != ""
}

// LoginAt returns when the session was created, with second precision.
// The zero time means no login is recorded.
func (sm *SessionManager) LoginAt(r *http.Request) time.Time {
	unix := sm.GetInt64(r.Context(), SessionKeyLoginAt)
	if unix == 0 {
		return time.Time{}
	}
	return time.Unix(unix, 0).UTC()
}

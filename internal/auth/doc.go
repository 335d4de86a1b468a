// Package auth provides password hashing, cookie sessions and the gin
// middleware that guards the library API.
//
// Sessions are stored by scs in the sessions table of the application's
// SQLite database and carry only the username. Middleware.Handler re-reads
// the user on every request, so RequireAdmin always sees the current
// is_admin flag.
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<base64-32-bytes>  # CSRF key, generated if empty
//	AUTH_SESSION_LIFETIME=24h
//	AUTH_BCRYPT_COST=12
//	AUTH_SECURE_COOKIES=true               # HTTPS-only cookies
//	AUTH_CSRF_ENABLED=true
//	AUTH_MAX_LOGIN_ATTEMPTS=5
//
// # Usage
//
//	sessions, _ := auth.NewSessionManager(sqlDB, cfg.Auth)
//	mw := auth.NewMiddleware(db.Users, sessions, log)
//	router.Use(sessions.LoadAndSave(), mw.Handler())
//	admin := router.Group("/api/admin", mw.RequireAdmin())
package auth

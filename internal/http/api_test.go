package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/libris/internal/audit"
	"github.com/mrlokans/libris/internal/auth"
	"github.com/mrlokans/libris/internal/config"
	"github.com/mrlokans/libris/internal/database"
	"github.com/mrlokans/libris/internal/entities"
	"github.com/mrlokans/libris/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	db     *database.Database
}

// setupTestDatabase opens a json-driver database in a temp dir and
// returns it with its data dir.
func setupTestDatabase(t *testing.T) (*database.Database, string) {
	t.Helper()
	dir := t.TempDir()
	db, err := database.NewDatabase(config.Storage{
		Driver:       config.StorageDriverJSON,
		DataDir:      dir,
		DatabasePath: filepath.Join(dir, "libris.db"),
	}, bcrypt.MinCost, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, dir
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zap.NewNop()
	db, _ := setupTestDatabase(t)

	auditor := audit.NewService(audit.NewAuditor(filepath.Join(t.TempDir(), "audit"), log), log)
	t.Cleanup(auditor.Wait)

	library := services.NewLibraryService(db.Users, db.Books, db.Requests, db.Stats, nil, auditor, log)

	sessions, err := auth.NewSessionManager(nil, config.Auth{SessionLifetime: time.Hour})
	require.NoError(t, err)
	limiter := auth.NewRateLimiter(auth.RateLimitConfig{
		MaxAttempts:     3,
		WindowDuration:  time.Minute,
		LockoutDuration: time.Minute,
		CleanupInterval: time.Hour,
	})
	t.Cleanup(limiter.Stop)

	router := NewRouter(RouterConfig{
		Library:        library,
		Database:       db,
		Sessions:       sessions,
		AuthMiddleware: auth.NewMiddleware(db.Users, sessions, log),
		RateLimiter:    limiter,
		Log:            log,
		Version:        "test",
	})
	return &testServer{router: router, db: db}
}

// client keeps cookies between requests like a browser would.
type client struct {
	t      *testing.T
	server *testServer
	jar    *cookiejar.Jar
}

var baseURL = &url.URL{Scheme: "http", Host: "library.test", Path: "/"}

func (s *testServer) client(t *testing.T) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, server: s, jar: jar}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range c.jar.Cookies(baseURL) {
		req.AddCookie(cookie)
	}

	rr := httptest.NewRecorder()
	c.server.router.ServeHTTP(rr, req)
	c.jar.SetCookies(baseURL, rr.Result().Cookies())
	return rr
}

func (c *client) login(username, password string) *httptest.ResponseRecorder {
	c.t.Helper()
	return c.do(http.MethodPost, "/api/auth/login", gin.H{"username": username, "password": password})
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func (s *testServer) seedAdmin(t *testing.T) *client {
	t.Helper()
	_, err := s.db.Users.Create(context.Background(), entities.NewUser{
		Username: "admin",
		Password: "admin123",
		Email:    "admin@library.test",
		IsAdmin:  true,
	})
	require.NoError(t, err)
	c := s.client(t)
	require.Equal(t, http.StatusOK, c.login("admin", "admin123").Code)
	return c
}

func (s *testServer) signUp(t *testing.T, username string) *client {
	t.Helper()
	c := s.client(t)
	rr := c.do(http.MethodPost, "/api/auth/signup", gin.H{
		"username": username,
		"password": "password123",
		"email":    username + "@example.com",
		"tags":     []string{"Student"},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.Equal(t, http.StatusOK, c.login(username, "password123").Code)
	return c
}

func (s *testServer) addBook(t *testing.T, admin *client, title string, types ...string) entities.Book {
	t.Helper()
	rr := admin.do(http.MethodPost, "/api/admin/books", gin.H{
		"title":            title,
		"author":           "Author of " + title,
		"genre":            "Novel",
		"period":           "20th century",
		"literature_types": types,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[entities.Book](t, rr)
}

func TestAuthFlow(t *testing.T) {
	s := setupTestServer(t)
	c := s.client(t)

	t.Run("me requires login", func(t *testing.T) {
		rr := c.do(http.MethodGet, "/api/auth/me", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("signup hides the password hash", func(t *testing.T) {
		rr := c.do(http.MethodPost, "/api/auth/signup", gin.H{
			"username": "alice",
			"password": "password123",
			"email":    "alice@example.com",
			"tags":     []string{"Student", "Researcher"},
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		assert.NotContains(t, rr.Body.String(), "password")

		user := decode[UserResponse](t, rr)
		assert.Equal(t, "alice", user.Username)
		assert.False(t, user.IsAdmin)
		assert.Equal(t, []string{"Student", "Researcher"}, user.Tags)
	})

	t.Run("duplicate signup conflicts", func(t *testing.T) {
		rr := c.do(http.MethodPost, "/api/auth/signup", gin.H{
			"username": "alice", "password": "password123", "email": "other@example.com",
		})
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("invalid signup is a bad request", func(t *testing.T) {
		rr := c.do(http.MethodPost, "/api/auth/signup", gin.H{
			"username": "bob", "password": "short", "email": "bob@example.com",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "password must be at least 8 characters")
	})

	t.Run("wrong password", func(t *testing.T) {
		rr := c.login("alice", "nope-nope")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("login then me", func(t *testing.T) {
		rr := c.login("alice", "password123")
		require.Equal(t, http.StatusOK, rr.Code)

		rr = c.do(http.MethodGet, "/api/auth/me", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		me := decode[meResponse](t, rr)
		assert.Equal(t, "alice", me.Username)
		loginAt, err := time.Parse(time.RFC3339, me.LoginAt)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), loginAt, time.Minute)

		visitors, err := s.db.Stats.CurrentMonthVisitors(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, visitors)
	})

	t.Run("logout ends the session", func(t *testing.T) {
		rr := c.do(http.MethodPost, "/api/auth/logout", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		rr = c.do(http.MethodGet, "/api/auth/me", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("tags are public", func(t *testing.T) {
		rr := c.do(http.MethodGet, "/api/tags", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Librarian")
	})
}

func TestLoginRateLimit(t *testing.T) {
	s := setupTestServer(t)
	s.signUp(t, "alice")
	c := s.client(t)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusUnauthorized, c.login("alice", "wrong-password").Code)
	}

	rr := c.login("alice", "password123")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
}

func TestBorrowingFlow(t *testing.T) {
	s := setupTestServer(t)
	admin := s.seedAdmin(t)
	alice := s.signUp(t, "alice")
	bob := s.signUp(t, "bob")
	dune := s.addBook(t, admin, "Dune")

	rr := alice.do(http.MethodGet, "/api/books", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"count":1`)

	rr = alice.do(http.MethodPost, "/api/books/1/borrow", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `You have borrowed \"Dune\"`)

	rr = bob.do(http.MethodPost, "/api/books/1/borrow", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = bob.do(http.MethodPost, "/api/books/1/return", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = alice.do(http.MethodPost, "/api/books/1/return", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	book, err := s.db.Books.FindByID(context.Background(), dune.ID)
	require.NoError(t, err)
	assert.True(t, book.Available)

	rr = alice.do(http.MethodPost, "/api/books/99/borrow", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = alice.do(http.MethodPost, "/api/books/abc/borrow", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.client(t).do(http.MethodGet, "/api/books", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestEBookAndPhysicalBorrow(t *testing.T) {
	s := setupTestServer(t)
	admin := s.seedAdmin(t)
	alice := s.signUp(t, "alice")
	s.addBook(t, admin, "The Great Gatsby")

	rr := alice.do(http.MethodPost, "/api/books/1/ebook", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `attachment; filename="the_great_gatsby.txt"`, rr.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, rr.Body.String(), "Title: The Great Gatsby")

	rr = alice.do(http.MethodPost, "/api/books/1/borrow-physical", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	ticket := decode[services.BorrowTicket](t, rr)
	assert.Equal(t, "LIBRARY_BORROW|book_id:1|user:alice|title:The Great Gatsby", ticket.Token)
	assert.Equal(t, "borrow_qr_1_alice.png", ticket.Filename)

	rr = alice.do(http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	stats := decode[entities.DashboardStats](t, rr)
	assert.Equal(t, 1, stats.EBookDownloads)
	assert.Equal(t, 1, stats.BorrowedBooks)
}

func TestReadingLists(t *testing.T) {
	s := setupTestServer(t)
	admin := s.seedAdmin(t)
	alice := s.signUp(t, "alice")
	s.addBook(t, admin, "Hamlet", "world_czech_18")
	s.addBook(t, admin, "R.U.R.", "czech_20_21")

	assert.Equal(t, http.StatusOK, alice.do(http.MethodPost, "/api/wishlist/2", nil).Code)
	assert.Equal(t, http.StatusConflict, alice.do(http.MethodPost, "/api/wishlist/2", nil).Code)
	assert.Equal(t, http.StatusNotFound, alice.do(http.MethodPost, "/api/wishlist/9", nil).Code)

	rr := alice.do(http.MethodGet, "/api/wishlist", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "R.U.R.")

	assert.Equal(t, http.StatusOK, alice.do(http.MethodDelete, "/api/wishlist/2", nil).Code)
	assert.Equal(t, http.StatusConflict, alice.do(http.MethodDelete, "/api/wishlist/2", nil).Code)

	assert.Equal(t, http.StatusOK, alice.do(http.MethodPost, "/api/maturita/1", nil).Code)
	assert.Equal(t, http.StatusOK, alice.do(http.MethodPost, "/api/maturita/2", nil).Code)

	rr = alice.do(http.MethodGet, "/api/maturita", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var progress struct {
		TotalProgress int `json:"total_progress"`
		TotalRequired int `json:"total_required"`
		Categories    []struct {
			Key   string `json:"key"`
			Count int    `json:"count"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &progress))
	assert.Equal(t, 2, progress.TotalProgress)
	assert.Equal(t, 20, progress.TotalRequired)
	require.Len(t, progress.Categories, 4)
	assert.Equal(t, "world_czech_18", progress.Categories[0].Key)
	assert.Equal(t, 1, progress.Categories[0].Count)
	assert.Equal(t, 1, progress.Categories[3].Count)
}

func TestAdminRoutes(t *testing.T) {
	s := setupTestServer(t)
	admin := s.seedAdmin(t)
	alice := s.signUp(t, "alice")

	t.Run("non-admins are forbidden", func(t *testing.T) {
		rr := alice.do(http.MethodGet, "/api/admin/dashboard", nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		rr = s.client(t).do(http.MethodGet, "/api/admin/dashboard", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("book lifecycle", func(t *testing.T) {
		book := s.addBook(t, admin, "Hamlet", "world_czech_18")
		assert.True(t, book.Available)

		rr := admin.do(http.MethodPost, "/api/admin/books", gin.H{
			"title": "X", "author": "Y", "genre": "Z", "period": "P",
			"literature_types": []string{"poetry"},
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		rr = admin.do(http.MethodPut, "/api/admin/books/1", gin.H{
			"title": "Hamlet", "author": "William Shakespeare", "genre": "Drama", "period": "Renaissance",
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Contains(t, rr.Body.String(), "William Shakespeare")

		require.Equal(t, http.StatusOK, alice.do(http.MethodPost, "/api/wishlist/1", nil).Code)

		rr = admin.do(http.MethodDelete, "/api/admin/books/1", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		user, err := s.db.Users.FindByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.Empty(t, user.Wishlist)

		rr = admin.do(http.MethodDelete, "/api/admin/books/1", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("request review", func(t *testing.T) {
		rr := alice.do(http.MethodPost, "/api/requests", gin.H{"title": "Neuromancer", "author": "William Gibson", "reason": "cyberpunk"})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		req := decode[entities.BookRequest](t, rr)
		assert.Equal(t, entities.RequestStatusPending, req.Status)

		rr = alice.do(http.MethodPost, "/api/requests", gin.H{"title": "No author"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		rr = admin.do(http.MethodGet, "/api/admin/requests", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"count":1`)

		rr = admin.do(http.MethodPost, "/api/admin/requests/1/approve", nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Contains(t, rr.Body.String(), entities.RequestedBookGenre)

		rr = admin.do(http.MethodPost, "/api/admin/requests/1/reject", nil)
		assert.Equal(t, http.StatusConflict, rr.Code)

		rr = admin.do(http.MethodPost, "/api/admin/requests/7/approve", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("dashboard", func(t *testing.T) {
		rr := admin.do(http.MethodGet, "/api/admin/dashboard", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		dashboard := decode[services.AdminDashboard](t, rr)
		assert.Equal(t, 2, dashboard.Stats.TotalUsers)
		assert.Equal(t, 1, dashboard.Stats.ActiveUsers)
		assert.Len(t, dashboard.Books, 1)
		assert.Empty(t, dashboard.PendingRequests)
	})
}

func TestRequestIDHeader(t *testing.T) {
	s := setupTestServer(t)

	rr := s.client(t).do(http.MethodGet, "/ping", nil)
	assert.NotEmpty(t, rr.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr = httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
}

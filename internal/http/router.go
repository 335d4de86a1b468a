package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/libris/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log.Named("http")

	router := gin.New()
	router.Use(RequestID())
	router.Use(RequestLogger(log))
	router.Use(Recovery(log))
	router.Use(auth.SecurityHeadersMiddleware())
	router.Use(auth.StrictTransportSecurityMiddleware(31536000))

	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", auth.CSRFTokenHeader, RequestIDHeader},
			ExposeHeaders:    []string{auth.CSRFTokenHeader, RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// CSRF must run before the session so the session context ends up on
	// top of the request CSRF replaces.
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}
	router.Use(cfg.Sessions.LoadAndSave())
	router.Use(cfg.AuthMiddleware.Handler())

	health := NewHealthController(cfg.Database, cfg.TaskQueue, cfg.Version)
	authController := NewAuthController(cfg.Library, cfg.Sessions, cfg.RateLimiter, log)
	booksController := NewBooksController(cfg.Library, log)
	listsController := NewListsController(cfg.Library, log)
	requestsController := NewRequestsController(cfg.Library, log)
	adminController := NewAdminController(cfg.Library, log)

	requireLogin := cfg.AuthMiddleware.RequireLogin()
	requireAdmin := cfg.AuthMiddleware.RequireAdmin()

	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api := router.Group("/api")
	api.GET("/tags", authController.Tags)

	// Auth endpoints
	api.GET("/auth/csrf", authController.CSRFToken)
	api.POST("/auth/signup", authController.SignUp)
	api.POST("/auth/login", authController.Login)
	api.POST("/auth/logout", authController.Logout)
	api.GET("/auth/me", requireLogin, authController.Me)

	// Catalog and borrowing
	books := api.Group("/books", requireLogin)
	books.GET("", booksController.List)
	books.GET("/:id", booksController.Get)
	books.POST("/:id/borrow", booksController.Borrow)
	books.POST("/:id/return", booksController.Return)
	books.POST("/:id/ebook", booksController.EBook)
	books.POST("/:id/borrow-physical", booksController.BorrowPhysical)

	// Reading lists
	wishlist := api.Group("/wishlist", requireLogin)
	wishlist.GET("", listsController.Wishlist)
	wishlist.POST("/:id", listsController.AddToWishlist)
	wishlist.DELETE("/:id", listsController.RemoveFromWishlist)

	maturita := api.Group("/maturita", requireLogin)
	maturita.GET("", listsController.Maturita)
	maturita.POST("/:id", listsController.AddToMaturita)
	maturita.DELETE("/:id", listsController.RemoveFromMaturita)

	api.POST("/requests", requireLogin, requestsController.Create)
	api.GET("/stats", requireLogin, requestsController.Stats)

	// Admin endpoints
	admin := api.Group("/admin", requireAdmin)
	admin.GET("/dashboard", adminController.Dashboard)
	admin.POST("/books", adminController.AddBook)
	admin.PUT("/books/:id", adminController.EditBook)
	admin.DELETE("/books/:id", adminController.DeleteBook)
	admin.GET("/requests", adminController.PendingRequests)
	admin.POST("/requests/:id/approve", adminController.ApproveRequest)
	admin.POST("/requests/:id/reject", adminController.RejectRequest)

	return router
}

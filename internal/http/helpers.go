package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/libris/internal/database/books"
	"github.com/mrlokans/libris/internal/database/requests"
	"github.com/mrlokans/libris/internal/database/users"
	"github.com/mrlokans/libris/internal/entities"
	"github.com/mrlokans/libris/internal/services"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// UserResponse is the public view of a user; the password hash never leaves
// the server.
type UserResponse struct {
	ID           int      `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	IsAdmin      bool     `json:"is_admin"`
	Tags         []string `json:"tags"`
	Wishlist     []int    `json:"wishlist"`
	MaturitaList []int    `json:"maturita_list"`
	CreatedAt    string   `json:"created_at"`
}

func newUserResponse(u *entities.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		IsAdmin:      u.IsAdmin,
		Tags:         u.Tags,
		Wishlist:     u.Wishlist,
		MaturitaList: u.MaturitaList,
		CreatedAt:    u.CreatedAt.Format(time.RFC3339),
	}
}

// --- Error Response Helpers ---

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 response without
// exposing the cause.
func respondInternalError(c *gin.Context, log *zap.Logger, err error, context string) {
	log.Error("internal error",
		zap.String("context", context),
		zap.String("request_id", requestID(c)),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func respondSuccess(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message, Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondServiceError maps service and repository sentinels to status
// codes. Anything unrecognised is a 500.
func respondServiceError(c *gin.Context, log *zap.Logger, err error, context string) {
	switch {
	case errors.Is(err, books.ErrNotFound):
		respondNotFound(c, "book")
	case errors.Is(err, users.ErrNotFound):
		respondNotFound(c, "user")
	case errors.Is(err, requests.ErrNotFound):
		respondNotFound(c, "book request")
	case errors.Is(err, services.ErrInvalidInput):
		respondBadRequest(c, err.Error())
	case errors.Is(err, users.ErrUserExists):
		respondError(c, http.StatusConflict, "username already exists")
	case errors.Is(err, users.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, services.ErrNotBorrower):
		respondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrBookUnavailable),
		errors.Is(err, services.ErrBookNotBorrowed),
		errors.Is(err, services.ErrRequestNotPending):
		respondError(c, http.StatusConflict, err.Error())
	default:
		respondInternalError(c, log, err, context)
	}
}

// --- Parameter Parsing ---

// parseIDParam extracts a positive integer id from the URL. On failure it
// responds with 400 and returns false.
func parseIDParam(c *gin.Context, paramName string) (int, bool) {
	id, err := strconv.Atoi(c.Param(paramName))
	if err != nil || id < 1 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return id, true
}

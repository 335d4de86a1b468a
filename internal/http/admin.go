package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/libris/internal/auth"
	"github.com/mrlokans/libris/internal/services"
)

// AdminController serves catalog management and request review.
// Every route is mounted behind RequireAdmin.
type AdminController struct {
	admin AdminService
	log   *zap.Logger
}

func NewAdminController(admin AdminService, log *zap.Logger) *AdminController {
	return &AdminController{admin: admin, log: log}
}

func (ac *AdminController) Dashboard(c *gin.Context) {
	dashboard, err := ac.admin.AdminDashboard(c.Request.Context())
	if err != nil {
		respondInternalError(c, ac.log, err, "admin dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (ac *AdminController) AddBook(c *gin.Context) {
	var in services.BookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	book, err := ac.admin.AddBook(c.Request.Context(), auth.Username(c), in)
	if err != nil {
		respondServiceError(c, ac.log, err, "add book")
		return
	}
	respondCreated(c, book)
}

func (ac *AdminController) EditBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var in services.BookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	book, err := ac.admin.EditBook(c.Request.Context(), auth.Username(c), id, in)
	if err != nil {
		respondServiceError(c, ac.log, err, "edit book")
		return
	}
	respondSuccess(c, "Book updated", book)
}

func (ac *AdminController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	book, err := ac.admin.DeleteBook(c.Request.Context(), auth.Username(c), id)
	if err != nil {
		respondServiceError(c, ac.log, err, "delete book")
		return
	}
	respondSuccess(c, "Book deleted", book)
}

func (ac *AdminController) PendingRequests(c *gin.Context) {
	reqs, err := ac.admin.PendingRequests(c.Request.Context())
	if err != nil {
		respondInternalError(c, ac.log, err, "pending requests")
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs, "count": len(reqs)})
}

func (ac *AdminController) ApproveRequest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	req, book, err := ac.admin.ApproveRequest(c.Request.Context(), auth.Username(c), id)
	if err != nil {
		respondServiceError(c, ac.log, err, "approve request")
		return
	}
	respondSuccess(c, "Request approved", gin.H{"request": req, "book": book})
}

func (ac *AdminController) RejectRequest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	req, err := ac.admin.RejectRequest(c.Request.Context(), auth.Username(c), id)
	if err != nil {
		respondServiceError(c, ac.log, err, "reject request")
		return
	}
	respondSuccess(c, "Request rejected", req)
}

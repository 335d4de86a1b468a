package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/libris/internal/auth"
	"github.com/mrlokans/libris/internal/services"
)

type RequestsController struct {
	requests RequestService
	log      *zap.Logger
}

func NewRequestsController(requests RequestService, log *zap.Logger) *RequestsController {
	return &RequestsController{requests: requests, log: log}
}

// Create files a request for a book the library does not hold.
func (rc *RequestsController) Create(c *gin.Context) {
	var in services.RequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	req, err := rc.requests.RequestBook(c.Request.Context(), auth.Username(c), in)
	if err != nil {
		respondServiceError(c, rc.log, err, "request book")
		return
	}
	respondCreated(c, req)
}

func (rc *RequestsController) Stats(c *gin.Context) {
	stats, err := rc.requests.Dashboard(c.Request.Context())
	if err != nil {
		respondInternalError(c, rc.log, err, "stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

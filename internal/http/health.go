package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/libris/internal/database"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db      *database.Database
	tasks   TaskQueue
	version string
}

// NewHealthController builds the health endpoint. tasks is nil when the
// task queue is disabled.
func NewHealthController(db *database.Database, tasks TaskQueue, version string) *HealthController {
	return &HealthController{
		db:      db,
		tasks:   tasks,
		version: version,
	}
}

// Status pings the SQLite connection and loads the stats document, which
// catches a corrupt store as well as a dead connection.
func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.db == nil {
		checks["database"] = "not configured"
		status = "unhealthy"
	} else {
		if sqlDB, err := h.db.SQLDB(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}

		if _, err := h.db.Stats.Get(c.Request.Context()); err != nil {
			checks["storage"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["storage"] = "ok"
		}
	}

	if h.tasks == nil {
		checks["task_queue"] = "disabled"
	} else if err := h.tasks.Ping(c.Request.Context()); err != nil {
		checks["task_queue"] = "error: " + err.Error()
		status = "unhealthy"
	} else {
		checks["task_queue"] = "ok"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	c.IndentedJSON(statusCode, health)
}

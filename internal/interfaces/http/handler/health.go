package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/donortrack/backend/internal/infrastructure/logger"
	"github.com/donortrack/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness probe
type HealthHandler struct {
	BaseHandler
	db      Pinger
	name    string
	version string
	started time.Time
	now     func() time.Time
}

// NewHealthHandler creates a health handler; uptime counts from now
func NewHealthHandler(db Pinger, name, version string) *HealthHandler {
	return &HealthHandler{db: db, name: name, version: version, started: time.Now(), now: time.Now}
}

// HealthStatus is the probe body
type HealthStatus struct {
	Status   string `json:"status" example:"healthy"`
	Name     string `json:"name" example:"donortrack"`
	Version  string `json:"version" example:"1.0.0"`
	Time     string `json:"time" example:"2024-01-01T00:00:00Z"`
	Uptime   string `json:"uptime" example:"1h2m3s"`
	Database string `json:"database" example:"ok"`
}

// Health godoc
// @ID           health
// @Summary      Health check
// @Description  Pings the database; 503 when it is unreachable
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[HealthStatus]
// @Failure      503 {object} ErrorResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	now := h.now()
	status := HealthStatus{
		Status:   "healthy",
		Name:     h.name,
		Version:  h.version,
		Time:     now.UTC().Format(time.RFC3339),
		Uptime:   now.Sub(h.started).Truncate(time.Second).String(),
		Database: "ok",
	}
	if err := h.db.Ping(ctx); err != nil {
		logger.L(c.Request.Context()).Warn("Health check failed", zap.Error(err))
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Database is unreachable")
		return
	}
	h.Success(c, status)
}

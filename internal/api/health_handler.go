package api

import (
	"context"
	"net/http"

	"EventSync/internal/service"

	"github.com/gin-gonic/gin"
)

// SourceChecker probes configured sources
type SourceChecker interface {
	CheckSources(ctx context.Context) []service.SourceHealth
}

type HealthHandler struct {
	checker SourceChecker
}

func NewHealthHandler(checker SourceChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Health GET /health; 503 when any source is unreachable
func (h *HealthHandler) Health(c *gin.Context) {
	sources := h.checker.CheckSources(c.Request.Context())
	status, code := "ok", http.StatusOK
	for _, s := range sources {
		if !s.Healthy {
			status, code = "degraded", http.StatusServiceUnavailable
			break
		}
	}
	c.JSON(code, gin.H{"status": status, "sources": sources})
}

package handler

import (
	"net/http"
	"time"

	"skill_swap/internal/config"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	environment string
	startedAt   time.Time
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		environment: cfg.Environment,
		startedAt:   time.Now(),
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"uptime":      time.Since(h.startedAt).Round(time.Second).String(),
		"environment": h.environment,
	})
}

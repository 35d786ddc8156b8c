// Package handlers provides HTTP handlers for the widget host API
package handlers

import (
	"net/http"
	"time"

	"github.com/fieldstack/widgethost-go/internal/application/services"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/space"
	"github.com/gin-gonic/gin"
)

// HealthHandlers exposes liveness and pool state
type HealthHandlers struct {
	spaceManager  *space.Manager
	renderService *services.RenderService
	startedAt     time.Time
}

// NewHealthHandlers creates health handlers
func NewHealthHandlers(spaceManager *space.Manager, renderService *services.RenderService) *HealthHandlers {
	return &HealthHandlers{
		spaceManager:  spaceManager,
		renderService: renderService,
		startedAt:     time.Now(),
	}
}

// Health reports process health and basic pool statistics
func (h *HealthHandlers) Health(c *gin.Context) {
	activeSpaces, err := h.spaceManager.GetActiveSpaceCount()
	if err != nil {
		activeSpaces = -1
	}

	payload := gin.H{
		"status":         "ok",
		"uptime":         time.Since(h.startedAt).String(),
		"activeSpaces":   activeSpaces,
		"renderSessions": h.renderService.SessionCount(),
		"databasePools":  space.GetPoolStats(),
	}
	if c.Query("detailed") == "true" {
		payload["connections"] = space.GetConnectionPoolInfo()
	}

	c.JSON(http.StatusOK, payload)
}

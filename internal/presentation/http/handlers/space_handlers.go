// Package handlers provides HTTP handlers for the widget host API
package handlers

import (
	"net/http"

	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/space"
	"github.com/gin-gonic/gin"
)

// RegisterSpaceRequest defines the body for registering a new space
type RegisterSpaceRequest struct {
	SpaceID string `json:"spaceId" binding:"required"`
}

// SpaceHandlers contains space provisioning and registry HTTP handlers
type SpaceHandlers struct {
	spaceManager *space.Manager
	logger       *logging.ChanneledLogger
}

// NewSpaceHandlers creates space handlers with injected dependencies
func NewSpaceHandlers(spaceManager *space.Manager, logger *logging.ChanneledLogger) *SpaceHandlers {
	return &SpaceHandlers{
		spaceManager: spaceManager,
		logger:       logger,
	}
}

// ListSpaces returns the space registry with per-space status
func (h *SpaceHandlers) ListSpaces(c *gin.Context) {
	registry := h.spaceManager.GetDetector().GetRegistry()
	if registry == nil {
		c.JSON(http.StatusOK, gin.H{"spaces": []any{}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"spaces": registry.Spaces})
}

// RegisterSpace provisions a new space and refreshes the registry
func (h *SpaceHandlers) RegisterSpace(c *gin.Context) {
	var req RegisterSpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "spaceId is required"})
		return
	}

	if err := space.RegisterSpace(req.SpaceID); err != nil {
		h.logger.Space().Error("Space registration failed", "spaceId", req.SpaceID, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register space"})
		return
	}

	if err := h.spaceManager.GetDetector().RefreshRegistry(); err != nil {
		h.logger.Space().Warn("Registry refresh after registration failed", "error", err.Error())
	}

	h.logger.Space().Info("Space registered", "spaceId", req.SpaceID)
	c.JSON(http.StatusCreated, gin.H{"spaceId": req.SpaceID, "status": "registered"})
}

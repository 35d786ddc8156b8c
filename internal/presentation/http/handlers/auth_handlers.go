// Package handlers provides HTTP handlers for the widget host API
package handlers

import (
	"net/http"

	"github.com/fieldstack/widgethost-go/internal/application/services"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/performance"
	"github.com/fieldstack/widgethost-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// LoginRequest defines the body for admin authentication
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// AuthHandlers contains authentication HTTP handlers
type AuthHandlers struct {
	authService *services.AuthService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAuthHandlers creates auth handlers with injected dependencies
func NewAuthHandlers(authService *services.AuthService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Login validates admin credentials and issues a registry write token
func (h *AuthHandlers) Login(c *gin.Context) {
	spaceCtx, exists := middleware.GetSpaceContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "space context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("admin_login_request", spaceCtx.SpaceID)
	defer marker.Complete()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	result := h.authService.AuthenticateAdmin(req.Password, spaceCtx)
	if !result.Success {
		marker.SetSuccess(false)
		c.JSON(http.StatusUnauthorized, result)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, result)
}

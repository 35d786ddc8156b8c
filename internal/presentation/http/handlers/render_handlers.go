// Package handlers provides HTTP handlers for the widget host API
package handlers

import (
	"net/http"

	"github.com/fieldstack/widgethost-go/internal/application/services"
	"github.com/fieldstack/widgethost-go/internal/domain/entities/editor"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/performance"
	"github.com/fieldstack/widgethost-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// CreateSessionRequest defines the body for opening a render session
type CreateSessionRequest struct {
	User editor.User `json:"user" binding:"required"`
}

// RenderHandlers contains render session and frame connection handlers
type RenderHandlers struct {
	renderService *services.RenderService
	logger        *logging.ChanneledLogger
	perfTracker   *performance.Tracker
	upgrader      websocket.Upgrader
}

// NewRenderHandlers creates render handlers with injected dependencies
func NewRenderHandlers(renderService *services.RenderService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *RenderHandlers {
	return &RenderHandlers{
		renderService: renderService,
		logger:        logger,
		perfTracker:   perfTracker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin is enforced by the domain validation middleware
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// CreateSession opens a render session and returns its frame token
func (h *RenderHandlers) CreateSession(c *gin.Context) {
	spaceCtx, exists := middleware.GetSpaceContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "space context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("create_render_session_request", spaceCtx.SpaceID)
	defer marker.Complete()

	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user is required"})
		return
	}

	session, token, err := h.renderService.CreateSession(spaceCtx, req.User)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusCreated, gin.H{
		"sessionId": session.ID,
		"token":     token,
	})
}

// CloseSession tears down a render session
func (h *RenderHandlers) CloseSession(c *gin.Context) {
	h.renderService.CloseSession(c.Param("sessionId"))
	c.Status(http.StatusNoContent)
}

// AttachFrame upgrades the connection to a websocket and joins it to the
// session's frame hub. The token travels as a query parameter because the
// browser WebSocket API cannot set headers.
func (h *RenderHandlers) AttachFrame(c *gin.Context) {
	spaceCtx, exists := middleware.GetSpaceContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "space context not found"})
		return
	}

	sessionID := c.Param("sessionId")
	claims, err := h.renderService.ValidateToken(c.Query("token"), spaceCtx)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid render token"})
		return
	}
	if claims.SessionID != sessionID {
		c.JSON(http.StatusForbidden, gin.H{"error": "token issued for another session"})
		return
	}

	if h.renderService.GetSession(sessionID) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "render session not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Frame().Warn("Websocket upgrade failed", "sessionId", sessionID, "error", err)
		return
	}

	if err := h.renderService.AttachFrame(sessionID, conn); err != nil {
		conn.Close()
		return
	}

	h.logger.Frame().Debug("Frame attached", "sessionId", sessionID, "spaceId", spaceCtx.SpaceID)
}

// Package handlers provides HTTP handlers for the widget host API
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/fieldstack/widgethost-go/internal/application/services"
	entities "github.com/fieldstack/widgethost-go/internal/domain/entities/registry"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/performance"
	"github.com/fieldstack/widgethost-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// ExtensionHandlers contains all extension registry HTTP handlers
type ExtensionHandlers struct {
	registryService *services.RegistryService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewExtensionHandlers creates extension handlers with injected dependencies
func NewExtensionHandlers(registryService *services.RegistryService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ExtensionHandlers {
	return &ExtensionHandlers{
		registryService: registryService,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

// ListExtensions returns the space's extensions. The sys.id[in] query
// parameter filters to a comma separated id set, matching what the
// widget loader's batch fetch sends.
func (h *ExtensionHandlers) ListExtensions(c *gin.Context) {
	start := time.Now()
	spaceCtx, exists := middleware.GetSpaceContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "space context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("list_extensions_request", spaceCtx.SpaceID)
	defer marker.Complete()

	var ids []string
	if filter := c.Query("sys.id[in]"); filter != "" {
		ids = strings.Split(filter, ",")
	}

	extensions, err := h.registryService.ListExtensions(spaceCtx, ids)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if extensions == nil {
		extensions = []entities.Extension{}
	}

	h.logger.Registry().Debug("List extensions request completed",
		"spaceId", spaceCtx.SpaceID, "count", len(extensions), "duration", time.Since(start))
	marker.SetSuccess(true)

	c.JSON(http.StatusOK, gin.H{
		"items": extensions,
		"total": len(extensions),
	})
}

// GetExtension returns a single extension by id
func (h *ExtensionHandlers) GetExtension(c *gin.Context) {
	spaceCtx, exists := middleware.GetSpaceContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "space context not found"})
		return
	}

	id := c.Param("extensionId")
	extensions, err := h.registryService.ListExtensions(spaceCtx, []string{id})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(extensions) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "extension not found"})
		return
	}

	c.JSON(http.StatusOK, extensions[0])
}

// SaveExtension creates or replaces an extension record
func (h *ExtensionHandlers) SaveExtension(c *gin.Context) {
	spaceCtx, exists := middleware.GetSpaceContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "space context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("save_extension_request", spaceCtx.SpaceID)
	defer marker.Complete()

	var ext entities.Extension
	if err := c.ShouldBindJSON(&ext); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid extension payload"})
		return
	}
	if id := c.Param("extensionId"); id != "" {
		ext.Sys.ID = id
	}

	if err := h.registryService.SaveExtension(spaceCtx, &ext); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, ext)
}

// DeleteExtension removes an extension record
func (h *ExtensionHandlers) DeleteExtension(c *gin.Context) {
	spaceCtx, exists := middleware.GetSpaceContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "space context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("delete_extension_request", spaceCtx.SpaceID)
	defer marker.Complete()

	if err := h.registryService.DeleteExtension(spaceCtx, c.Param("extensionId")); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.Status(http.StatusNoContent)
}

// Package handlers provides HTTP handlers for the widget host API
package handlers

import (
	"net/http"
	"time"

	"github.com/fieldstack/widgethost-go/internal/application/services"
	entities "github.com/fieldstack/widgethost-go/internal/domain/entities/registry"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/performance"
	"github.com/fieldstack/widgethost-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// InstallAppRequest defines the body for installing an app
type InstallAppRequest struct {
	Parameters map[string]any `json:"parameters"`
}

// AppHandlers contains app definition and installation HTTP handlers
type AppHandlers struct {
	registryService *services.RegistryService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewAppHandlers creates app handlers with injected dependencies
func NewAppHandlers(registryService *services.RegistryService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AppHandlers {
	return &AppHandlers{
		registryService: registryService,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

// ListAppInstallations returns every installation with the referenced
// definitions in the includes block, the shape the widget loader consumes.
func (h *AppHandlers) ListAppInstallations(c *gin.Context) {
	start := time.Now()
	spaceCtx, exists := middleware.GetSpaceContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "space context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("list_installations_request", spaceCtx.SpaceID)
	defer marker.Complete()

	list, err := h.registryService.ListAppInstallations(spaceCtx)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := list.Items
	if items == nil {
		items = []entities.AppInstallation{}
	}
	definitions := make([]entities.AppDefinition, 0, len(list.Definitions))
	for _, definition := range list.Definitions {
		definitions = append(definitions, definition)
	}

	h.logger.Registry().Debug("List installations request completed",
		"spaceId", spaceCtx.SpaceID, "count", len(items), "duration", time.Since(start))
	marker.SetSuccess(true)

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"includes": gin.H{
			"AppDefinition": definitions,
		},
	})
}

// SaveAppDefinition creates or replaces an app definition record
func (h *AppHandlers) SaveAppDefinition(c *gin.Context) {
	spaceCtx, exists := middleware.GetSpaceContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "space context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("save_definition_request", spaceCtx.SpaceID)
	defer marker.Complete()

	var definition entities.AppDefinition
	if err := c.ShouldBindJSON(&definition); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid app definition payload"})
		return
	}
	if id := c.Param("appDefinitionId"); id != "" {
		definition.Sys.ID = id
	}

	if err := h.registryService.SaveAppDefinition(spaceCtx, &definition); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, definition)
}

// InstallApp records that an app definition is installed into the space
func (h *AppHandlers) InstallApp(c *gin.Context) {
	spaceCtx, exists := middleware.GetSpaceContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "space context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("install_app_request", spaceCtx.SpaceID)
	defer marker.Complete()

	var req InstallAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid installation payload"})
		return
	}

	installation, err := h.registryService.InstallApp(spaceCtx, c.Param("appDefinitionId"), req.Parameters)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusCreated, installation)
}

// UninstallApp removes an app installation from the space
func (h *AppHandlers) UninstallApp(c *gin.Context) {
	spaceCtx, exists := middleware.GetSpaceContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "space context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("uninstall_app_request", spaceCtx.SpaceID)
	defer marker.Complete()

	if err := h.registryService.UninstallApp(spaceCtx, c.Param("appDefinitionId")); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.Status(http.StatusNoContent)
}

// Package handlers provides HTTP handlers for the widget host API
package handlers

import (
	"net/http"

	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/performance"
	"github.com/fieldstack/widgethost-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// MarketplaceHandlers serves marketplace listing metadata and icons
type MarketplaceHandlers struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewMarketplaceHandlers creates marketplace handlers with injected dependencies
func NewMarketplaceHandlers(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *MarketplaceHandlers {
	return &MarketplaceHandlers{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetAppListing returns marketplace display metadata for one app definition.
// Unlisted apps still get a response built from the fallbacks.
func (h *MarketplaceHandlers) GetAppListing(c *gin.Context) {
	spaceCtx, ok := middleware.GetSpaceContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Space context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("marketplace_get_listing", spaceCtx.SpaceID)
	defer marker.Complete()

	appDefinitionID := c.Param("appDefinitionId")
	if err := spaceCtx.Marketplace.Prefetch(c.Request.Context()); err != nil {
		h.logger.Marketplace().Warn("Marketplace catalog unavailable, serving fallbacks",
			"spaceId", spaceCtx.SpaceID, "error", err.Error())
	}

	c.JSON(http.StatusOK, gin.H{
		"appDefinitionId": appDefinitionID,
		"slug":            spaceCtx.Marketplace.GetSlug(appDefinitionID),
		"iconUrl":         spaceCtx.Marketplace.GetIconURL(appDefinitionID),
	})
}

// GetAppIcon serves the cached webp thumbnail for an app's marketplace icon
func (h *MarketplaceHandlers) GetAppIcon(c *gin.Context) {
	spaceCtx, ok := middleware.GetSpaceContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Space context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("marketplace_get_icon", spaceCtx.SpaceID)
	defer marker.Complete()

	appDefinitionID := c.Param("appDefinitionId")
	if err := spaceCtx.Marketplace.Prefetch(c.Request.Context()); err != nil {
		h.logger.Marketplace().Warn("Marketplace catalog unavailable, serving fallback icon",
			"spaceId", spaceCtx.SpaceID, "error", err.Error())
	}

	iconURL := spaceCtx.Marketplace.GetIconURL(appDefinitionID)
	thumbPath, err := spaceCtx.Icons.Thumbnail(appDefinitionID, iconURL)
	if err != nil {
		marker.SetError(err)
		h.logger.Marketplace().Warn("Icon thumbnail generation failed, redirecting to source",
			"spaceId", spaceCtx.SpaceID, "app", appDefinitionID, "error", err.Error())
		c.Redirect(http.StatusFound, iconURL)
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.File(thumbPath)
}

// Package middleware provides HTTP middleware for the presentation layer.
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/performance"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/space"
	"github.com/gin-gonic/gin"
)

// SpaceMiddleware creates middleware that extracts space information and creates a full space context.
func SpaceMiddleware(spaceManager *space.Manager, perfTracker *performance.Tracker) gin.HandlerFunc {
	logger := spaceManager.GetLogger()

	return func(c *gin.Context) {
		start := time.Now()
		marker := perfTracker.StartOperation("middleware_space_resolution", "unknown")
		defer marker.Complete()

		spaceID := c.GetHeader("X-Space-ID")
		if spaceID == "" {
			spaceID = c.Query("spaceId") // Fallback for websocket connections
		}

		marker.AddMetadata("path", c.Request.URL.Path)
		marker.AddMetadata("method", c.Request.Method)
		if spaceID != "" {
			marker.SpaceID = spaceID
		}

		spaceCtx, err := spaceManager.GetContext(c)
		if err != nil {
			errMsg := fmt.Sprintf("space '%s' not found or failed to initialize", spaceID)
			logger.Space().Error(errMsg, "error", err, "spaceId", spaceID)
			marker.SetSuccess(false)
			marker.SetError(err)
			c.JSON(http.StatusNotFound, gin.H{"error": "space not found"})
			c.Abort()
			return
		}

		logger.Space().Debug("Space context resolved successfully",
			"spaceId", spaceCtx.SpaceID,
			"environmentId", spaceCtx.EnvironmentID,
			"duration", time.Since(start),
			"database", spaceCtx.GetDatabaseInfo(),
		)
		marker.SetSuccess(true)

		c.Set("space", spaceCtx)

		c.Next()
	}
}

// GetSpaceContext retrieves the space context from gin context.
func GetSpaceContext(c *gin.Context) (*space.Context, bool) {
	spaceCtx, exists := c.Get("space")
	if !exists {
		return nil, false
	}

	ctx, ok := spaceCtx.(*space.Context)
	return ctx, ok
}

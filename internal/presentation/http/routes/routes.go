// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/fieldstack/widgethost-go/internal/application/container"
	"github.com/fieldstack/widgethost-go/internal/presentation/http/handlers"
	"github.com/fieldstack/widgethost-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Initialize handlers
	extensionHandlers := handlers.NewExtensionHandlers(container.RegistryService, container.Logger, container.PerfTracker)
	appHandlers := handlers.NewAppHandlers(container.RegistryService, container.Logger, container.PerfTracker)
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.Logger, container.PerfTracker)
	renderHandlers := handlers.NewRenderHandlers(container.RenderService, container.Logger, container.PerfTracker)
	marketplaceHandlers := handlers.NewMarketplaceHandlers(container.Logger, container.PerfTracker)
	spaceHandlers := handlers.NewSpaceHandlers(container.SpaceManager, container.Logger)
	healthHandlers := handlers.NewHealthHandlers(container.SpaceManager, container.RenderService)

	r.GET("/health", healthHandlers.Health)

	// API routes with space middleware
	api := r.Group("/api/v1")
	api.Use(middleware.SpaceMiddleware(container.SpaceManager, container.PerfTracker))
	api.Use(middleware.DomainValidationMiddleware(container.SpaceManager))
	{
		// Authentication
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandlers.Login)
		}

		// Registry reads, consumed by the widget loader's batch fetches
		api.GET("/extensions", extensionHandlers.ListExtensions)
		api.GET("/extensions/:extensionId", extensionHandlers.GetExtension)
		api.GET("/app_installations", appHandlers.ListAppInstallations)

		// Registry writes, admin token required. Writes evict loader cache.
		admin := api.Group("")
		admin.Use(middleware.AdminAuthMiddleware(container.AuthService))
		{
			admin.POST("/extensions", extensionHandlers.SaveExtension)
			admin.PUT("/extensions/:extensionId", extensionHandlers.SaveExtension)
			admin.DELETE("/extensions/:extensionId", extensionHandlers.DeleteExtension)

			admin.PUT("/app_definitions/:appDefinitionId", appHandlers.SaveAppDefinition)
			admin.PUT("/app_installations/:appDefinitionId", appHandlers.InstallApp)
			admin.DELETE("/app_installations/:appDefinitionId", appHandlers.UninstallApp)

			admin.GET("/spaces", spaceHandlers.ListSpaces)
			admin.POST("/spaces", spaceHandlers.RegisterSpace)
		}

		// Marketplace listing metadata and cached icon thumbnails
		marketplace := api.Group("/marketplace")
		{
			marketplace.GET("/apps/:appDefinitionId", marketplaceHandlers.GetAppListing)
			marketplace.GET("/apps/:appDefinitionId/icon", marketplaceHandlers.GetAppIcon)
		}

		// Render sessions and frame connections
		render := api.Group("/render")
		{
			render.POST("/sessions", renderHandlers.CreateSession)
			render.DELETE("/sessions/:sessionId", renderHandlers.CloseSession)
			render.GET("/sessions/:sessionId/frames", renderHandlers.AttachFrame)
		}
	}

	// CMA-shaped aliases for registry reads, matching the paths the
	// loader's HTTP client builds when REGISTRY_BASE_URL is configured.
	cma := r.Group("/spaces/:spaceId/environments/:environmentId")
	cma.Use(pathIdentifiers(), middleware.SpaceMiddleware(container.SpaceManager, container.PerfTracker))
	{
		cma.GET("/extensions", extensionHandlers.ListExtensions)
		cma.GET("/app_installations", appHandlers.ListAppInstallations)
	}

	return r
}

// pathIdentifiers copies space and environment route params into the
// headers the detector reads, so both route shapes share one resolution
// path.
func pathIdentifiers() gin.HandlerFunc {
	return func(c *gin.Context) {
		if spaceID := c.Param("spaceId"); spaceID != "" {
			c.Request.Header.Set("X-Space-ID", spaceID)
		}
		if environmentID := c.Param("environmentId"); environmentID != "" {
			c.Request.Header.Set("X-Environment-ID", environmentID)
		}
		c.Next()
	}
}

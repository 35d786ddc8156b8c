// Package space provides space context management for multi-space support.
package space

import (
	"path/filepath"

	"github.com/fieldstack/widgethost-go/internal/infrastructure/loading"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/media"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/performance"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/persistence/registry"
)

// Context holds everything scoped to one space and environment: the
// configuration, the registry database, and the widget loader built on it.
type Context struct {
	SpaceID       string
	EnvironmentID string
	Config        *Config
	Database      *Database
	Status        string
	Loader        *loading.WidgetLoader
	Marketplace   *loading.MarketplaceProvider
	Icons         *media.IconCache
	Logger        *logging.ChanneledLogger
	Perf          *performance.Tracker
}

// Close cleans up the space context
func (ctx *Context) Close() error {
	if ctx.Database != nil {
		return ctx.Database.Close()
	}
	return nil
}

// GetSpaceID returns the space ID for this context
func (ctx *Context) GetSpaceID() string {
	return ctx.SpaceID
}

// GetConfig returns the space configuration
func (ctx *Context) GetConfig() *Config {
	return ctx.Config
}

// GetDatabase returns the space database connection
func (ctx *Context) GetDatabase() *Database {
	return ctx.Database
}

// GetStatus returns the space status
func (ctx *Context) GetStatus() string {
	return ctx.Status
}

// IsActive returns true if the space is active
func (ctx *Context) IsActive() bool {
	return ctx.Status == "active"
}

// GetDatabaseInfo returns database connection information for logging
func (ctx *Context) GetDatabaseInfo() string {
	if ctx.Database != nil {
		return ctx.Database.GetConnectionInfo()
	}
	return "no database connection"
}

// =============================================================================
// Repository Factory Methods
// =============================================================================

// ExtensionRepo returns an extension repository instance
func (ctx *Context) ExtensionRepo() *registry.ExtensionRepository {
	return registry.NewExtensionRepository(ctx.Database.Conn, ctx.Logger)
}

// AppRepo returns an app definition and installation repository instance
func (ctx *Context) AppRepo() *registry.AppRepository {
	return registry.NewAppRepository(ctx.Database.Conn, ctx.Logger)
}

// registryAPI picks the loader's registry source. Spaces that configure
// a REGISTRY_BASE_URL go through the HTTP API; everyone else reads the
// local store directly.
func (ctx *Context) registryAPI() loading.RegistryAPI {
	if ctx.Config.RegistryBaseURL != "" {
		return loading.NewRegistryClient(ctx.Config.RegistryBaseURL, ctx.SpaceID, ctx.EnvironmentID, ctx.Config.RegistryToken)
	}
	return registry.NewStoreAPI(ctx.ExtensionRepo(), ctx.AppRepo())
}

// initLoader builds the context's widget loader and its collaborators.
// Called once during context creation.
func (ctx *Context) initLoader() {
	ctx.Marketplace = loading.NewMarketplaceProvider(ctx.Logger)
	ctx.Icons = media.NewIconCache(filepath.Join(ctx.Config.MediaDir, "icons"))
	ctx.Loader = loading.NewWidgetLoader(ctx.SpaceID, ctx.registryAPI(), ctx.Marketplace, ctx.Logger, ctx.Perf)
}

// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/fieldstack/widgethost-go/internal/application/services"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/email"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/performance"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/space"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application Services (stateless singletons)
	AuthService     *services.AuthService
	RegistryService *services.RegistryService
	RenderService   *services.RenderService

	// Infrastructure Dependencies
	SpaceManager *space.Manager
	Logger       *logging.ChanneledLogger
	PerfTracker  *performance.Tracker
	EmailService email.Service
}

// NewContainer creates and wires all singleton services. The email service
// may be nil; install notifications are then skipped.
func NewContainer(spaceManager *space.Manager, logger *logging.ChanneledLogger, perfTracker *performance.Tracker, emailSvc email.Service) *Container {
	return &Container{
		AuthService:     services.NewAuthService(logger, perfTracker),
		RegistryService: services.NewRegistryService(logger, perfTracker, emailSvc),
		RenderService:   services.NewRenderService(logger, perfTracker),

		SpaceManager: spaceManager,
		Logger:       logger,
		PerfTracker:  perfTracker,
		EmailService: emailSvc,
	}
}

// Close tears down stateful services
func (c *Container) Close() {
	if c.RenderService != nil {
		c.RenderService.Close()
	}
	if c.SpaceManager != nil {
		c.SpaceManager.Close()
	}
}

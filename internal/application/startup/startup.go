// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fieldstack/widgethost-go/internal/application/container"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/email"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/performance"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/space"
	"github.com/fieldstack/widgethost-go/internal/presentation/http/server"
	"github.com/fieldstack/widgethost-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// Initialize performs the complete widget host startup sequence
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	log.Println("FieldStack widget host starting...")

	// Step 1: Initialize logging and performance tracking
	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	perfTracker := performance.NewTracker()

	// Step 2: Initialize the space system
	logger.Startup().Info("Initializing space manager")
	spaceManager := space.NewManager(logger, perfTracker)

	// Step 3: Load the space registry to discover all spaces
	registry, err := space.LoadSpaceRegistry()
	if err != nil {
		return fmt.Errorf("failed to load space registry: %w", err)
	}

	if len(registry.Spaces) == 0 {
		logger.Startup().Info("No spaces found in registry, creating default space")
		if err := space.RegisterSpace("default"); err != nil {
			return fmt.Errorf("failed to register default space: %w", err)
		}
		registry, err = space.LoadSpaceRegistry()
		if err != nil {
			return fmt.Errorf("failed to reload registry: %w", err)
		}
	}

	logger.Startup().Info("Space registry loaded", "spaces", len(registry.Spaces))

	// Step 4: Pre-activate inactive spaces
	if err := spaceManager.PreActivateAllSpaces(); err != nil {
		return fmt.Errorf("space pre-activation failed: %w", err)
	}
	if err := spaceManager.ValidatePreActivation(); err != nil {
		return fmt.Errorf("space validation failed: %w", err)
	}

	activeCount, err := spaceManager.GetActiveSpaceCount()
	if err != nil {
		return fmt.Errorf("failed to get active space count: %w", err)
	}
	logger.Startup().Info("Space database connections verified", "active", activeCount)

	// Step 5: Optional install notification email service
	var emailSvc email.Service
	if os.Getenv("RESEND_API_KEY") != "" {
		emailSvc, err = email.NewService()
		if err != nil {
			logger.Startup().Warn("Email service unavailable, install notifications disabled", "error", err.Error())
			emailSvc = nil
		}
	}

	// Step 6: Create the dependency injection container
	appContainer := container.NewContainer(spaceManager, logger, perfTracker, emailSvc)
	logger.Startup().Info("Dependency injection container created with singleton services")

	// Step 7: Start the HTTP server
	port := config.Port
	httpServer := server.New(port, appContainer)
	logger.Startup().Info("HTTP server initialized", "port", port)

	// Step 8: Background cleanup of dead database pool connections
	cleanupStop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(config.DBCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupStop:
				return
			case <-ticker.C:
				space.CleanupStaleConnections()
			}
		}
	}()

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"activeSpaces", activeCount,
		"port", port)

	// Wait for shutdown signal
	<-gracefulShutdown
	close(cleanupStop)
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Closing render sessions and space contexts...")
	appContainer.Close()

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

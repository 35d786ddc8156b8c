// Package space provides space detection and validation.
package space

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

// Detector handles space detection from HTTP requests
type Detector struct {
	registry   *SpaceRegistry
	multiSpace bool
	logger     *logging.ChanneledLogger
}

// NewDetector creates a new space detector
func NewDetector(logger *logging.ChanneledLogger) (*Detector, error) {
	registry, err := LoadSpaceRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load space registry: %w", err)
	}

	multiSpace := false
	if val := os.Getenv("ENABLE_MULTI_SPACE"); val != "" {
		multiSpace, _ = strconv.ParseBool(val)
	}

	return &Detector{
		registry:   registry,
		multiSpace: multiSpace,
		logger:     logger,
	}, nil
}

// DetectSpace extracts the space and environment from a request and
// auto-registers the space if needed
func (d *Detector) DetectSpace(c *gin.Context) (string, string, error) {
	var spaceID string

	if d.multiSpace {
		// Get space ID from header first (set by editor middleware)
		spaceID = c.GetHeader("X-Space-ID")
		// FALLBACK: Check query parameter for websocket connections.
		// The browser WebSocket API cannot set custom headers, so we
		// allow spaceId as a query param.
		if spaceID == "" {
			spaceID = c.Query("spaceId")
		}

		if spaceID == "" {
			return "", "", fmt.Errorf("missing space ID header in multi-space mode")
		}
	} else {
		// Single space mode - always use "default"
		spaceID = "default"
	}

	environmentID := c.GetHeader("X-Environment-ID")
	if environmentID == "" {
		environmentID = c.Query("environmentId")
	}
	if environmentID == "" {
		environmentID = "master"
	}

	// Check if space exists in registry
	if _, exists := d.registry.Spaces[spaceID]; !exists {
		// Auto-register space if it has a config directory or if it's default
		if spaceID == "default" || d.hasConfigDirectory(spaceID) {
			if err := d.registerSpace(spaceID); err != nil {
				return "", "", fmt.Errorf("failed to auto-register space %s: %w", spaceID, err)
			}
			if err := d.RefreshRegistry(); err != nil {
				return "", "", fmt.Errorf("failed to reload registry after auto-registration: %w", err)
			}
		} else {
			return "", "", fmt.Errorf("unknown space: %s", spaceID)
		}
	}

	return spaceID, environmentID, nil
}

// hasConfigDirectory checks if a space has a config directory
func (d *Detector) hasConfigDirectory(spaceID string) bool {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return false
	}

	configDir := filepath.Join(homeDir, "widgethost-server", "config", spaceID)
	if _, err := os.Stat(configDir); err == nil {
		return true
	}
	return false
}

// registerSpace persists a space into the registry so the follow-up
// reload sees it
func (d *Detector) registerSpace(spaceID string) error {
	return RegisterSpace(spaceID)
}

// ValidateDomain checks if the request domain is allowed for the space
func (d *Detector) ValidateDomain(spaceID, domain string) bool {
	info, exists := d.registry.Spaces[spaceID]
	if !exists {
		return false
	}

	for _, allowedDomain := range info.Domains {
		if allowedDomain == "*" {
			return true
		}
		if strings.EqualFold(allowedDomain, domain) {
			return true
		}
	}

	return false
}

// GetSpaceStatus returns the current status of a space
func (d *Detector) GetSpaceStatus(spaceID string) string {
	if info, exists := d.registry.Spaces[spaceID]; exists {
		return info.Status
	}
	return "unknown"
}

// UpdateSpaceStatus updates the registry status and persists it so
// reloads and validation see the new state
func (d *Detector) UpdateSpaceStatus(spaceID, status, dbType string) {
	info, exists := d.registry.Spaces[spaceID]
	if !exists {
		return
	}

	info.Status = status
	if dbType != "" {
		info.DatabaseType = dbType
	}
	d.registry.Spaces[spaceID] = info

	if err := SaveSpaceRegistry(d.registry); err != nil && d.logger != nil {
		d.logger.Space().Error("Failed to persist space status", "spaceId", spaceID, "error", err.Error())
	}
}

// RefreshRegistry reloads the space registry from disk
func (d *Detector) RefreshRegistry() error {
	registry, err := LoadSpaceRegistry()
	if err != nil {
		return fmt.Errorf("failed to refresh space registry: %w", err)
	}
	d.registry = registry
	return nil
}

// GetRegistry returns the current registry (for external access)
func (d *Detector) GetRegistry() *SpaceRegistry {
	return d.registry
}

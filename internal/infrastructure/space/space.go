// Package space manages space-specific configurations and context,
// isolating multi-space logic from the rest of the application.
package space

import (
	"fmt"
	"log"
	"sync"

	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/performance"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/persistence/registry"
	"github.com/gin-gonic/gin"
)

// Manager coordinates space detection and context creation
type Manager struct {
	detector       *Detector
	contexts       map[string]*Context
	contextMutexes sync.Map // Per-space mutexes for fine-grained locking
	globalMutex    sync.RWMutex
	logger         *logging.ChanneledLogger
	perf           *performance.Tracker
}

// NewManager creates and initializes a new space manager.
func NewManager(logger *logging.ChanneledLogger, perf *performance.Tracker) *Manager {
	detector, err := NewDetector(logger)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize space detector: %v", err))
	}

	return &Manager{
		detector: detector,
		contexts: make(map[string]*Context),
		logger:   logger,
		perf:     perf,
	}
}

// GetContext creates or retrieves a space context for the request
func (m *Manager) GetContext(c *gin.Context) (*Context, error) {
	spaceID, environmentID, err := m.detector.DetectSpace(c)
	if err != nil {
		return nil, fmt.Errorf("space detection failed: %w", err)
	}

	contextKey := spaceID + ":" + environmentID

	m.globalMutex.RLock()
	if ctx, exists := m.contexts[contextKey]; exists {
		m.globalMutex.RUnlock()
		if ctx.Database != nil && ctx.Database.Conn != nil {
			return ctx, nil
		}
	} else {
		m.globalMutex.RUnlock()
	}

	spaceMutexInterface, _ := m.contextMutexes.LoadOrStore(contextKey, &sync.Mutex{})
	spaceMutex := spaceMutexInterface.(*sync.Mutex)

	spaceMutex.Lock()
	defer spaceMutex.Unlock()

	m.globalMutex.RLock()
	if ctx, exists := m.contexts[contextKey]; exists {
		m.globalMutex.RUnlock()
		if ctx.Database != nil && ctx.Database.Conn != nil {
			return ctx, nil
		}
	} else {
		m.globalMutex.RUnlock()
	}

	return m.createContext(spaceID, environmentID)
}

// NewContextFromID creates a new space context from explicit identifiers.
func (m *Manager) NewContextFromID(spaceID, environmentID string) (*Context, error) {
	return m.createContext(spaceID, environmentID)
}

// createContext creates a new space context
func (m *Manager) createContext(spaceID, environmentID string) (*Context, error) {
	cfg, err := LoadSpaceConfig(spaceID, m.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load space config: %w", err)
	}

	db, err := NewDatabase(cfg, environmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	if err := registry.NewTableCreator().CreateSchema(db.Conn); err != nil {
		return nil, fmt.Errorf("failed to ensure registry schema: %w", err)
	}

	status := m.detector.GetSpaceStatus(spaceID)

	ctx := &Context{
		SpaceID:       spaceID,
		EnvironmentID: environmentID,
		Config:        cfg,
		Database:      db,
		Status:        status,
		Logger:        m.logger,
		Perf:          m.perf,
	}
	ctx.initLoader()

	m.globalMutex.Lock()
	m.contexts[spaceID+":"+environmentID] = ctx
	m.globalMutex.Unlock()

	return ctx, nil
}

// PreActivateAllSpaces activates all spaces in the registry during startup
func (m *Manager) PreActivateAllSpaces() error {
	spaceRegistry, err := LoadSpaceRegistry()
	if err != nil {
		return fmt.Errorf("failed to load space registry for pre-activation: %w", err)
	}

	if len(spaceRegistry.Spaces) == 0 {
		return nil
	}

	var failedSpaces []string

	for spaceID, info := range spaceRegistry.Spaces {
		if info.Status == "active" {
			continue
		}

		if err := m.preActivateSingleSpace(spaceID); err != nil {
			failedSpaces = append(failedSpaces, spaceID)
			continue
		}
	}

	if err := m.detector.RefreshRegistry(); err != nil {
		return fmt.Errorf("failed to refresh detector registry: %w", err)
	}

	if len(failedSpaces) > 0 {
		return fmt.Errorf("pre-activation failed for spaces: %v", failedSpaces)
	}

	return nil
}

// preActivateSingleSpace activates a single space during startup. Every
// configured environment gets its registry database opened and migrated.
func (m *Manager) preActivateSingleSpace(spaceID string) error {
	cfg, err := LoadSpaceConfig(spaceID, m.logger)
	if err != nil {
		return fmt.Errorf("failed to load config for space %s: %w", spaceID, err)
	}

	var lastCtx *Context
	for _, environmentID := range cfg.Environments {
		ctx, err := m.createContext(spaceID, environmentID)
		if err != nil {
			return fmt.Errorf("failed to create context for space %s environment %s: %w", spaceID, environmentID, err)
		}
		if err := ctx.Database.Conn.Ping(); err != nil {
			return fmt.Errorf("database connection test failed for space %s: %w", spaceID, err)
		}
		lastCtx = ctx
	}

	dbType := "sqlite3"
	if lastCtx != nil && lastCtx.Database.UseTurso {
		dbType = "turso"
	}
	m.detector.UpdateSpaceStatus(spaceID, "active", dbType)

	return nil
}

// ValidatePreActivation verifies all spaces are active after pre-activation
func (m *Manager) ValidatePreActivation() error {
	log.Println("=== Validating pre-activation results ===")

	spaceRegistry, err := LoadSpaceRegistry()
	if err != nil {
		return fmt.Errorf("failed to load registry for validation: %w", err)
	}

	if len(spaceRegistry.Spaces) == 0 {
		log.Println("No spaces to validate")
		return nil
	}

	inactiveSpaces := make([]string, 0)
	activeSpaces := make([]string, 0)

	for spaceID, info := range spaceRegistry.Spaces {
		if info.Status == "active" {
			activeSpaces = append(activeSpaces, spaceID)
		} else {
			inactiveSpaces = append(inactiveSpaces, spaceID)
		}
	}

	log.Printf("Active spaces: %v", activeSpaces)

	if len(inactiveSpaces) > 0 {
		log.Printf("Inactive spaces: %v", inactiveSpaces)
		return fmt.Errorf("validation failed - %d spaces still inactive: %v",
			len(inactiveSpaces), inactiveSpaces)
	}

	log.Printf("Validation passed - %d spaces active", len(activeSpaces))
	return nil
}

// GetActiveSpaceCount returns the number of active spaces
func (m *Manager) GetActiveSpaceCount() (int, error) {
	spaceRegistry, err := LoadSpaceRegistry()
	if err != nil {
		return 0, fmt.Errorf("failed to load space registry: %w", err)
	}

	activeCount := 0
	for _, info := range spaceRegistry.Spaces {
		if info.Status == "active" {
			activeCount++
		}
	}

	return activeCount, nil
}

// GetDetector returns the detector for external access (needed by startup code)
func (m *Manager) GetDetector() *Detector {
	return m.detector
}

// Close cleans up all space contexts
func (m *Manager) Close() error {
	m.globalMutex.Lock()
	defer m.globalMutex.Unlock()

	for _, ctx := range m.contexts {
		if err := ctx.Close(); err != nil {
			continue
		}
	}

	m.contexts = make(map[string]*Context)
	return nil
}

// GetLogger returns the logger for middleware access
func (m *Manager) GetLogger() *logging.ChanneledLogger {
	return m.logger
}

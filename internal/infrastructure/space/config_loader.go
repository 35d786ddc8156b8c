// Package space handles loading and providing space-specific configurations.
package space

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/security"
)

// LocaleConfig describes one locale a space edits content in
type LocaleConfig struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

// Config represents the structure of a single space's configuration
type Config struct {
	SpaceID         string         `json:"spaceId"`
	Name            string         `json:"name"`
	Domains         []string       `json:"domains"`
	Status          string         `json:"status"`
	DatabaseType    string         `json:"databaseType"`
	Environments    []string       `json:"environments"`
	Locales         []LocaleConfig `json:"locales"`
	TursoDatabase   string         `json:"TURSO_DATABASE_URL"`
	TursoToken      string         `json:"TURSO_AUTH_TOKEN"`
	TursoEnabled    bool           `json:"TURSO_ENABLED"`
	JWTSecret       string         `json:"JWT_SECRET"`
	AESKey          string         `json:"AES_KEY"`
	AdminPassword   string         `json:"ADMIN_PASSWORD,omitempty"` // bcrypt hash
	AdminEmail      string         `json:"ADMIN_EMAIL,omitempty"`
	RegistryBaseURL string         `json:"REGISTRY_BASE_URL,omitempty"`
	RegistryToken   string         `json:"REGISTRY_TOKEN,omitempty"`
	DatabaseDir     string         `json:"-"`
	MediaDir        string         `json:"-"`
}

// DefaultLocale returns the code of the space's default locale
func (c *Config) DefaultLocale() string {
	for _, locale := range c.Locales {
		if locale.Default {
			return locale.Code
		}
	}
	if len(c.Locales) > 0 {
		return c.Locales[0].Code
	}
	return "en-US"
}

// SQLitePath returns the registry database path for one environment
func (c *Config) SQLitePath(environmentID string) string {
	return filepath.Join(c.DatabaseDir, environmentID, "registry.db")
}

// LoadSpaceConfig loads configuration for a specific space from its env.json file.
func LoadSpaceConfig(spaceID string, logger *logging.ChanneledLogger) (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("could not find user home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, "widgethost-server", "config", spaceID, "env.json")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("space config file not found at %s", configPath)
	}

	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("could not read space config file: %w", err)
	}

	var spaceConfig Config
	if err := json.Unmarshal(configFile, &spaceConfig); err != nil {
		return nil, fmt.Errorf("could not parse space config json: %w", err)
	}

	// Set computed fields
	spaceConfig.SpaceID = spaceID
	spaceConfig.DatabaseDir = filepath.Join(homeDir, "widgethost-server", "db", spaceID)
	spaceConfig.MediaDir = filepath.Join(homeDir, "widgethost-server", "media", spaceID)
	if len(spaceConfig.Environments) == 0 {
		spaceConfig.Environments = []string{"master"}
	}
	if len(spaceConfig.Locales) == 0 {
		spaceConfig.Locales = []LocaleConfig{{Code: "en-US", Name: "English (United States)", Default: true}}
	}

	// Secrets prefixed "enc:" are stored AES-GCM encrypted under the
	// space's key
	if spaceConfig.AESKey != "" {
		if decrypted, err := decryptSecret(spaceConfig.TursoToken, spaceConfig.AESKey); err != nil {
			return nil, fmt.Errorf("could not decrypt turso token for space %s: %w", spaceID, err)
		} else {
			spaceConfig.TursoToken = decrypted
		}
		if decrypted, err := decryptSecret(spaceConfig.RegistryToken, spaceConfig.AESKey); err != nil {
			return nil, fmt.Errorf("could not decrypt registry token for space %s: %w", spaceID, err)
		} else {
			spaceConfig.RegistryToken = decrypted
		}
	}

	return &spaceConfig, nil
}

// decryptSecret resolves an "enc:" prefixed value, passing plain values through
func decryptSecret(value, aesKey string) (string, error) {
	encrypted, ok := strings.CutPrefix(value, "enc:")
	if !ok {
		return value, nil
	}
	return security.Decrypt(encrypted, aesKey)
}

// sealSecret encrypts a secret for storage under the "enc:" prefix that
// decryptSecret strips on load. Empty and already sealed values pass through.
func sealSecret(value, aesKey string) (string, error) {
	if value == "" || strings.HasPrefix(value, "enc:") {
		return value, nil
	}
	encrypted, err := security.Encrypt(value, aesKey)
	if err != nil {
		return "", err
	}
	return "enc:" + encrypted, nil
}

// SaveSpaceConfig writes a space's env.json. Turso and registry tokens are
// sealed under the space's AES key before they touch disk.
func SaveSpaceConfig(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("could not find user home directory: %w", err)
	}

	onDisk := *cfg
	if cfg.AESKey != "" {
		if sealed, err := sealSecret(cfg.TursoToken, cfg.AESKey); err != nil {
			return fmt.Errorf("could not seal turso token for space %s: %w", cfg.SpaceID, err)
		} else {
			onDisk.TursoToken = sealed
		}
		if sealed, err := sealSecret(cfg.RegistryToken, cfg.AESKey); err != nil {
			return fmt.Errorf("could not seal registry token for space %s: %w", cfg.SpaceID, err)
		} else {
			onDisk.RegistryToken = sealed
		}
	}

	configPath := filepath.Join(homeDir, "widgethost-server", "config", cfg.SpaceID, "env.json")
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("could not create space config directory: %w", err)
	}

	data, err := json.MarshalIndent(&onDisk, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal space config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("could not write space config: %w", err)
	}
	return nil
}

// provisionSpaceConfig scaffolds env.json for a new space with freshly
// minted JWT and AES secrets. An existing config is left untouched.
func provisionSpaceConfig(spaceID string) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("could not find user home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, "widgethost-server", "config", spaceID, "env.json")
	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	jwtSecret, err := security.GenerateSecureKey(64)
	if err != nil {
		return fmt.Errorf("could not mint jwt secret for space %s: %w", spaceID, err)
	}
	aesKey, err := security.GenerateSecureKey(64)
	if err != nil {
		return fmt.Errorf("could not mint aes key for space %s: %w", spaceID, err)
	}

	return SaveSpaceConfig(&Config{
		SpaceID:      spaceID,
		Name:         spaceID,
		Domains:      []string{"*"},
		Status:       "inactive",
		Environments: []string{"master"},
		Locales:      []LocaleConfig{{Code: "en-US", Name: "English (United States)", Default: true}},
		JWTSecret:    jwtSecret,
		AESKey:       aesKey,
	})
}

// SpaceRegistry holds the global space configuration
type SpaceRegistry struct {
	Spaces map[string]SpaceInfo `json:"spaces"`
}

// SpaceInfo holds space metadata
type SpaceInfo struct {
	SpaceID      string   `json:"spaceId"`
	Domains      []string `json:"domains"`
	Status       string   `json:"status"`       // "unknown", "inactive", "active"
	DatabaseType string   `json:"databaseType"` // "turso", "sqlite3"
}

// LoadSpaceRegistry loads the global space registry
func LoadSpaceRegistry() (*SpaceRegistry, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("could not find user home directory: %w", err)
	}

	registryPath := filepath.Join(homeDir, "widgethost-server", "config", "system", "spaces.json")

	if _, err := os.Stat(registryPath); os.IsNotExist(err) {
		// Create default registry if it doesn't exist
		defaultRegistry := &SpaceRegistry{
			Spaces: map[string]SpaceInfo{
				"default": {
					SpaceID:      "default",
					Domains:      []string{"*"},
					Status:       "inactive",
					DatabaseType: "",
				},
			},
		}
		return defaultRegistry, nil
	}

	data, err := os.ReadFile(registryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read space registry: %w", err)
	}

	var registry SpaceRegistry
	if err := json.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse space registry: %w", err)
	}

	return &registry, nil
}

// SaveSpaceRegistry persists the space registry to disk
func SaveSpaceRegistry(registry *SpaceRegistry) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("could not find user home directory: %w", err)
	}

	registryPath := filepath.Join(homeDir, "widgethost-server", "config", "system", "spaces.json")
	if err := os.MkdirAll(filepath.Dir(registryPath), 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	data, err := json.MarshalIndent(registry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.WriteFile(registryPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	return nil
}

// RegisterSpace adds a new space to the registry and scaffolds its env.json
// when none exists yet.
func RegisterSpace(spaceID string) error {
	registry, err := LoadSpaceRegistry()
	if err != nil {
		return err
	}

	if err := provisionSpaceConfig(spaceID); err != nil {
		return err
	}

	if _, exists := registry.Spaces[spaceID]; !exists {
		registry.Spaces[spaceID] = SpaceInfo{
			SpaceID:      spaceID,
			Domains:      []string{"*"},
			Status:       "inactive",
			DatabaseType: "",
		}

		if err := SaveSpaceRegistry(registry); err != nil {
			return err
		}
	}

	return nil
}

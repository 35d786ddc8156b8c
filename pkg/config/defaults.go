// Package config provides centralized default values for the widget host
package config

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		if err := godotenv.Load(); err != nil {
			return
		}
		log.Println("Loading configuration overrides from .env file...")
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Space Management
	MaxSpaces    int
	SpaceTimeout time.Duration

	// Database Pool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int
	DBCleanupInterval        time.Duration

	// Widget Loader
	LoaderBatchWindow   time.Duration
	LoaderFetchTimeout  time.Duration
	RegistryPageSize    int
	ConnectQueueMaxSize int

	// Marketplace Catalog
	MarketplaceBaseURL     string
	MarketplaceSpaceID     string
	MarketplaceAccessToken string
	MarketplaceTimeout     time.Duration
	DefaultAppIconURL      string
	DefaultExtensionIcon   string
	IconThumbnailSize      int

	// Frame Hub
	FrameWriteWait      time.Duration
	FramePongWait       time.Duration
	FrameMaxMessageSize int64
	FrameSendBuffer     int

	// Render Sessions
	RenderTokenTTL         time.Duration
	AdminTokenTTL          time.Duration
	RenderSessionTimeout   time.Duration
	SessionCleanupInterval time.Duration
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Space Management
	MaxSpaces = getEnvInt("MAX_SPACES", 25)
	SpaceTimeout = time.Duration(getEnvInt("SPACE_TIMEOUT_HOURS", 4)) * time.Hour

	// Database Pool
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)
	DBCleanupInterval = getEnvDuration("DB_CLEANUP_INTERVAL", 15*time.Minute)

	// Widget Loader
	LoaderBatchWindow = getEnvDuration("LOADER_BATCH_WINDOW", 5*time.Millisecond)
	LoaderFetchTimeout = getEnvDuration("LOADER_FETCH_TIMEOUT", 10*time.Second)
	RegistryPageSize = getEnvInt("REGISTRY_PAGE_SIZE", 100)
	ConnectQueueMaxSize = getEnvInt("CONNECT_QUEUE_MAX_SIZE", 1000)

	// Marketplace Catalog
	MarketplaceBaseURL = getEnvString("MARKETPLACE_BASE_URL", "https://cdn.fieldstack.io")
	MarketplaceSpaceID = getEnvString("MARKETPLACE_SPACE_ID", "lpjm8d10rkpy")
	MarketplaceAccessToken = getEnvString("MARKETPLACE_ACCESS_TOKEN", "XMf7qZNsdNypDfO9TC1NZK2YyitHORa_nIYqYdpnQhk")
	MarketplaceTimeout = getEnvDuration("MARKETPLACE_TIMEOUT", 10*time.Second)
	DefaultAppIconURL = getEnvString("DEFAULT_APP_ICON_URL", "https://cdn.fieldstack.io/icons/app-default.svg")
	DefaultExtensionIcon = getEnvString("DEFAULT_EXTENSION_ICON_URL", "https://cdn.fieldstack.io/icons/extension-default.svg")
	IconThumbnailSize = getEnvInt("ICON_THUMBNAIL_SIZE", 128)

	// Frame Hub
	FrameWriteWait = getEnvDuration("FRAME_WRITE_WAIT", 10*time.Second)
	FramePongWait = getEnvDuration("FRAME_PONG_WAIT", 60*time.Second)
	FrameMaxMessageSize = int64(getEnvInt("FRAME_MAX_MESSAGE_BYTES", 512*1024))
	FrameSendBuffer = getEnvInt("FRAME_SEND_BUFFER", 256)

	// Render Sessions
	RenderTokenTTL = getEnvDuration("RENDER_TOKEN_TTL", 24*time.Hour)
	AdminTokenTTL = getEnvDuration("ADMIN_TOKEN_TTL", 12*time.Hour)
	RenderSessionTimeout = getEnvDuration("RENDER_SESSION_TIMEOUT", 2*time.Hour)
	SessionCleanupInterval = getEnvDuration("SESSION_CLEANUP_INTERVAL", 5*time.Minute)
}

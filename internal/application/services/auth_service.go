// Package services provides application-level orchestration services
package services

import (
	"time"

	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/performance"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/security"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/space"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles authentication workflows and JWT operations
type AuthService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAuthService creates a new authentication service
func NewAuthService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthService {
	return &AuthService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// AuthResult holds authentication result data
type AuthResult struct {
	Token   string `json:"token"`
	Role    string `json:"role"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// AuthenticateAdmin validates admin credentials and generates a registry
// write token for the space.
func (a *AuthService) AuthenticateAdmin(password string, spaceCtx *space.Context) *AuthResult {
	authorized := false

	if spaceCtx.Config.AdminPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(spaceCtx.Config.AdminPassword), []byte(password)); err == nil {
			authorized = true
		}
	}

	if !authorized {
		a.logger.Auth().Warn("Admin authentication failed", "spaceId", spaceCtx.SpaceID)
		return &AuthResult{
			Success: false,
			Error:   "Invalid credentials",
		}
	}

	token, err := security.GenerateAdminToken(spaceCtx.SpaceID, spaceCtx.Config.JWTSecret)
	if err != nil {
		return &AuthResult{Success: false, Error: "Token generation failed"}
	}

	return &AuthResult{Token: token, Role: "admin", Success: true}
}

// ValidateAdminToken checks if a token grants registry write access
func (a *AuthService) ValidateAdminToken(tokenString string, spaceCtx *space.Context) bool {
	if tokenString == "" {
		return false
	}

	claims, err := security.ValidateJWT(tokenString, spaceCtx.Config.JWTSecret)
	if err != nil {
		return false
	}

	return security.IsAdmin(claims, spaceCtx.SpaceID)
}

// TokenInfo holds information about a decoded token
type TokenInfo struct {
	Valid     bool           `json:"valid"`
	Claims    map[string]any `json:"claims,omitempty"`
	Role      string         `json:"role,omitempty"`
	SpaceID   string         `json:"spaceId,omitempty"`
	ExpiresAt time.Time      `json:"expiresAt,omitempty"`
}

// GetTokenInfo extracts information from a JWT token without validating permissions
func (a *AuthService) GetTokenInfo(tokenString string, spaceCtx *space.Context) *TokenInfo {
	if tokenString == "" {
		return &TokenInfo{Valid: false}
	}

	claims, err := security.ValidateJWT(tokenString, spaceCtx.Config.JWTSecret)
	if err != nil {
		return &TokenInfo{Valid: false}
	}

	info := &TokenInfo{
		Valid:  true,
		Claims: claims,
	}

	if role, ok := claims["role"].(string); ok {
		info.Role = role
	}
	if spaceID, ok := claims["spaceId"].(string); ok {
		info.SpaceID = spaceID
	}
	if exp, ok := claims["exp"].(float64); ok {
		info.ExpiresAt = time.Unix(int64(exp), 0)
	}

	return info
}

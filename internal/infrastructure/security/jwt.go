// Package security provides JWT token utilities
package security

import (
	"errors"
	"log"
	"time"

	"github.com/fieldstack/widgethost-go/internal/domain/entities/editor"
	"github.com/fieldstack/widgethost-go/pkg/config"
	"github.com/golang-jwt/jwt/v4"
)

// ValidateJWT validates a JWT token and returns the claims
func ValidateJWT(tokenString, jwtSecret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// RenderClaims identifies the render session a frame connection belongs to
type RenderClaims struct {
	SessionID     string
	SpaceID       string
	EnvironmentID string
	User          editor.User
}

// GenerateRenderToken creates a JWT token authorizing frame connections
// for one render session
func GenerateRenderToken(claims *RenderClaims, jwtSecret string) (string, error) {
	tokenClaims := jwt.MapClaims{
		"sessionId":     claims.SessionID,
		"spaceId":       claims.SpaceID,
		"environmentId": claims.EnvironmentID,
		"user": map[string]string{
			"id":        claims.User.ID,
			"firstName": claims.User.FirstName,
			"lastName":  claims.User.LastName,
			"email":     claims.User.Email,
		},
		"role": "render",
		"iat":  time.Now().UTC().Unix(),
		"exp":  time.Now().UTC().Add(config.RenderTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims)
	result, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		log.Printf("ERROR: Failed to sign render token: %v", err)
		return "", err
	}
	return result, nil
}

// GetRenderClaims extracts render session identity from validated claims,
// nil when the token was not issued for rendering
func GetRenderClaims(claims jwt.MapClaims) *RenderClaims {
	if role, _ := claims["role"].(string); role != "render" {
		return nil
	}
	rc := &RenderClaims{}
	rc.SessionID, _ = claims["sessionId"].(string)
	rc.SpaceID, _ = claims["spaceId"].(string)
	rc.EnvironmentID, _ = claims["environmentId"].(string)
	if userData, ok := claims["user"].(map[string]any); ok {
		rc.User.ID, _ = userData["id"].(string)
		rc.User.FirstName, _ = userData["firstName"].(string)
		rc.User.LastName, _ = userData["lastName"].(string)
		rc.User.Email, _ = userData["email"].(string)
	}
	if rc.SessionID == "" || rc.SpaceID == "" {
		return nil
	}
	return rc
}

// GenerateAdminToken creates a JWT token for registry write access
func GenerateAdminToken(spaceID, jwtSecret string) (string, error) {
	claims := jwt.MapClaims{
		"spaceId": spaceID,
		"role":    "admin",
		"iat":     time.Now().UTC().Unix(),
		"exp":     time.Now().UTC().Add(config.AdminTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	result, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		log.Printf("ERROR: Failed to sign admin token: %v", err)
		return "", err
	}
	return result, nil
}

// IsAdmin reports whether validated claims grant registry write access
// for the given space
func IsAdmin(claims jwt.MapClaims, spaceID string) bool {
	role, _ := claims["role"].(string)
	claimedSpace, _ := claims["spaceId"].(string)
	return role == "admin" && claimedSpace == spaceID
}

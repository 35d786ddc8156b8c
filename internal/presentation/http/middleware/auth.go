package middleware

import (
	"net/http"
	"strings"

	"github.com/fieldstack/widgethost-go/internal/application/services"
	"github.com/gin-gonic/gin"
)

// AdminAuthMiddleware guards registry write endpoints with an admin token
func AdminAuthMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		spaceCtx, exists := GetSpaceContext(c)
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "space context required"})
			c.Abort()
			return
		}

		token := bearerToken(c)
		if token == "" || !authService.ValidateAdminToken(token, spaceCtx) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "admin token required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// bearerToken extracts the token from the Authorization header, with a
// query fallback for websocket upgrades.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

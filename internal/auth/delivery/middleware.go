package delivery

import (
	"net/http"
	"strings"

	"sentry-backend/internal/auth/usecase"
	"sentry-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware requires a valid Bearer token on the request
func AuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		token := parts[1]
		user, err := authUsecase.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the user when a valid Bearer token is
// present but lets the request through either way. Device-authenticated
// endpoints use it so an anonymous device still gets served.
func OptionalAuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				if user, err := authUsecase.ValidateToken(parts[1]); err == nil {
					c.Set("user", user)
					c.Set("userID", user.ID)
				}
			}
		}
		c.Next()
	}
}

// DeviceAPIKeyMiddleware checks the shared device API key. Devices carry
// a single provisioned key rather than per-user credentials.
func DeviceAPIKeyMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.DeviceAPIKey == "" {
			// No key configured, device endpoints are open (dev setups)
			c.Next()
			return
		}

		if c.GetHeader("X-API-Key") != cfg.DeviceAPIKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid device API key"})
			c.Abort()
			return
		}
		c.Next()
	}
}

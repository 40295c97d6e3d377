package middleware

import (
	"net/http"
	"strings"

	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const callerContextKey = "caller"

// AuthMiddleware validates the bearer token and resolves the caller against
// the user table, so a deactivated or deleted account is rejected even while
// its token is still within its lifetime. The DB row wins over token claims
// for the role, which keeps role changes effective immediately.
func AuthMiddleware(db *gorm.DB, authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "missing_token",
				"message": "Authorization header is required",
			})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token_format",
				"message": "Authorization header must use Bearer token",
			})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		caller, err := authService.ParseAccessToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "Token validation failed",
			})
			return
		}

		var user models.User
		if err := db.First(&user, caller.ID).Error; err != nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unknown_user",
				"message": "User not found or inactive",
			})
			return
		}

		c.Set(callerContextKey, user.AsCaller())
		c.Next()
	}
}

// CallerFrom extracts the resolved caller placed by AuthMiddleware.
func CallerFrom(c *gin.Context) (models.Caller, bool) {
	value, exists := c.Get(callerContextKey)
	if !exists {
		return models.Caller{}, false
	}
	caller, ok := value.(models.Caller)
	return caller, ok
}

// SetCaller injects a caller directly; handler tests use it in place of the
// full token middleware.
func SetCaller(c *gin.Context, caller models.Caller) {
	c.Set(callerContextKey, caller)
}

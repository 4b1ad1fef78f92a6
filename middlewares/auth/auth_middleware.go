package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joy095/cashfree/logger"
	"github.com/joy095/cashfree/utils"
	"github.com/joy095/cashfree/utils/jwt_parse"
)

// AdminMiddleware lets through requests carrying a valid System Manager token.
// With an empty secret every request is refused.
func AdminMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(secret) == 0 {
			logger.ErrorLogger.Error("Admin route called but ADMIN_JWT_SECRET is not set")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"code": "AUTH_DISABLED", "error": "Admin authentication is not configured."})
			return
		}

		tokenString, err := jwt_parse.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			logger.WarnLogger.Warnf("Admin auth: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "NO_TOKEN", "error": err.Error()})
			return
		}

		claims, err := jwt_parse.ParseAdminToken(tokenString, secret)
		if err != nil {
			logger.WarnLogger.Warnf("Admin auth: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "INVALID_TOKEN", "error": "Invalid token"})
			return
		}
		if !claims.HasRole(jwt_parse.RoleSystemManager) {
			logger.WarnLogger.Warnf("Admin auth: %s lacks %s", claims.Subject, jwt_parse.RoleSystemManager)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "FORBIDDEN", "error": "Insufficient permissions"})
			return
		}

		c.Set(utils.ContextUserKey, claims.Subject)
		c.Next()
	}
}

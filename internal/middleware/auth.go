package middleware

import (
	"net/http"
	"strings"

	"supportdesk_backend/internal/auth"
	"supportdesk_backend/internal/logger"
	"supportdesk_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware - проверка bearer-токена. Для websocket-подключений
// браузер не может выставить заголовок, поэтому допускается
// query-параметр token (как делал socket.io-фронт).
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""

		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
		} else if q := c.Query("token"); q != "" {
			tokenStr = q
		}

		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing or invalid"})
			return
		}

		claims, err := auth.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("identity", claims.Email)
		c.Set("role", claims.Role)

		ctx := logger.WithIdentity(c.Request.Context(), claims.Email)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole ограничивает маршрут одной ролью
func RequireRole(requiredRole models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get("role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: no role"})
			return
		}

		role, ok := roleVal.(models.Role)
		if !ok {
			roleStr, isString := roleVal.(string)
			if !isString {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: invalid role type"})
				return
			}
			role = models.Role(roleStr)
		}

		if role != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: insufficient permissions"})
			return
		}

		c.Next()
	}
}

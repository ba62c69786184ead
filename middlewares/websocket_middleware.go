package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

// WebSocketAuthMiddleware reads the staff JWT from the token query parameter.
func WebSocketAuthMiddleware(jwt *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		claims, err := jwt.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		c.Set(ContextRole, claims.Role)
		c.Set(ContextUserID, claims.UserID)

		c.Next()
	}
}

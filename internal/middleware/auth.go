package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserIDHeader names the header the upstream gateway sets after
// authenticating the caller. The engine treats the value as an opaque
// id; it performs no authentication of its own.
const UserIDHeader = "X-User-ID"

const userIDKey = "user_id"

// RequireUser rejects requests that carry no caller identity.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(UserIDHeader)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "MISSING_IDENTITY",
					"message": "X-User-ID header is required",
				},
			})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated caller's id set by RequireUser.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

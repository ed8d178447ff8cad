package middleware

import (
	"net/http"
	"strings"

	"desksync/internal/config"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

func UserIDFromContext(c *gin.Context) string {
	if v, ok := c.Get(userIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Auth resolves the caller's identity before any handler runs. The session
// provider in front of this service forwards the authenticated user id in
// X-User-ID; a request without one is rejected before it can touch the
// store. When a shared token is configured it must also be presented as a
// bearer credential.
func Auth(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := strings.TrimSpace(cfg.AuthToken); token != "" {
			h := strings.TrimSpace(c.GetHeader("Authorization"))
			if !strings.HasPrefix(strings.ToLower(h), "bearer ") || strings.TrimSpace(h[7:]) != token {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
		}

		userID := strings.TrimSpace(c.GetHeader("X-User-ID"))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

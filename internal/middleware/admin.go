package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reqtrail/reqtrail/internal/config"
)

// AdminMiddleware gates the admin API: it requires a bearer-token
// principal carrying the configured admin role. Must run after
// PrincipalMiddleware.
func AdminMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg == nil || cfg.Auth.JWTSecret == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin API not configured"})
			c.Abort()
			return
		}

		p := PrincipalFrom(c)
		if p == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid bearer token"})
			c.Abort()
			return
		}

		adminRole := cfg.Auth.AdminRole
		if adminRole == "" {
			adminRole = "admin"
		}
		if p.Role != adminRole {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/reqtrail/reqtrail/internal/config"
	"github.com/reqtrail/reqtrail/internal/service"
)

const (
	HeaderAuthorization = "Authorization"
	ContextPrincipalKey = "principal"
)

// PrincipalMiddleware parses an optional bearer token and attaches the
// resulting principal to the context. Invalid or missing tokens are
// ignored here; enforcement lives in AdminMiddleware. This keeps user
// attribution available to the request logger on every route.
func PrincipalMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p := parsePrincipal(cfg, c.GetHeader(HeaderAuthorization)); p != nil {
			c.Set(ContextPrincipalKey, p)
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal attached by PrincipalMiddleware,
// or nil for unauthenticated requests.
func PrincipalFrom(c *gin.Context) *service.Principal {
	if val, exists := c.Get(ContextPrincipalKey); exists {
		if p, ok := val.(*service.Principal); ok {
			return p
		}
	}
	return nil
}

func parsePrincipal(cfg *config.Config, header string) *service.Principal {
	if cfg == nil || cfg.Auth.JWTSecret == "" {
		return nil
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Auth.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil
	}
	role, _ := claims["role"].(string)

	return &service.Principal{UserID: sub, Role: role}
}

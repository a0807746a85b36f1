package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/reqtrail/reqtrail/internal/config"
)

func authConfig(secret string) *config.Config {
	return &config.Config{Auth: config.AuthConfig{JWTSecret: secret, AdminRole: "admin"}}
}

func hs256Token(t *testing.T, secret, sub, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestParsePrincipalValidToken(t *testing.T) {
	cfg := authConfig("s3cret")
	p := parsePrincipal(cfg, "Bearer "+hs256Token(t, "s3cret", "user-1", "admin"))
	if p == nil {
		t.Fatal("expected a principal")
	}
	if p.UserID != "user-1" || p.Role != "admin" {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestParsePrincipalRejectsBadInput(t *testing.T) {
	cfg := authConfig("s3cret")

	if parsePrincipal(cfg, "") != nil {
		t.Fatal("expected nil for missing header")
	}
	if parsePrincipal(cfg, "Bearer garbage") != nil {
		t.Fatal("expected nil for malformed token")
	}
	if parsePrincipal(cfg, hs256Token(t, "s3cret", "user-1", "admin")) != nil {
		t.Fatal("expected nil without Bearer prefix")
	}
	if parsePrincipal(cfg, "Bearer "+hs256Token(t, "wrong-secret", "user-1", "admin")) != nil {
		t.Fatal("expected nil for wrong signature")
	}
	if parsePrincipal(cfg, "Bearer "+hs256Token(t, "s3cret", "", "admin")) != nil {
		t.Fatal("expected nil for empty subject")
	}
	if parsePrincipal(authConfig(""), "Bearer "+hs256Token(t, "s3cret", "user-1", "admin")) != nil {
		t.Fatal("expected nil when no secret is configured")
	}
}

func TestParsePrincipalExpiredToken(t *testing.T) {
	cfg := authConfig("s3cret")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("s3cret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	if parsePrincipal(cfg, "Bearer "+signed) != nil {
		t.Fatal("expected nil for expired token")
	}
}

package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"daycare-server/config"
	"daycare-server/types"
)

func withSecret(t *testing.T, secret string) {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = &config.Config{JWT: config.JWTConfig{Secret: secret, ExpiryHours: 2}}
	t.Cleanup(func() { config.AppConfig = prev })
}

func TestGenerateAndVerifyToken(t *testing.T) {
	withSecret(t, "test-secret")

	token, expiresIn, err := GenerateToken(42, "manager")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if expiresIn != 7200 {
		t.Fatalf("expected 7200 seconds got %d", expiresIn)
	}

	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "manager" || claims.Subject != "42" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestVerifyTokenRejectsOtherSecret(t *testing.T) {
	withSecret(t, "first-secret")
	token, _, err := GenerateToken(1, "parent")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	config.AppConfig.JWT.Secret = "second-secret"
	if _, err := VerifyToken(token); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestVerifyTokenRejectsNoneAlgorithm(t *testing.T) {
	withSecret(t, "test-secret")

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &types.Claims{UserID: 1, Role: "manager"})
	s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifyToken(s); err == nil {
		t.Fatalf("expected unsigned token to be rejected")
	}
}

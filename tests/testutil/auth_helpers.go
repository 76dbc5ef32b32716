package testutil

import (
	"testing"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"

	"github.com/harekrishna1602/anvesha-2.0/middleware"
)

// TestJWTSecret signs tokens accepted by middleware.EnsureValidSecretToken in tests
var TestJWTSecret = []byte("test-jwt-secret")

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, issuer string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{},
	}
}

// SetMockAuthContext sets up a mock authenticated context for testing
func SetMockAuthContext(c *gin.Context, userID, issuer string) {
	c.Set("user_id", userID)
	c.Set("validated_claims", MockValidatedClaims(userID, issuer))
}

// MockAuth is a middleware that authenticates every request as userID
func MockAuth(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, userID, "https://test.auth0.com/")
		c.Next()
	}
}

// BearerToken signs a short-lived token for userID with TestJWTSecret
func BearerToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := middleware.SignSecretToken(TestJWTSecret, userID, time.Hour)
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return "Bearer " + token
}

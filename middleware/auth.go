package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/harekrishna1602/anvesha-2.0/config"
	"github.com/harekrishna1602/anvesha-2.0/logging"
	"github.com/harekrishna1602/anvesha-2.0/session"
)

// TokenQueryParam carries the token for clients that cannot set headers (websockets)
const TokenQueryParam = "token"

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Scope string `json:"scope"`
}

// Validate satisfies validator.CustomClaims; scopes are not enforced.
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// Authenticate picks Auth0 validation when a domain is configured and the
// shared secret otherwise
func Authenticate(cfg *config.Config) gin.HandlerFunc {
	if cfg.UsesAuth0() {
		return EnsureValidToken(cfg)
	}
	return EnsureValidSecretToken([]byte(cfg.JWTSecret))
}

// EnsureValidToken is a middleware that validates RS256 tokens issued by Auth0.
func EnsureValidToken(cfg *config.Config) gin.HandlerFunc {
	issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
	if err != nil {
		panic(fmt.Sprintf("auth: parse issuer url: %v", err))
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.Auth0Audience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		panic(fmt.Sprintf("auth: set up jwt validator: %v", err))
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		logging.FromContext(r.Context()).Warn("jwt validation failed", "error", err)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`)); writeErr != nil {
			logging.FromContext(r.Context()).Error("failed to write error response", "error", writeErr)
		}
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
		jwtmiddleware.WithTokenExtractor(jwtmiddleware.MultiTokenExtractor(
			jwtmiddleware.AuthHeaderTokenExtractor,
			jwtmiddleware.ParameterTokenExtractor(TokenQueryParam),
		)),
	)

	return func(c *gin.Context) {
		validated := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			validated = true
			token := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)

			c.Request = r
			c.Set("user_id", token.RegisteredClaims.Subject)
			c.Set("validated_claims", token)

			c.Next()
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !validated {
			c.Abort()
		}
	}
}

// EnsureValidSecretToken is a middleware that validates HS256 tokens signed
// with a shared secret
func EnsureValidSecretToken(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c)
		if raw == "" {
			abortUnauthorized(c, "MISSING_TOKEN", "Authorization token is required")
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(time.Minute))
		if err != nil || !token.Valid {
			logging.FromContext(c.Request.Context()).Warn("jwt validation failed", "error", err)
			abortUnauthorized(c, "INVALID_TOKEN", "Failed to validate JWT.")
			return
		}
		if claims.Subject == "" {
			abortUnauthorized(c, "INVALID_TOKEN", "Token has no subject")
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("registered_claims", claims)
		c.Next()
	}
}

// SignSecretToken issues an HS256 token for subject. Used by local tooling and tests.
func SignSecretToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.Fields(header)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	return c.Query(TokenQueryParam)
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	userIDStr, ok := userID.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a string"}
	}
	if userIDStr == "" {
		return "", &AuthError{Code: "MISSING_USER_ID", Message: "User ID is empty"}
	}

	return userIDStr, nil
}

// GetActor returns the authenticated actor for the request
func GetActor(c *gin.Context) (session.Actor, error) {
	userID, err := GetUserID(c)
	if err != nil {
		return session.Actor{}, errors.Join(session.ErrNoActor, err)
	}
	return session.Actor{ID: userID}, nil
}

// GetClaims extracts the validated Auth0 claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get("validated_claims")
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

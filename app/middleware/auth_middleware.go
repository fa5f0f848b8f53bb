// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/amirphl/sdr-power-queue/app/dto"
	"github.com/amirphl/sdr-power-queue/app/services"
	"github.com/gofiber/fiber/v3"
)

// Locals keys set by the auth middleware
const (
	LocalOperatorScope = "operator_scope"
	LocalTokenID       = "token_id"
	LocalTokenClaims   = "token_claims"
	LocalRequestID     = "request_id"
)

// AuthMiddleware handles operator token validation for protected endpoints
type AuthMiddleware struct {
	tokenService services.TokenService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

func unauthorized(c fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: code,
		},
	})
}

// bearerToken reads the Authorization header. EventSource clients cannot set headers, so
// the access_token query parameter is accepted when the header is absent.
func bearerToken(c fiber.Ctx) (string, string, string) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		if token := c.Query("access_token"); token != "" {
			return token, "", ""
		}
		return "", "MISSING_AUTHORIZATION_HEADER", "Authorization header is required"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "INVALID_AUTHORIZATION_FORMAT", "Invalid authorization header format. Expected 'Bearer <token>'"
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", "MISSING_ACCESS_TOKEN", "Access token is required"
	}
	return token, "", ""
}

// Authenticate validates the bearer token and stores the operator scope for downstream handlers
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, code, message := bearerToken(c)
		if token == "" {
			return unauthorized(c, code, message)
		}

		claims, err := m.tokenService.ValidateToken(token)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrTokenExpired):
				return unauthorized(c, "TOKEN_EXPIRED", "Access token has expired")
			case errors.Is(err, services.ErrTokenInvalid):
				return unauthorized(c, "TOKEN_INVALID", "Invalid access token")
			case errors.Is(err, services.ErrTokenRevoked):
				return unauthorized(c, "TOKEN_REVOKED", "Access token has been revoked")
			default:
				return unauthorized(c, "TOKEN_VALIDATION_FAILED", "Token validation failed")
			}
		}

		c.Locals(LocalOperatorScope, claims.Scope)
		c.Locals(LocalTokenID, claims.TokenID)
		c.Locals(LocalTokenClaims, claims)

		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals(LocalRequestID, requestID)
		}

		return c.Next()
	}
}

// GetScopeFromContext extracts the operator scope from the request context
func GetScopeFromContext(c fiber.Ctx) (string, bool) {
	scope, ok := c.Locals(LocalOperatorScope).(string)
	return scope, ok && scope != ""
}

// GetTokenClaimsFromContext extracts token claims from the request context
func GetTokenClaimsFromContext(c fiber.Ctx) (*services.TokenClaims, bool) {
	claims, ok := c.Locals(LocalTokenClaims).(*services.TokenClaims)
	return claims, ok
}

// RequireScope writes a 401 and returns false when no operator scope is present
func RequireScope(c fiber.Ctx) (string, bool) {
	scope, ok := GetScopeFromContext(c)
	if !ok {
		_ = unauthorized(c, "AUTHENTICATION_REQUIRED", "Authentication required")
		return "", false
	}
	return scope, true
}

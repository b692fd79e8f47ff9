package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"legal-office-api/pkg/jwtutil"
	"legal-office-api/pkg/logger"
	"legal-office-api/prometheus"
)

// Echo context keys populated by AuthMiddleware.
const (
	UserIDKey     = "user_id"
	EmailKey      = "email"
	TenantIDKey   = "tenant_id"
	TenantNameKey = "tenant_name"
	UserRoleKey   = "user_role"
)

// AuthMiddleware validates the JWT token from the Authorization header
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Error("Missing Authorization header")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Error("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Store user info in context for later use
		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)

		// Store tenant information if the token carries it. The tenant
		// context binder picks this up; a token without a tenant claim
		// leaves tenant-scoped routes fail-closed.
		if claims.TenantID != "" {
			c.Set(TenantIDKey, claims.TenantID)
			c.Set(TenantNameKey, claims.TenantName)
			c.Set(UserRoleKey, claims.Role)

			log.Debug("Request authenticated with tenant context",
				zap.String("tenant_id", claims.TenantID),
				zap.String("tenant_name", claims.TenantName),
				zap.String("role", claims.Role))
		}

		return next(c)
	}
}

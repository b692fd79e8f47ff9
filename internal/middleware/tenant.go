package middleware

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"legal-office-api/internal/tenantctx"
	"legal-office-api/pkg/database"
	"legal-office-api/pkg/logger"
	"legal-office-api/prometheus"
)

// TenantDBKey is the echo context key holding the tenant-bound connection.
const TenantDBKey = "tenant_db"

// TenantContext binds the tenant claim to a database connection for the
// whole request span. The binding is set on one pinned connection, every
// handler query runs on that connection, and the clear is guaranteed when
// the handler returns, whatever way it returns.
//
// A request without a tenant claim is not rejected here: it proceeds with no
// binding, so every tenant-scoped query matches zero rows. Handlers answer
// "not found" or an empty list, never another tenant's data.
func TenantContext(manager *tenantctx.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			tenantID, ok := c.Get(TenantIDKey).(string)
			if !ok || tenantID == "" {
				log.Debug("No tenant claim on request, proceeding unbound")
				prometheus.RecordTenantBinding("unbound")
				return next(c)
			}

			err := manager.WithTenant(c.Request().Context(), tenantID, func(conn *gorm.DB) error {
				c.Set(TenantDBKey, conn)
				prometheus.RecordTenantBinding("bound")
				return next(c)
			})

			var bindErr *tenantctx.BindingError
			if errors.As(err, &bindErr) {
				log.Error("Tenant context binding failed",
					zap.String("op", bindErr.Op),
					zap.String("tenant_id", tenantID),
					zap.Error(err))
				prometheus.RecordTenantBinding("error")
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			return err
		}
	}
}

// TenantDB returns the tenant-bound connection for this request. When no
// binding was established it falls back to the shared handle, which the row
// policies treat as "no tenant": zero rows visible.
func TenantDB(c echo.Context) *gorm.DB {
	if conn, ok := c.Get(TenantDBKey).(*gorm.DB); ok && conn != nil {
		return conn
	}
	return database.GetDB().WithContext(c.Request().Context())
}

// TenantID returns the tenant identifier from the request's claim.
func TenantID(c echo.Context) (uuid.UUID, bool) {
	raw, ok := c.Get(TenantIDKey).(string)
	if !ok || raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// UserID returns the authenticated user's identifier.
func UserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(UserIDKey).(uuid.UUID)
	return id, ok
}

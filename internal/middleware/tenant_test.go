package middleware_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"legal-office-api/internal/middleware"
	"legal-office-api/internal/tenantctx"
	"legal-office-api/pkg/database"
)

func newTenantTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestTenantContextProceedsUnboundWithoutClaim(t *testing.T) {
	c, rec := newTenantTestContext(t)

	reached := false
	handler := middleware.TenantContext(tenantctx.New(nil))(func(c echo.Context) error {
		reached = true
		_, bound := middleware.TenantID(c)
		assert.False(t, bound)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTenantContextRejectsMalformedClaim(t *testing.T) {
	c, rec := newTenantTestContext(t)
	c.Set(middleware.TenantIDKey, "not-a-uuid")

	reached := false
	handler := middleware.TenantContext(tenantctx.New(nil))(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))

	// A claim that cannot bind is a server-side failure, not a client error:
	// the token was minted by this service.
	assert.False(t, reached)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTenantDBFallsBackToSharedHandle(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	database.SetDB(db)

	c, _ := newTenantTestContext(t)
	assert.NotNil(t, middleware.TenantDB(c))
}

func TestTenantDBPrefersBoundConnection(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	c, _ := newTenantTestContext(t)
	c.Set(middleware.TenantDBKey, db)
	assert.Same(t, db, middleware.TenantDB(c))
}

func TestTenantIDHelper(t *testing.T) {
	c, _ := newTenantTestContext(t)

	_, ok := middleware.TenantID(c)
	assert.False(t, ok)

	c.Set(middleware.TenantIDKey, "garbage")
	_, ok = middleware.TenantID(c)
	assert.False(t, ok)

	want := uuid.New()
	c.Set(middleware.TenantIDKey, want.String())
	got, ok := middleware.TenantID(c)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

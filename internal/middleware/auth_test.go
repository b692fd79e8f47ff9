package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-office-api/internal/middleware"
	"legal-office-api/pkg/config"
	"legal-office-api/pkg/jwtutil"
)

func init() {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "middleware-test-key", ExpirationHours: 1})
}

func runAuth(t *testing.T, authorization string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	handler := middleware.AuthMiddleware(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, c, reached
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	rec, _, reached := runAuth(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	for _, header := range []string{"token-without-scheme", "Basic dXNlcjpwYXNz"} {
		rec, _, reached := runAuth(t, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.False(t, reached, header)
	}
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	rec, _, reached := runAuth(t, "Bearer not.a.token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestAuthMiddlewareValidTokenWithoutTenant(t *testing.T) {
	userID := uuid.New()
	token, err := jwtutil.GenerateToken("lawyer@firm.com", userID)
	require.NoError(t, err)

	rec, c, reached := runAuth(t, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)

	gotUser, ok := middleware.UserID(c)
	require.True(t, ok)
	assert.Equal(t, userID, gotUser)

	// No tenant claim means no tenant context key.
	_, ok = middleware.TenantID(c)
	assert.False(t, ok)
}

func TestAuthMiddlewareValidTokenWithTenant(t *testing.T) {
	userID := uuid.New()
	tenantID := uuid.New()
	token, err := jwtutil.GenerateTokenWithTenant("lawyer@firm.com", userID, tenantID.String(), "Smith & Partners", "owner")
	require.NoError(t, err)

	rec, c, reached := runAuth(t, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)

	gotTenant, ok := middleware.TenantID(c)
	require.True(t, ok)
	assert.Equal(t, tenantID, gotTenant)
	assert.Equal(t, "Smith & Partners", c.Get(middleware.TenantNameKey))
	assert.Equal(t, "owner", c.Get(middleware.UserRoleKey))
}

package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"legal-office-api/internal/handler"
	"legal-office-api/internal/model"
	"legal-office-api/pkg/config"
	"legal-office-api/pkg/database"
	"legal-office-api/pkg/jwtutil"
)

func init() {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "handler-test-key", ExpirationHours: 1})
}

func setupAuthDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Tenant{}, &model.TenantMember{}))
	database.SetDB(db)
	return db
}

func newJSONContext(t *testing.T, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRegisterAndLogin(t *testing.T) {
	setupAuthDB(t)

	c, rec := newJSONContext(t, http.MethodPost,
		`{"email":"lawyer@firm.com","password":"hunter22","full_name":"J. Smith"}`)
	require.NoError(t, handler.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = newJSONContext(t, http.MethodPost,
		`{"email":"lawyer@firm.com","password":"hunter22"}`)
	require.NoError(t, handler.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token)

	// No firm yet, so the token carries no tenant claim.
	claims, err := jwtutil.ValidateToken(token)
	require.NoError(t, err)
	assert.Empty(t, claims.TenantID)
}

func TestRegisterRejectsIncompletePayload(t *testing.T) {
	setupAuthDB(t)

	c, rec := newJSONContext(t, http.MethodPost, `{"email":"lawyer@firm.com"}`)
	require.NoError(t, handler.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	setupAuthDB(t)

	body := `{"email":"lawyer@firm.com","password":"hunter22"}`
	c, rec := newJSONContext(t, http.MethodPost, body)
	require.NoError(t, handler.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = newJSONContext(t, http.MethodPost, body)
	require.NoError(t, handler.Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupAuthDB(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.User{Email: "lawyer@firm.com", Password: string(hashed)}).Error)

	c, rec := newJSONContext(t, http.MethodPost,
		`{"email":"lawyer@firm.com","password":"wrong"}`)
	require.NoError(t, handler.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownUser(t *testing.T) {
	setupAuthDB(t)

	c, rec := newJSONContext(t, http.MethodPost,
		`{"email":"nobody@firm.com","password":"whatever"}`)
	require.NoError(t, handler.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginWithFirmMintsTenantClaim(t *testing.T) {
	db := setupAuthDB(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	user := model.User{Email: "lawyer@firm.com", Password: string(hashed)}
	require.NoError(t, db.Create(&user).Error)

	tenant := model.Tenant{Name: "Smith & Partners", OwnerID: user.ID, Active: true}
	require.NoError(t, db.Create(&tenant).Error)
	require.NoError(t, db.Create(&model.TenantMember{
		UserID:   user.ID,
		TenantID: tenant.ID,
		Role:     model.RoleOwner,
		Active:   true,
	}).Error)

	body := fmt.Sprintf(`{"email":"lawyer@firm.com","password":"hunter22","tenant_id":%q}`, tenant.ID)
	c, rec := newJSONContext(t, http.MethodPost, body)
	require.NoError(t, handler.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	claims, err := jwtutil.ValidateToken(resp["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, tenant.ID.String(), claims.TenantID)
	assert.Equal(t, "Smith & Partners", claims.TenantName)
	assert.Equal(t, model.RoleOwner, claims.Role)
}

func TestLoginRejectsForeignFirm(t *testing.T) {
	db := setupAuthDB(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	user := model.User{Email: "lawyer@firm.com", Password: string(hashed)}
	require.NoError(t, db.Create(&user).Error)

	// A firm the user does not belong to.
	body := fmt.Sprintf(`{"email":"lawyer@firm.com","password":"hunter22","tenant_id":%q}`, uuid.New())
	c, rec := newJSONContext(t, http.MethodPost, body)
	require.NoError(t, handler.Login(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"legal-office-api/internal/middleware"
	"legal-office-api/internal/model"
	"legal-office-api/pkg/database"
	"legal-office-api/pkg/jwtutil"
	"legal-office-api/pkg/logger"
	"legal-office-api/prometheus"
)

// CreateTenantRequest is the payload for firm creation.
type CreateTenantRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Settings string `json:"settings,omitempty"`
}

// CreateTenant creates a firm and makes the caller its owner, in one
// transaction.
func CreateTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("create")

	userID, ok := middleware.UserID(c)
	if !ok {
		prometheus.RecordAuthError("unauthorized_tenant_creation")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req CreateTenantRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse firm creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	tx := database.GetDB().Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	tenant := model.Tenant{
		Name:     req.Name,
		Address:  req.Address,
		OwnerID:  userID,
		Settings: req.Settings,
		Active:   true,
	}
	if tenant.Settings == "" {
		tenant.Settings = "{}"
	}
	if err := tx.Create(&tenant).Error; err != nil {
		tx.Rollback()
		log.Error("Failed to create firm", zap.Error(err))
		return c.JSON(http.StatusConflict, echo.Map{"error": "firm creation failed"})
	}

	member := model.TenantMember{
		UserID:    userID,
		TenantID:  tenant.ID,
		Role:      model.RoleOwner,
		IsDefault: true,
		Active:    true,
	}
	if err := tx.Create(&member).Error; err != nil {
		tx.Rollback()
		log.Error("Failed to create firm membership", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "firm membership failed"})
	}

	if err := tx.Model(&model.User{}).Where("id = ?", userID).
		Update("default_tenant_id", tenant.ID).Error; err != nil {
		tx.Rollback()
		log.Error("Failed to set default firm", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user update failed"})
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction commit failed"})
	}

	log.Info("Firm created",
		zap.String("name", tenant.Name),
		zap.String("id", tenant.ID.String()),
		zap.String("owner_id", userID.String()))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Firm created successfully",
		"tenant":  tenant,
	})
}

// ListUserTenants retrieves all firms the authenticated user belongs to.
func ListUserTenants(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("list")

	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var members []model.TenantMember
	if err := database.GetDB().Preload("Tenant").
		Where("user_id = ? AND active = ?", userID, true).
		Find(&members).Error; err != nil {
		log.Error("Failed to retrieve user's firms", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve firms"})
	}

	type TenantResponse struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Role      string    `json:"role"`
		IsDefault bool      `json:"is_default"`
		CreatedAt time.Time `json:"created_at"`
	}

	response := make([]TenantResponse, 0, len(members))
	for _, m := range members {
		response = append(response, TenantResponse{
			ID:        m.TenantID.String(),
			Name:      m.Tenant.Name,
			Role:      m.Role,
			IsDefault: m.IsDefault,
			CreatedAt: m.Tenant.CreatedAt,
		})
	}

	return c.JSON(http.StatusOK, response)
}

// GetTenant retrieves firm details for a firm the caller belongs to.
func GetTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("access")

	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id := c.Param("id")

	defer prometheus.TrackDBOperation("query")(time.Now())

	var tenant model.Tenant
	if err := database.GetDB().First(&tenant, "id = ?", id).Error; err != nil {
		return notFoundOrError(c, err, "firm")
	}

	var member model.TenantMember
	err := database.GetDB().Where("user_id = ? AND tenant_id = ?", userID, id).First(&member).Error
	if err != nil && tenant.OwnerID != userID {
		log.Warn("Unauthorized firm access attempt",
			zap.String("requesting_user_id", userID.String()),
			zap.String("tenant_id", id))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	return c.JSON(http.StatusOK, tenant)
}

// SwitchTenantRequest is the payload for switching the active firm.
type SwitchTenantRequest struct {
	TenantID string `json:"tenant_id"`
}

// SwitchTenant verifies membership in the requested firm and issues a new
// token scoped to it. This is the only place (besides login) where the
// tenant claim is minted.
func SwitchTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("switch")

	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	email, _ := c.Get(middleware.EmailKey).(string)

	var req SwitchTenantRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.TenantID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_id is required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var member model.TenantMember
	if err := database.GetDB().
		Where("user_id = ? AND tenant_id = ? AND active = ?", userID, req.TenantID, true).
		First(&member).Error; err != nil {
		log.Warn("Unauthorized firm switch attempt",
			zap.String("user_id", userID.String()),
			zap.String("tenant_id", req.TenantID))
		prometheus.RecordAuthError("tenant_access_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied to requested firm"})
	}

	var tenant model.Tenant
	if err := database.GetDB().Select("id", "name").First(&tenant, "id = ?", req.TenantID).Error; err != nil {
		return notFoundOrError(c, err, "firm")
	}

	token, err := jwtutil.GenerateTokenWithTenant(email, userID, req.TenantID, tenant.Name, member.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.IncreaseActiveTokens()
	log.Info("User switched firm",
		zap.String("user_id", userID.String()),
		zap.String("tenant_id", req.TenantID))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"tenant": echo.Map{
			"id":   tenant.ID,
			"name": tenant.Name,
			"role": member.Role,
		},
	})
}

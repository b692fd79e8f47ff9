package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"legal-office-api/internal/middleware"
	"legal-office-api/internal/model"
	"legal-office-api/pkg/database"
	"legal-office-api/pkg/jwtutil"
	"legal-office-api/pkg/logger"
	"legal-office-api/prometheus"
)

// RegisterRequest is the payload for user registration.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// Register creates a new user account.
func Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse register request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	user := model.User{
		Email:    req.Email,
		Password: string(hashed),
		FullName: req.FullName,
	}
	if err := database.GetDB().Create(&user).Error; err != nil {
		log.Error("Failed to create user", zap.String("email", req.Email), zap.Error(err))
		prometheus.RecordAuthError("registration_failed")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	log.Info("User registered", zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, user)
}

// LoginRequest is the payload for user login. The tenant identifier is
// optional; when present, membership is verified before the claim is minted.
type LoginRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	TenantID *string `json:"tenant_id,omitempty"`
}

// Login verifies credentials and issues a JWT, carrying a tenant claim when
// the user has (or requests) a firm they belong to.
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var user model.User
	if err := database.GetDB().Where("email = ?", req.Email).First(&user).Error; err != nil {
		log.Error("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Error("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Resolve the firm to scope the token to: the requested one when given,
	// otherwise the user's default.
	var tenantID string
	var tenantName, userRole string

	resolve := func(id string) error {
		var member model.TenantMember
		err := database.GetDB().
			Where("user_id = ? AND tenant_id = ? AND active = ?", user.ID, id, true).
			First(&member).Error
		if err != nil {
			return err
		}
		var tenant model.Tenant
		if err := database.GetDB().Select("name").First(&tenant, "id = ?", id).Error; err == nil {
			tenantName = tenant.Name
		}
		tenantID = id
		userRole = member.Role
		return nil
	}

	if req.TenantID != nil && *req.TenantID != "" {
		if err := resolve(*req.TenantID); err != nil {
			log.Warn("User does not have access to the requested firm",
				zap.String("email", req.Email),
				zap.String("tenant_id", *req.TenantID))
			prometheus.RecordAuthError("tenant_access_denied")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied to the requested firm"})
		}
	} else if user.DefaultTenantID != nil {
		if err := resolve(user.DefaultTenantID.String()); err != nil {
			// Stale default membership: fall through to an unscoped token.
			tenantID = ""
		}
	}

	var token string
	var err error
	if tenantID != "" {
		token, err = jwtutil.GenerateTokenWithTenant(user.Email, user.ID, tenantID, tenantName, userRole)
	} else {
		token, err = jwtutil.GenerateToken(user.Email, user.ID)
	}
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.IncreaseActiveTokens()
	log.Info("User logged in", zap.String("email", user.Email), zap.String("tenant_id", tenantID))

	resp := echo.Map{"token": token}
	if tenantID != "" {
		resp["tenant"] = echo.Map{"id": tenantID, "name": tenantName, "role": userRole}
	}
	return c.JSON(http.StatusOK, resp)
}

// GetProfile returns the authenticated user's profile.
func GetProfile(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := middleware.UserID(c)
	if !ok {
		prometheus.RecordAuthError("unauthorized_profile_access")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var user model.User
	if err := database.GetDB().First(&user, "id = ?", userID).Error; err != nil {
		log.Error("User not found", zap.String("user_id", userID.String()), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateProfileRequest is the payload for profile updates.
type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
}

// UpdateProfile updates the authenticated user's profile.
func UpdateProfile(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.FullName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "full_name is required"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := database.GetDB().Model(&model.User{}).Where("id = ?", userID).
		Update("full_name", req.FullName).Error; err != nil {
		log.Error("Failed to update profile", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "profile updated"})
}

// ChangePasswordRequest is the payload for password changes.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword verifies the current password and replaces it.
func ChangePassword(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "current and new password are required"})
	}

	var user model.User
	if err := database.GetDB().First(&user, "id = ?", userID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "password change failed"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := database.GetDB().Model(&user).Update("password", string(hashed)).Error; err != nil {
		log.Error("Failed to change password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "password change failed"})
	}

	log.Info("Password changed", zap.String("user_id", userID.String()))
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}

// notFoundOrError distinguishes a missing (or invisible under the current
// tenant binding) row from a real database failure.
func notFoundOrError(c echo.Context, err error, entity string) error {
	log := logger.FromContext(c)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": entity + " not found"})
	}
	log.Error("Database error", zap.String("entity", entity), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}

// isDuplicateKey reports whether err is a unique-constraint violation.
func isDuplicateKey(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

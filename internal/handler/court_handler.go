package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"legal-office-api/internal/middleware"
	"legal-office-api/internal/model"
	"legal-office-api/pkg/logger"
	"legal-office-api/prometheus"
)

// CourtRequest is the payload for court creation and updates.
type CourtRequest struct {
	Name      string `json:"name"`
	CourtType string `json:"court_type"`
	Circuit   string `json:"circuit"`
	Address   string `json:"address"`
}

// ListCourts retrieves the firm's courts.
func ListCourts(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("court", "list")

	query := middleware.TenantDB(c)
	if courtType := c.QueryParam("court_type"); courtType != "" {
		query = query.Where("court_type = ?", courtType)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var courts []model.Court
	if err := query.Order("name").Find(&courts).Error; err != nil {
		log.Error("Failed to list courts", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve courts"})
	}

	return c.JSON(http.StatusOK, courts)
}

// GetCourt retrieves a single court by ID.
func GetCourt(c echo.Context) error {
	prometheus.RecordEntityOperation("court", "get")

	defer prometheus.TrackDBOperation("query")(time.Now())

	var court model.Court
	if err := middleware.TenantDB(c).First(&court, "id = ?", c.Param("id")).Error; err != nil {
		return notFoundOrError(c, err, "court")
	}

	return c.JSON(http.StatusOK, court)
}

// CreateCourt creates a new court for the firm.
func CreateCourt(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("court", "create")

	tenantID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no firm selected"})
	}

	var req CourtRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	court := model.Court{
		TenantID:  tenantID,
		Name:      req.Name,
		CourtType: req.CourtType,
		Circuit:   req.Circuit,
		Address:   req.Address,
	}
	if err := middleware.TenantDB(c).Create(&court).Error; err != nil {
		log.Error("Failed to create court", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create court"})
	}

	log.Info("Court created", zap.String("court_id", court.ID.String()), zap.String("name", court.Name))
	return c.JSON(http.StatusCreated, court)
}

// UpdateCourt updates an existing court.
func UpdateCourt(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("court", "update")

	var req CourtRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	db := middleware.TenantDB(c)

	var court model.Court
	if err := db.First(&court, "id = ?", c.Param("id")).Error; err != nil {
		return notFoundOrError(c, err, "court")
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	court.Name = req.Name
	court.CourtType = req.CourtType
	court.Circuit = req.Circuit
	court.Address = req.Address
	if err := db.Save(&court).Error; err != nil {
		log.Error("Failed to update court", zap.String("court_id", court.ID.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update court"})
	}

	return c.JSON(http.StatusOK, court)
}

// DeleteCourt soft-deletes a court.
func DeleteCourt(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("court", "delete")

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := middleware.TenantDB(c).Where("id = ?", c.Param("id")).Delete(&model.Court{})
	if result.Error != nil {
		log.Error("Failed to delete court", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete court"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "court not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "court deleted"})
}

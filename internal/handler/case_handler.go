package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"legal-office-api/internal/middleware"
	"legal-office-api/internal/model"
	"legal-office-api/pkg/logger"
	"legal-office-api/prometheus"
)

// CaseRequest is the payload for case creation and updates.
type CaseRequest struct {
	Number   string  `json:"number"`
	Title    string  `json:"title"`
	Subject  string  `json:"subject"`
	Status   string  `json:"status"`
	ClientID string  `json:"client_id"`
	CourtID  *string `json:"court_id,omitempty"`
}

// ListCases retrieves the firm's cases with optional filtering.
func ListCases(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("case", "list")

	query := middleware.TenantDB(c)

	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if clientID := c.QueryParam("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var cases []model.Case
	if err := query.Preload("Client").Order("created_at DESC").Find(&cases).Error; err != nil {
		log.Error("Failed to list cases", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve cases"})
	}

	return c.JSON(http.StatusOK, cases)
}

// GetCase retrieves a single case by ID.
func GetCase(c echo.Context) error {
	prometheus.RecordEntityOperation("case", "get")

	defer prometheus.TrackDBOperation("query")(time.Now())

	var caseRecord model.Case
	if err := middleware.TenantDB(c).Preload("Client").Preload("Court").
		First(&caseRecord, "id = ?", c.Param("id")).Error; err != nil {
		return notFoundOrError(c, err, "case")
	}

	return c.JSON(http.StatusOK, caseRecord)
}

// CreateCase creates a new case for the firm. The case number must be
// unique within the firm.
func CreateCase(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("case", "create")

	tenantID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no firm selected"})
	}

	var req CaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Number == "" || req.Title == "" || req.ClientID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number, title and client_id are required"})
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client_id"})
	}
	status := req.Status
	if status == "" {
		status = model.CaseStatusOpen
	}
	if !model.ValidCaseStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	db := middleware.TenantDB(c)

	// The referenced client must be visible under this firm's binding.
	var client model.Client
	if err := db.First(&client, "id = ?", clientID).Error; err != nil {
		return notFoundOrError(c, err, "client")
	}

	caseRecord := model.Case{
		TenantID: tenantID,
		Number:   req.Number,
		Title:    req.Title,
		Subject:  req.Subject,
		Status:   status,
		ClientID: clientID,
	}
	if req.CourtID != nil && *req.CourtID != "" {
		courtID, err := uuid.Parse(*req.CourtID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid court_id"})
		}
		var court model.Court
		if err := db.First(&court, "id = ?", courtID).Error; err != nil {
			return notFoundOrError(c, err, "court")
		}
		caseRecord.CourtID = &courtID
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := db.Create(&caseRecord).Error; err != nil {
		if isDuplicateKey(err) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "case number already exists"})
		}
		log.Error("Failed to create case", zap.String("number", req.Number), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create case"})
	}

	log.Info("Case created",
		zap.String("case_id", caseRecord.ID.String()),
		zap.String("number", caseRecord.Number))
	return c.JSON(http.StatusCreated, caseRecord)
}

// UpdateCase updates an existing case.
func UpdateCase(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("case", "update")

	var req CaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if req.Status != "" && !model.ValidCaseStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	db := middleware.TenantDB(c)

	var caseRecord model.Case
	if err := db.First(&caseRecord, "id = ?", c.Param("id")).Error; err != nil {
		return notFoundOrError(c, err, "case")
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	caseRecord.Title = req.Title
	caseRecord.Subject = req.Subject
	if req.Status != "" {
		caseRecord.Status = req.Status
	}
	if req.CourtID != nil {
		if *req.CourtID == "" {
			caseRecord.CourtID = nil
		} else {
			courtID, err := uuid.Parse(*req.CourtID)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid court_id"})
			}
			caseRecord.CourtID = &courtID
		}
	}
	if err := db.Save(&caseRecord).Error; err != nil {
		log.Error("Failed to update case", zap.String("case_id", caseRecord.ID.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update case"})
	}

	return c.JSON(http.StatusOK, caseRecord)
}

// DeleteCase soft-deletes a case.
func DeleteCase(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("case", "delete")

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := middleware.TenantDB(c).Where("id = ?", c.Param("id")).Delete(&model.Case{})
	if result.Error != nil {
		log.Error("Failed to delete case", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete case"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "case not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "case deleted"})
}

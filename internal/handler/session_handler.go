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

// SessionRequest is the payload for court session creation and updates.
type SessionRequest struct {
	CaseID      string    `json:"case_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Room        string    `json:"room"`
	Status      string    `json:"status"`
	Result      string    `json:"result"`
	Notes       string    `json:"notes"`
}

// ListSessions retrieves court sessions, optionally filtered by case or
// restricted to upcoming ones.
func ListSessions(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("session", "list")

	query := middleware.TenantDB(c)

	if caseID := c.QueryParam("case_id"); caseID != "" {
		query = query.Where("case_id = ?", caseID)
	}
	if c.QueryParam("upcoming") == "true" {
		query = query.Where("scheduled_at >= ? AND status = ?", time.Now(), model.SessionStatusScheduled)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var sessions []model.Session
	if err := query.Order("scheduled_at").Find(&sessions).Error; err != nil {
		log.Error("Failed to list sessions", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve sessions"})
	}

	return c.JSON(http.StatusOK, sessions)
}

// GetSession retrieves a single court session by ID.
func GetSession(c echo.Context) error {
	prometheus.RecordEntityOperation("session", "get")

	defer prometheus.TrackDBOperation("query")(time.Now())

	var session model.Session
	if err := middleware.TenantDB(c).Preload("Case").First(&session, "id = ?", c.Param("id")).Error; err != nil {
		return notFoundOrError(c, err, "session")
	}

	return c.JSON(http.StatusOK, session)
}

// CreateSession schedules a court session for a case.
func CreateSession(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("session", "create")

	tenantID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no firm selected"})
	}

	var req SessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.CaseID == "" || req.ScheduledAt.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "case_id and scheduled_at are required"})
	}
	caseID, err := uuid.Parse(req.CaseID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid case_id"})
	}
	status := req.Status
	if status == "" {
		status = model.SessionStatusScheduled
	}
	if !model.ValidSessionStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	db := middleware.TenantDB(c)

	var caseRecord model.Case
	if err := db.First(&caseRecord, "id = ?", caseID).Error; err != nil {
		return notFoundOrError(c, err, "case")
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	session := model.Session{
		TenantID:    tenantID,
		CaseID:      caseID,
		ScheduledAt: req.ScheduledAt,
		Room:        req.Room,
		Status:      status,
		Result:      req.Result,
		Notes:       req.Notes,
	}
	if err := db.Create(&session).Error; err != nil {
		log.Error("Failed to create session", zap.String("case_id", req.CaseID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create session"})
	}

	log.Info("Session scheduled",
		zap.String("session_id", session.ID.String()),
		zap.String("case_id", session.CaseID.String()),
		zap.Time("scheduled_at", session.ScheduledAt))
	return c.JSON(http.StatusCreated, session)
}

// UpdateSession updates a court session, typically recording its outcome.
func UpdateSession(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("session", "update")

	var req SessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Status != "" && !model.ValidSessionStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	db := middleware.TenantDB(c)

	var session model.Session
	if err := db.First(&session, "id = ?", c.Param("id")).Error; err != nil {
		return notFoundOrError(c, err, "session")
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if !req.ScheduledAt.IsZero() {
		session.ScheduledAt = req.ScheduledAt
	}
	if req.Room != "" {
		session.Room = req.Room
	}
	if req.Status != "" {
		session.Status = req.Status
	}
	session.Result = req.Result
	session.Notes = req.Notes
	if err := db.Save(&session).Error; err != nil {
		log.Error("Failed to update session", zap.String("session_id", session.ID.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update session"})
	}

	return c.JSON(http.StatusOK, session)
}

// DeleteSession soft-deletes a court session.
func DeleteSession(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("session", "delete")

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := middleware.TenantDB(c).Where("id = ?", c.Param("id")).Delete(&model.Session{})
	if result.Error != nil {
		log.Error("Failed to delete session", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete session"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "session deleted"})
}

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

// AppointmentRequest is the payload for appointment creation and updates.
type AppointmentRequest struct {
	ClientID *string   `json:"client_id,omitempty"`
	CaseID   *string   `json:"case_id,omitempty"`
	Title    string    `json:"title"`
	Location string    `json:"location"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Status   string    `json:"status"`
	Notes    string    `json:"notes"`
}

// ListAppointments retrieves appointments, optionally within a time range.
func ListAppointments(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("appointment", "list")

	query := middleware.TenantDB(c)

	if from := c.QueryParam("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			query = query.Where("starts_at >= ?", t)
		}
	}
	if to := c.QueryParam("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			query = query.Where("starts_at < ?", t)
		}
	}
	if clientID := c.QueryParam("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var appointments []model.Appointment
	if err := query.Order("starts_at").Find(&appointments).Error; err != nil {
		log.Error("Failed to list appointments", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve appointments"})
	}

	return c.JSON(http.StatusOK, appointments)
}

// GetAppointment retrieves a single appointment by ID.
func GetAppointment(c echo.Context) error {
	prometheus.RecordEntityOperation("appointment", "get")

	defer prometheus.TrackDBOperation("query")(time.Now())

	var appointment model.Appointment
	if err := middleware.TenantDB(c).First(&appointment, "id = ?", c.Param("id")).Error; err != nil {
		return notFoundOrError(c, err, "appointment")
	}

	return c.JSON(http.StatusOK, appointment)
}

// CreateAppointment schedules an appointment.
func CreateAppointment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("appointment", "create")

	tenantID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no firm selected"})
	}

	var req AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Title == "" || req.StartsAt.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and starts_at are required"})
	}
	if !req.EndsAt.IsZero() && req.EndsAt.Before(req.StartsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be after starts_at"})
	}
	status := req.Status
	if status == "" {
		status = model.AppointmentStatusScheduled
	}

	appointment := model.Appointment{
		TenantID: tenantID,
		Title:    req.Title,
		Location: req.Location,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Status:   status,
		Notes:    req.Notes,
	}

	db := middleware.TenantDB(c)

	if req.ClientID != nil && *req.ClientID != "" {
		clientID, err := uuid.Parse(*req.ClientID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client_id"})
		}
		var client model.Client
		if err := db.First(&client, "id = ?", clientID).Error; err != nil {
			return notFoundOrError(c, err, "client")
		}
		appointment.ClientID = &clientID
	}
	if req.CaseID != nil && *req.CaseID != "" {
		caseID, err := uuid.Parse(*req.CaseID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid case_id"})
		}
		var caseRecord model.Case
		if err := db.First(&caseRecord, "id = ?", caseID).Error; err != nil {
			return notFoundOrError(c, err, "case")
		}
		appointment.CaseID = &caseID
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := db.Create(&appointment).Error; err != nil {
		log.Error("Failed to create appointment", zap.String("title", req.Title), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create appointment"})
	}

	log.Info("Appointment created",
		zap.String("appointment_id", appointment.ID.String()),
		zap.Time("starts_at", appointment.StartsAt))
	return c.JSON(http.StatusCreated, appointment)
}

// UpdateAppointment updates an existing appointment.
func UpdateAppointment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("appointment", "update")

	var req AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	db := middleware.TenantDB(c)

	var appointment model.Appointment
	if err := db.First(&appointment, "id = ?", c.Param("id")).Error; err != nil {
		return notFoundOrError(c, err, "appointment")
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if req.Title != "" {
		appointment.Title = req.Title
	}
	if !req.StartsAt.IsZero() {
		appointment.StartsAt = req.StartsAt
	}
	if !req.EndsAt.IsZero() {
		appointment.EndsAt = req.EndsAt
	}
	if req.Status != "" {
		appointment.Status = req.Status
	}
	appointment.Location = req.Location
	appointment.Notes = req.Notes
	if err := db.Save(&appointment).Error; err != nil {
		log.Error("Failed to update appointment", zap.String("appointment_id", appointment.ID.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update appointment"})
	}

	return c.JSON(http.StatusOK, appointment)
}

// DeleteAppointment soft-deletes an appointment.
func DeleteAppointment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("appointment", "delete")

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := middleware.TenantDB(c).Where("id = ?", c.Param("id")).Delete(&model.Appointment{})
	if result.Error != nil {
		log.Error("Failed to delete appointment", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete appointment"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "appointment deleted"})
}

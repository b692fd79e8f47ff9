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

// ClientRequest is the payload for client creation and updates.
type ClientRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	NationalID string `json:"national_id"`
	Notes      string `json:"notes"`
}

// ListClients retrieves the firm's clients with optional filtering.
func ListClients(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("client", "list")

	query := middleware.TenantDB(c)

	if name := c.QueryParam("name"); name != "" {
		query = query.Where("name ILIKE ?", "%"+name+"%")
	}
	if email := c.QueryParam("email"); email != "" {
		query = query.Where("email = ?", email)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var clients []model.Client
	if err := query.Order("created_at DESC").Find(&clients).Error; err != nil {
		log.Error("Failed to list clients", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve clients"})
	}

	return c.JSON(http.StatusOK, clients)
}

// GetClient retrieves a single client by ID.
func GetClient(c echo.Context) error {
	prometheus.RecordEntityOperation("client", "get")

	defer prometheus.TrackDBOperation("query")(time.Now())

	var client model.Client
	if err := middleware.TenantDB(c).First(&client, "id = ?", c.Param("id")).Error; err != nil {
		return notFoundOrError(c, err, "client")
	}

	return c.JSON(http.StatusOK, client)
}

// CreateClient creates a new client for the firm.
func CreateClient(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("client", "create")

	tenantID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no firm selected"})
	}

	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid client request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	client := model.Client{
		TenantID:   tenantID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		NationalID: req.NationalID,
		Notes:      req.Notes,
	}
	if err := middleware.TenantDB(c).Create(&client).Error; err != nil {
		log.Error("Failed to create client", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create client"})
	}

	log.Info("Client created",
		zap.String("client_id", client.ID.String()),
		zap.String("name", client.Name))
	return c.JSON(http.StatusCreated, client)
}

// UpdateClient updates an existing client.
func UpdateClient(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("client", "update")

	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	db := middleware.TenantDB(c)

	var client model.Client
	if err := db.First(&client, "id = ?", c.Param("id")).Error; err != nil {
		return notFoundOrError(c, err, "client")
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	client.Name = req.Name
	client.Email = req.Email
	client.Phone = req.Phone
	client.Address = req.Address
	client.NationalID = req.NationalID
	client.Notes = req.Notes
	if err := db.Save(&client).Error; err != nil {
		log.Error("Failed to update client", zap.String("client_id", client.ID.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update client"})
	}

	return c.JSON(http.StatusOK, client)
}

// DeleteClient soft-deletes a client.
func DeleteClient(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("client", "delete")

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := middleware.TenantDB(c).Where("id = ?", c.Param("id")).Delete(&model.Client{})
	if result.Error != nil {
		log.Error("Failed to delete client", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete client"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "client deleted"})
}

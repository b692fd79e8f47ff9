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

// DocumentRequest is the payload for document metadata creation and updates.
// The file body itself is stored elsewhere and referenced by storage_key.
type DocumentRequest struct {
	CaseID      *string `json:"case_id,omitempty"`
	ClientID    *string `json:"client_id,omitempty"`
	Title       string  `json:"title"`
	FileName    string  `json:"file_name"`
	StorageKey  string  `json:"storage_key"`
	ContentType string  `json:"content_type"`
	SizeBytes   int64   `json:"size_bytes"`
}

// ListDocuments retrieves document records, optionally filtered by case or
// client.
func ListDocuments(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("document", "list")

	query := middleware.TenantDB(c)
	if caseID := c.QueryParam("case_id"); caseID != "" {
		query = query.Where("case_id = ?", caseID)
	}
	if clientID := c.QueryParam("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var documents []model.Document
	if err := query.Order("created_at DESC").Find(&documents).Error; err != nil {
		log.Error("Failed to list documents", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve documents"})
	}

	return c.JSON(http.StatusOK, documents)
}

// GetDocument retrieves a single document record by ID.
func GetDocument(c echo.Context) error {
	prometheus.RecordEntityOperation("document", "get")

	defer prometheus.TrackDBOperation("query")(time.Now())

	var document model.Document
	if err := middleware.TenantDB(c).First(&document, "id = ?", c.Param("id")).Error; err != nil {
		return notFoundOrError(c, err, "document")
	}

	return c.JSON(http.StatusOK, document)
}

// CreateDocument records document metadata.
func CreateDocument(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("document", "create")

	tenantID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no firm selected"})
	}
	userID, _ := middleware.UserID(c)

	var req DocumentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Title == "" || req.FileName == "" || req.StorageKey == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title, file_name and storage_key are required"})
	}

	document := model.Document{
		TenantID:     tenantID,
		Title:        req.Title,
		FileName:     req.FileName,
		StorageKey:   req.StorageKey,
		ContentType:  req.ContentType,
		SizeBytes:    req.SizeBytes,
		UploadedByID: userID,
	}

	db := middleware.TenantDB(c)

	if req.CaseID != nil && *req.CaseID != "" {
		caseID, err := uuid.Parse(*req.CaseID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid case_id"})
		}
		var caseRecord model.Case
		if err := db.First(&caseRecord, "id = ?", caseID).Error; err != nil {
			return notFoundOrError(c, err, "case")
		}
		document.CaseID = &caseID
	}
	if req.ClientID != nil && *req.ClientID != "" {
		clientID, err := uuid.Parse(*req.ClientID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client_id"})
		}
		var client model.Client
		if err := db.First(&client, "id = ?", clientID).Error; err != nil {
			return notFoundOrError(c, err, "client")
		}
		document.ClientID = &clientID
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := db.Create(&document).Error; err != nil {
		log.Error("Failed to create document", zap.String("title", req.Title), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create document"})
	}

	log.Info("Document recorded",
		zap.String("document_id", document.ID.String()),
		zap.String("file_name", document.FileName))
	return c.JSON(http.StatusCreated, document)
}

// UpdateDocument updates document metadata.
func UpdateDocument(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("document", "update")

	var req DocumentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	db := middleware.TenantDB(c)

	var document model.Document
	if err := db.First(&document, "id = ?", c.Param("id")).Error; err != nil {
		return notFoundOrError(c, err, "document")
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	document.Title = req.Title
	if req.FileName != "" {
		document.FileName = req.FileName
	}
	if req.ContentType != "" {
		document.ContentType = req.ContentType
	}
	if err := db.Save(&document).Error; err != nil {
		log.Error("Failed to update document", zap.String("document_id", document.ID.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update document"})
	}

	return c.JSON(http.StatusOK, document)
}

// DeleteDocument soft-deletes a document record. The stored file is left to
// the storage layer's retention policy.
func DeleteDocument(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("document", "delete")

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := middleware.TenantDB(c).Where("id = ?", c.Param("id")).Delete(&model.Document{})
	if result.Error != nil {
		log.Error("Failed to delete document", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete document"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "document deleted"})
}

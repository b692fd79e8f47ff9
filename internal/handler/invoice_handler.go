package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"legal-office-api/internal/middleware"
	"legal-office-api/internal/model"
	"legal-office-api/pkg/logger"
	"legal-office-api/prometheus"
)

// InvoiceRequest is the payload for invoice creation and updates.
type InvoiceRequest struct {
	Number   string          `json:"number"`
	ClientID string          `json:"client_id"`
	CaseID   *string         `json:"case_id,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	DueAt    *time.Time      `json:"due_at,omitempty"`
	Notes    string          `json:"notes"`
}

// ListInvoices retrieves the firm's invoices with optional filtering.
func ListInvoices(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("invoice", "list")

	query := middleware.TenantDB(c)
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if clientID := c.QueryParam("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var invoices []model.Invoice
	if err := query.Order("created_at DESC").Find(&invoices).Error; err != nil {
		log.Error("Failed to list invoices", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve invoices"})
	}

	return c.JSON(http.StatusOK, invoices)
}

// GetInvoice retrieves a single invoice by ID.
func GetInvoice(c echo.Context) error {
	prometheus.RecordEntityOperation("invoice", "get")

	defer prometheus.TrackDBOperation("query")(time.Now())

	var invoice model.Invoice
	if err := middleware.TenantDB(c).First(&invoice, "id = ?", c.Param("id")).Error; err != nil {
		return notFoundOrError(c, err, "invoice")
	}

	return c.JSON(http.StatusOK, invoice)
}

// CreateInvoice creates a draft invoice. The invoice number must be unique
// within the firm.
func CreateInvoice(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("invoice", "create")

	tenantID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no firm selected"})
	}

	var req InvoiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Number == "" || req.ClientID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number and client_id are required"})
	}
	if !req.Amount.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client_id"})
	}

	db := middleware.TenantDB(c)

	var client model.Client
	if err := db.First(&client, "id = ?", clientID).Error; err != nil {
		return notFoundOrError(c, err, "client")
	}

	invoice := model.Invoice{
		TenantID: tenantID,
		Number:   req.Number,
		ClientID: clientID,
		Amount:   req.Amount,
		Status:   model.InvoiceStatusDraft,
		DueAt:    req.DueAt,
		Notes:    req.Notes,
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
		invoice.CaseID = &caseID
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := db.Create(&invoice).Error; err != nil {
		if isDuplicateKey(err) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "invoice number already exists"})
		}
		log.Error("Failed to create invoice", zap.String("number", req.Number), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create invoice"})
	}

	log.Info("Invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("number", invoice.Number),
		zap.String("amount", invoice.Amount.String()))
	return c.JSON(http.StatusCreated, invoice)
}

// IssueInvoice moves a draft invoice to issued and stamps the issue time.
func IssueInvoice(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("invoice", "issue")

	db := middleware.TenantDB(c)

	var invoice model.Invoice
	if err := db.First(&invoice, "id = ?", c.Param("id")).Error; err != nil {
		return notFoundOrError(c, err, "invoice")
	}
	if invoice.Status != model.InvoiceStatusDraft {
		return c.JSON(http.StatusConflict, echo.Map{"error": "only draft invoices can be issued"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	now := time.Now()
	invoice.Status = model.InvoiceStatusIssued
	invoice.IssuedAt = &now
	if err := db.Save(&invoice).Error; err != nil {
		log.Error("Failed to issue invoice", zap.String("invoice_id", invoice.ID.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue invoice"})
	}

	log.Info("Invoice issued", zap.String("invoice_id", invoice.ID.String()))
	return c.JSON(http.StatusOK, invoice)
}

// VoidInvoice voids an invoice. Issued invoices are voided rather than
// deleted so the numbering trail stays intact.
func VoidInvoice(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("invoice", "void")

	db := middleware.TenantDB(c)

	var invoice model.Invoice
	if err := db.First(&invoice, "id = ?", c.Param("id")).Error; err != nil {
		return notFoundOrError(c, err, "invoice")
	}
	if invoice.Status == model.InvoiceStatusPaid {
		return c.JSON(http.StatusConflict, echo.Map{"error": "paid invoices cannot be voided"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	invoice.Status = model.InvoiceStatusVoid
	if err := db.Save(&invoice).Error; err != nil {
		log.Error("Failed to void invoice", zap.String("invoice_id", invoice.ID.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to void invoice"})
	}

	log.Info("Invoice voided", zap.String("invoice_id", invoice.ID.String()))
	return c.JSON(http.StatusOK, invoice)
}

// UpdateInvoice updates a draft invoice. Issued invoices are immutable
// except for status transitions.
func UpdateInvoice(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("invoice", "update")

	var req InvoiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	db := middleware.TenantDB(c)

	var invoice model.Invoice
	if err := db.First(&invoice, "id = ?", c.Param("id")).Error; err != nil {
		return notFoundOrError(c, err, "invoice")
	}
	if invoice.Status != model.InvoiceStatusDraft {
		return c.JSON(http.StatusConflict, echo.Map{"error": "only draft invoices can be edited"})
	}
	if !req.Amount.IsZero() && !req.Amount.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if !req.Amount.IsZero() {
		invoice.Amount = req.Amount
	}
	if req.DueAt != nil {
		invoice.DueAt = req.DueAt
	}
	invoice.Notes = req.Notes
	if err := db.Save(&invoice).Error; err != nil {
		log.Error("Failed to update invoice", zap.String("invoice_id", invoice.ID.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update invoice"})
	}

	return c.JSON(http.StatusOK, invoice)
}

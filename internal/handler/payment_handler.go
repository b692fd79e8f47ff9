package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"legal-office-api/internal/middleware"
	"legal-office-api/internal/model"
	"legal-office-api/pkg/logger"
	"legal-office-api/prometheus"
)

// PaymentRequest is the payload for recording a payment against an invoice.
type PaymentRequest struct {
	InvoiceID string          `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
}

// ListPayments retrieves payments, optionally filtered by invoice.
func ListPayments(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("payment", "list")

	query := middleware.TenantDB(c)
	if invoiceID := c.QueryParam("invoice_id"); invoiceID != "" {
		query = query.Where("invoice_id = ?", invoiceID)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var payments []model.Payment
	if err := query.Order("paid_at DESC").Find(&payments).Error; err != nil {
		log.Error("Failed to list payments", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve payments"})
	}

	return c.JSON(http.StatusOK, payments)
}

// GetPayment retrieves a single payment by ID.
func GetPayment(c echo.Context) error {
	prometheus.RecordEntityOperation("payment", "get")

	defer prometheus.TrackDBOperation("query")(time.Now())

	var payment model.Payment
	if err := middleware.TenantDB(c).First(&payment, "id = ?", c.Param("id")).Error; err != nil {
		return notFoundOrError(c, err, "payment")
	}

	return c.JSON(http.StatusOK, payment)
}

// CreatePayment records a payment and, when the invoice is fully covered,
// flips its status to paid. The payment row and the status change commit
// together.
func CreatePayment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("payment", "create")

	tenantID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no firm selected"})
	}

	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.InvoiceID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invoice_id is required"})
	}
	if !req.Amount.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
	}
	invoiceID, err := uuid.Parse(req.InvoiceID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invoice_id"})
	}
	paidAt := time.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	var payment model.Payment
	txErr := middleware.TenantDB(c).Transaction(func(tx *gorm.DB) error {
		var invoice model.Invoice
		if err := tx.First(&invoice, "id = ?", invoiceID).Error; err != nil {
			return err
		}
		if invoice.Status == model.InvoiceStatusVoid {
			return echo.NewHTTPError(http.StatusConflict, "cannot pay a void invoice")
		}

		payment = model.Payment{
			TenantID:  tenantID,
			InvoiceID: invoice.ID,
			Amount:    req.Amount,
			Method:    req.Method,
			Reference: req.Reference,
			PaidAt:    paidAt,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		var total decimal.NullDecimal
		if err := tx.Model(&model.Payment{}).
			Where("invoice_id = ?", invoice.ID).
			Select("SUM(amount)").Scan(&total).Error; err != nil {
			return err
		}
		if total.Valid && total.Decimal.GreaterThanOrEqual(invoice.Amount) {
			if err := tx.Model(&invoice).Update("status", model.InvoiceStatusPaid).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		if he, ok := txErr.(*echo.HTTPError); ok {
			return c.JSON(he.Code, echo.Map{"error": he.Message})
		}
		return notFoundOrError(c, txErr, "invoice")
	}

	log.Info("Payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("invoice_id", invoiceID.String()),
		zap.String("amount", payment.Amount.String()))
	return c.JSON(http.StatusCreated, payment)
}

package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"legal-office-api/internal/ledger"
	"legal-office-api/internal/middleware"
	"legal-office-api/internal/model"
	"legal-office-api/pkg/logger"
	"legal-office-api/prometheus"
)

// TrustAccountRequest is the payload for trust account creation.
type TrustAccountRequest struct {
	ClientID      string `json:"client_id"`
	AccountNumber string `json:"account_number"`
}

// TrustTransactionRequest is the payload for posting a ledger entry.
type TrustTransactionRequest struct {
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Memo   string          `json:"memo"`
}

// ListTrustAccounts retrieves the firm's trust accounts.
func ListTrustAccounts(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("trust_account", "list")

	query := middleware.TenantDB(c)
	if clientID := c.QueryParam("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var accounts []model.TrustAccount
	if err := query.Order("created_at").Find(&accounts).Error; err != nil {
		log.Error("Failed to list trust accounts", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve trust accounts"})
	}

	return c.JSON(http.StatusOK, accounts)
}

// GetTrustAccount retrieves a single trust account by ID.
func GetTrustAccount(c echo.Context) error {
	prometheus.RecordEntityOperation("trust_account", "get")

	defer prometheus.TrackDBOperation("query")(time.Now())

	var account model.TrustAccount
	if err := middleware.TenantDB(c).First(&account, "id = ?", c.Param("id")).Error; err != nil {
		return notFoundOrError(c, err, "trust account")
	}

	return c.JSON(http.StatusOK, account)
}

// CreateTrustAccount opens a trust account for a client. The account number
// must be unique within the firm.
func CreateTrustAccount(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("trust_account", "create")

	tenantID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no firm selected"})
	}

	var req TrustAccountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.ClientID == "" || req.AccountNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_id and account_number are required"})
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

	defer prometheus.TrackDBOperation("insert")(time.Now())

	account := model.TrustAccount{
		TenantID:      tenantID,
		ClientID:      clientID,
		AccountNumber: req.AccountNumber,
		Balance:       decimal.Zero,
	}
	if err := db.Create(&account).Error; err != nil {
		if isDuplicateKey(err) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "account number already exists"})
		}
		log.Error("Failed to create trust account", zap.String("account_number", req.AccountNumber), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create trust account"})
	}

	log.Info("Trust account opened",
		zap.String("account_id", account.ID.String()),
		zap.String("account_number", account.AccountNumber))
	return c.JSON(http.StatusCreated, account)
}

// CreateTrustTransaction posts a ledger entry to a trust account. A debit
// that would drive the balance negative is rejected with no balance change
// and no transaction row.
func CreateTrustTransaction(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("trust_transaction", "create")

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid account id"})
	}

	var req TrustTransactionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	entry, err := ledger.Apply(middleware.TenantDB(c), accountID, ledger.EntryType(req.Type), req.Amount, req.Memo)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrUnknownEntryType):
			prometheus.RecordLedgerEntry(req.Type, "rejected")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown transaction type"})
		case errors.Is(err, ledger.ErrNonPositiveAmount):
			prometheus.RecordLedgerEntry(req.Type, "rejected")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
		case errors.Is(err, ledger.ErrAccountNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "trust account not found"})
		case errors.Is(err, ledger.ErrInsufficientBalance):
			prometheus.RecordLedgerEntry(req.Type, "rejected")
			log.Warn("Trust debit rejected, insufficient balance",
				zap.String("account_id", accountID.String()),
				zap.String("amount", req.Amount.String()))
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "insufficient balance"})
		default:
			log.Error("Failed to post trust transaction", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to post transaction"})
		}
	}

	prometheus.RecordLedgerEntry(req.Type, "applied")
	log.Info("Trust transaction posted",
		zap.String("transaction_id", entry.ID.String()),
		zap.String("account_id", accountID.String()),
		zap.String("type", entry.Type),
		zap.String("amount", entry.Amount.String()))
	return c.JSON(http.StatusCreated, entry)
}

// ListTrustTransactions retrieves an account's ledger entries ordered by
// creation time.
func ListTrustTransactions(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("trust_transaction", "list")

	db := middleware.TenantDB(c)

	var account model.TrustAccount
	if err := db.First(&account, "id = ?", c.Param("id")).Error; err != nil {
		return notFoundOrError(c, err, "trust account")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var entries []model.TrustTransaction
	if err := db.Where("account_id = ?", account.ID).Order("created_at").Find(&entries).Error; err != nil {
		log.Error("Failed to list trust transactions", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve transactions"})
	}

	return c.JSON(http.StatusOK, entries)
}

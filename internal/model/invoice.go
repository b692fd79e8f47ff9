package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice statuses.
const (
	InvoiceStatusDraft  = "draft"
	InvoiceStatusIssued = "issued"
	InvoiceStatusPaid   = "paid"
	InvoiceStatusVoid   = "void"
)

// Invoice represents a bill to a client. Invoice numbers are unique per firm.
// Firm revenue accounting is deliberately separate from client trust funds.
type Invoice struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID       `json:"tenant_id" gorm:"type:uuid;index;not null;uniqueIndex:idx_invoices_tenant_number"`
	Number    string          `json:"number" gorm:"type:varchar(50);not null;uniqueIndex:idx_invoices_tenant_number"`
	ClientID  uuid.UUID       `json:"client_id" gorm:"type:uuid;index;not null"`
	CaseID    *uuid.UUID      `json:"case_id,omitempty" gorm:"type:uuid;index"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	Status    string          `json:"status" gorm:"type:varchar(20);not null;default:'draft'"`
	IssuedAt  *time.Time      `json:"issued_at,omitempty"`
	DueAt     *time.Time      `json:"due_at,omitempty"`
	Notes     string          `json:"notes" gorm:"type:text"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `json:"-" gorm:"index"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

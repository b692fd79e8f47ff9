package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment records money received against an invoice.
type Payment struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID       `json:"tenant_id" gorm:"type:uuid;index;not null"`
	InvoiceID uuid.UUID       `json:"invoice_id" gorm:"type:uuid;index;not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	Method    string          `json:"method" gorm:"type:varchar(30)"` // cash, transfer, card, cheque
	Reference string          `json:"reference" gorm:"type:varchar(100)"`
	PaidAt    time.Time       `json:"paid_at" gorm:"not null"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `json:"-" gorm:"index"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

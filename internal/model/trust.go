package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TrustAccount holds client funds in trust, separate from firm revenue.
// The balance must never go negative; the ledger enforces that inside a
// single database transaction per entry.
type TrustAccount struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID       `json:"tenant_id" gorm:"type:uuid;index;not null;uniqueIndex:idx_trust_accounts_tenant_number"`
	ClientID      uuid.UUID       `json:"client_id" gorm:"type:uuid;index;not null"`
	AccountNumber string          `json:"account_number" gorm:"type:varchar(50);not null;uniqueIndex:idx_trust_accounts_tenant_number"`
	Balance       decimal.Decimal `json:"balance" gorm:"type:numeric(14,2);not null;default:0"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `json:"-" gorm:"index"`
}

func (a *TrustAccount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TrustTransaction is one ledger entry against a trust account. Amount is
// always positive; the entry type decides whether it credits or debits the
// balance.
type TrustTransaction struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID       `json:"tenant_id" gorm:"type:uuid;index;not null"`
	AccountID uuid.UUID       `json:"account_id" gorm:"type:uuid;index;not null"`
	Type      string          `json:"type" gorm:"type:varchar(30);not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	Memo      string          `json:"memo" gorm:"type:text"`
	CreatedAt time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `json:"-" gorm:"index"`
}

func (t *TrustTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

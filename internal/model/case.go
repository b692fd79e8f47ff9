package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Case statuses.
const (
	CaseStatusOpen     = "open"
	CaseStatusPending  = "pending"
	CaseStatusClosed   = "closed"
	CaseStatusArchived = "archived"
)

// Case represents a legal matter handled for a client. The case number is
// assigned by the firm and is unique within the firm, not globally.
type Case struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID      `json:"tenant_id" gorm:"type:uuid;index;not null;uniqueIndex:idx_cases_tenant_number"`
	Number    string         `json:"number" gorm:"type:varchar(50);not null;uniqueIndex:idx_cases_tenant_number"`
	Title     string         `json:"title" gorm:"type:varchar(200);not null"`
	Subject   string         `json:"subject" gorm:"type:text"`
	Status    string         `json:"status" gorm:"type:varchar(20);not null;default:'open'"`
	ClientID  uuid.UUID      `json:"client_id" gorm:"type:uuid;index;not null"`
	CourtID   *uuid.UUID     `json:"court_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Client Client `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Court  *Court `json:"court,omitempty" gorm:"foreignKey:CourtID"`
}

func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ValidCaseStatus reports whether s is one of the known case statuses.
func ValidCaseStatus(s string) bool {
	switch s {
	case CaseStatusOpen, CaseStatusPending, CaseStatusClosed, CaseStatusArchived:
		return true
	}
	return false
}

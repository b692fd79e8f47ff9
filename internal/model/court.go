package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Court represents a court the firm litigates before.
type Court struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID      `json:"tenant_id" gorm:"type:uuid;index;not null"`
	Name      string         `json:"name" gorm:"type:varchar(150);not null"`
	CourtType string         `json:"court_type" gorm:"type:varchar(50)"` // e.g. civil, criminal, appeal
	Circuit   string         `json:"circuit" gorm:"type:varchar(100)"`
	Address   string         `json:"address" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (c *Court) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

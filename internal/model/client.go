package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client represents a person or company the firm represents.
type Client struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID      `json:"tenant_id" gorm:"type:uuid;index;not null"`
	Name       string         `json:"name" gorm:"type:varchar(150);not null"`
	Email      string         `json:"email" gorm:"type:varchar(100);index"`
	Phone      string         `json:"phone" gorm:"type:varchar(30)"`
	Address    string         `json:"address" gorm:"type:text"`
	NationalID string         `json:"national_id" gorm:"type:varchar(50)"`
	Notes      string         `json:"notes" gorm:"type:text"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

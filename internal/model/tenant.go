package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant represents a law firm. It is the root of isolation: every
// tenant-scoped row carries a foreign key to exactly one tenant, and the
// row-level security policies compare that key against the session binding.
type Tenant struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100);uniqueIndex"`
	Address   string         `json:"address" gorm:"type:text"`
	OwnerID   uuid.UUID      `json:"owner_id" gorm:"type:uuid;index;not null"`
	Active    bool           `json:"active" gorm:"default:true"`
	Settings  string         `json:"settings" gorm:"type:jsonb;default:'{}'"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a staff member account. Users are not tenant-scoped rows:
// a user may belong to several firms through TenantMember, and authentication
// happens before any tenant binding exists.
type User struct {
	ID              uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Email           string         `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Password        string         `json:"-" gorm:"type:varchar(255)"`
	FullName        string         `json:"full_name" gorm:"type:varchar(150)"`
	DefaultTenantID *uuid.UUID     `json:"default_tenant_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

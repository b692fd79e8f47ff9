package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document holds metadata for a stored file. The file body itself lives in
// object storage and is addressed by StorageKey; this service only tracks
// the record.
type Document struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID      `json:"tenant_id" gorm:"type:uuid;index;not null"`
	CaseID       *uuid.UUID     `json:"case_id,omitempty" gorm:"type:uuid;index"`
	ClientID     *uuid.UUID     `json:"client_id,omitempty" gorm:"type:uuid;index"`
	Title        string         `json:"title" gorm:"type:varchar(200);not null"`
	FileName     string         `json:"file_name" gorm:"type:varchar(255);not null"`
	StorageKey   string         `json:"storage_key" gorm:"type:varchar(500);not null"`
	ContentType  string         `json:"content_type" gorm:"type:varchar(100)"`
	SizeBytes    int64          `json:"size_bytes"`
	UploadedByID uuid.UUID      `json:"uploaded_by_id" gorm:"type:uuid;index"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

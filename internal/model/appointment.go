package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment statuses.
const (
	AppointmentStatusScheduled = "scheduled"
	AppointmentStatusDone      = "done"
	AppointmentStatusCancelled = "cancelled"
)

// Appointment represents a meeting with a client, optionally tied to a case.
type Appointment struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID      `json:"tenant_id" gorm:"type:uuid;index;not null"`
	ClientID  *uuid.UUID     `json:"client_id,omitempty" gorm:"type:uuid;index"`
	CaseID    *uuid.UUID     `json:"case_id,omitempty" gorm:"type:uuid;index"`
	Title     string         `json:"title" gorm:"type:varchar(200);not null"`
	Location  string         `json:"location" gorm:"type:varchar(200)"`
	StartsAt  time.Time      `json:"starts_at" gorm:"index;not null"`
	EndsAt    time.Time      `json:"ends_at"`
	Status    string         `json:"status" gorm:"type:varchar(20);not null;default:'scheduled'"`
	Notes     string         `json:"notes" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session statuses.
const (
	SessionStatusScheduled = "scheduled"
	SessionStatusHeld      = "held"
	SessionStatusPostponed = "postponed"
	SessionStatusCancelled = "cancelled"
)

// Session represents a court session (hearing) of a case.
type Session struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID      `json:"tenant_id" gorm:"type:uuid;index;not null"`
	CaseID      uuid.UUID      `json:"case_id" gorm:"type:uuid;index;not null"`
	ScheduledAt time.Time      `json:"scheduled_at" gorm:"index;not null"`
	Room        string         `json:"room" gorm:"type:varchar(50)"`
	Status      string         `json:"status" gorm:"type:varchar(20);not null;default:'scheduled'"`
	Result      string         `json:"result" gorm:"type:text"`
	Notes       string         `json:"notes" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Case Case `json:"case,omitempty" gorm:"foreignKey:CaseID"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ValidSessionStatus reports whether s is one of the known session statuses.
func ValidSessionStatus(s string) bool {
	switch s {
	case SessionStatusScheduled, SessionStatusHeld, SessionStatusPostponed, SessionStatusCancelled:
		return true
	}
	return false
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Visit is a scheduled property showing
type Visit struct {
	ID         string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	PropertyID string      `gorm:"type:varchar(36);not null;index" json:"property_id"`
	AgentID    string      `gorm:"type:varchar(36);not null;index" json:"agent_id"`
	LeadID     *string     `gorm:"type:varchar(36)" json:"lead_id,omitempty"`
	InquiryID  *string     `gorm:"type:varchar(36)" json:"inquiry_id,omitempty"`
	Name       string      `gorm:"type:varchar(255);not null" json:"name"`
	Email      string      `gorm:"type:varchar(255);not null" json:"email"`
	Phone      string      `gorm:"type:varchar(50);not null" json:"phone"`
	VisitDate  string      `gorm:"type:varchar(10);not null;index" json:"visit_date"` // YYYY-MM-DD
	VisitTime  string      `gorm:"type:varchar(5);not null" json:"visit_time"`        // HH:MM
	Notes      string      `gorm:"type:text" json:"notes,omitempty"`
	Status     VisitStatus `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`

	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
}

type VisitStatus string

const (
	VisitStatusScheduled VisitStatus = "scheduled"
	VisitStatusCompleted VisitStatus = "completed"
	VisitStatusCancelled VisitStatus = "cancelled"
	VisitStatusNoShow    VisitStatus = "no_show"
)

func (s VisitStatus) Valid() bool {
	switch s {
	case VisitStatusScheduled, VisitStatusCompleted, VisitStatusCancelled, VisitStatusNoShow:
		return true
	}
	return false
}

// TableName specifies the table name
func (Visit) TableName() string {
	return "visits"
}

func (v *Visit) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Inquiry is a contact-form message about a property
type Inquiry struct {
	ID            string        `gorm:"type:varchar(36);primaryKey" json:"id"`
	PropertyID    string        `gorm:"type:varchar(36);not null;index" json:"property_id"`
	AgentID       string        `gorm:"type:varchar(36);not null;index" json:"agent_id"`
	Name          string        `gorm:"type:varchar(255);not null" json:"name"`
	Email         string        `gorm:"type:varchar(255);not null" json:"email"`
	Phone         string        `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Message       string        `gorm:"type:text;not null" json:"message"`
	PreferredDate string        `gorm:"type:varchar(10)" json:"preferred_date,omitempty"` // YYYY-MM-DD
	PreferredTime string        `gorm:"type:varchar(5)" json:"preferred_time,omitempty"`  // HH:MM
	Notes         string        `gorm:"type:text" json:"notes,omitempty"`
	Status        InquiryStatus `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`

	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
}

type InquiryStatus string

const (
	InquiryStatusNew       InquiryStatus = "new"
	InquiryStatusContacted InquiryStatus = "contacted"
	InquiryStatusScheduled InquiryStatus = "scheduled"
	InquiryStatusCompleted InquiryStatus = "completed"
	InquiryStatusCancelled InquiryStatus = "cancelled"
)

func (s InquiryStatus) Valid() bool {
	switch s {
	case InquiryStatusNew, InquiryStatusContacted, InquiryStatusScheduled, InquiryStatusCompleted, InquiryStatusCancelled:
		return true
	}
	return false
}

// TableName specifies the table name
func (Inquiry) TableName() string {
	return "inquiries"
}

func (i *Inquiry) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

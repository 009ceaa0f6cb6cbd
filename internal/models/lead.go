package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lead is a prospective buyer or tenant attached to a property and its agent
type Lead struct {
	ID         string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	PropertyID string     `gorm:"type:varchar(36);not null;index" json:"property_id"`
	AgentID    string     `gorm:"type:varchar(36);not null;index" json:"agent_id"`
	Name       string     `gorm:"type:varchar(255);not null" json:"name"`
	Email      string     `gorm:"type:varchar(255);not null" json:"email"`
	Phone      string     `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Message    string     `gorm:"type:text" json:"message,omitempty"`
	Source     LeadSource `gorm:"type:varchar(20);not null;default:'website'" json:"source"`
	Status     LeadStatus `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	Notes      string     `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`

	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
}

type LeadSource string

const (
	LeadSourceWebsite  LeadSource = "website"
	LeadSourcePhone    LeadSource = "phone"
	LeadSourceEmail    LeadSource = "email"
	LeadSourceReferral LeadSource = "referral"
	LeadSourceOther    LeadSource = "other"
)

func (s LeadSource) Valid() bool {
	switch s {
	case LeadSourceWebsite, LeadSourcePhone, LeadSourceEmail, LeadSourceReferral, LeadSourceOther:
		return true
	}
	return false
}

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusConverted, LeadStatusLost:
		return true
	}
	return false
}

// TableName specifies the table name
func (Lead) TableName() string {
	return "leads"
}

func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

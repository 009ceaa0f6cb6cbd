package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Favorite marks a property as saved by a user. Rows are created and deleted, never updated.
type Favorite struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID     string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorite_user_property" json:"user_id"`
	PropertyID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorite_user_property,priority:2;index" json:"property_id"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`

	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
}

// TableName specifies the table name
func (Favorite) TableName() string {
	return "favorites"
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

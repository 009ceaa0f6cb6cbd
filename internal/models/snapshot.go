package models

import "time"

// PropertySnapshot is the state of a listing on a given day
type PropertySnapshot struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID string    `gorm:"type:varchar(36);not null;index:idx_property_date" json:"property_id"`
	SnapshotAt time.Time `gorm:"type:date;not null;index:idx_property_date,priority:2;index:idx_snapshot_date" json:"snapshot_at"`

	Price    float64 `gorm:"type:decimal(14,2);not null" json:"price"`
	Currency string  `gorm:"type:varchar(3)" json:"currency"`
	Status   string  `gorm:"type:varchar(20);not null" json:"status"`
	Title    string  `gorm:"type:varchar(255)" json:"title"`
	Version  int     `json:"version"`

	HasChanged bool   `gorm:"default:false" json:"has_changed"`
	ChangeNote string `gorm:"type:text" json:"change_note,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name
func (PropertySnapshot) TableName() string {
	return "property_snapshots"
}

// PropertyChange is a difference detected between two consecutive snapshots
type PropertyChange struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID      string    `gorm:"type:varchar(36);not null;index" json:"property_id"`
	SnapshotID      uint      `gorm:"not null" json:"snapshot_id"`
	ChangeType      string    `gorm:"type:varchar(50);not null" json:"change_type"`
	OldValue        string    `gorm:"type:text" json:"old_value,omitempty"`
	NewValue        string    `gorm:"type:text" json:"new_value,omitempty"`
	ChangeMagnitude *float64  `gorm:"type:decimal(14,2)" json:"change_magnitude,omitempty"` // price delta
	DetectedAt      time.Time `gorm:"not null;autoCreateTime;index" json:"detected_at"`
}

// TableName specifies the table name
func (PropertyChange) TableName() string {
	return "property_changes"
}

// ChangeType constants
const (
	ChangeTypePrice   = "price_changed"
	ChangeTypeStatus  = "status_changed"
	ChangeTypeTitle   = "title_changed"
	ChangeTypeNew     = "new_property"
	ChangeTypeRemoved = "property_removed"
)

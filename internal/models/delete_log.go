package models

import "time"

// DeleteLog records a property that was physically removed from the database
type DeleteLog struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID string    `gorm:"type:varchar(36);not null;index" json:"property_id"`
	AgentID    string    `gorm:"type:varchar(36)" json:"agent_id"`
	Title      string    `gorm:"type:varchar(255)" json:"title"`
	Address    string    `gorm:"type:varchar(255)" json:"address"`
	RemovedAt  time.Time `json:"removed_at"` // when the listing was soft-deleted
	PurgedAt   time.Time `gorm:"not null;autoCreateTime;index" json:"purged_at"`
	Reason     string    `gorm:"type:varchar(50);not null" json:"reason"`
}

// TableName specifies the table name
func (DeleteLog) TableName() string {
	return "delete_logs"
}

// DeleteReason constants
const (
	DeleteReasonExpired = "retention_expired"
	DeleteReasonManual  = "manual_deletion"
)

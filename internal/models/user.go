package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account that can sign in. Agents additionally own an Agent profile row.
type User struct {
	ID           string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	FullName     string     `gorm:"type:varchar(255);not null" json:"full_name"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Phone        string     `gorm:"type:varchar(50)" json:"phone,omitempty"`
	AvatarURL    string     `gorm:"type:text" json:"avatar_url,omitempty"`
	Role         UserRole   `gorm:"type:varchar(20);not null;default:'client';index" json:"role"`
	Status       UserStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleAgent  UserRole = "agent"
	RoleClient UserRole = "client"
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleAgent || r == RoleClient
}

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusInactive
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

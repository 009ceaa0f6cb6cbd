package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Property struct {
	// Listing
	ID          string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	AgentID     string         `gorm:"type:varchar(36);not null;index" json:"agent_id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Type        PropertyType   `gorm:"type:varchar(20);not null;index" json:"type"`
	Status      PropertyStatus `gorm:"type:varchar(20);not null;default:'for_sale';index" json:"status"`

	// Price and size
	Price     float64  `gorm:"type:decimal(14,2);not null;index" json:"price"`
	Currency  string   `gorm:"type:varchar(3);not null;default:'MXN'" json:"currency"`
	Bedrooms  *int     `gorm:"index" json:"bedrooms,omitempty"`
	Bathrooms *float64 `gorm:"type:decimal(4,1)" json:"bathrooms,omitempty"`
	AreaSize  *float64 `gorm:"type:decimal(10,2)" json:"area_size,omitempty"`
	AreaUnit  string   `gorm:"type:varchar(10);not null;default:'m²'" json:"area_unit"`

	// Location
	Address    string   `gorm:"type:varchar(255);not null" json:"address"`
	City       string   `gorm:"type:varchar(100);not null;index" json:"city"`
	State      string   `gorm:"type:varchar(100);not null" json:"state"`
	PostalCode string   `gorm:"type:varchar(20)" json:"postal_code,omitempty"`
	Country    string   `gorm:"type:varchar(100);not null;default:'Mexico'" json:"country"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`

	Features datatypes.JSONSlice[string] `json:"features"`
	Images   datatypes.JSONSlice[string] `json:"images"`

	// Incremented on every write; edits must present the version they read.
	Version int `gorm:"not null;default:1" json:"version"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Agent *User `gorm:"foreignKey:AgentID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"agent,omitempty"`
}

// PropertyType is the kind of real estate being listed
type PropertyType string

const (
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeLand       PropertyType = "land"
	PropertyTypeCommercial PropertyType = "commercial"
	PropertyTypeOffice     PropertyType = "office"
)

// PropertyTypes lists every accepted PropertyType
var PropertyTypes = []PropertyType{
	PropertyTypeHouse,
	PropertyTypeApartment,
	PropertyTypeLand,
	PropertyTypeCommercial,
	PropertyTypeOffice,
}

func (t PropertyType) Valid() bool {
	for _, v := range PropertyTypes {
		if t == v {
			return true
		}
	}
	return false
}

// PropertyStatus is the market state of a listing
type PropertyStatus string

const (
	PropertyStatusForSale PropertyStatus = "for_sale"
	PropertyStatusForRent PropertyStatus = "for_rent"
	PropertyStatusSold    PropertyStatus = "sold"
	PropertyStatusRented  PropertyStatus = "rented"
)

var PropertyStatuses = []PropertyStatus{
	PropertyStatusForSale,
	PropertyStatusForRent,
	PropertyStatusSold,
	PropertyStatusRented,
}

func (s PropertyStatus) Valid() bool {
	for _, v := range PropertyStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ActiveStatuses are the statuses shown as available on the market
var ActiveStatuses = []PropertyStatus{PropertyStatusForSale, PropertyStatusForRent}

// TableName specifies the table name
func (Property) TableName() string {
	return "properties"
}

// IsActive reports whether the listing is still on the market
func (p *Property) IsActive() bool {
	return p.Status == PropertyStatusForSale || p.Status == PropertyStatusForRent
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Version == 0 {
		p.Version = 1
	}
	if p.Features == nil {
		p.Features = datatypes.JSONSlice[string]{}
	}
	if p.Images == nil {
		p.Images = datatypes.JSONSlice[string]{}
	}
	return nil
}

package database

import (
	"context"

	"realestate-hub/internal/models"

	"gorm.io/gorm"
)

// CreateInquiry inserts a contact-form inquiry for a property
func (gdb *GormDB) CreateInquiry(ctx context.Context, inquiry *models.Inquiry) error {
	return gdb.conn(ctx).Transaction(func(tx *gorm.DB) error {
		agentID, err := propertyAgent(tx, inquiry.PropertyID)
		if err != nil {
			return err
		}
		inquiry.AgentID = agentID
		if inquiry.Status == "" {
			inquiry.Status = models.InquiryStatusNew
		}
		return translate(tx.Omit("Property").Create(inquiry).Error)
	})
}

// ListInquiriesByAgent returns an agent's inquiries newest first
func (gdb *GormDB) ListInquiriesByAgent(ctx context.Context, agentID string) ([]models.Inquiry, error) {
	inquiries := []models.Inquiry{}
	err := gdb.conn(ctx).
		Preload("Property", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("agent_id = ?", agentID).
		Order("created_at DESC").
		Find(&inquiries).Error
	return inquiries, err
}

func (gdb *GormDB) UpdateInquiryStatus(ctx context.Context, id, agentID string, status models.InquiryStatus, notes *string) (*models.Inquiry, error) {
	values := map[string]interface{}{"status": status}
	if notes != nil {
		values["notes"] = *notes
	}
	var inquiry models.Inquiry
	if err := gdb.updateOwned(ctx, &inquiry, id, agentID, values); err != nil {
		return nil, err
	}
	return &inquiry, nil
}

package database

import (
	"context"

	"realestate-hub/internal/models"

	"gorm.io/gorm"
)

// propertyAgent resolves the agent that owns a live property
func propertyAgent(tx *gorm.DB, propertyID string) (string, error) {
	var property models.Property
	err := tx.Select("id", "agent_id").Where("id = ?", propertyID).First(&property).Error
	if err != nil {
		if translate(err) == ErrNotFound {
			return "", ErrInvalidReference
		}
		return "", err
	}
	return property.AgentID, nil
}

// CreateLead inserts a lead; its agent is taken from the property
func (gdb *GormDB) CreateLead(ctx context.Context, lead *models.Lead) error {
	return gdb.conn(ctx).Transaction(func(tx *gorm.DB) error {
		agentID, err := propertyAgent(tx, lead.PropertyID)
		if err != nil {
			return err
		}
		lead.AgentID = agentID
		if lead.Status == "" {
			lead.Status = models.LeadStatusNew
		}
		if lead.Source == "" {
			lead.Source = models.LeadSourceWebsite
		}
		return translate(tx.Omit("Property").Create(lead).Error)
	})
}

// ListLeadsByAgent returns an agent's leads newest first, each with its property
func (gdb *GormDB) ListLeadsByAgent(ctx context.Context, agentID string) ([]models.Lead, error) {
	leads := []models.Lead{}
	err := gdb.conn(ctx).
		Preload("Property", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("agent_id = ?", agentID).
		Order("created_at DESC").
		Find(&leads).Error
	return leads, err
}

// UpdateLeadStatus changes the status of a lead owned by agentID.
// An empty agentID skips the ownership check.
func (gdb *GormDB) UpdateLeadStatus(ctx context.Context, id, agentID string, status models.LeadStatus, notes *string) (*models.Lead, error) {
	values := map[string]interface{}{"status": status}
	if notes != nil {
		values["notes"] = *notes
	}
	var lead models.Lead
	err := gdb.updateOwned(ctx, &lead, id, agentID, values)
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// updateOwned updates a lead, inquiry or visit scoped to its agent and reloads it into dest
func (gdb *GormDB) updateOwned(ctx context.Context, dest interface{}, id, agentID string, values map[string]interface{}) error {
	return gdb.conn(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(dest).Where("id = ?", id)
		if agentID != "" {
			q = q.Where("agent_id = ?", agentID)
		}
		result := q.Updates(values)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("id = ?", id).First(dest).Error
	})
}

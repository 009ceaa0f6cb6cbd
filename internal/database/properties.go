package database

import (
	"context"
	"errors"
	"fmt"

	"realestate-hub/internal/models"
	"realestate-hub/internal/search"

	"gorm.io/gorm"
)

// PropertyPage is one page of a filtered property listing
type PropertyPage struct {
	Properties []models.Property `json:"properties"`
	Total      int64             `json:"total"`
	Limit      int               `json:"limit"`
	Offset     int               `json:"offset"`
}

// ListProperties returns the properties matching c, ordered and paged as c says
func (gdb *GormDB) ListProperties(ctx context.Context, c search.Criteria) (*PropertyPage, error) {
	page := &PropertyPage{
		Properties: []models.Property{},
		Limit:      c.PageLimit(),
		Offset:     c.Offset,
	}
	if c.Impossible() {
		return page, nil
	}

	base := c.Apply(gdb.conn(ctx).Model(&models.Property{}))
	if err := base.Count(&page.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}

	query := c.ApplyPage(c.ApplyOrder(c.Apply(gdb.conn(ctx)))).Preload("Agent")
	if err := query.Find(&page.Properties).Error; err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return page, nil
}

// GetProperty retrieves a property by ID together with its agent
func (gdb *GormDB) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	var property models.Property
	err := gdb.conn(ctx).Preload("Agent").Where("id = ?", id).First(&property).Error
	if err != nil {
		return nil, translate(err)
	}
	return &property, nil
}

// CreateProperty inserts a new listing. The agent must be an existing user.
func (gdb *GormDB) CreateProperty(ctx context.Context, p *models.Property) error {
	return gdb.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", p.AgentID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrInvalidReference
		}
		p.Version = 1
		return translate(tx.Omit("Agent").Create(p).Error)
	})
}

// UpdateProperty applies a partial update if the stored version still equals
// expectedVersion, and bumps the version. It returns the updated row.
func (gdb *GormDB) UpdateProperty(ctx context.Context, id string, expectedVersion int, fields map[string]interface{}) (*models.Property, error) {
	var updated models.Property
	err := gdb.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if agentID, ok := fields["agent_id"]; ok {
			var count int64
			if err := tx.Model(&models.User{}).Where("id = ?", agentID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrInvalidReference
			}
		}

		values := make(map[string]interface{}, len(fields)+1)
		for k, v := range fields {
			values[k] = v
		}
		values["version"] = gorm.Expr("version + 1")

		result := tx.Model(&models.Property{}).
			Where("id = ? AND version = ?", id, expectedVersion).
			Updates(values)
		if result.Error != nil {
			return translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return gdb.missOrConflict(tx, id)
		}
		return tx.Where("id = ?", id).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SetPropertyStatus changes only the status. It does not check the version
// but still increments it so concurrent editors notice.
func (gdb *GormDB) SetPropertyStatus(ctx context.Context, id string, status models.PropertyStatus) (*models.Property, error) {
	var updated models.Property
	err := gdb.conn(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Property{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":  status,
				"version": gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("id = ?", id).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// AppendPropertyImage adds an image URL to the end of the property's image list
func (gdb *GormDB) AppendPropertyImage(ctx context.Context, id, url string) (*models.Property, error) {
	var property models.Property
	err := gdb.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&property).Error; err != nil {
			return translate(err)
		}
		images := append(property.Images, url)
		result := tx.Model(&models.Property{}).
			Where("id = ? AND version = ?", id, property.Version).
			Updates(map[string]interface{}{
				"images":  images,
				"version": gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrVersionConflict
		}
		return tx.Where("id = ?", id).First(&property).Error
	})
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// DeleteProperty soft-deletes a property. Leads, inquiries and visits stay in place.
func (gdb *GormDB) DeleteProperty(ctx context.Context, id string) error {
	result := gdb.conn(ctx).Where("id = ?", id).Delete(&models.Property{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPropertiesByAgent returns an agent's listings, newest first
func (gdb *GormDB) ListPropertiesByAgent(ctx context.Context, agentID string) ([]models.Property, error) {
	properties := []models.Property{}
	err := gdb.conn(ctx).
		Where("agent_id = ?", agentID).
		Order("created_at DESC").
		Find(&properties).Error
	return properties, err
}

// AllProperties returns every live property, used for reindexing and snapshots
func (gdb *GormDB) AllProperties(ctx context.Context) ([]models.Property, error) {
	var properties []models.Property
	err := gdb.conn(ctx).Order("created_at DESC").Find(&properties).Error
	return properties, err
}

// missOrConflict decides why a versioned update touched no rows
func (gdb *GormDB) missOrConflict(tx *gorm.DB, id string) error {
	var existing models.Property
	err := tx.Select("id", "version").Where("id = ?", id).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrVersionConflict
}

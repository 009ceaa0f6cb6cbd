package database

import (
	"context"

	"realestate-hub/internal/models"

	"gorm.io/gorm"
)

// CreateVisit schedules a visit to a property
func (gdb *GormDB) CreateVisit(ctx context.Context, visit *models.Visit) error {
	return gdb.conn(ctx).Transaction(func(tx *gorm.DB) error {
		agentID, err := propertyAgent(tx, visit.PropertyID)
		if err != nil {
			return err
		}
		visit.AgentID = agentID
		if visit.Status == "" {
			visit.Status = models.VisitStatusScheduled
		}
		return translate(tx.Omit("Property").Create(visit).Error)
	})
}

// ListVisitsByAgent returns an agent's visits by visit date, earliest first
func (gdb *GormDB) ListVisitsByAgent(ctx context.Context, agentID string) ([]models.Visit, error) {
	visits := []models.Visit{}
	err := gdb.conn(ctx).
		Preload("Property", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("agent_id = ?", agentID).
		Order("visit_date ASC").
		Order("visit_time ASC").
		Find(&visits).Error
	return visits, err
}

func (gdb *GormDB) UpdateVisitStatus(ctx context.Context, id, agentID string, status models.VisitStatus, notes *string) (*models.Visit, error) {
	values := map[string]interface{}{"status": status}
	if notes != nil {
		values["notes"] = *notes
	}
	var visit models.Visit
	if err := gdb.updateOwned(ctx, &visit, id, agentID, values); err != nil {
		return nil, err
	}
	return &visit, nil
}

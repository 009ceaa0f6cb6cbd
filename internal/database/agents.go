package database

import (
	"context"

	"realestate-hub/internal/models"
)

// GetAgentByUserID returns the agent profile of a user, or ErrNotFound
func (gdb *GormDB) GetAgentByUserID(ctx context.Context, userID string) (*models.Agent, error) {
	var agent models.Agent
	if err := gdb.conn(ctx).Where("user_id = ?", userID).First(&agent).Error; err != nil {
		return nil, translate(err)
	}
	return &agent, nil
}

// UpdateAgentProfile changes the public profile fields of an agent
func (gdb *GormDB) UpdateAgentProfile(ctx context.Context, userID string, fields map[string]interface{}) (*models.Agent, error) {
	result := gdb.conn(ctx).Model(&models.Agent{}).Where("user_id = ?", userID).Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return gdb.GetAgentByUserID(ctx, userID)
}

package cleanup

import (
	"context"
	"fmt"
	"time"

	"realestate-hub/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SearchRemover drops purged listings from the search index
type SearchRemover interface {
	DeleteProperties(ids []string) error
}

// Service handles physical deletion of listings that were soft-deleted long ago
type Service struct {
	db     *gorm.DB
	search SearchRemover
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new cleanup service. search may be nil.
func NewService(db *gorm.DB, search SearchRemover, logger *zap.Logger) *Service {
	return &Service{db: db, search: search, logger: logger, now: time.Now}
}

// WithClock replaces the time source
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CleanupConfig holds configuration for cleanup operations
type CleanupConfig struct {
	RetentionDays    int  // days a deleted listing is kept before it is purged
	MaxDeletionCount int  // a run aborts when more listings than this are eligible
	DryRun           bool // only report what would be purged
	DeleteFromSearch bool
}

// DefaultCleanupConfig returns default configuration
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		RetentionDays:    90,
		MaxDeletionCount: 10000,
		DryRun:           false,
		DeleteFromSearch: true,
	}
}

// CleanupResult holds the result of a cleanup operation
type CleanupResult struct {
	TargetCount       int       `json:"target_count"`
	DeletedCount      int       `json:"deleted_count"`
	SkippedCount      int       `json:"skipped_count"` // still referenced by leads, inquiries or visits
	ErrorCount        int       `json:"error_count"`
	DryRun            bool      `json:"dry_run"`
	ExecutedAt        time.Time `json:"executed_at"`
	DeletedProperties []string  `json:"deleted_properties"`
	SkippedProperties []string  `json:"skipped_properties,omitempty"`
	Errors            []string  `json:"errors,omitempty"`
}

// FindExpiredProperties finds soft-deleted properties whose deletion is older than retentionDays
func (s *Service) FindExpiredProperties(ctx context.Context, retentionDays int) ([]models.Property, error) {
	var properties []models.Property

	cutoffDate := s.now().UTC().AddDate(0, 0, -retentionDays)

	err := s.db.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoffDate).
		Order("deleted_at ASC").
		Find(&properties).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expired properties: %w", err)
	}

	s.logger.Info("Cleanup: expired properties found",
		zap.Int("count", len(properties)),
		zap.String("cutoff", cutoffDate.Format("2006-01-02")))
	return properties, nil
}

// PhysicallyDelete purges expired properties, one transaction per property.
// Each purge writes a DeleteLog and removes the property's favorites.
// Properties still referenced by leads, inquiries or visits are skipped.
func (s *Service) PhysicallyDelete(ctx context.Context, config CleanupConfig) (*CleanupResult, error) {
	result := &CleanupResult{
		DryRun:            config.DryRun,
		ExecutedAt:        s.now().UTC(),
		DeletedProperties: []string{},
	}

	expiredProperties, err := s.FindExpiredProperties(ctx, config.RetentionDays)
	if err != nil {
		return nil, err
	}

	result.TargetCount = len(expiredProperties)
	if result.TargetCount == 0 {
		return result, nil
	}

	// Safety check: abort if too many properties would be deleted
	if result.TargetCount > config.MaxDeletionCount {
		return nil, fmt.Errorf("safety check failed: %d properties exceed max deletion limit of %d",
			result.TargetCount, config.MaxDeletionCount)
	}

	s.logger.Info("Cleanup: starting",
		zap.Int("targets", result.TargetCount),
		zap.Int("retention_days", config.RetentionDays),
		zap.Bool("dry_run", config.DryRun))

	for i := range expiredProperties {
		prop := &expiredProperties[i]
		if err := ctx.Err(); err != nil {
			return result, err
		}

		referenced, err := s.isReferenced(ctx, prop.ID)
		if err != nil {
			s.recordError(result, fmt.Sprintf("failed to check references of property %s: %v", prop.ID, err))
			continue
		}
		if referenced {
			result.SkippedCount++
			result.SkippedProperties = append(result.SkippedProperties, prop.ID)
			continue
		}

		if config.DryRun {
			s.logger.Info("[DRY-RUN] would purge property",
				zap.String("property_id", prop.ID), zap.String("title", prop.Title))
			result.DeletedProperties = append(result.DeletedProperties, prop.ID)
			result.DeletedCount++
			continue
		}

		if err := s.purge(ctx, prop); err != nil {
			s.recordError(result, fmt.Sprintf("failed to purge property %s: %v", prop.ID, err))
			continue
		}
		result.DeletedProperties = append(result.DeletedProperties, prop.ID)
		result.DeletedCount++
	}

	if config.DeleteFromSearch && !config.DryRun && s.search != nil && len(result.DeletedProperties) > 0 {
		if err := s.search.DeleteProperties(result.DeletedProperties); err != nil {
			s.recordError(result, fmt.Sprintf("failed to delete purged properties from search: %v", err))
		}
	}

	s.logger.Info("Cleanup: completed",
		zap.Int("deleted", result.DeletedCount),
		zap.Int("targets", result.TargetCount),
		zap.Int("skipped", result.SkippedCount),
		zap.Int("errors", result.ErrorCount),
		zap.Bool("dry_run", config.DryRun))

	return result, nil
}

func (s *Service) purge(ctx context.Context, prop *models.Property) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deleteLog := models.DeleteLog{
			PropertyID: prop.ID,
			AgentID:    prop.AgentID,
			Title:      prop.Title,
			Address:    prop.Address,
			RemovedAt:  prop.DeletedAt.Time,
			Reason:     models.DeleteReasonExpired,
		}
		if err := tx.Create(&deleteLog).Error; err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", prop.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("id = ?", prop.ID).Delete(&models.Property{}).Error
	})
}

func (s *Service) isReferenced(ctx context.Context, propertyID string) (bool, error) {
	for _, model := range []interface{}{&models.Lead{}, &models.Inquiry{}, &models.Visit{}} {
		var count int64
		if err := s.db.WithContext(ctx).Model(model).Where("property_id = ?", propertyID).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) recordError(result *CleanupResult, msg string) {
	s.logger.Error("Cleanup: " + msg)
	result.Errors = append(result.Errors, msg)
	result.ErrorCount++
}

// DeleteStats summarizes purges and pending soft deletions
type DeleteStats struct {
	TotalDeleted        int64            `json:"total_deleted"`
	ByReason            map[string]int64 `json:"by_reason"`
	DeletedLast30Days   int64            `json:"deleted_last_30_days"`
	CurrentlyRemoved    int64            `json:"currently_removed"`
	ExpiredReadyToPurge int64            `json:"expired_ready_for_deletion"`
}

// GetDeleteStats returns statistics about deleted properties
func (s *Service) GetDeleteStats(ctx context.Context, retentionDays int) (*DeleteStats, error) {
	db := s.db.WithContext(ctx)
	stats := &DeleteStats{ByReason: map[string]int64{}}

	if err := db.Model(&models.DeleteLog{}).Count(&stats.TotalDeleted).Error; err != nil {
		return nil, err
	}

	var reasonCounts []struct {
		Reason string
		Count  int64
	}
	if err := db.Model(&models.DeleteLog{}).
		Select("reason, count(*) as count").
		Group("reason").
		Scan(&reasonCounts).Error; err != nil {
		return nil, err
	}
	for _, rc := range reasonCounts {
		stats.ByReason[rc.Reason] = rc.Count
	}

	now := s.now().UTC()
	if err := db.Model(&models.DeleteLog{}).
		Where("purged_at >= ?", now.AddDate(0, 0, -30)).
		Count(&stats.DeletedLast30Days).Error; err != nil {
		return nil, err
	}

	if err := db.Unscoped().Model(&models.Property{}).
		Where("deleted_at IS NOT NULL").
		Count(&stats.CurrentlyRemoved).Error; err != nil {
		return nil, err
	}

	if err := db.Unscoped().Model(&models.Property{}).
		Where("deleted_at IS NOT NULL AND deleted_at < ?", now.AddDate(0, 0, -retentionDays)).
		Count(&stats.ExpiredReadyToPurge).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// GetRecentDeleteLogs returns recent delete log entries
func (s *Service) GetRecentDeleteLogs(ctx context.Context, limit int) ([]models.DeleteLog, error) {
	logs := []models.DeleteLog{}
	err := s.db.WithContext(ctx).Order("purged_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

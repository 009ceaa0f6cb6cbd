package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"realestate-hub/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service records the daily price and status of listings and the changes between days
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new snapshot service
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger, now: time.Now}
}

// WithClock replaces the time source
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) today() time.Time {
	return s.now().UTC().Truncate(24 * time.Hour)
}

// DetectChanges compares the property with its most recent snapshot before today
func (s *Service) DetectChanges(ctx context.Context, property *models.Property) ([]models.PropertyChange, error) {
	var last models.PropertySnapshot
	err := s.db.WithContext(ctx).
		Where("property_id = ? AND snapshot_at < ?", property.ID, s.today()).
		Order("snapshot_at DESC").
		First(&last).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []models.PropertyChange{{
			PropertyID: property.ID,
			ChangeType: models.ChangeTypeNew,
			NewValue:   property.Title,
		}}, nil
	} else if err != nil {
		return nil, err
	}

	changes := []models.PropertyChange{}

	if property.Price != last.Price || property.Currency != last.Currency {
		magnitude := property.Price - last.Price
		changes = append(changes, models.PropertyChange{
			PropertyID:      property.ID,
			ChangeType:      models.ChangeTypePrice,
			OldValue:        formatPrice(last.Price, last.Currency),
			NewValue:        formatPrice(property.Price, property.Currency),
			ChangeMagnitude: &magnitude,
		})
	}

	if string(property.Status) != last.Status {
		changes = append(changes, models.PropertyChange{
			PropertyID: property.ID,
			ChangeType: models.ChangeTypeStatus,
			OldValue:   last.Status,
			NewValue:   string(property.Status),
		})
	}

	if property.Title != last.Title {
		changes = append(changes, models.PropertyChange{
			PropertyID: property.ID,
			ChangeType: models.ChangeTypeTitle,
			OldValue:   last.Title,
			NewValue:   property.Title,
		})
	}

	return changes, nil
}

// RecordProperty writes today's snapshot of the property (replacing an earlier
// one from the same day) and stores any changes against the previous day.
func (s *Service) RecordProperty(ctx context.Context, property *models.Property) ([]models.PropertyChange, error) {
	changes, err := s.DetectChanges(ctx, property)
	if err != nil {
		return nil, fmt.Errorf("failed to detect changes for property %s: %w", property.ID, err)
	}

	snapshot := &models.PropertySnapshot{
		PropertyID: property.ID,
		SnapshotAt: s.today(),
		Price:      property.Price,
		Currency:   property.Currency,
		Status:     string(property.Status),
		Title:      property.Title,
		Version:    property.Version,
		HasChanged: len(changes) > 0,
	}
	if len(changes) > 0 {
		snapshot.ChangeNote = fmt.Sprintf("%d changes detected", len(changes))
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.PropertySnapshot
		result := tx.Where("property_id = ? AND snapshot_at = ?", property.ID, snapshot.SnapshotAt).First(&existing)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			if err := tx.Create(snapshot).Error; err != nil {
				return err
			}
		} else if result.Error != nil {
			return result.Error
		} else {
			snapshot.ID = existing.ID
			snapshot.CreatedAt = existing.CreatedAt
			if err := tx.Save(snapshot).Error; err != nil {
				return err
			}
			// Changes for today are recomputed from scratch.
			if err := tx.Where("snapshot_id = ?", existing.ID).Delete(&models.PropertyChange{}).Error; err != nil {
				return err
			}
		}

		if len(changes) == 0 {
			return nil
		}
		for i := range changes {
			changes[i].SnapshotID = snapshot.ID
		}
		return tx.Create(&changes).Error
	})
	if err != nil {
		return nil, err
	}

	if len(changes) > 0 {
		s.logger.Debug("Snapshot: changes detected",
			zap.String("property_id", property.ID),
			zap.Int("changes", len(changes)))
	}
	return changes, nil
}

// RecordAll snapshots every given property and returns how many changes were found.
// A failing property is logged and skipped.
func (s *Service) RecordAll(ctx context.Context, properties []models.Property) (int, error) {
	total := 0
	for i := range properties {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		changes, err := s.RecordProperty(ctx, &properties[i])
		if err != nil {
			s.logger.Warn("Snapshot: failed to record property",
				zap.String("property_id", properties[i].ID), zap.Error(err))
			continue
		}
		total += len(changes)
	}
	return total, nil
}

// RecordRemoval stores a change noting that the listing was deleted
func (s *Service) RecordRemoval(ctx context.Context, property *models.Property) error {
	return s.db.WithContext(ctx).Create(&models.PropertyChange{
		PropertyID: property.ID,
		ChangeType: models.ChangeTypeRemoved,
		OldValue:   string(property.Status),
	}).Error
}

// GetPropertyHistory retrieves snapshot history for a property, newest first
func (s *Service) GetPropertyHistory(ctx context.Context, propertyID string, limit int) ([]models.PropertySnapshot, error) {
	snapshots := []models.PropertySnapshot{}
	query := s.db.WithContext(ctx).Where("property_id = ?", propertyID).Order("snapshot_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&snapshots).Error; err != nil {
		return nil, err
	}

	return snapshots, nil
}

// GetRecentChanges retrieves recent property changes
func (s *Service) GetRecentChanges(ctx context.Context, limit int) ([]models.PropertyChange, error) {
	changes := []models.PropertyChange{}
	query := s.db.WithContext(ctx).Order("detected_at DESC").Order("id DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&changes).Error; err != nil {
		return nil, err
	}

	return changes, nil
}

func formatPrice(price float64, currency string) string {
	return strconv.FormatFloat(price, 'f', 2, 64) + " " + currency
}

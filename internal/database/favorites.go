package database

import (
	"context"
	"errors"

	"realestate-hub/internal/models"

	"gorm.io/gorm"
)

// AddFavorite marks a property as favorite for a user. Adding twice is a no-op.
func (gdb *GormDB) AddFavorite(ctx context.Context, userID, propertyID string) error {
	return gdb.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := propertyAgent(tx, propertyID); err != nil {
			return err
		}
		exists, err := favoriteExists(tx, userID, propertyID)
		if err != nil || exists {
			return err
		}
		err = translate(tx.Omit("Property").Create(&models.Favorite{UserID: userID, PropertyID: propertyID}).Error)
		if errors.Is(err, ErrDuplicate) {
			return nil
		}
		return err
	})
}

// RemoveFavorite deletes the favorite row if present
func (gdb *GormDB) RemoveFavorite(ctx context.Context, userID, propertyID string) error {
	return gdb.conn(ctx).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Delete(&models.Favorite{}).Error
}

// ToggleFavorite flips the favorite state and reports the new state
func (gdb *GormDB) ToggleFavorite(ctx context.Context, userID, propertyID string) (bool, error) {
	var favorited bool
	err := gdb.conn(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := favoriteExists(tx, userID, propertyID)
		if err != nil {
			return err
		}
		if exists {
			favorited = false
			return tx.Where("user_id = ? AND property_id = ?", userID, propertyID).
				Delete(&models.Favorite{}).Error
		}
		if _, err := propertyAgent(tx, propertyID); err != nil {
			return err
		}
		favorited = true
		return translate(tx.Omit("Property").Create(&models.Favorite{UserID: userID, PropertyID: propertyID}).Error)
	})
	return favorited, err
}

func (gdb *GormDB) IsFavorite(ctx context.Context, userID, propertyID string) (bool, error) {
	return favoriteExists(gdb.conn(ctx), userID, propertyID)
}

// ListFavorites returns a user's favorites newest first with the live property attached.
// Favorites whose property has been deleted are left out.
func (gdb *GormDB) ListFavorites(ctx context.Context, userID string) ([]models.Favorite, error) {
	favorites := []models.Favorite{}
	err := gdb.conn(ctx).
		InnerJoins("Property").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC").
		Find(&favorites).Error
	return favorites, err
}

// CountFavorites counts favorite rows for a user
func (gdb *GormDB) CountFavorites(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := gdb.conn(ctx).Model(&models.Favorite{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func favoriteExists(tx *gorm.DB, userID, propertyID string) (bool, error) {
	var count int64
	err := tx.Model(&models.Favorite{}).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Count(&count).Error
	return count > 0, err
}

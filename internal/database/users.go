package database

import (
	"context"
	"strings"
	"time"

	"realestate-hub/internal/models"

	"gorm.io/gorm"
)

// CreateUser inserts a user; a user with the agent role also gets an agent profile row
func (gdb *GormDB) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return gdb.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicate
		}
		if err := translate(tx.Create(user).Error); err != nil {
			return err
		}
		if user.Role != models.RoleAgent {
			return nil
		}
		return tx.Create(&models.Agent{
			UserID:    user.ID,
			Name:      user.FullName,
			Email:     user.Email,
			Phone:     user.Phone,
			AvatarURL: user.AvatarURL,
		}).Error
	})
}

func (gdb *GormDB) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := gdb.conn(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (gdb *GormDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := gdb.conn(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// ListUsers returns users newest first, optionally restricted to one role
func (gdb *GormDB) ListUsers(ctx context.Context, role models.UserRole) ([]models.User, error) {
	users := []models.User{}
	q := gdb.conn(ctx).Order("created_at DESC")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	err := q.Find(&users).Error
	return users, err
}

// UpdateUser applies a partial update. Promoting a user to agent creates the
// missing agent profile.
func (gdb *GormDB) UpdateUser(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error) {
	var user models.User
	err := gdb.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if email, ok := fields["email"].(string); ok {
			fields["email"] = strings.ToLower(strings.TrimSpace(email))
			var count int64
			if err := tx.Model(&models.User{}).Where("email = ? AND id <> ?", fields["email"], id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicate
			}
		}
		result := tx.Model(&models.User{}).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			return translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			return err
		}
		if user.Role != models.RoleAgent {
			return nil
		}
		var count int64
		if err := tx.Model(&models.Agent{}).Where("user_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return tx.Create(&models.Agent{UserID: user.ID, Name: user.FullName, Email: user.Email, Phone: user.Phone}).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateSession stores the server side of an issued token
func (gdb *GormDB) CreateSession(ctx context.Context, session *models.Session) error {
	return translate(gdb.conn(ctx).Create(session).Error)
}

func (gdb *GormDB) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := gdb.conn(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

// DeleteSession revokes a token. Deleting an unknown session is not an error.
func (gdb *GormDB) DeleteSession(ctx context.Context, id string) error {
	return gdb.conn(ctx).Where("id = ?", id).Delete(&models.Session{}).Error
}

// PurgeExpiredSessions deletes sessions that expired before now and returns how many
func (gdb *GormDB) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result := gdb.conn(ctx).Where("expires_at <= ?", now).Delete(&models.Session{})
	return result.RowsAffected, result.Error
}

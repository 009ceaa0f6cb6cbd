// Package dbtest provides an in-memory SQLite database with the full schema
// and a few fixtures for package tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"realestate-hub/internal/database"
	"realestate-hub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens a private in-memory database and migrates the schema.
// The database is closed when the test ends.
func New(t *testing.T) *database.GormDB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	gdb := database.NewGormDBFromDB(db)
	require.NoError(t, gdb.InitSchema())

	t.Cleanup(func() { _ = gdb.Close() })
	return gdb
}

// Agent creates an active user with the agent role and its profile row
func Agent(t *testing.T, db *database.GormDB, email string) *models.User {
	t.Helper()
	user := &models.User{
		FullName:     "Agente " + email,
		Email:        email,
		Role:         models.RoleAgent,
		Status:       models.UserStatusActive,
		PasswordHash: "x",
	}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

// Client creates an active user with the client role
func Client(t *testing.T, db *database.GormDB, email string) *models.User {
	t.Helper()
	user := &models.User{
		FullName:     "Cliente " + email,
		Email:        email,
		Role:         models.RoleClient,
		Status:       models.UserStatusActive,
		PasswordHash: "x",
	}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

// Property inserts p for agentID, filling the required fields that are empty
func Property(t *testing.T, db *database.GormDB, agentID string, p models.Property) *models.Property {
	t.Helper()
	p.AgentID = agentID
	if p.Title == "" {
		p.Title = "Propiedad de prueba"
	}
	if p.Type == "" {
		p.Type = models.PropertyTypeHouse
	}
	if p.Status == "" {
		p.Status = models.PropertyStatusForSale
	}
	if p.Currency == "" {
		p.Currency = "MXN"
	}
	if p.AreaUnit == "" {
		p.AreaUnit = "m²"
	}
	if p.Address == "" {
		p.Address = "Calle 1"
	}
	if p.City == "" {
		p.City = "Ciudad de México"
	}
	if p.State == "" {
		p.State = "CDMX"
	}
	if p.Country == "" {
		p.Country = "Mexico"
	}
	require.NoError(t, db.CreateProperty(context.Background(), &p))
	return &p
}

func IntPtr(v int) *int { return &v }

func FloatPtr(v float64) *float64 { return &v }

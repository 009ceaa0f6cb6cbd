package database

import (
	"fmt"

	"realestate-hub/internal/config"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// postgresDialector runs gorm's postgres dialect over the lib/pq driver
func postgresDialector(cfg config.PostgresConfig) gorm.Dialector {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, sslMode)
	return postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        dsn,
	})
}

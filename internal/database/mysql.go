package database

import (
	"fmt"

	"realestate-hub/internal/config"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func mysqlDialector(cfg config.MySQLConfig) gorm.Dialector {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&clientFoundRows=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
	return mysql.Open(dsn)
}

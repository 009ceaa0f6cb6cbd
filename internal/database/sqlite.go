package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func sqliteDialector(path string) gorm.Dialector {
	if path == "" {
		path = "realestate.db"
	}
	return sqlite.Open(path + "?_foreign_keys=on")
}

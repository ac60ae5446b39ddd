package db

import (
	"fmt"

	"bugtracker/backend/app/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Driver string
	DSN    string
	Name   string
	Debug  bool
}

// Connect opens the configured database. The mysql driver expects a DSN
// without a schema; Name is appended as the database.
func Connect(cfg Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{TranslateError: true, Logger: logger.Default.LogMode(logger.Silent)}
	if cfg.Debug {
		gcfg.Logger = logger.Default.LogMode(logger.Info)
	}
	switch cfg.Driver {
	case "mysql":
		dsn := fmt.Sprintf("%s/%s?charset=utf8mb4&parseTime=True&loc=UTC", cfg.DSN, cfg.Name)
		return gorm.Open(mysql.Open(dsn), gcfg)
	case "sqlite", "":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = cfg.Name + ".db"
		}
		gdb, err := gorm.Open(sqlite.Open(dsn), gcfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		// sqlite serialises writers; a single connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
		return gdb, nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Bug{},
		&models.BugAssignee{},
		&models.Notification{},
	)
}

package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormConfig is the gorm configuration shared by every connection.
// Foreign keys are not emitted: references between aggregates are checked by
// the use cases, and materialized tasks must outlive their template.
func GormConfig(logLevel string) *gorm.Config {
	return &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormLogLevel(logLevel)),
	}
}

// NewGormConnection opens a gorm handle for the configured driver.
func NewGormConnection(cfg Config) (*gorm.DB, error) {
	switch cfg.Driver {
	case DriverSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = "atelier.db"
		}
		db, err := gorm.Open(sqlite.Open(path), GormConfig(cfg.LogLevel))
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return db, nil
	case DriverPostgres, "":
		sqlDB, err := NewPostgresConnection(cfg)
		if err != nil {
			return nil, err
		}
		db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), GormConfig(cfg.LogLevel))
		if err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to open gorm connection: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}

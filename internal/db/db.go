package db

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/devmatch/internal/config"
)

// NewDB initializes the database connection for the configured driver
// and migrates the schema.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg.DB)
	if err != nil {
		return nil, err
	}

	lvl := logger.Warn
	if strings.EqualFold(cfg.Log.Level, "debug") {
		lvl = logger.Info // log SQL queries
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(lvl),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if cfg.DB.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
		}
		if cfg.DB.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
		}
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Dialector picks the gorm driver for c.Driver.
func Dialector(c config.DBConfig) (gorm.Dialector, error) {
	switch c.Driver {
	case "", "mysql":
		return mysql.Open(c.ConnString()), nil
	case "postgres":
		return postgres.Open(c.ConnString()), nil
	case "sqlite":
		return sqlite.Open(c.ConnString()), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", c.Driver)
	}
}

// Migrate registers the explicit join tables and keeps the schema in sync with models.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&User{}, "ProgrammingLanguages", &UserProgrammingLanguage{}); err != nil {
		return fmt.Errorf("failed to setup join table: %w", err)
	}
	if err := db.SetupJoinTable(&User{}, "JobTitles", &UserJobTitle{}); err != nil {
		return fmt.Errorf("failed to setup join table: %w", err)
	}

	if err := db.AutoMigrate(
		&User{}, &Photo{},
		&ProgrammingLanguage{}, &JobTitle{},
		&UserProgrammingLanguage{}, &UserJobTitle{},
		&Swipe{}, &Match{}, &Conversation{}, &Message{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"legal-office-api/internal/model"
	"legal-office-api/pkg/config"
)

var db *gorm.DB

// InitDB connects to PostgreSQL, migrates the schema, and installs the
// row-level security policies on every tenant-scoped table.
func InitDB(cfg *config.Config) error {
	// PreferSimpleProtocol avoids "prepared statement already exists" errors
	// behind connection poolers.
	pgConfig := postgres.Config{
		DSN:                  cfg.DB.GetDSN(),
		PreferSimpleProtocol: true,
	}

	var err error
	db, err = gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.DB.LogLevel),
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}

	if cfg.DB.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}
	if cfg.DB.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}
	if cfg.DB.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Tenant{},
		&model.TenantMember{},
		&model.Client{},
		&model.Court{},
		&model.Case{},
		&model.Session{},
		&model.Appointment{},
		&model.Document{},
		&model.Invoice{},
		&model.Payment{},
		&model.TrustAccount{},
		&model.TrustTransaction{},
	); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	if err := applyRowPolicies(db); err != nil {
		return fmt.Errorf("apply row policies: %w", err)
	}

	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return db
}

// SetDB overrides the database instance. Used by tests.
func SetDB(d *gorm.DB) {
	db = d
}

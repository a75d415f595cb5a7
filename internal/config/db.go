package config

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ssmgcode/cargo-expreso-control/internal/models"
)

// InitDB opens the Postgres store and migrates every collection.
func InitDB(cfg *AppConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables behind the models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Guide{},
		&models.Settlement{},
		&models.ReconciliationBatch{},
		&models.SettlementAudit{},
	); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

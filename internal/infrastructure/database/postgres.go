package database

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/salesdesk-api/internal/config"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info().Str("host", cfg.Host).Str("database", cfg.Name).Msg("connected to PostgreSQL")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Info().Msg("running database migrations")

	err := db.AutoMigrate(
		// Catalog
		&entity.Product{},

		// Sales
		&entity.Transaction{},
		&entity.TransactionItem{},

		// System entities
		&entity.StoreProfile{},
		&entity.UserSettings{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Msg("database migrations completed")
	return nil
}

// SeedDefaultData creates the store profile from STORE_* settings when the
// table is still empty.
func SeedDefaultData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.StoreProfile{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count store profiles: %w", err)
	}
	if count > 0 {
		return nil
	}

	name := viper.GetString("STORE_NAME")
	if name == "" {
		log.Warn().Msg("STORE_NAME not set, receipts will print without a store profile")
		return nil
	}

	profile := entity.StoreProfile{
		Name:    name,
		Address: viper.GetString("STORE_ADDRESS"),
		City:    viper.GetString("STORE_CITY"),
		State:   viper.GetString("STORE_STATE"),
		Zip:     viper.GetString("STORE_ZIP"),
		Phone:   viper.GetString("STORE_PHONE"),
		Email:   viper.GetString("STORE_EMAIL"),
	}
	if err := db.Create(&profile).Error; err != nil {
		return fmt.Errorf("failed to seed store profile: %w", err)
	}

	log.Info().Str("store", name).Msg("store profile seeded")
	return nil
}

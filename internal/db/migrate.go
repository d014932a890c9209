package db

import (
	"github.com/asthar/asthar-backend/internal/app/model"
	"github.com/asthar/asthar-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table managed by the storefront, parents first
func Models() []interface{} {
	return []interface{}{
		&model.Category{},
		&model.Product{},
		&model.User{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderTracking{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB runs the migrations against the given connection
func MigrateDB(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed loads the built-in catalog into the database
func Seed() error {
	_, err := SeedCatalog(DB, DefaultCatalog())
	return err
}

package db

import (
	"errors"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Migrate creates or updates every table and makes sure the settings row exists.
func Migrate(database *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := model.AllModels()
	if err := database.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := EnsureSettings(database); err != nil {
		logger.Error("Failed to create default settings", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// EnsureSettings inserts the default settings row unless one is present.
func EnsureSettings(database *gorm.DB) error {
	var existing model.Settings
	err := database.First(&existing, model.SettingsID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	defaults := model.DefaultSettings()
	return database.Clauses(clause.OnConflict{DoNothing: true}).Create(&defaults).Error
}

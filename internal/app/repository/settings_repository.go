package repository

import (
	"errors"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository interface {
	WithTx(tx *gorm.DB) SettingsRepository
	Get() (*model.Settings, error)
	Save(settings *model.Settings) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) WithTx(tx *gorm.DB) SettingsRepository {
	return &settingsRepository{db: tx}
}

// Get returns the settings row, or the defaults when none was saved yet.
func (r *settingsRepository) Get() (*model.Settings, error) {
	var settings model.Settings
	err := r.db.First(&settings, model.SettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		defaults := model.DefaultSettings()
		return &defaults, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Save upserts the singleton row.
func (r *settingsRepository) Save(settings *model.Settings) error {
	settings.ID = model.SettingsID
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(settings).Error
}

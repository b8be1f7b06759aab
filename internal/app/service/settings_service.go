package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	apperrors "github.com/ikkim/animestore-backend/internal/errors"
	"github.com/ikkim/animestore-backend/pkg/logger"
	"github.com/ikkim/animestore-backend/pkg/redis"
	"github.com/shopspring/decimal"
)

const (
	settingsCacheKey = "settings"
	settingsCacheTTL = 10 * time.Minute
)

// Cache is the JSON cache used for hot read paths.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type SettingsInput struct {
	ShippingCost      decimal.Decimal
	TaxRate           decimal.Decimal
	Currency          string
	BannerTitle       string
	BannerSubtitle    string
	LowStockThreshold int
}

type SettingsService interface {
	GetSettings(ctx context.Context) (*model.Settings, error)
	UpdateSettings(ctx context.Context, input SettingsInput) (*model.Settings, error)
}

type settingsService struct {
	repo  repository.SettingsRepository
	cache Cache
}

// NewSettingsService returns the settings service. cache may be nil.
func NewSettingsService(repo repository.SettingsRepository, cache Cache) SettingsService {
	return &settingsService{repo: repo, cache: cache}
}

func (s *settingsService) GetSettings(ctx context.Context) (*model.Settings, error) {
	if s.cache != nil {
		var cached model.Settings
		err := s.cache.GetJSON(ctx, settingsCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			logger.Warn("Settings cache read failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	settings, err := s.repo.Get()
	if err != nil {
		return nil, apperrors.Upstream(err, "settings")
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, settingsCacheKey, settings, settingsCacheTTL); err != nil {
			logger.Warn("Settings cache write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return settings, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, input SettingsInput) (*model.Settings, error) {
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = model.DefaultSettings().Currency
	}
	switch {
	case input.ShippingCost.IsNegative():
		return nil, ErrInvalidSettings.WithMessage("تكلفة الشحن لا يمكن أن تكون سالبة")
	case input.TaxRate.IsNegative() || input.TaxRate.GreaterThan(decimal.NewFromInt(1)):
		return nil, ErrInvalidSettings.WithMessage("نسبة الضريبة يجب أن تكون بين 0 و 1")
	case len(currency) != 3:
		return nil, ErrInvalidSettings.WithMessage("رمز العملة يجب أن يتكون من 3 أحرف")
	case input.LowStockThreshold < 0:
		return nil, ErrInvalidSettings.WithMessage("حد المخزون المنخفض لا يمكن أن يكون سالباً")
	}

	settings := &model.Settings{
		ID:                model.SettingsID,
		ShippingCost:      input.ShippingCost.Round(2),
		TaxRate:           input.TaxRate.Round(4),
		Currency:          currency,
		BannerTitle:       strings.TrimSpace(input.BannerTitle),
		BannerSubtitle:    strings.TrimSpace(input.BannerSubtitle),
		LowStockThreshold: input.LowStockThreshold,
	}
	if err := s.repo.Save(settings); err != nil {
		return nil, apperrors.Upstream(err, "update settings")
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, settingsCacheKey); err != nil {
			logger.Warn("Settings cache invalidation failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	logger.Info("Settings updated", map[string]interface{}{
		"shipping_cost": settings.ShippingCost.StringFixed(2),
		"tax_rate":      settings.TaxRate.String(),
		"currency":      settings.Currency,
	})
	return s.repo.Get()
}

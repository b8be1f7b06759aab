package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettingsID is the primary key of the only settings row.
const SettingsID uint = 1

// Settings is the store-wide configuration singleton.
type Settings struct {
	ID                uint            `gorm:"primarykey" json:"-"`
	ShippingCost      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"shipping_cost"`
	TaxRate           decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0" json:"tax_rate"` // fraction, 0.15 = 15%
	Currency          string          `gorm:"type:varchar(3);not null;default:'SAR'" json:"currency"`
	BannerTitle       string          `json:"banner_title"`
	BannerSubtitle    string          `json:"banner_subtitle"`
	LowStockThreshold int             `gorm:"not null;default:5" json:"low_stock_threshold"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (Settings) TableName() string {
	return "settings"
}

// DefaultSettings is used until an admin saves the first settings row.
func DefaultSettings() Settings {
	return Settings{
		ID:                SettingsID,
		ShippingCost:      decimal.Zero,
		TaxRate:           decimal.Zero,
		Currency:          "SAR",
		BannerTitle:       "متجر الأنمي",
		BannerSubtitle:    "كل ما تحبه من عالم الأنمي في مكان واحد",
		LowStockThreshold: 5,
	}
}

// AllModels lists every table in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Product{},
		&Review{},
		&CartItem{},
		&WishlistItem{},
		&Order{},
		&OrderItem{},
		&Notification{},
		&Conversation{},
		&Message{},
		&Settings{},
	}
}

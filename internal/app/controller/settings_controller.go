package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/animestore-backend/internal/app/service"
	"github.com/shopspring/decimal"
)

type SettingsController struct {
	settingsService service.SettingsService
}

func NewSettingsController(settingsService service.SettingsService) *SettingsController {
	return &SettingsController{settingsService: settingsService}
}

type UpdateSettingsRequest struct {
	ShippingCost      string `json:"shipping_cost" binding:"required,money"`
	TaxRate           string `json:"tax_rate" binding:"required,numeric"`
	Currency          string `json:"currency" binding:"omitempty,len=3,alpha"`
	BannerTitle       string `json:"banner_title" binding:"max=200"`
	BannerSubtitle    string `json:"banner_subtitle" binding:"max=300"`
	LowStockThreshold int    `json:"low_stock_threshold" binding:"gte=0,lte=10000"`
}

// GetSettings GET /api/settings
func (ctrl *SettingsController) GetSettings(c *gin.Context) {
	settings, err := ctrl.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, err, "get settings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateSettings PUT /api/admin/settings
func (ctrl *SettingsController) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	taxRate, err := decimal.NewFromString(req.TaxRate)
	if err != nil {
		respondError(c, service.ErrInvalidSettings, "update settings")
		return
	}

	settings, err := ctrl.settingsService.UpdateSettings(c.Request.Context(), service.SettingsInput{
		ShippingCost:      decimal.RequireFromString(req.ShippingCost),
		TaxRate:           taxRate,
		Currency:          req.Currency,
		BannerTitle:       req.BannerTitle,
		BannerSubtitle:    req.BannerSubtitle,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		respondError(c, err, "update settings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

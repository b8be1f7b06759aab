package service

import (
	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	apperrors "github.com/ikkim/animestore-backend/internal/errors"
	"github.com/shopspring/decimal"
)

const recentOrdersLimit = 5

type DashboardStats struct {
	TotalOrders         int64           `json:"total_orders"`
	PendingOrders       int64           `json:"pending_orders"`
	Revenue             decimal.Decimal `json:"revenue"`
	TotalProducts       int64           `json:"total_products"`
	LowStockProducts    int64           `json:"low_stock_products"`
	Customers           int64           `json:"customers"`
	UnreadNotifications int64           `json:"unread_notifications"`
	UnreadConversations int64           `json:"unread_conversations"`
	RecentOrders        []model.Order   `json:"recent_orders"`
}

type DashboardService interface {
	GetStats() (*DashboardStats, error)
}

type dashboardService struct {
	orderRepo        repository.OrderRepository
	productRepo      repository.ProductRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	chatRepo         repository.ChatRepository
	settingsRepo     repository.SettingsRepository
}

func NewDashboardService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
	chatRepo repository.ChatRepository,
	settingsRepo repository.SettingsRepository,
) DashboardService {
	return &dashboardService{
		orderRepo:        orderRepo,
		productRepo:      productRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		chatRepo:         chatRepo,
		settingsRepo:     settingsRepo,
	}
}

func (s *dashboardService) GetStats() (*DashboardStats, error) {
	stats := &DashboardStats{}
	settings, err := s.settingsRepo.Get()
	if err != nil {
		return nil, apperrors.Upstream(err, "dashboard")
	}

	steps := []func() error{
		func() (e error) { stats.TotalOrders, e = s.orderRepo.Count(); return },
		func() (e error) { stats.PendingOrders, e = s.orderRepo.CountByStatus(model.OrderStatusPending); return },
		func() (e error) { stats.Revenue, e = s.orderRepo.SumRevenue(); return },
		func() (e error) { stats.TotalProducts, e = s.productRepo.Count(); return },
		func() (e error) {
			stats.LowStockProducts, e = s.productRepo.CountLowStock(settings.LowStockThreshold)
			return
		},
		func() (e error) { stats.Customers, e = s.userRepo.CountByRole(model.RoleUser); return },
		func() (e error) { stats.UnreadNotifications, e = s.notificationRepo.CountUnread(); return },
		func() (e error) { stats.UnreadConversations, e = s.chatRepo.CountUnreadByAdmin(); return },
		func() (e error) { stats.RecentOrders, e = s.orderRepo.FindRecent(recentOrdersLimit); return },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, apperrors.Upstream(err, "dashboard")
		}
	}
	return stats, nil
}

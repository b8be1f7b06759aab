package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	apperrors "github.com/ikkim/animestore-backend/internal/errors"
	"github.com/ikkim/animestore-backend/pkg/logger"
	"gorm.io/gorm"
)

// NotificationService is the admin notification feed.
type NotificationService interface {
	GetNotifications(unreadOnly bool, page repository.Pagination) ([]model.Notification, int64, error)
	GetUnreadCount() (int64, error)
	MarkAsRead(id uint) error
	MarkAllAsRead() (int64, error)

	// ScanLowStock raises a low_stock notification for every product at or
	// below the configured threshold, at most once per product per day.
	ScanLowStock(ctx context.Context) (int, error)
	// PurgeRead deletes read notifications created before now minus olderThan.
	PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error)
}

type notificationService struct {
	repo         repository.NotificationRepository
	productRepo  repository.ProductRepository
	settingsRepo repository.SettingsRepository
	publisher    Publisher
	now          func() time.Time
}

func NewNotificationService(
	repo repository.NotificationRepository,
	productRepo repository.ProductRepository,
	settingsRepo repository.SettingsRepository,
	publisher Publisher,
) NotificationService {
	return &notificationService{
		repo:         repo,
		productRepo:  productRepo,
		settingsRepo: settingsRepo,
		publisher:    publisherOrNoop(publisher),
		now:          time.Now,
	}
}

func (s *notificationService) GetNotifications(unreadOnly bool, page repository.Pagination) ([]model.Notification, int64, error) {
	notifications, total, err := s.repo.FindAll(unreadOnly, page)
	if err != nil {
		return nil, 0, apperrors.Upstream(err, "notification")
	}
	return notifications, total, nil
}

func (s *notificationService) GetUnreadCount() (int64, error) {
	count, err := s.repo.CountUnread()
	if err != nil {
		return 0, apperrors.Upstream(err, "notification")
	}
	return count, nil
}

func (s *notificationService) MarkAsRead(id uint) error {
	if err := s.repo.MarkAsRead(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationMissing
		}
		return apperrors.Upstream(err, "notification")
	}
	return nil
}

func (s *notificationService) MarkAllAsRead() (int64, error) {
	updated, err := s.repo.MarkAllAsRead()
	if err != nil {
		return 0, apperrors.Upstream(err, "notification")
	}
	logger.Info("Notifications marked as read", map[string]interface{}{
		"count": updated,
	})
	return updated, nil
}

func (s *notificationService) ScanLowStock(ctx context.Context) (int, error) {
	settings, err := s.settingsRepo.Get()
	if err != nil {
		return 0, err
	}
	products, err := s.productRepo.FindLowStock(settings.LowStockThreshold)
	if err != nil {
		return 0, err
	}

	now := s.now()
	since := now.Add(-24 * time.Hour)
	created := 0
	for i := range products {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		product := &products[i]

		exists, err := s.repo.ExistsForProductSince(model.NotificationTypeLowStock, product.ID, since)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		productID := product.ID
		notification := &model.Notification{
			Type:      model.NotificationTypeLowStock,
			Message:   fmt.Sprintf("المخزون منخفض: \"%s\" (المتبقي %d)", product.NameAr, product.Stock),
			Link:      fmt.Sprintf("/admin/products/%d", product.ID),
			ProductID: &productID,
		}
		if err := s.repo.Create(notification); err != nil {
			return created, err
		}
		s.publisher.PublishToAdmins(EventNotification, notification)
		created++
	}

	if created > 0 {
		logger.Info("Low stock notifications created", map[string]interface{}{
			"count":     created,
			"threshold": settings.LowStockThreshold,
		})
	}
	return created, nil
}

func (s *notificationService) PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	deleted, err := s.repo.DeleteReadBefore(s.now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	logger.Info("Read notifications purged", map[string]interface{}{
		"deleted": deleted,
	})
	return deleted, nil
}

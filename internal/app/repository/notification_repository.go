package repository

import (
	"time"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"gorm.io/gorm"
)

// NotificationRepository stores the admin notification feed.
type NotificationRepository interface {
	WithTx(tx *gorm.DB) NotificationRepository
	Create(notification *model.Notification) error
	FindAll(unreadOnly bool, page Pagination) ([]model.Notification, int64, error)
	CountUnread() (int64, error)
	MarkAsRead(id uint) error
	MarkAllAsRead() (int64, error)
	ExistsForProductSince(notifType model.NotificationType, productID uint, since time.Time) (bool, error)
	DeleteReadBefore(cutoff time.Time) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) WithTx(tx *gorm.DB) NotificationRepository {
	return &notificationRepository{db: tx}
}

func (r *notificationRepository) Create(notification *model.Notification) error {
	return r.db.Create(notification).Error
}

func (r *notificationRepository) FindAll(unreadOnly bool, page Pagination) ([]model.Notification, int64, error) {
	query := r.db.Model(&model.Notification{})
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []model.Notification
	err := page.apply(query).Order("created_at DESC").Order("id DESC").Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *notificationRepository) CountUnread() (int64, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).Where("is_read = ?", false).Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkAsRead(id uint) error {
	result := r.db.Model(&model.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllAsRead flips every unread row in one statement.
func (r *notificationRepository) MarkAllAsRead() (int64, error) {
	result := r.db.Model(&model.Notification{}).
		Where("is_read = ?", false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) ExistsForProductSince(notifType model.NotificationType, productID uint, since time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).
		Where("type = ? AND product_id = ? AND created_at >= ?", notifType, productID, since).
		Count(&count).Error
	return count > 0, err
}

func (r *notificationRepository) DeleteReadBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("is_read = ? AND created_at < ?", true, cutoff).Delete(&model.Notification{})
	return result.RowsAffected, result.Error
}

package model

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeNewOrder       NotificationType = "new_order"
	NotificationTypeOrderCancelled NotificationType = "order_cancelled"
	NotificationTypeNewMessage     NotificationType = "new_message"
	NotificationTypeLowStock       NotificationType = "low_stock"
)

// Notification is an entry in the admin feed. Rows are created once and
// afterwards only their IsRead flag changes.
type Notification struct {
	ID        uint             `gorm:"primarykey" json:"id"`
	Type      NotificationType `gorm:"type:varchar(30);not null;index" json:"type"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	Link      string           `gorm:"type:text" json:"link"`
	OrderID   *uint            `gorm:"index" json:"order_id,omitempty"`
	ProductID *uint            `gorm:"index" json:"product_id,omitempty"`
	IsRead    bool             `gorm:"default:false;index" json:"is_read"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

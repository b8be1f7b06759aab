package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/animestore-backend/internal/app/service"
)

type NotificationController struct {
	notificationService service.NotificationService
}

func NewNotificationController(notificationService service.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// ListNotifications GET /api/admin/notifications?unread=true
func (ctrl *NotificationController) ListNotifications(c *gin.Context) {
	page := paginationFromQuery(c)
	notifications, total, err := ctrl.notificationService.GetNotifications(c.Query("unread") == "true", page)
	if err != nil {
		respondError(c, err, "list notifications")
		return
	}
	c.JSON(http.StatusOK, newPage(notifications, total, page))
}

// UnreadCount GET /api/admin/notifications/unread-count
func (ctrl *NotificationController) UnreadCount(c *gin.Context) {
	count, err := ctrl.notificationService.GetUnreadCount()
	if err != nil {
		respondError(c, err, "count notifications")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkRead PUT /api/admin/notifications/:id/read
func (ctrl *NotificationController) MarkRead(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.notificationService.MarkAsRead(id); err != nil {
		respondError(c, err, "update notification")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkAllRead PUT /api/admin/notifications/read-all
func (ctrl *NotificationController) MarkAllRead(c *gin.Context) {
	updated, err := ctrl.notificationService.MarkAllAsRead()
	if err != nil {
		respondError(c, err, "update notifications")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

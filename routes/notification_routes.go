package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"daycare-server/database"
	"daycare-server/middleware"
	"daycare-server/models"
	"daycare-server/services"
)

type announcementRequest struct {
	Title string `json:"title" binding:"required,max=120"`
	Body  string `json:"body" binding:"required,max=1000"`
	Role  string `json:"role" binding:"omitempty,oneof=parent staff manager"`
}

// RegisterNotificationRoutes registers the notification inbox and manager
// announcements.
func RegisterNotificationRoutes(router *gin.RouterGroup, notifier services.Notifier) {
	group := router.Group("/notifications")
	group.Use(middleware.AuthMiddleware())

	group.GET("", GetUserNotifications)
	group.GET("/unread-count", GetUnreadCount)
	group.POST("/read-all", MarkAllNotificationsAsRead)
	group.POST("/:id/read", MarkNotificationAsRead)
	group.POST("/announcements", middleware.RequireRoles(models.RoleManager), SendAnnouncement(notifier))
}

// GetUserNotifications returns the newest notifications of the current user.
// ?unread=true restricts the list to unread ones.
func GetUserNotifications(c *gin.Context) {
	userID := c.GetUint("user_id")

	limit := 50
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}

	query := database.DB.WithContext(c.Request.Context()).Where("user_id = ?", userID)
	if c.Query("unread") == "true" {
		query = query.Where("read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&notifications).Error; err != nil {
		internalError(c, "Failed to fetch notifications", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notifications,
		"count":   len(notifications),
	})
}

func MarkNotificationAsRead(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var notification models.Notification
	err := database.DB.WithContext(c.Request.Context()).Where("id = ? AND user_id = ?", id, userID).First(&notification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	if err != nil {
		internalError(c, "Failed to update notification", err)
		return
	}

	if !notification.Read {
		if err := database.DB.WithContext(c.Request.Context()).Model(&notification).Update("read", true).Error; err != nil {
			internalError(c, "Failed to update notification", err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notification marked as read",
	})
}

func MarkAllNotificationsAsRead(c *gin.Context) {
	userID := c.GetUint("user_id")

	res := database.DB.WithContext(c.Request.Context()).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if res.Error != nil {
		internalError(c, "Failed to mark notifications as read", res.Error)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "All notifications marked as read",
		"updated": res.RowsAffected,
	})
}

func GetUnreadCount(c *gin.Context) {
	userID := c.GetUint("user_id")

	var count int64
	if err := database.DB.WithContext(c.Request.Context()).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error; err != nil {
		internalError(c, "Failed to get unread count", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   count,
	})
}

// SendAnnouncement notifies every active user, or every active user of one
// role, with the same message.
func SendAnnouncement(notifier services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req announcementRequest
		if !bindJSON(c, &req) {
			return
		}

		query := database.DB.WithContext(c.Request.Context()).Model(&models.User{}).Where("is_active = ?", true)
		if req.Role != "" {
			query = query.Where("role = ?", req.Role)
		}
		var userIDs []uint
		if err := query.Pluck("id", &userIDs).Error; err != nil {
			internalError(c, "Failed to load recipients", err)
			return
		}

		sent := 0
		for _, id := range userIDs {
			if err := notifier.Notify(c.Request.Context(), id, models.NotificationAnnouncement, req.Title, req.Body, nil); err != nil {
				logFor(c).Warn("announcement delivery failed", zap.Uint("user_id", id), zap.Error(err))
				continue
			}
			sent++
		}

		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"message":    "Announcement sent",
			"recipients": sent,
		})
	}
}

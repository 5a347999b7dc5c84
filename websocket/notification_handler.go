package websocket

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"daycare-server/models"
)

// NotificationHandler upgrades authenticated requests into notification
// streams. The user comes from the auth middleware.
type NotificationHandler struct {
	hub *Hub
	db  *gorm.DB
}

func NewNotificationHandler(hub *Hub, db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{hub: hub, db: db}
}

func (h *NotificationHandler) Handle(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).Select("id", "role", "is_active").First(&user, userID).Error; err != nil || !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var unread int64
	if err := h.db.WithContext(c.Request.Context()).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&unread).Error; err != nil {
		zap.L().Warn("failed to count unread notifications", zap.Uint("user_id", userID), zap.Error(err))
	}

	ServeNotifications(h.hub, c.Writer, c.Request, user.ID, string(user.Role), gin.H{
		"unreadCount": unread,
		"serverTime":  time.Now().UTC(),
	})
}

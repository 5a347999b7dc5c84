package services

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"daycare-server/models"
)

// Pusher delivers a realtime message to a connected user, if any.
type Pusher interface {
	SendToUser(userID uint, msgType string, data interface{})
}

type Notifier interface {
	Notify(ctx context.Context, userID uint, kind, title, body string, data interface{}) error
}

// NotificationService persists notifications and pushes them to live sockets.
type NotificationService struct {
	db     *gorm.DB
	pusher Pusher
}

func NewNotificationService(db *gorm.DB, pusher Pusher) *NotificationService {
	return &NotificationService{db: db, pusher: pusher}
}

func (s *NotificationService) Notify(ctx context.Context, userID uint, kind, title, body string, data interface{}) error {
	n := models.Notification{
		UserID: userID,
		Title:  title,
		Body:   body,
		Type:   kind,
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		n.Data = string(raw)
	}

	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		return err
	}

	if s.pusher != nil {
		s.pusher.SendToUser(userID, "notification", n)
	}
	return nil
}

// notifySafe logs instead of failing: a notification never undoes a committed write.
func notifySafe(ctx context.Context, n Notifier, userID uint, kind, title, body string, data interface{}) {
	if n == nil || userID == 0 {
		return
	}
	if err := n.Notify(ctx, userID, kind, title, body, data); err != nil {
		zap.L().Warn("failed to store notification",
			zap.Uint("user_id", userID),
			zap.String("type", kind),
			zap.Error(err))
	}
}

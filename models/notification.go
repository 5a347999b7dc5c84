package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification types.
const (
	NotificationScheduleCreated   = "schedule_created"
	NotificationScheduleCompleted = "schedule_completed"
	NotificationScheduleCancelled = "schedule_cancelled"
	NotificationPaymentUpdated    = "payment_updated"
	NotificationIncidentReported  = "incident_reported"
	NotificationAttendance        = "attendance"
	NotificationAnnouncement      = "announcement"
)

type Notification struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"userId" gorm:"not null;index"`
	Title     string         `json:"title" gorm:"not null"`
	Body      string         `json:"body" gorm:"not null"`
	Type      string         `json:"type" gorm:"not null"`
	Data      string         `json:"data" gorm:"type:text"` // JSON data
	Read      bool           `json:"read" gorm:"default:false"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Notification) TableName() string {
	return "notifications"
}

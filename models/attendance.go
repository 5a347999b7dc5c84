package models

import (
	"time"

	"gorm.io/datatypes"
)

// Attendance records one check-in/check-out of a child on a given day.
type Attendance struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	ChildID      uint           `json:"childId" gorm:"not null;index:idx_attendance_child_day"`
	Day          datatypes.Date `json:"day" gorm:"type:date;not null;index:idx_attendance_child_day"`
	CheckInAt    time.Time      `json:"checkInAt" gorm:"not null"`
	CheckOutAt   *time.Time     `json:"checkOutAt"`
	CheckedInBy  uint           `json:"checkedInBy" gorm:"not null"`
	CheckedOutBy *uint          `json:"checkedOutBy"`
	Notes        string         `json:"notes" gorm:"type:text"`
	CreatedAt    time.Time      `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updatedAt" gorm:"autoUpdateTime"`

	Child *Child `json:"child,omitempty" gorm:"foreignKey:ChildID"`
}

func (Attendance) TableName() string {
	return "attendances"
}

// IsOpen reports whether the child is still checked in.
func (a *Attendance) IsOpen() bool {
	return a.CheckOutAt == nil
}

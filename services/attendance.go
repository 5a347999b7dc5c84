package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"daycare-server/models"
	"daycare-server/utils"
)

var (
	ErrAlreadyCheckedIn   = errors.New("child is already checked in today")
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrAlreadyCheckedOut  = errors.New("child is already checked out")
)

// AttendanceService records daily drop-off and pick-up.
type AttendanceService struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

func NewAttendanceService(db *gorm.DB, notifier Notifier) *AttendanceService {
	return &AttendanceService{db: db, notifier: notifier, now: time.Now}
}

// CheckIn opens today's attendance record. A child has at most one open
// record per day.
func (s *AttendanceService) CheckIn(ctx context.Context, childID, staffID uint, notes string) (*models.Attendance, error) {
	now := s.now()
	day := datatypes.Date(utils.Midnight(now.UTC()))

	var child models.Child
	if err := s.db.WithContext(ctx).First(&child, childID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChildNotFound
		}
		return nil, fmt.Errorf("lookup child: %w", err)
	}

	record := &models.Attendance{
		ChildID:     childID,
		Day:         day,
		CheckInAt:   now,
		CheckedInBy: staffID,
		Notes:       notes,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open int64
		if err := tx.Model(&models.Attendance{}).
			Where("child_id = ? AND day = ? AND check_out_at IS NULL", childID, day).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return ErrAlreadyCheckedIn
		}
		return tx.Create(record).Error
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyCheckedIn) {
			return nil, err
		}
		return nil, fmt.Errorf("check in: %w", err)
	}

	notifySafe(ctx, s.notifier, child.ParentID, models.NotificationAttendance,
		"Checked in",
		fmt.Sprintf("%s was checked in at %s.", child.FirstName, now.Format("15:04")),
		fields{"childId": child.ID, "attendanceId": record.ID, "event": "check_in"})

	return record, nil
}

// CheckOut closes an open attendance record.
func (s *AttendanceService) CheckOut(ctx context.Context, attendanceID, staffID uint, notes string) (*models.Attendance, error) {
	now := s.now()

	var record models.Attendance
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Child").First(&record, attendanceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAttendanceNotFound
			}
			return err
		}
		if !record.IsOpen() {
			return ErrAlreadyCheckedOut
		}

		updates := map[string]interface{}{
			"check_out_at":   now,
			"checked_out_by": staffID,
		}
		if notes != "" {
			updates["notes"] = notes
		}
		return tx.Model(&models.Attendance{}).Where("id = ?", record.ID).Updates(updates).Error
	})
	if err != nil {
		if errors.Is(err, ErrAttendanceNotFound) || errors.Is(err, ErrAlreadyCheckedOut) {
			return nil, err
		}
		return nil, fmt.Errorf("check out: %w", err)
	}

	record.CheckOutAt = &now
	record.CheckedOutBy = &staffID
	if notes != "" {
		record.Notes = notes
	}

	if record.Child != nil {
		notifySafe(ctx, s.notifier, record.Child.ParentID, models.NotificationAttendance,
			"Checked out",
			fmt.Sprintf("%s was checked out at %s.", record.Child.FirstName, now.Format("15:04")),
			fields{"childId": record.ChildID, "attendanceId": record.ID, "event": "check_out"})
	}
	return &record, nil
}

// ForChild lists a child's attendance, newest first, optionally bounded by
// inclusive calendar dates. Zero times leave a side open.
func (s *AttendanceService) ForChild(ctx context.Context, childID uint, from, to time.Time) ([]models.Attendance, error) {
	q := s.db.WithContext(ctx).Where("child_id = ?", childID)
	if !from.IsZero() {
		q = q.Where("day >= ?", datatypes.Date(utils.Midnight(from)))
	}
	if !to.IsZero() {
		q = q.Where("day <= ?", datatypes.Date(utils.Midnight(to)))
	}

	var records []models.Attendance
	if err := q.Order("day DESC").Order("check_in_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

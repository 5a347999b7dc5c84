package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"daycare-server/cache"
	"daycare-server/events"
	"daycare-server/models"
	"daycare-server/utils"
)

// SchedulingService books babysitters, prices the booking and keeps the
// schedule, payment and child payment fields in step.
type SchedulingService struct {
	db       *gorm.DB
	notifier Notifier
	events   events.Publisher
	cache    cache.SummaryCache
	now      func() time.Time
}

// NewSchedulingService wires the service. notifier and summaryCache may be nil;
// a nil publisher drops events.
func NewSchedulingService(db *gorm.DB, notifier Notifier, publisher events.Publisher, summaryCache cache.SummaryCache) *SchedulingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &SchedulingService{
		db:       db,
		notifier: notifier,
		events:   publisher,
		cache:    summaryCache,
		now:      time.Now,
	}
}

type CreateScheduleInput struct {
	ChildID       uint
	BabysitterID  uint
	StartDate     time.Time
	EndDate       time.Time
	SessionType   models.SessionType
	PaymentMethod models.PaymentMethod
}

// CreateSchedule prices the booking and writes the schedule and its pending
// payment in one transaction. Nothing is written when the babysitter or child
// does not exist.
func (s *SchedulingService) CreateSchedule(ctx context.Context, in CreateScheduleInput) (*models.Schedule, error) {
	quote, err := CalculateQuote(in.StartDate, in.EndDate, in.SessionType)
	if err != nil {
		return nil, err
	}
	if !in.PaymentMethod.Valid() {
		return nil, ErrUnknownPaymentMethod
	}

	now := s.now()
	schedule := &models.Schedule{
		ChildID:      in.ChildID,
		BabysitterID: in.BabysitterID,
		StartDate:    datatypes.Date(utils.Midnight(in.StartDate)),
		EndDate:      datatypes.Date(utils.Midnight(in.EndDate)),
		SessionType:  in.SessionType,
		Status:       models.ScheduleStatusActive,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var babysitter models.Babysitter
		if err := tx.Select("id").First(&babysitter, in.BabysitterID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBabysitterNotFound
			}
			return fmt.Errorf("lookup babysitter: %w", err)
		}

		var child models.Child
		if err := tx.Select("id").First(&child, in.ChildID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChildNotFound
			}
			return fmt.Errorf("lookup child: %w", err)
		}

		if err := tx.Create(schedule).Error; err != nil {
			return fmt.Errorf("create schedule: %w", err)
		}

		payment := &models.Payment{
			ScheduleID:    schedule.ID,
			Amount:        quote.Total,
			PaymentDate:   now,
			PaymentMethod: in.PaymentMethod,
			Status:        models.PaymentStatusPending,
		}
		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.GetSchedule(ctx, schedule.ID)
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx)
	s.publish(ctx, events.ScheduleCreated, created.View())
	if created.Child != nil {
		notifySafe(ctx, s.notifier, created.Child.ParentID, models.NotificationScheduleCreated,
			"Booking confirmed",
			fmt.Sprintf("%s is booked with %s from %s to %s. Amount due: %s.",
				created.Child.FirstName, created.View().BabysitterName,
				created.View().StartDate, created.View().EndDate, quote.Total.StringFixed(2)),
			fields{"scheduleId": created.ID})
	}

	zap.L().Info("schedule created",
		zap.Uint("schedule_id", created.ID),
		zap.Uint("child_id", created.ChildID),
		zap.Int("days", quote.Days),
		zap.String("total", quote.Total.String()))

	return created, nil
}

// canTransitionSchedule: active -> completed | cancelled. Both targets are terminal.
func canTransitionSchedule(from, to models.ScheduleStatus) bool {
	return from == models.ScheduleStatusActive && to.Terminal()
}

// canTransitionPayment: pending -> paid | cancelled.
func canTransitionPayment(from, to models.PaymentStatus) bool {
	return from == models.PaymentStatusPending &&
		(to == models.PaymentStatusPaid || to == models.PaymentStatusCancelled)
}

// UpdateScheduleStatus moves a schedule through its state machine. Setting the
// current status again is a no-op. Cancelling a schedule also cancels its
// payment; cancelling a payment never touches the schedule.
func (s *SchedulingService) UpdateScheduleStatus(ctx context.Context, id uint, status models.ScheduleStatus) (*models.Schedule, error) {
	if !status.Valid() {
		return nil, ErrInvalidTransition
	}

	now := s.now()
	var changed, paymentChanged bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var schedule models.Schedule
		if err := tx.Preload("Payment").First(&schedule, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrScheduleNotFound
			}
			return fmt.Errorf("load schedule: %w", err)
		}

		if schedule.Status == status {
			return nil
		}
		if !canTransitionSchedule(schedule.Status, status) {
			return ErrInvalidTransition
		}

		if err := tx.Model(&models.Schedule{}).Where("id = ?", schedule.ID).Update("status", status).Error; err != nil {
			return fmt.Errorf("update schedule status: %w", err)
		}
		changed = true

		if status == models.ScheduleStatusCancelled && schedule.Payment != nil &&
			schedule.Payment.Status != models.PaymentStatusCancelled {
			if err := applyPaymentStatus(tx, schedule.Payment.ID, schedule.ChildID, models.PaymentStatusCancelled, nil, now); err != nil {
				return err
			}
			paymentChanged = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.GetSchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	if !changed {
		return updated, nil
	}

	if paymentChanged {
		s.invalidateSummary(ctx)
	}
	s.publish(ctx, events.ScheduleStatusChanged, updated.View())

	if updated.Child != nil {
		kind, title := models.NotificationScheduleCompleted, "Booking completed"
		if status == models.ScheduleStatusCancelled {
			kind, title = models.NotificationScheduleCancelled, "Booking cancelled"
		}
		notifySafe(ctx, s.notifier, updated.Child.ParentID, kind, title,
			fmt.Sprintf("The booking for %s from %s to %s is now %s.",
				updated.Child.FirstName, updated.View().StartDate, updated.View().EndDate, status),
			fields{"scheduleId": updated.ID, "status": status})
	}
	return updated, nil
}

// UpdatePaymentStatus sets the status of a schedule's payment and overwrites
// the child's cached payment fields with the new status and time, whichever of
// the child's bookings it belongs to.
func (s *SchedulingService) UpdatePaymentStatus(ctx context.Context, scheduleID uint, status models.PaymentStatus, transactionReference *string) (*models.Payment, error) {
	if !status.Valid() {
		return nil, ErrUnknownPaymentState
	}

	now := s.now()
	var paymentID uint

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var schedule models.Schedule
		if err := tx.Select("id", "child_id").First(&schedule, scheduleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrScheduleNotFound
			}
			return fmt.Errorf("load schedule: %w", err)
		}

		var payment models.Payment
		if err := tx.Where("schedule_id = ?", schedule.ID).First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return fmt.Errorf("load payment: %w", err)
		}
		paymentID = payment.ID

		if payment.Status != status && !canTransitionPayment(payment.Status, status) {
			return ErrInvalidTransition
		}
		return applyPaymentStatus(tx, payment.ID, schedule.ChildID, status, transactionReference, now)
	})
	if err != nil {
		return nil, err
	}

	var payment models.Payment
	if err := s.db.WithContext(ctx).Preload("Schedule.Child").First(&payment, paymentID).Error; err != nil {
		return nil, fmt.Errorf("reload payment: %w", err)
	}

	s.invalidateSummary(ctx)
	s.publish(ctx, events.PaymentStatusChanged, fields{
		"paymentId":            payment.ID,
		"scheduleId":           payment.ScheduleID,
		"status":               payment.Status,
		"amount":               payment.Amount,
		"transactionReference": payment.TransactionReference,
	})

	if payment.Schedule != nil && payment.Schedule.Child != nil {
		child := payment.Schedule.Child
		notifySafe(ctx, s.notifier, child.ParentID, models.NotificationPaymentUpdated,
			"Payment update",
			fmt.Sprintf("The payment of %s for %s is now %s.", payment.Amount.StringFixed(2), child.FirstName, status),
			fields{"scheduleId": payment.ScheduleID, "paymentId": payment.ID, "status": status})
	}
	return &payment, nil
}

// applyPaymentStatus writes a payment status and refreshes the child's cached
// payment fields in the caller's transaction.
func applyPaymentStatus(tx *gorm.DB, paymentID, childID uint, status models.PaymentStatus, transactionReference *string, now time.Time) error {
	updates := map[string]interface{}{"status": status}
	if transactionReference != nil {
		updates["transaction_reference"] = *transactionReference
	}
	if status == models.PaymentStatusPaid {
		updates["payment_date"] = now
	}
	if err := tx.Model(&models.Payment{}).Where("id = ?", paymentID).Updates(updates).Error; err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}

	if err := tx.Model(&models.Child{}).Where("id = ?", childID).Updates(map[string]interface{}{
		"payment_status":    status,
		"last_payment_date": now,
	}).Error; err != nil {
		return fmt.Errorf("update child payment fields: %w", err)
	}
	return nil
}

// GetSchedule loads a schedule with its child, babysitter and payment.
func (s *SchedulingService) GetSchedule(ctx context.Context, id uint) (*models.Schedule, error) {
	var schedule models.Schedule
	err := s.db.WithContext(ctx).
		Preload("Child").
		Preload("Babysitter").
		Preload("Payment").
		First(&schedule, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

// ScheduleFilter narrows ListSchedules. Zero values match everything.
type ScheduleFilter struct {
	ChildID      uint
	BabysitterID uint
	ParentID     uint
	Status       models.ScheduleStatus
}

func (s *SchedulingService) ListSchedules(ctx context.Context, f ScheduleFilter) ([]models.ScheduleView, error) {
	q := s.db.WithContext(ctx).
		Preload("Child").
		Preload("Babysitter").
		Preload("Payment")

	if f.ChildID != 0 {
		q = q.Where("child_id = ?", f.ChildID)
	}
	if f.BabysitterID != 0 {
		q = q.Where("babysitter_id = ?", f.BabysitterID)
	}
	if f.ParentID != 0 {
		q = q.Where("child_id IN (?)", s.db.Model(&models.Child{}).Select("id").Where("parent_id = ?", f.ParentID))
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var schedules []models.Schedule
	if err := q.Order("start_date DESC").Order("id DESC").Find(&schedules).Error; err != nil {
		return nil, err
	}

	views := make([]models.ScheduleView, 0, len(schedules))
	for i := range schedules {
		views = append(views, schedules[i].View())
	}
	return views, nil
}

// CompleteElapsedSchedules marks active schedules that ended before today as
// completed. Payments are left alone.
func (s *SchedulingService) CompleteElapsedSchedules(ctx context.Context) (int64, error) {
	today := datatypes.Date(utils.Midnight(s.now().UTC()))
	res := s.db.WithContext(ctx).
		Model(&models.Schedule{}).
		Where("status = ? AND end_date < ?", models.ScheduleStatusActive, today).
		Update("status", models.ScheduleStatusCompleted)
	return res.RowsAffected, res.Error
}

func (s *SchedulingService) invalidateSummary(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		zap.L().Warn("failed to invalidate payment summary cache", zap.Error(err))
	}
}

func (s *SchedulingService) publish(ctx context.Context, key string, data interface{}) {
	if err := s.events.Publish(ctx, key, data); err != nil {
		zap.L().Warn("failed to publish event", zap.String("event", key), zap.Error(err))
	}
}

type fields = map[string]interface{}

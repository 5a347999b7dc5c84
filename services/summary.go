package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"daycare-server/models"
)

// PaymentSummary reports payment counts and totals per status. A cached
// summary is served until the next payment write invalidates it.
func (s *SchedulingService) PaymentSummary(ctx context.Context) (*models.PaymentSummary, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx)
		if err != nil {
			zap.L().Warn("payment summary cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	summary, err := summarizePayments(ctx, s.db)
	if err != nil {
		return nil, err
	}
	summary.GeneratedAt = s.now().UTC()

	if s.cache != nil {
		if err := s.cache.Set(ctx, summary); err != nil {
			zap.L().Warn("payment summary cache write failed", zap.Error(err))
		}
	}
	return summary, nil
}

func summarizePayments(ctx context.Context, db *gorm.DB) (*models.PaymentSummary, error) {
	var rows []struct {
		Status models.PaymentStatus
		Count  int64
		Total  decimal.Decimal
	}
	err := db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("summarize payments: %w", err)
	}

	byStatus := make(map[models.PaymentStatus]models.PaymentStatusTotal, len(rows))
	for _, r := range rows {
		byStatus[r.Status] = models.PaymentStatusTotal{Status: r.Status, Count: r.Count, Total: r.Total}
	}

	summary := &models.PaymentSummary{
		ByStatus: make([]models.PaymentStatusTotal, 0, len(models.PaymentStatuses)),
		Total:    decimal.Zero,
	}
	for _, status := range models.PaymentStatuses {
		row, ok := byStatus[status]
		if !ok {
			row = models.PaymentStatusTotal{Status: status, Total: decimal.Zero}
		}
		summary.ByStatus = append(summary.ByStatus, row)
		summary.Count += row.Count
		summary.Total = summary.Total.Add(row.Total)
	}
	return summary, nil
}

package services

import (
	"time"

	"github.com/shopspring/decimal"

	"daycare-server/models"
	"daycare-server/utils"
)

// dailyRates is the fixed price per day of each session type.
var dailyRates = map[models.SessionType]decimal.Decimal{
	models.SessionHalfDay: decimal.NewFromInt(2000),
	models.SessionFullDay: decimal.NewFromInt(5000),
}

// DailyRate returns the per-day price of a session type.
func DailyRate(sessionType models.SessionType) (decimal.Decimal, error) {
	rate, ok := dailyRates[sessionType]
	if !ok {
		return decimal.Zero, ErrUnknownSessionType
	}
	return rate, nil
}

// Quote is the priced form of a date range.
type Quote struct {
	Days        int                `json:"days"`
	DailyRate   decimal.Decimal    `json:"dailyRate"`
	Total       decimal.Decimal    `json:"total"`
	SessionType models.SessionType `json:"sessionType"`
}

const secondsPerDay = 24 * 60 * 60

// CalculateQuote prices the inclusive range [start, end]. Both bounds are
// reduced to calendar dates first, so times of day never change the count.
func CalculateQuote(start, end time.Time, sessionType models.SessionType) (Quote, error) {
	rate, err := DailyRate(sessionType)
	if err != nil {
		return Quote{}, err
	}

	start, end = utils.Midnight(start), utils.Midnight(end)
	if end.Before(start) {
		return Quote{}, ErrInvalidDateRange
	}

	// Count on Unix seconds: time.Duration saturates after ~292 years.
	days := int((end.Unix()-start.Unix())/secondsPerDay) + 1
	return Quote{
		Days:        days,
		DailyRate:   rate,
		Total:       rate.Mul(decimal.NewFromInt(int64(days))),
		SessionType: sessionType,
	}, nil
}

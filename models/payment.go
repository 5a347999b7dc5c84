package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// PaymentStatuses lists every status in display order.
var PaymentStatuses = []PaymentStatus{PaymentStatusPending, PaymentStatusPaid, PaymentStatusCancelled}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusCancelled:
		return true
	default:
		return false
	}
}

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodMobileMoney, PaymentMethodBankTransfer:
		return true
	default:
		return false
	}
}

// Payment is the amount owed for one schedule. Amount is always derived from
// the schedule's date range and session type, never supplied by a client.
type Payment struct {
	ID                   uint            `json:"id" gorm:"primaryKey"`
	ScheduleID           uint            `json:"scheduleId" gorm:"not null;uniqueIndex"`
	Amount               decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	PaymentDate          time.Time       `json:"paymentDate" gorm:"not null"`
	PaymentMethod        PaymentMethod   `json:"paymentMethod" gorm:"type:varchar(20);not null;check:payment_method IN ('cash','mobile_money','bank_transfer')"`
	Status               PaymentStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending';index;check:status IN ('pending','paid','cancelled')"`
	TransactionReference *string         `json:"transactionReference" gorm:"size:100"`
	CreatedAt            time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt            time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`

	Schedule *Schedule `json:"schedule,omitempty" gorm:"foreignKey:ScheduleID"`
}

func (Payment) TableName() string {
	return "payments"
}

// PaymentStatusTotal aggregates the payments in one status.
type PaymentStatusTotal struct {
	Status PaymentStatus   `json:"status"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// PaymentSummary is the budget overview served to managers.
type PaymentSummary struct {
	ByStatus    []PaymentStatusTotal `json:"byStatus"`
	Count       int64                `json:"count"`
	Total       decimal.Decimal      `json:"total"`
	GeneratedAt time.Time            `json:"generatedAt"`
}

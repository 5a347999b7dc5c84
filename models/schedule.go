package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type SessionType string

const (
	SessionHalfDay SessionType = "half-day"
	SessionFullDay SessionType = "full-day"
)

func (s SessionType) Valid() bool {
	return s == SessionHalfDay || s == SessionFullDay
}

type ScheduleStatus string

const (
	ScheduleStatusActive    ScheduleStatus = "active"
	ScheduleStatusCompleted ScheduleStatus = "completed"
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
)

func (s ScheduleStatus) Valid() bool {
	switch s {
	case ScheduleStatusActive, ScheduleStatusCompleted, ScheduleStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions are allowed out of s.
func (s ScheduleStatus) Terminal() bool {
	return s == ScheduleStatusCompleted || s == ScheduleStatusCancelled
}

// Schedule books a babysitter for a child over an inclusive date range.
type Schedule struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	ChildID      uint           `json:"childId" gorm:"not null;index"`
	BabysitterID uint           `json:"babysitterId" gorm:"not null;index"`
	StartDate    datatypes.Date `json:"startDate" gorm:"type:date;not null"`
	EndDate      datatypes.Date `json:"endDate" gorm:"type:date;not null;index"`
	SessionType  SessionType    `json:"sessionType" gorm:"type:varchar(20);not null;check:session_type IN ('half-day','full-day')"`
	Status       ScheduleStatus `json:"status" gorm:"type:varchar(20);not null;default:'active';check:status IN ('active','completed','cancelled')"`
	CreatedAt    time.Time      `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updatedAt" gorm:"autoUpdateTime"`

	Child      *Child      `json:"child,omitempty" gorm:"foreignKey:ChildID"`
	Babysitter *Babysitter `json:"babysitter,omitempty" gorm:"foreignKey:BabysitterID"`
	Payment    *Payment    `json:"payment,omitempty" gorm:"foreignKey:ScheduleID"`
}

func (Schedule) TableName() string {
	return "schedules"
}

// ScheduleView is the joined row the schedule endpoints return.
type ScheduleView struct {
	ID                   uint             `json:"id"`
	ChildID              uint             `json:"childId"`
	ChildName            string           `json:"childName"`
	BabysitterID         uint             `json:"babysitterId"`
	BabysitterName       string           `json:"babysitterName"`
	StartDate            string           `json:"startDate"`
	EndDate              string           `json:"endDate"`
	SessionType          SessionType      `json:"sessionType"`
	Status               ScheduleStatus   `json:"status"`
	PaymentID            *uint            `json:"paymentId"`
	Amount               *decimal.Decimal `json:"amount"`
	PaymentStatus        *PaymentStatus   `json:"paymentStatus"`
	PaymentMethod        *PaymentMethod   `json:"paymentMethod"`
	TransactionReference *string          `json:"transactionReference,omitempty"`
	CreatedAt            time.Time        `json:"createdAt"`
}

const DateLayout = "2006-01-02"

// View flattens a schedule loaded with its Child, Babysitter and Payment.
func (s *Schedule) View() ScheduleView {
	v := ScheduleView{
		ID:           s.ID,
		ChildID:      s.ChildID,
		BabysitterID: s.BabysitterID,
		StartDate:    time.Time(s.StartDate).Format(DateLayout),
		EndDate:      time.Time(s.EndDate).Format(DateLayout),
		SessionType:  s.SessionType,
		Status:       s.Status,
		CreatedAt:    s.CreatedAt,
	}
	if s.Child != nil {
		v.ChildName = s.Child.FullName()
	}
	if s.Babysitter != nil {
		v.BabysitterName = s.Babysitter.FullName()
	}
	if p := s.Payment; p != nil {
		v.PaymentID = &p.ID
		v.Amount = &p.Amount
		v.PaymentStatus = &p.Status
		v.PaymentMethod = &p.PaymentMethod
		v.TransactionReference = p.TransactionReference
	}
	return v
}

package services

import "errors"

var (
	ErrBabysitterNotFound   = errors.New("babysitter not found")
	ErrChildNotFound        = errors.New("child not found")
	ErrScheduleNotFound     = errors.New("schedule not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrInvalidDateRange     = errors.New("end date is before start date")
	ErrUnknownSessionType   = errors.New("unknown session type")
	ErrUnknownPaymentState  = errors.New("unknown payment status")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

package models

import "time"

type Babysitter struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FirstName   string    `json:"firstName" gorm:"size:100;not null"`
	LastName    string    `json:"lastName" gorm:"size:100;not null"`
	PhoneNumber string    `json:"phoneNumber" gorm:"size:20"`
	Email       string    `json:"email" gorm:"size:255"`
	IsActive    bool      `json:"isActive" gorm:"default:true"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Babysitter) TableName() string {
	return "babysitters"
}

func (b *Babysitter) FullName() string {
	return b.FirstName + " " + b.LastName
}

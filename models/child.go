package models

import (
	"time"
)

// Child is a child enrolled at the daycare.
//
// PaymentStatus and LastPaymentDate are a denormalized projection: they hold
// the status and time of the most recent payment status change on any of the
// child's schedules (last write wins). They are never reconciled against the
// payments table and are read-only through the API.
type Child struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	ParentID        uint           `json:"parentId" gorm:"not null;index"`
	FirstName       string         `json:"firstName" gorm:"size:100;not null"`
	LastName        string         `json:"lastName" gorm:"size:100;not null"`
	DateOfBirth     *time.Time     `json:"dateOfBirth"`
	Allergies       string         `json:"allergies" gorm:"type:text"`
	MedicalNotes    string         `json:"medicalNotes" gorm:"type:text"`
	PhotoURL        *string        `json:"photoUrl" gorm:"size:255"`
	PaymentStatus   *PaymentStatus `json:"paymentStatus" gorm:"type:varchar(20)"`
	LastPaymentDate *time.Time     `json:"lastPaymentDate"`
	CreatedAt       time.Time      `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `json:"updatedAt" gorm:"autoUpdateTime"`

	Parent *User `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
}

func (Child) TableName() string {
	return "children"
}

func (c *Child) FullName() string {
	return c.FirstName + " " + c.LastName
}

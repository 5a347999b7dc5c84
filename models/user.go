package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleParent  UserRole = "parent"
	RoleStaff   UserRole = "staff"
	RoleManager UserRole = "manager"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	FullName     string    `json:"fullName" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PhoneNumber  string    `json:"phoneNumber" gorm:"size:20"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	Role         UserRole  `json:"role" gorm:"type:varchar(20);not null;default:'parent';check:role IN ('parent','staff','manager')"`
	IsActive     bool      `json:"isActive" gorm:"default:true"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	Children []Child `json:"children,omitempty" gorm:"foreignKey:ParentID"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate defaults the role to parent, the self-signup role.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleParent
	}
	return nil
}

func (r UserRole) Valid() bool {
	switch r {
	case RoleParent, RoleStaff, RoleManager:
		return true
	default:
		return false
	}
}

func (u *User) IsParent() bool {
	return u.Role == RoleParent
}

func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

// IsStaffOrManager reports whether the user works at the daycare.
func (u *User) IsStaffOrManager() bool {
	return u.Role == RoleStaff || u.Role == RoleManager
}

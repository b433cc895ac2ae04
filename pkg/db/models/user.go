package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role distinguishes administrators from regular warehouse employees.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

func (r Role) String() string {
	return string(r)
}

// UserStatus tracks the registration approval workflow.
type UserStatus string

const (
	UserStatusPending  UserStatus = "pending"
	UserStatusApproved UserStatus = "approved"
	UserStatusRejected UserStatus = "rejected"
)

func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusPending, UserStatusApproved, UserStatusRejected:
		return true
	}
	return false
}

// User represents the canonical identity entity. Only approved users can
// authenticate; the first registered user is promoted to admin.
type User struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Username     string     `gorm:"column:username;not null;uniqueIndex"`
	Email        *string    `gorm:"column:email"`
	Name         *string    `gorm:"column:name"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Role         Role       `gorm:"column:role;not null"`
	Status       UserStatus `gorm:"column:status;not null;default:pending"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

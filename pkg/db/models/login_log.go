package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoginLog records one login session. LogoutTime stays nil until a matching
// logout call closes the most recent open entry for the user.
type LoginLog struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID     uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	LoginTime  time.Time  `gorm:"column:login_time;not null;index"`
	LogoutTime *time.Time `gorm:"column:logout_time"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (l *LoginLog) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

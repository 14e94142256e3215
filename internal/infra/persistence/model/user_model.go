// Package model contains the GORM persistence models mirroring the
// PostgreSQL schema.
package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. The unique index on email enforces
// account uniqueness even under concurrent duplicate registrations.
type UserModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Email         string    `gorm:"type:varchar(255);unique;not null"`
	DisplayName   string    `gorm:"type:varchar(100)"`
	PasswordHash  string    `gorm:"type:varchar(255);not null"`
	EmailVerified bool      `gorm:"not null;default:false"`

	NotificationsEnabled bool   `gorm:"not null;default:true"`
	Theme                string `gorm:"type:varchar(10);not null;default:light"`

	FailedAttempts int        `gorm:"not null;default:0"`
	LockedUntil    *time.Time `gorm:"index"`
	LastLoginAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Sessions []SessionModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

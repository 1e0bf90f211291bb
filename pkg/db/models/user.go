package models

import (
	"time"

	"github.com/novaderm/clinic-backend/pkg/enums"
)

// User is a clinic staff account: admin, doctor, professional, receptionist.
type User struct {
	ID           int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Email        string         `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	FullName     string         `gorm:"column:full_name;not null"`
	Role         enums.UserRole `gorm:"column:role;not null"`
	Phone        *string        `gorm:"column:phone"`
	// AvatarB64 holds the profile image as a raw base64 string; it is
	// wrapped into a data URI only at the presentation boundary.
	AvatarB64 *string   `gorm:"column:avatar_b64"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

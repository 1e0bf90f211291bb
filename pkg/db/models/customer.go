package models

import "time"

// Customer is a clinic patient record created during intake.
type Customer struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	FullName  string    `gorm:"column:full_name;not null"`
	Phone     *string   `gorm:"column:phone"`
	Email     *string   `gorm:"column:email"`
	BirthDate *time.Time `gorm:"column:birth_date"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

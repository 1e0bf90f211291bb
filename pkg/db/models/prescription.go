package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/novaderm/clinic-backend/pkg/enums"
)

// Prescription is a doctor's instruction to dispense a product or perform
// a service for a customer. The product variant carries ConsultationID,
// ProductID and ProductName; the service variant leaves them null.
//
// Product prescriptions move prescribed -> sold (checkout) or cancelled;
// service prescriptions move pending -> completed or cancelled. Terminal
// rows are never deleted.
type Prescription struct {
	ID               int64                    `gorm:"column:id;primaryKey;autoIncrement"`
	Type             enums.PrescriptionType   `gorm:"column:type;not null;index"`
	Status           enums.PrescriptionStatus `gorm:"column:status;not null;index"`
	Name             string                   `gorm:"column:name;not null"`
	Quantity         int                      `gorm:"column:quantity;not null"`
	Instructions     *string                  `gorm:"column:instructions"`
	UnitPrice        decimal.Decimal          `gorm:"column:unit_price;type:numeric(12,2);not null"`
	CustomerID       int64                    `gorm:"column:customer_id;not null;index"`
	DoctorID         int64                    `gorm:"column:doctor_id;not null"`
	DoctorName       string                   `gorm:"column:doctor_name;not null"`
	ConsultationID   *int64                   `gorm:"column:consultation_id"`
	ConsultationDate time.Time                `gorm:"column:consultation_date;not null"`
	ProductID        *int64                   `gorm:"column:product_id"`
	ProductName      *string                  `gorm:"column:product_name"`
	CreatedAt        time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                `gorm:"column:updated_at;autoUpdateTime"`

	Customer *Customer `gorm:"foreignKey:CustomerID"`
	Product  *Product  `gorm:"foreignKey:ProductID"`
}

// IsProduct reports whether the prescription dispenses stock.
func (p Prescription) IsProduct() bool {
	return p.Type == enums.PrescriptionTypeProduct
}

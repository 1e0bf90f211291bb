package prescriptions

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/novaderm/clinic-backend/pkg/db/models"
	"github.com/novaderm/clinic-backend/pkg/enums"
)

// CreateInput holds the validated payload to issue a prescription. For the
// product variant ProductID is required and Name, UnitPrice and ProductName
// are snapshotted from the catalog; the service variant names itself.
type CreateInput struct {
	Type             enums.PrescriptionType
	Name             string
	Quantity         int
	Instructions     *string
	UnitPrice        decimal.Decimal
	CustomerID       int64
	DoctorID         int64
	ConsultationID   *int64
	ConsultationDate time.Time
	ProductID        *int64
}

// PrescriptionDTO is the wire shape of an issued prescription.
type PrescriptionDTO struct {
	ID               int64           `json:"id"`
	Type             string          `json:"type"`
	Status           string          `json:"status"`
	Name             string          `json:"name"`
	Quantity         int             `json:"quantity"`
	Instructions     *string         `json:"instructions"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	CustomerID       int64           `json:"customer_id"`
	DoctorID         int64           `json:"doctor_id"`
	DoctorName       string          `json:"doctor_name"`
	ConsultationID   *int64          `json:"consultation_id"`
	ConsultationDate time.Time       `json:"consultation_date"`
	ProductID        *int64          `json:"product_id"`
	ProductName      *string         `json:"product_name"`
	CreatedAt        time.Time       `json:"created_at"`
}

func toDTO(p models.Prescription) PrescriptionDTO {
	return PrescriptionDTO{
		ID:               p.ID,
		Type:             p.Type.String(),
		Status:           p.Status.String(),
		Name:             p.Name,
		Quantity:         p.Quantity,
		Instructions:     p.Instructions,
		UnitPrice:        p.UnitPrice,
		CustomerID:       p.CustomerID,
		DoctorID:         p.DoctorID,
		DoctorName:       p.DoctorName,
		ConsultationID:   p.ConsultationID,
		ConsultationDate: p.ConsultationDate,
		ProductID:        p.ProductID,
		ProductName:      p.ProductName,
		CreatedAt:        p.CreatedAt,
	}
}

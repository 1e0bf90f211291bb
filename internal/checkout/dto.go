package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	pkgcheckout "github.com/novaderm/clinic-backend/pkg/checkout"
	"github.com/novaderm/clinic-backend/pkg/db/models"
	"github.com/novaderm/clinic-backend/pkg/enums"
)

// PrescriptionDTO is the wire shape of a pending prescription. StockQuantity
// carries the referenced product's current count and is null for services.
type PrescriptionDTO struct {
	ID               int64           `json:"id"`
	Type             string          `json:"type"`
	Status           string          `json:"status"`
	Name             string          `json:"name"`
	Quantity         int             `json:"quantity"`
	Instructions     *string         `json:"instructions"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	CustomerID       int64           `json:"customer_id"`
	CustomerName     string          `json:"customer_name,omitempty"`
	DoctorID         int64           `json:"doctor_id"`
	DoctorName       string          `json:"doctor_name"`
	ConsultationID   *int64          `json:"consultation_id"`
	ConsultationDate time.Time       `json:"consultation_date"`
	ProductID        *int64          `json:"product_id"`
	ProductName      *string         `json:"product_name"`
	StockQuantity    *int            `json:"stock_quantity"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ListParams narrows and pages the pending list.
type ListParams struct {
	CustomerID *int64
	Page       int
	PerPage    int
}

// ListResult is the paged pending read model. It is what gets cached.
type ListResult struct {
	Prescriptions []PrescriptionDTO `json:"prescriptions"`
	TotalPages    int               `json:"total_pages"`
}

// SubmitInput identifies the batch to check out and who runs it.
type SubmitInput struct {
	PrescriptionIDs []int64
	ProcessedBy     int64
}

// ReceiptDTO summarizes a completed checkout.
type ReceiptDTO struct {
	CheckoutID   string            `json:"checkout_id"`
	ProcessedBy  int64             `json:"processed_by"`
	ProcessedAt  time.Time         `json:"processed_at"`
	Items        []PrescriptionDTO `json:"items"`
	TotalAmount  decimal.Decimal   `json:"total_amount"`
	ProductCount int               `json:"product_count"`
	ServiceCount int               `json:"service_count"`
	TotalItems   int               `json:"total_items"`
}

// UpdateStatusInput targets either one prescription or every eligible
// prescription of a customer. Type narrows the customer scope to one
// prescription kind.
type UpdateStatusInput struct {
	PrescriptionID *int64
	CustomerID     *int64
	Type           *enums.PrescriptionType
	Status         enums.PrescriptionStatus
}

// UpdateStatusResult reports which rows actually moved.
type UpdateStatusResult struct {
	UpdatedIDs []int64                  `json:"updated_ids"`
	Status     enums.PrescriptionStatus `json:"status"`
}

func toDTO(p models.Prescription) PrescriptionDTO {
	dto := PrescriptionDTO{
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
	if p.Customer != nil {
		dto.CustomerName = p.Customer.FullName
	}
	if p.IsProduct() && p.Product != nil {
		stock := p.Product.StockQuantity
		dto.StockQuantity = &stock
	}
	return dto
}

func toItem(p models.Prescription) pkgcheckout.Item {
	item := pkgcheckout.Item{
		ID:        p.ID,
		Name:      p.Name,
		Type:      p.Type,
		Status:    p.Status,
		Quantity:  p.Quantity,
		UnitPrice: p.UnitPrice,
	}
	if p.IsProduct() && p.Product != nil {
		item.StockQuantity = p.Product.StockQuantity
	}
	return item
}

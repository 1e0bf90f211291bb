package clinicclient

import (
	"time"

	"github.com/shopspring/decimal"

	pkgcheckout "github.com/novaderm/clinic-backend/pkg/checkout"
	"github.com/novaderm/clinic-backend/pkg/enums"
	"github.com/novaderm/clinic-backend/pkg/types"
)

// Prescription is the client-side model. JSON tags are camelCase; the
// snake_case wire shape is translated in this file and nowhere else.
// Optional fields stay nil when the server sent null or omitted them, so
// "unset" remains distinguishable from "explicitly empty".
type Prescription struct {
	ID               int64           `json:"id"`
	Type             string          `json:"type"`
	Status           string          `json:"status"`
	Name             string          `json:"name"`
	Quantity         int             `json:"quantity"`
	Instructions     *string         `json:"instructions,omitempty"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	CustomerID       int64           `json:"customerId"`
	CustomerName     string          `json:"customerName,omitempty"`
	DoctorID         int64           `json:"doctorId"`
	DoctorName       string          `json:"doctorName"`
	ConsultationID   *int64          `json:"consultationId,omitempty"`
	ConsultationDate time.Time       `json:"consultationDate"`
	ProductID        *int64          `json:"productId,omitempty"`
	ProductName      *string         `json:"productName,omitempty"`
	StockQuantity    *int            `json:"stockQuantity,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// Item converts the prescription into the evaluator's shape for local
// eligibility checks before submission.
func (p Prescription) Item() pkgcheckout.Item {
	item := pkgcheckout.Item{
		ID:        p.ID,
		Name:      p.Name,
		Type:      enums.PrescriptionType(p.Type),
		Status:    enums.PrescriptionStatus(p.Status),
		Quantity:  p.Quantity,
		UnitPrice: p.UnitPrice,
	}
	if p.StockQuantity != nil {
		item.StockQuantity = *p.StockQuantity
	}
	return item
}

// Product is the client-side catalog model. Image is a data URI ready for
// display; the raw base64 payload never leaves this adapter.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	StockQuantity int             `json:"stockQuantity"`
	Image         string          `json:"image,omitempty"`
	IsActive      bool            `json:"isActive"`
}

type wirePrescription struct {
	ID               int64           `json:"id"`
	Type             string          `json:"type"`
	Status           string          `json:"status"`
	Name             string          `json:"name"`
	Quantity         int             `json:"quantity"`
	Instructions     *string         `json:"instructions"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	CustomerID       int64           `json:"customer_id"`
	CustomerName     string          `json:"customer_name"`
	DoctorID         int64           `json:"doctor_id"`
	DoctorName       string          `json:"doctor_name"`
	ConsultationID   *int64          `json:"consultation_id"`
	ConsultationDate time.Time       `json:"consultation_date"`
	ProductID        *int64          `json:"product_id"`
	ProductName      *string         `json:"product_name"`
	StockQuantity    *int            `json:"stock_quantity"`
	CreatedAt        time.Time       `json:"created_at"`
}

type wirePendingPage struct {
	Prescriptions []wirePrescription `json:"prescriptions"`
	TotalPages    int                `json:"total_pages"`
}

type wireProduct struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	StockQuantity int             `json:"stock_quantity"`
	Image         string          `json:"image"`
	IsActive      bool            `json:"is_active"`
}

type wireProductPage struct {
	Products   []wireProduct `json:"products"`
	TotalPages int           `json:"total_pages"`
}

func fromWirePrescription(w wirePrescription) Prescription {
	return Prescription{
		ID:               w.ID,
		Type:             w.Type,
		Status:           w.Status,
		Name:             w.Name,
		Quantity:         w.Quantity,
		Instructions:     emptyToNil(w.Instructions),
		UnitPrice:        w.UnitPrice,
		CustomerID:       w.CustomerID,
		CustomerName:     w.CustomerName,
		DoctorID:         w.DoctorID,
		DoctorName:       w.DoctorName,
		ConsultationID:   w.ConsultationID,
		ConsultationDate: w.ConsultationDate,
		ProductID:        w.ProductID,
		ProductName:      emptyToNil(w.ProductName),
		StockQuantity:    w.StockQuantity,
		CreatedAt:        w.CreatedAt,
	}
}

func fromWireProduct(w wireProduct) Product {
	return Product{
		ID:            w.ID,
		Name:          w.Name,
		Description:   emptyToNil(w.Description),
		UnitPrice:     w.UnitPrice,
		StockQuantity: w.StockQuantity,
		Image:         types.ImageDataURI(w.Image),
		IsActive:      w.IsActive,
	}
}

// emptyToNil collapses the server's "" and null into nil so optional text
// fields have a single unset representation client-side.
func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

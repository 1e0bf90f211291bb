package products

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/novaderm/clinic-backend/pkg/db/models"
	"github.com/novaderm/clinic-backend/pkg/types"
)

// ProductDTO is the wire shape of a retail product. Image carries a data
// URI; storage keeps raw base64.
type ProductDTO struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	StockQuantity int             `json:"stock_quantity"`
	Image         string          `json:"image,omitempty"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CreateInput holds the validated payload to create a product.
type CreateInput struct {
	Name          string
	Description   *string
	UnitPrice     decimal.Decimal
	StockQuantity int
	Image         *string
	IsActive      bool
}

// UpdateInput holds optional mutation values for a product.
type UpdateInput struct {
	Name          *string
	Description   *string
	UnitPrice     *decimal.Decimal
	StockQuantity *int
	Image         *string
	IsActive      *bool
}

// ListParams pages and filters the catalog.
type ListParams struct {
	Page       int
	PerPage    int
	ActiveOnly bool
}

// ListResult is the paged catalog read model.
type ListResult struct {
	Products   []ProductDTO `json:"products"`
	TotalPages int          `json:"total_pages"`
}

func toDTO(p models.Product) ProductDTO {
	dto := ProductDTO{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		UnitPrice:     p.UnitPrice,
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.ImageB64 != nil {
		dto.Image = types.ImageDataURI(*p.ImageB64)
	}
	return dto
}

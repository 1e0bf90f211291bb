package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a retail item dispensed through prescription checkout.
// StockQuantity is the authoritative count; it is only decremented inside
// a checkout transaction.
type Product struct {
	ID            int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Name          string          `gorm:"column:name;not null"`
	Description   *string         `gorm:"column:description"`
	UnitPrice     decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	StockQuantity int             `gorm:"column:stock_quantity;not null;default:0"`
	// ImageB64 holds the product image as a raw base64 string, never a
	// data URI, so round-trip edits do not double-encode.
	ImageB64  *string   `gorm:"column:image_b64"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

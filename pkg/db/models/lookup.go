package models

import (
	"time"

	"github.com/novaderm/clinic-backend/pkg/enums"
)

// LookupEntry is one row of a small reference list (skin concerns, health
// conditions) managed through simple CRUD.
type LookupEntry struct {
	ID        int64            `gorm:"column:id;primaryKey;autoIncrement"`
	Type      enums.LookupType `gorm:"column:type;not null;index:idx_lookup_type_label,unique"`
	Label     string           `gorm:"column:label;not null;index:idx_lookup_type_label,unique"`
	SortOrder int              `gorm:"column:sort_order;not null;default:0"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

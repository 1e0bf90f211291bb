package lookups

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/novaderm/clinic-backend/pkg/db"
	"github.com/novaderm/clinic-backend/pkg/db/models"
	"github.com/novaderm/clinic-backend/pkg/enums"
	pkgerrors "github.com/novaderm/clinic-backend/pkg/errors"
)

// EntryDTO is the wire shape of an intake-form option.
type EntryDTO struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Label     string `json:"label"`
	SortOrder int    `json:"sort_order"`
}

// Service manages the configurable intake-form option lists.
type Service interface {
	List(ctx context.Context, lookupType enums.LookupType) ([]EntryDTO, error)
	Create(ctx context.Context, lookupType enums.LookupType, label string, sortOrder int) (*EntryDTO, error)
	Delete(ctx context.Context, lookupType enums.LookupType, id int64) error
}

type service struct {
	db *gorm.DB
}

// NewService builds the lookup service.
func NewService(gdb *gorm.DB) (Service, error) {
	if gdb == nil {
		return nil, fmt.Errorf("db required")
	}
	return &service{db: gdb}, nil
}

func (s *service) List(ctx context.Context, lookupType enums.LookupType) ([]EntryDTO, error) {
	if !lookupType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid lookup type %q", lookupType))
	}

	var rows []models.LookupEntry
	err := s.db.WithContext(ctx).
		Where("type = ?", lookupType.String()).
		Order("sort_order ASC, label ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing lookup entries")
	}

	dtos := make([]EntryDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, EntryDTO{ID: row.ID, Type: row.Type.String(), Label: row.Label, SortOrder: row.SortOrder})
	}
	return dtos, nil
}

func (s *service) Create(ctx context.Context, lookupType enums.LookupType, label string, sortOrder int) (*EntryDTO, error) {
	if !lookupType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid lookup type %q", lookupType))
	}
	if label == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "label required")
	}

	row := models.LookupEntry{Type: lookupType, Label: label, SortOrder: sortOrder}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("%q already exists", label))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating lookup entry")
	}
	return &EntryDTO{ID: row.ID, Type: row.Type.String(), Label: row.Label, SortOrder: row.SortOrder}, nil
}

func (s *service) Delete(ctx context.Context, lookupType enums.LookupType, id int64) error {
	if !lookupType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid lookup type %q", lookupType))
	}

	var row models.LookupEntry
	err := s.db.WithContext(ctx).
		Where("id = ? AND type = ?", id, lookupType.String()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "lookup entry not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading lookup entry")
	}

	if err := s.db.WithContext(ctx).Delete(&row).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting lookup entry")
	}
	return nil
}

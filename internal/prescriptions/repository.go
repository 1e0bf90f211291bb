package prescriptions

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/novaderm/clinic-backend/pkg/db/models"
	pkgerrors "github.com/novaderm/clinic-backend/pkg/errors"
)

// Repository persists prescriptions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, prescription *models.Prescription) error
	FindByID(ctx context.Context, id int64) (*models.Prescription, error)
	FindByCustomer(ctx context.Context, customerID int64) ([]models.Prescription, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	if db == nil {
		return nil
	}
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, prescription *models.Prescription) error {
	if err := r.db.WithContext(ctx).Create(prescription).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating prescription")
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Prescription, error) {
	var row models.Prescription
	err := r.db.WithContext(ctx).Preload("Product").First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "prescription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading prescription")
	}
	return &row, nil
}

func (r *repository) FindByCustomer(ctx context.Context, customerID int64) ([]models.Prescription, error) {
	var rows []models.Prescription
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing customer prescriptions")
	}
	return rows, nil
}

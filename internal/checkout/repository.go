package checkout

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/novaderm/clinic-backend/pkg/db/models"
	"github.com/novaderm/clinic-backend/pkg/enums"
	pkgerrors "github.com/novaderm/clinic-backend/pkg/errors"
	"github.com/novaderm/clinic-backend/pkg/pagination"
)

// Repository exposes the prescription queries checkout needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindPending(ctx context.Context, customerID *int64, page pagination.Params) ([]models.Prescription, int64, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.Prescription, error)
	FindNonTerminalByCustomer(ctx context.Context, customerID int64) ([]models.Prescription, error)
	MoveStatus(ctx context.Context, id int64, from, to enums.PrescriptionStatus) (bool, error)
	DecrementStock(ctx context.Context, productID int64, qty int) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a checkout repository backed by the provided DB.
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

// FindPending returns the page of processable-status prescriptions, oldest
// first, with the product association loaded for stock display.
func (r *repository) FindPending(ctx context.Context, customerID *int64, page pagination.Params) ([]models.Prescription, int64, error) {
	page = page.Normalize()

	query := r.db.WithContext(ctx).
		Model(&models.Prescription{}).
		Where("status IN ?", []string{
			enums.PrescriptionStatusPrescribed.String(),
			enums.PrescriptionStatusPending.String(),
		})
	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting pending prescriptions")
	}

	var rows []models.Prescription
	err := query.
		Preload("Customer").
		Preload("Product").
		Order("created_at ASC, id ASC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing pending prescriptions")
	}
	return rows, total, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []int64) ([]models.Prescription, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Prescription
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Product").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading prescriptions by id")
	}
	return rows, nil
}

func (r *repository) FindNonTerminalByCustomer(ctx context.Context, customerID int64) ([]models.Prescription, error) {
	var rows []models.Prescription
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("customer_id = ?", customerID).
		Where("status IN ?", []string{
			enums.PrescriptionStatusPrescribed.String(),
			enums.PrescriptionStatusPending.String(),
		}).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading customer prescriptions")
	}
	return rows, nil
}

// MoveStatus transitions a prescription only if it is still in the expected
// status. Returns false when a concurrent writer got there first.
func (r *repository) MoveStatus(ctx context.Context, id int64, from, to enums.PrescriptionStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Prescription{}).
		Where("id = ? AND status = ?", id, from.String()).
		Update("status", to.String())
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "updating prescription status")
	}
	return res.RowsAffected == 1, nil
}

// DecrementStock subtracts qty only while enough stock remains. Returns
// false when the guard fails.
func (r *repository) DecrementStock(ctx context.Context, productID int64, qty int) (bool, error) {
	if qty <= 0 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, qty).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "decrementing product stock")
	}
	return res.RowsAffected == 1, nil
}

// IsNotFound reports whether err is gorm's missing-row sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

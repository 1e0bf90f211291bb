package prescriptions

import (
	"context"
	"fmt"

	"github.com/novaderm/clinic-backend/pkg/db/models"
	"github.com/novaderm/clinic-backend/pkg/enums"
	pkgerrors "github.com/novaderm/clinic-backend/pkg/errors"
	"github.com/novaderm/clinic-backend/pkg/logger"
)

type doctorLoader interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type productLoader interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
}

type cacheInvalidator interface {
	InvalidateCache(ctx context.Context, model string) error
}

// Service issues prescriptions and reads a customer's history.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*PrescriptionDTO, error)
	Get(ctx context.Context, id int64) (*PrescriptionDTO, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]PrescriptionDTO, error)
}

type service struct {
	repo     Repository
	doctors  doctorLoader
	products productLoader
	cache    cacheInvalidator
	logg     *logger.Logger
}

// NewService builds the prescription service. Cache is optional.
func NewService(repo Repository, doctors doctorLoader, products productLoader, cache cacheInvalidator, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository required")
	}
	if doctors == nil {
		return nil, fmt.Errorf("doctor loader required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, doctors: doctors, products: products, cache: cache, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*PrescriptionDTO, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid type %q", input.Type))
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.CustomerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_id required")
	}
	if input.ConsultationDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "consultation_date required")
	}

	doctor, err := s.doctors.FindByID(ctx, input.DoctorID)
	if err != nil {
		return nil, err
	}

	row := &models.Prescription{
		Type:             input.Type,
		Status:           enums.InitialStatusFor(input.Type),
		Name:             input.Name,
		Quantity:         input.Quantity,
		Instructions:     input.Instructions,
		UnitPrice:        input.UnitPrice,
		CustomerID:       input.CustomerID,
		DoctorID:         doctor.ID,
		DoctorName:       doctor.FullName,
		ConsultationID:   input.ConsultationID,
		ConsultationDate: input.ConsultationDate,
	}

	// The product variant snapshots name, price and product reference from
	// the catalog at issue time so later edits do not rewrite history.
	if input.Type == enums.PrescriptionTypeProduct {
		if input.ProductID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id required for product prescriptions")
		}
		product, err := s.products.FindByID(ctx, *input.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("%s: Product inactive", product.Name))
		}
		row.Name = product.Name
		row.UnitPrice = product.UnitPrice
		row.ProductID = &product.ID
		row.ProductName = &product.Name
	} else if row.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required for service prescriptions")
	}

	if err := s.repo.Create(ctx, row); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateCache(ctx, "pending"); err != nil {
			s.logg.Warn(ctx, "pending cache invalidation failed: "+err.Error())
		}
	}

	dto := toDTO(*row)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, id int64) (*PrescriptionDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toDTO(*row)
	return &dto, nil
}

func (s *service) ListByCustomer(ctx context.Context, customerID int64) ([]PrescriptionDTO, error) {
	if customerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_id required")
	}
	rows, err := s.repo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	dtos := make([]PrescriptionDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, toDTO(row))
	}
	return dtos, nil
}

package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/novaderm/clinic-backend/pkg/db/models"
	pkgerrors "github.com/novaderm/clinic-backend/pkg/errors"
	"github.com/novaderm/clinic-backend/pkg/logger"
	"github.com/novaderm/clinic-backend/pkg/pagination"
	redispkg "github.com/novaderm/clinic-backend/pkg/redis"
	"github.com/novaderm/clinic-backend/pkg/types"
)

const (
	cacheModel      = "products"
	catalogCacheTTL = 5 * time.Minute
)

type readCache interface {
	CacheKey(model string, generation int64, parts ...string) string
	CacheGeneration(ctx context.Context, model string) (int64, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	InvalidateCache(ctx context.Context, model string) error
}

// Service exposes catalog management.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*ProductDTO, error)
	Get(ctx context.Context, id int64) (*ProductDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*ProductDTO, error)
	Deactivate(ctx context.Context, id int64) error
}

type service struct {
	repo  Repository
	cache readCache
	logg  *logger.Logger
}

// NewService builds the product service. Cache is optional.
func NewService(repo Repository, cache readCache, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, cache: cache, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ProductDTO, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_price cannot be negative")
	}
	if input.StockQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock_quantity cannot be negative")
	}

	product := &models.Product{
		Name:          input.Name,
		Description:   input.Description,
		UnitPrice:     input.UnitPrice,
		StockQuantity: input.StockQuantity,
		IsActive:      input.IsActive,
	}
	if input.Image != nil {
		raw := types.StripDataURI(*input.Image)
		product.ImageB64 = &raw
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	dto := toDTO(*product)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, id int64) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toDTO(*product)
	return &dto, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	page := pagination.Params{Page: params.Page, PerPage: params.PerPage}.Normalize()

	key, ok := s.catalogCacheKey(ctx, params.ActiveOnly, page)
	if ok {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var cached ListResult
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		} else if !errors.Is(err, redispkg.Nil) {
			s.logg.Warn(ctx, "catalog cache read failed: "+err.Error())
		}
	}

	rows, total, err := s.repo.List(ctx, params.ActiveOnly, page)
	if err != nil {
		return nil, err
	}

	result := &ListResult{
		Products:   make([]ProductDTO, 0, len(rows)),
		TotalPages: pagination.TotalPages(total, page.PerPage),
	}
	for _, row := range rows {
		result.Products = append(result.Products, toDTO(row))
	}

	if ok {
		if raw, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), catalogCacheTTL); err != nil {
				s.logg.Warn(ctx, "catalog cache write failed: "+err.Error())
			}
		}
	}
	return result, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.UnitPrice != nil {
		if input.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_price cannot be negative")
		}
		product.UnitPrice = *input.UnitPrice
	}
	if input.StockQuantity != nil {
		if *input.StockQuantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock_quantity cannot be negative")
		}
		product.StockQuantity = *input.StockQuantity
	}
	if input.Image != nil {
		raw := types.StripDataURI(*input.Image)
		product.ImageB64 = &raw
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	dto := toDTO(*product)
	return &dto, nil
}

func (s *service) Deactivate(ctx context.Context, id int64) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return nil
	}
	product.IsActive = false
	if err := s.repo.Save(ctx, product); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCache(ctx, cacheModel); err != nil {
		s.logg.Warn(ctx, "catalog cache invalidation failed: "+err.Error())
	}
}

func (s *service) catalogCacheKey(ctx context.Context, activeOnly bool, page pagination.Params) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	gen, err := s.cache.CacheGeneration(ctx, cacheModel)
	if err != nil {
		s.logg.Warn(ctx, "catalog cache generation read failed: "+err.Error())
		return "", false
	}
	parts := []string{"page", strconv.Itoa(page.Page), "per_page", strconv.Itoa(page.PerPage)}
	if activeOnly {
		parts = append(parts, "active")
	}
	return s.cache.CacheKey(cacheModel, gen, parts...), true
}

package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	pkgcheckout "github.com/novaderm/clinic-backend/pkg/checkout"
	"github.com/novaderm/clinic-backend/pkg/db/models"
	"github.com/novaderm/clinic-backend/pkg/enums"
	pkgerrors "github.com/novaderm/clinic-backend/pkg/errors"
	"github.com/novaderm/clinic-backend/pkg/logger"
	"github.com/novaderm/clinic-backend/pkg/metrics"
	"github.com/novaderm/clinic-backend/pkg/pagination"
	redispkg "github.com/novaderm/clinic-backend/pkg/redis"
)

const (
	cacheModelPending  = "pending"
	cacheModelProducts = "products"

	pendingCacheTTL = 5 * time.Minute
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type readCache interface {
	CacheKey(model string, generation int64, parts ...string) string
	CacheGeneration(ctx context.Context, model string) (int64, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	InvalidateCache(ctx context.Context, model string) error
}

// Service runs prescription checkout: listing the processable queue,
// executing a batch, and moving single statuses.
type Service interface {
	ListPending(ctx context.Context, params ListParams) (*ListResult, error)
	Submit(ctx context.Context, input SubmitInput) (*ReceiptDTO, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*UpdateStatusResult, error)
}

type service struct {
	tx      txRunner
	repo    Repository
	cache   readCache
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
}

// NewService builds the checkout service. Cache and metrics are optional.
func NewService(tx txRunner, repo Repository, cache readCache, m *metrics.CheckoutMetrics, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{tx: tx, repo: repo, cache: cache, metrics: m, logg: logg}, nil
}

func (s *service) ListPending(ctx context.Context, params ListParams) (*ListResult, error) {
	page := pagination.Params{Page: params.Page, PerPage: params.PerPage}.Normalize()

	key, ok := s.pendingCacheKey(ctx, params.CustomerID, page)
	if ok {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var cached ListResult
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		} else if !errors.Is(err, redispkg.Nil) {
			s.logg.Warn(ctx, "pending cache read failed: "+err.Error())
		}
	}

	rows, total, err := s.repo.FindPending(ctx, params.CustomerID, page)
	if err != nil {
		return nil, err
	}

	result := &ListResult{
		Prescriptions: make([]PrescriptionDTO, 0, len(rows)),
		TotalPages:    pagination.TotalPages(total, page.PerPage),
	}
	for _, row := range rows {
		result.Prescriptions = append(result.Prescriptions, toDTO(row))
	}

	if ok {
		if raw, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), pendingCacheTTL); err != nil {
				s.logg.Warn(ctx, "pending cache write failed: "+err.Error())
			}
		}
	}
	return result, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*ReceiptDTO, error) {
	start := time.Now()

	ids := dedupeIDs(input.PrescriptionIDs)
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prescription_ids required")
	}
	if input.ProcessedBy <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "processed_by required")
	}

	var receipt *ReceiptDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		rows, err := repo.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if missing := missingIDs(ids, rows); len(missing) > 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "prescription(s) not found").
				WithDetails(map[string]any{"missing_ids": missing})
		}

		byID := make(map[int64]models.Prescription, len(rows))
		for _, row := range rows {
			byID[row.ID] = row
		}

		items := make([]pkgcheckout.Item, 0, len(ids))
		for _, id := range ids {
			items = append(items, toItem(byID[id]))
		}
		if err := pkgcheckout.ValidateBatch(items); err != nil {
			s.metrics.IncRejectedBatch()
			return err
		}

		for _, id := range ids {
			row := byID[id]
			if row.IsProduct() {
				if row.ProductID == nil {
					return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("%s: No product linked", row.Name))
				}
				ok, err := repo.DecrementStock(ctx, *row.ProductID, row.Quantity)
				if err != nil {
					return err
				}
				if !ok {
					return pkgerrors.New(pkgerrors.CodeStateConflict,
						fmt.Sprintf("%s: Insufficient stock", row.Name))
				}
			}

			moved, err := repo.MoveStatus(ctx, row.ID, row.Status, enums.FinalizedStatusFor(row.Type))
			if err != nil {
				return err
			}
			if !moved {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("%s: Changed by another checkout", row.Name))
			}
		}

		totals := pkgcheckout.ComputeTotals(items)
		receipt = &ReceiptDTO{
			CheckoutID:   uuid.NewString(),
			ProcessedBy:  input.ProcessedBy,
			ProcessedAt:  time.Now().UTC(),
			Items:        make([]PrescriptionDTO, 0, len(ids)),
			TotalAmount:  totals.TotalAmount,
			ProductCount: totals.ProductCount,
			ServiceCount: totals.ServiceCount,
			TotalItems:   totals.TotalItems,
		}
		for _, id := range ids {
			row := byID[id]
			row.Status = enums.FinalizedStatusFor(row.Type)
			receipt.Items = append(receipt.Items, toDTO(row))
		}
		return nil
	})

	s.metrics.ObserveDuration("submit", time.Since(start))
	if err != nil {
		s.metrics.IncFailure("submit")
		return nil, err
	}

	s.metrics.IncSuccess("submit")
	s.metrics.AddProcessed(enums.PrescriptionTypeProduct.String(), receipt.ProductCount)
	s.metrics.AddProcessed(enums.PrescriptionTypeService.String(), receipt.ServiceCount)
	s.invalidateReadModels(ctx, true)

	ctx = s.logg.WithFields(ctx, map[string]any{
		"checkout_id": receipt.CheckoutID,
		"total_items": receipt.TotalItems,
	})
	s.logg.Info(ctx, "checkout completed")
	return receipt, nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*UpdateStatusResult, error) {
	start := time.Now()

	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", input.Status))
	}
	if (input.PrescriptionID == nil) == (input.CustomerID == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of prescription_id or customer_id required")
	}
	if input.Type != nil && !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid type %q", *input.Type))
	}

	result := &UpdateStatusResult{Status: input.Status}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var rows []models.Prescription
		if input.PrescriptionID != nil {
			found, err := repo.FindByIDs(ctx, []int64{*input.PrescriptionID})
			if err != nil {
				return err
			}
			if len(found) == 0 {
				return pkgerrors.New(pkgerrors.CodeNotFound, "prescription not found")
			}
			rows = found
		} else {
			found, err := repo.FindNonTerminalByCustomer(ctx, *input.CustomerID)
			if err != nil {
				return err
			}
			rows = found
		}

		eligible := rows[:0:0]
		for _, row := range rows {
			if input.Type != nil && row.Type != *input.Type {
				continue
			}
			if enums.CanTransition(row.Type, row.Status, input.Status) {
				eligible = append(eligible, row)
			} else if input.PrescriptionID != nil {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("cannot move %s prescription from %s to %s", row.Type, row.Status, input.Status))
			}
		}
		if len(eligible) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "no prescriptions eligible for that status")
		}

		for _, row := range eligible {
			if input.Status == enums.PrescriptionStatusSold {
				if row.ProductID == nil {
					return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("%s: No product linked", row.Name))
				}
				ok, err := repo.DecrementStock(ctx, *row.ProductID, row.Quantity)
				if err != nil {
					return err
				}
				if !ok {
					return pkgerrors.New(pkgerrors.CodeStateConflict,
						fmt.Sprintf("%s: Insufficient stock", row.Name))
				}
			}

			moved, err := repo.MoveStatus(ctx, row.ID, row.Status, input.Status)
			if err != nil {
				return err
			}
			if !moved {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("%s: Changed concurrently", row.Name))
			}
			result.UpdatedIDs = append(result.UpdatedIDs, row.ID)
		}
		return nil
	})

	s.metrics.ObserveDuration("update_status", time.Since(start))
	if err != nil {
		s.metrics.IncFailure("update_status")
		return nil, err
	}

	s.metrics.IncSuccess("update_status")
	s.invalidateReadModels(ctx, input.Status == enums.PrescriptionStatusSold)
	return result, nil
}

// invalidateReadModels orphans the cached pending pages, and the products
// read model too when stock moved. Failures are logged, not surfaced; the
// generation keys expire on their own.
func (s *service) invalidateReadModels(ctx context.Context, stockTouched bool) {
	if s.cache == nil {
		return
	}
	err := s.cache.InvalidateCache(ctx, cacheModelPending)
	if stockTouched {
		err = multierr.Append(err, s.cache.InvalidateCache(ctx, cacheModelProducts))
	}
	if err != nil {
		s.logg.Warn(ctx, "cache invalidation failed: "+err.Error())
	}
}

func (s *service) pendingCacheKey(ctx context.Context, customerID *int64, page pagination.Params) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	gen, err := s.cache.CacheGeneration(ctx, cacheModelPending)
	if err != nil {
		s.logg.Warn(ctx, "cache generation read failed: "+err.Error())
		return "", false
	}
	parts := []string{"page", strconv.Itoa(page.Page), "per_page", strconv.Itoa(page.PerPage)}
	if customerID != nil {
		parts = append(parts, "customer", strconv.FormatInt(*customerID, 10))
	}
	return s.cache.CacheKey(cacheModelPending, gen, parts...), true
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func missingIDs(ids []int64, rows []models.Prescription) []int64 {
	found := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		found[row.ID] = struct{}{}
	}
	var missing []int64
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

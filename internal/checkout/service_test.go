package checkout

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/novaderm/clinic-backend/pkg/db/models"
	"github.com/novaderm/clinic-backend/pkg/enums"
	pkgerrors "github.com/novaderm/clinic-backend/pkg/errors"
	"github.com/novaderm/clinic-backend/pkg/logger"
	redispkg "github.com/novaderm/clinic-backend/pkg/redis"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fakeCache struct {
	data        map[string]string
	generations map[string]int64
	sets        int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}, generations: map[string]int64{}}
}

func (f *fakeCache) CacheKey(model string, generation int64, parts ...string) string {
	key := fmt.Sprintf("clinic:cache:%s:g%d", model, generation)
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

func (f *fakeCache) CacheGeneration(_ context.Context, model string) (int64, error) {
	return f.generations[model], nil
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", redispkg.Nil
	}
	return v, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.data[key] = fmt.Sprint(value)
	f.sets++
	return nil
}

func (f *fakeCache) InvalidateCache(_ context.Context, model string) error {
	f.generations[model]++
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Customer{}, &models.Product{}, &models.Prescription{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB, cache *fakeCache) Service {
	t.Helper()
	var rc readCache
	if cache != nil {
		rc = cache
	}
	svc, err := NewService(testTxRunner{db: db}, NewRepository(db), rc, nil, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedCustomer(t *testing.T, db *gorm.DB, name string) models.Customer {
	t.Helper()
	c := models.Customer{FullName: name}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return c
}

func seedProduct(t *testing.T, db *gorm.DB, name string, stock int, price string) models.Product {
	t.Helper()
	p := models.Product{Name: name, UnitPrice: decimal.RequireFromString(price), StockQuantity: stock, IsActive: true}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func seedPrescription(t *testing.T, db *gorm.DB, p models.Prescription) models.Prescription {
	t.Helper()
	if p.DoctorID == 0 {
		p.DoctorID = 1
	}
	if p.DoctorName == "" {
		p.DoctorName = "Dr. Reyes"
	}
	if p.ConsultationDate.IsZero() {
		p.ConsultationDate = time.Now().UTC()
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed prescription: %v", err)
	}
	return p
}

func productPrescription(customer models.Customer, product models.Product, qty int) models.Prescription {
	return models.Prescription{
		Type:        enums.PrescriptionTypeProduct,
		Status:      enums.PrescriptionStatusPrescribed,
		Name:        product.Name,
		Quantity:    qty,
		UnitPrice:   product.UnitPrice,
		CustomerID:  customer.ID,
		ProductID:   &product.ID,
		ProductName: &product.Name,
	}
}

func servicePrescription(customer models.Customer, name string, price string) models.Prescription {
	return models.Prescription{
		Type:       enums.PrescriptionTypeService,
		Status:     enums.PrescriptionStatusPending,
		Name:       name,
		Quantity:   1,
		UnitPrice:  decimal.RequireFromString(price),
		CustomerID: customer.ID,
	}
}

func TestSubmitProcessesMixedBatch(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	customer := seedCustomer(t, db, "Ana Cruz")
	product := seedProduct(t, db, "Retinol Serum", 5, "10.00")
	rxProduct := seedPrescription(t, db, productPrescription(customer, product, 3))
	rxService := seedPrescription(t, db, servicePrescription(customer, "Facial Treatment", "49.99"))

	svc := newTestService(t, db, nil)
	receipt, err := svc.Submit(ctx, SubmitInput{
		PrescriptionIDs: []int64{rxProduct.ID, rxService.ID},
		ProcessedBy:     1,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if receipt.CheckoutID == "" {
		t.Fatal("expected checkout id")
	}
	if !receipt.TotalAmount.Equal(decimal.RequireFromString("79.99")) {
		t.Fatalf("expected total 79.99, got %s", receipt.TotalAmount)
	}
	if receipt.ProductCount != 1 || receipt.ServiceCount != 1 || receipt.TotalItems != 2 {
		t.Fatalf("unexpected counts: %+v", receipt)
	}

	var reloadedProduct models.Product
	if err := db.First(&reloadedProduct, product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloadedProduct.StockQuantity != 2 {
		t.Fatalf("expected stock 2, got %d", reloadedProduct.StockQuantity)
	}

	var rx1, rx2 models.Prescription
	if err := db.First(&rx1, rxProduct.ID).Error; err != nil {
		t.Fatalf("reload product rx: %v", err)
	}
	if err := db.First(&rx2, rxService.ID).Error; err != nil {
		t.Fatalf("reload service rx: %v", err)
	}
	if rx1.Status != enums.PrescriptionStatusSold {
		t.Fatalf("expected product rx sold, got %s", rx1.Status)
	}
	if rx2.Status != enums.PrescriptionStatusCompleted {
		t.Fatalf("expected service rx completed, got %s", rx2.Status)
	}
}

func TestSubmitRejectsWholeBatch(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	customer := seedCustomer(t, db, "Ana Cruz")
	fullStock := seedProduct(t, db, "Moisturizer", 10, "15.00")
	lowStock := seedProduct(t, db, "Sunscreen", 1, "20.00")
	rxGood := seedPrescription(t, db, productPrescription(customer, fullStock, 2))
	rxBad := seedPrescription(t, db, productPrescription(customer, lowStock, 3))

	svc := newTestService(t, db, nil)
	_, err := svc.Submit(ctx, SubmitInput{
		PrescriptionIDs: []int64{rxGood.ID, rxBad.ID},
		ProcessedBy:     1,
	})
	if err == nil {
		t.Fatal("expected batch rejection")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	reasons, ok := details["reasons"].([]string)
	if !ok || len(reasons) != 1 {
		t.Fatalf("expected one reason, got %v", details["reasons"])
	}
	if reasons[0] != "Sunscreen: Insufficient stock (1 available, 3 needed)" {
		t.Fatalf("unexpected reason %q", reasons[0])
	}

	// Nothing may have moved, including the eligible member.
	var reloaded models.Product
	if err := db.First(&reloaded, fullStock.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.StockQuantity != 10 {
		t.Fatalf("expected stock untouched, got %d", reloaded.StockQuantity)
	}
	var rx models.Prescription
	if err := db.First(&rx, rxGood.ID).Error; err != nil {
		t.Fatalf("reload rx: %v", err)
	}
	if rx.Status != enums.PrescriptionStatusPrescribed {
		t.Fatalf("expected status untouched, got %s", rx.Status)
	}
}

func TestSubmitUnknownID(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db, nil)

	_, err := svc.Submit(context.Background(), SubmitInput{PrescriptionIDs: []int64{9999}, ProcessedBy: 1})
	if err == nil {
		t.Fatal("expected not found")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubmitEmptySelection(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db, nil)

	_, err := svc.Submit(context.Background(), SubmitInput{ProcessedBy: 1})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListPendingCachesAndInvalidates(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	customer := seedCustomer(t, db, "Ana Cruz")
	seedPrescription(t, db, servicePrescription(customer, "Peel", "30.00"))

	cache := newFakeCache()
	svc := newTestService(t, db, cache)

	first, err := svc.ListPending(ctx, ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first.Prescriptions) != 1 || first.TotalPages != 1 {
		t.Fatalf("unexpected first page: %+v", first)
	}
	if cache.sets != 1 {
		t.Fatalf("expected one cache write, got %d", cache.sets)
	}

	// Second read must come from cache even after the table changes
	// underneath it.
	seedPrescription(t, db, servicePrescription(customer, "Massage", "25.00"))
	second, err := svc.ListPending(ctx, ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(second.Prescriptions) != 1 {
		t.Fatalf("expected cached page of 1, got %d", len(second.Prescriptions))
	}

	// A bumped generation orphans the old key and the next read sees the
	// new row.
	if err := cache.InvalidateCache(ctx, "pending"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	third, err := svc.ListPending(ctx, ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(third.Prescriptions) != 2 {
		t.Fatalf("expected fresh page of 2, got %d", len(third.Prescriptions))
	}
}

func TestSubmitBumpsCacheGenerations(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	customer := seedCustomer(t, db, "Ana Cruz")
	product := seedProduct(t, db, "Serum", 5, "10.00")
	rx := seedPrescription(t, db, productPrescription(customer, product, 1))

	cache := newFakeCache()
	svc := newTestService(t, db, cache)

	if _, err := svc.Submit(ctx, SubmitInput{PrescriptionIDs: []int64{rx.ID}, ProcessedBy: 1}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if cache.generations["pending"] != 1 {
		t.Fatalf("expected pending generation bump, got %d", cache.generations["pending"])
	}
	if cache.generations["products"] != 1 {
		t.Fatalf("expected products generation bump, got %d", cache.generations["products"])
	}
}

func TestListPendingFiltersByCustomer(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	ana := seedCustomer(t, db, "Ana Cruz")
	ben := seedCustomer(t, db, "Ben Reyes")
	seedPrescription(t, db, servicePrescription(ana, "Peel", "30.00"))
	seedPrescription(t, db, servicePrescription(ben, "Massage", "25.00"))

	svc := newTestService(t, db, nil)
	result, err := svc.ListPending(ctx, ListParams{CustomerID: &ana.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Prescriptions) != 1 {
		t.Fatalf("expected 1 prescription, got %d", len(result.Prescriptions))
	}
	if result.Prescriptions[0].CustomerID != ana.ID {
		t.Fatalf("unexpected customer %d", result.Prescriptions[0].CustomerID)
	}
}

func TestUpdateStatusCompletesService(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	customer := seedCustomer(t, db, "Ana Cruz")
	rx := seedPrescription(t, db, servicePrescription(customer, "Facial", "40.00"))

	svc := newTestService(t, db, nil)
	result, err := svc.UpdateStatus(ctx, UpdateStatusInput{
		PrescriptionID: &rx.ID,
		Status:         enums.PrescriptionStatusCompleted,
	})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if len(result.UpdatedIDs) != 1 || result.UpdatedIDs[0] != rx.ID {
		t.Fatalf("unexpected updated ids %v", result.UpdatedIDs)
	}

	var reloaded models.Prescription
	if err := db.First(&reloaded, rx.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != enums.PrescriptionStatusCompleted {
		t.Fatalf("expected completed, got %s", reloaded.Status)
	}
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	customer := seedCustomer(t, db, "Ana Cruz")
	rx := seedPrescription(t, db, servicePrescription(customer, "Facial", "40.00"))

	svc := newTestService(t, db, nil)
	_, err := svc.UpdateStatus(ctx, UpdateStatusInput{
		PrescriptionID: &rx.ID,
		Status:         enums.PrescriptionStatusSold,
	})
	if err == nil {
		t.Fatal("expected state conflict")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestUpdateStatusCancelsCustomerBatch(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	customer := seedCustomer(t, db, "Ana Cruz")
	product := seedProduct(t, db, "Serum", 5, "10.00")
	rx1 := seedPrescription(t, db, productPrescription(customer, product, 1))
	rx2 := seedPrescription(t, db, servicePrescription(customer, "Facial", "40.00"))
	sold := productPrescription(customer, product, 1)
	sold.Status = enums.PrescriptionStatusSold
	rx3 := seedPrescription(t, db, sold)

	svc := newTestService(t, db, nil)
	result, err := svc.UpdateStatus(ctx, UpdateStatusInput{
		CustomerID: &customer.ID,
		Status:     enums.PrescriptionStatusCancelled,
	})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if len(result.UpdatedIDs) != 2 {
		t.Fatalf("expected 2 cancelled, got %v", result.UpdatedIDs)
	}

	var reloaded models.Prescription
	if err := db.First(&reloaded, rx3.ID).Error; err != nil {
		t.Fatalf("reload sold rx: %v", err)
	}
	if reloaded.Status != enums.PrescriptionStatusSold {
		t.Fatalf("terminal row must not move, got %s", reloaded.Status)
	}
	for _, id := range []int64{rx1.ID, rx2.ID} {
		var cancelled models.Prescription
		if err := db.First(&cancelled, id).Error; err != nil {
			t.Fatalf("reload rx %d: %v", id, err)
		}
		if cancelled.Status != enums.PrescriptionStatusCancelled {
			t.Fatalf("expected cancelled, got %s", cancelled.Status)
		}
	}
}

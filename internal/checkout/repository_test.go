package checkout

import (
	"context"
	"testing"

	"github.com/novaderm/clinic-backend/pkg/db/models"
	"github.com/novaderm/clinic-backend/pkg/enums"
	"github.com/novaderm/clinic-backend/pkg/pagination"
)

func TestFindPendingPagesOldestFirst(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	customer := seedCustomer(t, db, "Ana Cruz")
	for _, name := range []string{"First", "Second", "Third"} {
		seedPrescription(t, db, servicePrescription(customer, name, "10.00"))
	}

	repo := NewRepository(db)
	rows, total, err := repo.FindPending(ctx, nil, pagination.Params{Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("find pending: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if len(rows) != 2 || rows[0].Name != "First" || rows[1].Name != "Second" {
		t.Fatalf("unexpected first page: %+v", rows)
	}

	rows, _, err = repo.FindPending(ctx, nil, pagination.Params{Page: 2, PerPage: 2})
	if err != nil {
		t.Fatalf("find pending page 2: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Third" {
		t.Fatalf("unexpected second page: %+v", rows)
	}
}

func TestFindPendingSkipsTerminalRows(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	customer := seedCustomer(t, db, "Ana Cruz")
	seedPrescription(t, db, servicePrescription(customer, "Open", "10.00"))
	done := servicePrescription(customer, "Done", "10.00")
	done.Status = enums.PrescriptionStatusCompleted
	seedPrescription(t, db, done)

	repo := NewRepository(db)
	rows, total, err := repo.FindPending(ctx, nil, pagination.Params{})
	if err != nil {
		t.Fatalf("find pending: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Name != "Open" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestDecrementStockGuard(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, "Serum", 3, "10.00")

	repo := NewRepository(db)
	ok, err := repo.DecrementStock(ctx, product.ID, 2)
	if err != nil || !ok {
		t.Fatalf("expected decrement to pass, ok=%v err=%v", ok, err)
	}

	ok, err = repo.DecrementStock(ctx, product.ID, 2)
	if err != nil {
		t.Fatalf("guarded decrement: %v", err)
	}
	if ok {
		t.Fatal("expected guard to block over-decrement")
	}

	var reloaded models.Product
	if err := db.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.StockQuantity != 1 {
		t.Fatalf("expected stock 1, got %d", reloaded.StockQuantity)
	}
}

func TestMoveStatusGuard(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	customer := seedCustomer(t, db, "Ana Cruz")
	rx := seedPrescription(t, db, servicePrescription(customer, "Facial", "40.00"))

	repo := NewRepository(db)
	moved, err := repo.MoveStatus(ctx, rx.ID, enums.PrescriptionStatusPending, enums.PrescriptionStatusCompleted)
	if err != nil || !moved {
		t.Fatalf("expected move, moved=%v err=%v", moved, err)
	}

	moved, err = repo.MoveStatus(ctx, rx.ID, enums.PrescriptionStatusPending, enums.PrescriptionStatusCancelled)
	if err != nil {
		t.Fatalf("second move: %v", err)
	}
	if moved {
		t.Fatal("expected stale-status move to be rejected")
	}
}

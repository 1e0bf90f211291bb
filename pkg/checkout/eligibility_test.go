package checkout

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/novaderm/clinic-backend/pkg/enums"
	pkgerrors "github.com/novaderm/clinic-backend/pkg/errors"
)

func productItem(id int64, status enums.PrescriptionStatus, stock, qty int) Item {
	return Item{
		ID:            id,
		Name:          fmt.Sprintf("Product %d", id),
		Type:          enums.PrescriptionTypeProduct,
		Status:        status,
		Quantity:      qty,
		UnitPrice:     decimal.NewFromInt(10),
		StockQuantity: stock,
	}
}

func serviceItem(id int64, status enums.PrescriptionStatus) Item {
	return Item{
		ID:        id,
		Name:      fmt.Sprintf("Service %d", id),
		Type:      enums.PrescriptionTypeService,
		Status:    status,
		Quantity:  1,
		UnitPrice: decimal.NewFromInt(50),
	}
}

func TestCanProcess_Product(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status enums.PrescriptionStatus
		stock  int
		qty    int
		want   bool
	}{
		{enums.PrescriptionStatusPrescribed, 5, 3, true},
		{enums.PrescriptionStatusPrescribed, 3, 3, true},
		{enums.PrescriptionStatusPrescribed, 1, 3, false},
		{enums.PrescriptionStatusSold, 5, 3, false},
		{enums.PrescriptionStatusCancelled, 5, 3, false},
		{enums.PrescriptionStatusPending, 5, 3, false},
	}
	for _, tc := range cases {
		item := productItem(1, tc.status, tc.stock, tc.qty)
		if got := CanProcess(item); got != tc.want {
			t.Fatalf("CanProcess(status=%s stock=%d qty=%d) = %v, want %v", tc.status, tc.stock, tc.qty, got, tc.want)
		}
	}
}

func TestCanProcess_Service(t *testing.T) {
	t.Parallel()

	if !CanProcess(serviceItem(3, enums.PrescriptionStatusPending)) {
		t.Fatal("pending service should be processable")
	}
	for _, status := range []enums.PrescriptionStatus{
		enums.PrescriptionStatusCompleted,
		enums.PrescriptionStatusCancelled,
		enums.PrescriptionStatusPrescribed,
	} {
		if CanProcess(serviceItem(3, status)) {
			t.Fatalf("service in status %s should not be processable", status)
		}
	}
}

func TestEvaluateBatch_ReasonPerFailingItem(t *testing.T) {
	t.Parallel()

	items := []Item{
		productItem(1, enums.PrescriptionStatusPrescribed, 5, 3),
		productItem(2, enums.PrescriptionStatusPrescribed, 1, 3),
		serviceItem(3, enums.PrescriptionStatusCompleted),
		serviceItem(4, enums.PrescriptionStatusPending),
	}

	ok, reasons := EvaluateBatch(items)
	if ok {
		t.Fatal("expected batch to fail")
	}
	if len(reasons) != 2 {
		t.Fatalf("expected 2 reasons, got %d: %v", len(reasons), reasons)
	}
	if reasons[0] != "Product 2: Insufficient stock (1 available, 3 needed)" {
		t.Fatalf("unexpected stock reason %q", reasons[0])
	}
	if reasons[1] != "Service 3: Not in pending status" {
		t.Fatalf("unexpected status reason %q", reasons[1])
	}
}

func TestEvaluateBatch_WrongStatusProduct(t *testing.T) {
	t.Parallel()

	_, reasons := EvaluateBatch([]Item{productItem(7, enums.PrescriptionStatusSold, 10, 1)})
	if len(reasons) != 1 || reasons[0] != "Product 7: Not in prescribed status" {
		t.Fatalf("unexpected reasons %v", reasons)
	}
}

func TestEvaluateBatch_EmptyInput(t *testing.T) {
	t.Parallel()

	ok, reasons := EvaluateBatch(nil)
	if !ok {
		t.Fatal("empty batch should be processable")
	}
	if len(reasons) != 0 {
		t.Fatalf("expected no reasons, got %v", reasons)
	}
}

func TestValidateBatch_CarriesReasonsAsDetails(t *testing.T) {
	t.Parallel()

	err := ValidateBatch([]Item{productItem(2, enums.PrescriptionStatusPrescribed, 1, 3)})
	if err == nil {
		t.Fatal("expected error for ineligible batch")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected pkgerrors.Error, got %T", err)
	}
	if typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected code %s, got %s", pkgerrors.CodeStateConflict, typed.Code())
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	reasons, ok := details["reasons"].([]string)
	if !ok || len(reasons) != 1 {
		t.Fatalf("expected one reason, got %v", details["reasons"])
	}
}

func TestComputeTotals(t *testing.T) {
	t.Parallel()

	price := func(s string) decimal.Decimal {
		d, err := decimal.NewFromString(s)
		if err != nil {
			t.Fatalf("parse decimal %q: %v", s, err)
		}
		return d
	}

	items := []Item{
		{Type: enums.PrescriptionTypeProduct, Quantity: 3, UnitPrice: price("10.00")},
		{Type: enums.PrescriptionTypeService, Quantity: 1, UnitPrice: price("49.99")},
		{Type: enums.PrescriptionTypeProduct, Quantity: 2, UnitPrice: price("0.10")},
	}

	totals := ComputeTotals(items)
	if !totals.TotalAmount.Equal(price("80.19")) {
		t.Fatalf("expected total 80.19, got %s", totals.TotalAmount)
	}
	if totals.ProductCount != 2 || totals.ServiceCount != 1 || totals.TotalItems != 3 {
		t.Fatalf("unexpected counts: %+v", totals)
	}
}

func TestComputeTotals_Empty(t *testing.T) {
	t.Parallel()

	totals := ComputeTotals(nil)
	if !totals.TotalAmount.IsZero() {
		t.Fatalf("expected zero amount, got %s", totals.TotalAmount)
	}
	if totals.ProductCount != 0 || totals.ServiceCount != 0 || totals.TotalItems != 0 {
		t.Fatalf("unexpected counts: %+v", totals)
	}
}

func TestComputeTotals_AvoidsFloatDrift(t *testing.T) {
	t.Parallel()

	// 0.1 * 3 is inexact in binary floating point; decimals must sum cleanly.
	items := make([]Item, 3)
	for i := range items {
		items[i] = Item{Type: enums.PrescriptionTypeService, Quantity: 1, UnitPrice: decimal.RequireFromString("0.1")}
	}
	totals := ComputeTotals(items)
	if totals.TotalAmount.String() != "0.3" {
		t.Fatalf("expected exact 0.3, got %s", totals.TotalAmount)
	}
}

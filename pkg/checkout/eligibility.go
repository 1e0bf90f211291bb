package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/novaderm/clinic-backend/pkg/enums"
	pkgerrors "github.com/novaderm/clinic-backend/pkg/errors"
)

// Item is the evaluator's view of a prescription. StockQuantity carries the
// current count of the referenced product and is meaningless for services.
type Item struct {
	ID            int64
	Name          string
	Type          enums.PrescriptionType
	Status        enums.PrescriptionStatus
	Quantity      int
	UnitPrice     decimal.Decimal
	StockQuantity int
}

// Totals aggregates a selected batch for display and receipts.
type Totals struct {
	TotalAmount  decimal.Decimal
	ProductCount int
	ServiceCount int
	TotalItems   int
}

// CanProcess reports whether a single prescription may be included in a
// checkout batch: a product must be prescribed with enough stock, a service
// must be pending. Quantity <= 0 is not validated here; that is the server's
// malformed-input problem.
func CanProcess(item Item) bool {
	switch item.Type {
	case enums.PrescriptionTypeProduct:
		return item.Status == enums.PrescriptionStatusPrescribed && item.StockQuantity >= item.Quantity
	case enums.PrescriptionTypeService:
		return item.Status == enums.PrescriptionStatusPending
	}
	return false
}

// EvaluateBatch checks every member of a batch and collects one
// human-readable reason per failing item, in input order, without dedup.
// An empty batch is processable.
func EvaluateBatch(items []Item) (bool, []string) {
	var reasons []string
	for _, item := range items {
		if CanProcess(item) {
			continue
		}
		reasons = append(reasons, ineligibleReason(item))
	}
	return len(reasons) == 0, reasons
}

// ValidateBatch returns a typed state-conflict error carrying the per-item
// reasons when any member of the batch is ineligible.
func ValidateBatch(items []Item) error {
	ok, reasons := EvaluateBatch(items)
	if ok {
		return nil
	}
	return pkgerrors.New(
		pkgerrors.CodeStateConflict,
		fmt.Sprintf("%d prescription(s) cannot be processed", len(reasons)),
	).WithDetails(map[string]any{
		"reasons": reasons,
	})
}

// ComputeTotals sums unit_price * quantity over the batch with exact decimal
// arithmetic and counts members by variant.
func ComputeTotals(items []Item) Totals {
	totals := Totals{TotalAmount: decimal.Zero}
	for _, item := range items {
		line := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		totals.TotalAmount = totals.TotalAmount.Add(line)
		switch item.Type {
		case enums.PrescriptionTypeProduct:
			totals.ProductCount++
		case enums.PrescriptionTypeService:
			totals.ServiceCount++
		}
		totals.TotalItems++
	}
	return totals
}

func ineligibleReason(item Item) string {
	name := item.Name
	if name == "" {
		name = fmt.Sprintf("prescription %d", item.ID)
	}
	switch item.Type {
	case enums.PrescriptionTypeProduct:
		if item.Status != enums.PrescriptionStatusPrescribed {
			return fmt.Sprintf("%s: Not in prescribed status", name)
		}
		return fmt.Sprintf("%s: Insufficient stock (%d available, %d needed)", name, item.StockQuantity, item.Quantity)
	case enums.PrescriptionTypeService:
		return fmt.Sprintf("%s: Not in pending status", name)
	}
	return fmt.Sprintf("%s: Unknown prescription type", name)
}

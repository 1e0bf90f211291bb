package clinicclient

import "testing"

func TestSelectionLifecycle(t *testing.T) {
	t.Parallel()

	sel := NewSelection()
	sel.Select(3)
	sel.Select(1)
	sel.Select(3)

	if sel.Count() != 2 {
		t.Fatalf("expected 2 selected, got %d", sel.Count())
	}
	if ids := sel.IDs(); len(ids) != 2 || ids[0] != 3 || ids[1] != 1 {
		t.Fatalf("expected selection order preserved, got %v", ids)
	}

	sel.Deselect(3)
	if sel.Has(3) {
		t.Fatal("expected 3 deselected")
	}
	if !sel.Has(1) {
		t.Fatal("expected 1 still selected")
	}

	sel.Clear()
	if sel.Count() != 0 {
		t.Fatalf("expected empty selection, got %d", sel.Count())
	}
}

func TestSelectionPruneDropsStaleIDs(t *testing.T) {
	t.Parallel()

	sel := NewSelection()
	for _, id := range []int64{1, 2, 3} {
		sel.Select(id)
	}

	sel.Prune([]int64{2, 3, 4})

	if sel.Has(1) {
		t.Fatal("expected vanished id dropped")
	}
	if !sel.Has(2) || !sel.Has(3) {
		t.Fatal("expected visible ids kept")
	}
	if ids := sel.IDs(); len(ids) != 2 || ids[0] != 2 || ids[1] != 3 {
		t.Fatalf("unexpected order after prune: %v", ids)
	}
}

package clinicclient

import "sync"

// Selection owns the set of prescription IDs picked for checkout. All
// mutation goes through Select, Deselect, Clear and Prune; nothing else may
// touch the set. It is safe for concurrent use.
type Selection struct {
	mu  sync.Mutex
	ids map[int64]struct{}
	ord []int64
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[int64]struct{})}
}

// Select adds an ID to the set. Re-selecting is a no-op.
func (s *Selection) Select(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return
	}
	s.ids[id] = struct{}{}
	s.ord = append(s.ord, id)
}

// Deselect removes an ID from the set.
func (s *Selection) Deselect(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; !ok {
		return
	}
	delete(s.ids, id)
	s.removeOrdered(id)
}

// Clear empties the set.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[int64]struct{})
	s.ord = nil
}

// Has reports whether the ID is selected.
func (s *Selection) Has(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Count returns the number of selected IDs.
func (s *Selection) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// IDs returns the selected IDs in selection order.
func (s *Selection) IDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.ord))
	copy(out, s.ord)
	return out
}

// Prune drops every selected ID not present in the visible set. A
// prescription that disappeared from the list must never be resubmitted
// under its stale identifier.
func (s *Selection) Prune(visible []int64) {
	keep := make(map[int64]struct{}, len(visible))
	for _, id := range visible {
		keep[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.ids {
		if _, ok := keep[id]; !ok {
			delete(s.ids, id)
			s.removeOrdered(id)
		}
	}
}

func (s *Selection) removeOrdered(id int64) {
	for i, v := range s.ord {
		if v == id {
			s.ord = append(s.ord[:i], s.ord[i+1:]...)
			return
		}
	}
}

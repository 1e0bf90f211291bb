package enums

import "fmt"

// PrescriptionType distinguishes dispensed products from performed services.
type PrescriptionType string

const (
	PrescriptionTypeProduct PrescriptionType = "product"
	PrescriptionTypeService PrescriptionType = "service"
)

var validPrescriptionTypes = []PrescriptionType{
	PrescriptionTypeProduct,
	PrescriptionTypeService,
}

// String implements fmt.Stringer.
func (t PrescriptionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known PrescriptionType.
func (t PrescriptionType) IsValid() bool {
	for _, candidate := range validPrescriptionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParsePrescriptionType converts raw input into a PrescriptionType.
func ParsePrescriptionType(value string) (PrescriptionType, error) {
	for _, candidate := range validPrescriptionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid prescription type %q", value)
}

// PrescriptionStatus tracks a prescription through its lifecycle. Product
// prescriptions start at prescribed and finish at sold; service
// prescriptions start at pending and finish at completed. Either variant
// may be cancelled before reaching its terminal state.
type PrescriptionStatus string

const (
	PrescriptionStatusPrescribed PrescriptionStatus = "prescribed"
	PrescriptionStatusPending    PrescriptionStatus = "pending"
	PrescriptionStatusSold       PrescriptionStatus = "sold"
	PrescriptionStatusCompleted  PrescriptionStatus = "completed"
	PrescriptionStatusCancelled  PrescriptionStatus = "cancelled"
)

var validPrescriptionStatuses = []PrescriptionStatus{
	PrescriptionStatusPrescribed,
	PrescriptionStatusPending,
	PrescriptionStatusSold,
	PrescriptionStatusCompleted,
	PrescriptionStatusCancelled,
}

// String implements fmt.Stringer.
func (s PrescriptionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PrescriptionStatus.
func (s PrescriptionStatus) IsValid() bool {
	for _, candidate := range validPrescriptionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s PrescriptionStatus) IsTerminal() bool {
	switch s {
	case PrescriptionStatusSold, PrescriptionStatusCompleted, PrescriptionStatusCancelled:
		return true
	}
	return false
}

// ParsePrescriptionStatus converts raw input into a PrescriptionStatus.
func ParsePrescriptionStatus(value string) (PrescriptionStatus, error) {
	for _, candidate := range validPrescriptionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid prescription status %q", value)
}

// InitialStatusFor returns the open status a new prescription of the given
// type is created with.
func InitialStatusFor(t PrescriptionType) PrescriptionStatus {
	if t == PrescriptionTypeService {
		return PrescriptionStatusPending
	}
	return PrescriptionStatusPrescribed
}

// FinalizedStatusFor returns the terminal status a checkout applies to the
// given prescription type.
func FinalizedStatusFor(t PrescriptionType) PrescriptionStatus {
	if t == PrescriptionTypeService {
		return PrescriptionStatusCompleted
	}
	return PrescriptionStatusSold
}

// CanTransition reports whether a prescription of the given type may move
// from one status to another.
func CanTransition(t PrescriptionType, from, to PrescriptionStatus) bool {
	if from.IsTerminal() {
		return false
	}
	switch t {
	case PrescriptionTypeProduct:
		if from != PrescriptionStatusPrescribed {
			return false
		}
		return to == PrescriptionStatusSold || to == PrescriptionStatusCancelled
	case PrescriptionTypeService:
		if from != PrescriptionStatusPending {
			return false
		}
		return to == PrescriptionStatusCompleted || to == PrescriptionStatusCancelled
	}
	return false
}

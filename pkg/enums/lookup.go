package enums

import "fmt"

// LookupType names the small reference lists managed through the admin
// screens (skin concerns, health conditions, treatment areas).
type LookupType string

const (
	LookupTypeSkinConcern     LookupType = "skin_concerns"
	LookupTypeHealthCondition LookupType = "health_conditions"
	LookupTypeTreatmentArea   LookupType = "treatment_areas"
)

var validLookupTypes = []LookupType{
	LookupTypeSkinConcern,
	LookupTypeHealthCondition,
	LookupTypeTreatmentArea,
}

// String implements fmt.Stringer.
func (t LookupType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known LookupType.
func (t LookupType) IsValid() bool {
	for _, candidate := range validLookupTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseLookupType converts raw input into a LookupType.
func ParseLookupType(value string) (LookupType, error) {
	for _, candidate := range validLookupTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lookup type %q", value)
}

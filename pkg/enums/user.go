package enums

import "fmt"

// UserRole captures the staff roles recognized by the clinic platform.
type UserRole string

const (
	UserRoleAdmin        UserRole = "admin"
	UserRoleDoctor       UserRole = "doctor"
	UserRoleProfessional UserRole = "professional"
	UserRoleReceptionist UserRole = "receptionist"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleDoctor,
	UserRoleProfessional,
	UserRoleReceptionist,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

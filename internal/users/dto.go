package users

import (
	"time"

	"github.com/novaderm/clinic-backend/pkg/db/models"
	"github.com/novaderm/clinic-backend/pkg/enums"
	"github.com/novaderm/clinic-backend/pkg/types"
)

// UserDTO is the wire shape of a staff account. Avatar carries a data URI.
type UserDTO struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Phone     *string   `json:"phone"`
	Avatar    string    `json:"avatar,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateInput holds the validated payload to register a staff account.
type CreateInput struct {
	Email    string
	Password string
	FullName string
	Role     enums.UserRole
	Phone    *string
	Avatar   *string
}

// UpdateInput holds optional mutation values for a staff account.
type UpdateInput struct {
	FullName *string
	Role     *enums.UserRole
	Phone    *string
	Avatar   *string
	IsActive *bool
	Password *string
}

// ListResult is the paged staff directory.
type ListResult struct {
	Users      []UserDTO `json:"users"`
	TotalPages int       `json:"total_pages"`
}

// FromModel converts a stored user into its wire shape.
func FromModel(u *models.User) UserDTO {
	dto := UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role.String(),
		Phone:     u.Phone,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
	if u.AvatarB64 != nil {
		dto.Avatar = types.ImageDataURI(*u.AvatarB64)
	}
	return dto
}

package auth

import "github.com/novaderm/clinic-backend/internal/users"

// LoginRequest carries the credentials posted to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the signed token plus the account it belongs to.
type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	User        users.UserDTO `json:"user"`
}

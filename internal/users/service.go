package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/novaderm/clinic-backend/pkg/config"
	"github.com/novaderm/clinic-backend/pkg/db"
	"github.com/novaderm/clinic-backend/pkg/db/models"
	pkgerrors "github.com/novaderm/clinic-backend/pkg/errors"
	"github.com/novaderm/clinic-backend/pkg/pagination"
	"github.com/novaderm/clinic-backend/pkg/security"
	"github.com/novaderm/clinic-backend/pkg/types"
)

// Service manages staff accounts.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*UserDTO, error)
	Get(ctx context.Context, id int64) (*UserDTO, error)
	List(ctx context.Context, page pagination.Params) (*ListResult, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*UserDTO, error)
	Deactivate(ctx context.Context, id int64) error
}

type service struct {
	repo        Repository
	passwordCfg config.PasswordConfig
}

// NewService builds the user service.
func NewService(repo Repository, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository required")
	}
	return &service{repo: repo, passwordCfg: passwordCfg}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if input.FullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full_name required")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", input.Role))
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     input.FullName,
		Role:         input.Role,
		Phone:        input.Phone,
		IsActive:     true,
	}
	if input.Avatar != nil {
		raw := types.StripDataURI(*input.Avatar)
		user.AvatarB64 = &raw
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating user")
	}

	dto := FromModel(user)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, id int64) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(user)
	return &dto, nil
}

func (s *service) List(ctx context.Context, page pagination.Params) (*ListResult, error) {
	page = page.Normalize()
	rows, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, err
	}

	result := &ListResult{
		Users:      make([]UserDTO, 0, len(rows)),
		TotalPages: pagination.TotalPages(total, page.PerPage),
	}
	for i := range rows {
		result.Users = append(result.Users, FromModel(&rows[i]))
	}
	return result, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		if *input.FullName == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "full_name cannot be empty")
		}
		user.FullName = *input.FullName
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", *input.Role))
		}
		user.Role = *input.Role
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.Avatar != nil {
		raw := types.StripDataURI(*input.Avatar)
		user.AvatarB64 = &raw
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
		}
		hash, err := security.HashPassword(*input.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving user")
	}

	dto := FromModel(user)
	return &dto, nil
}

func (s *service) Deactivate(ctx context.Context, id int64) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return nil
	}
	user.IsActive = false
	if err := s.repo.Save(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving user")
	}
	return nil
}

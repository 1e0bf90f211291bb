package auth

import (
	"context"
	"testing"

	"gorm.io/gorm"

	pkgauth "github.com/novaderm/clinic-backend/pkg/auth"
	"github.com/novaderm/clinic-backend/pkg/config"
	"github.com/novaderm/clinic-backend/pkg/db/models"
	"github.com/novaderm/clinic-backend/pkg/enums"
	pkgerrors "github.com/novaderm/clinic-backend/pkg/errors"
	"github.com/novaderm/clinic-backend/pkg/security"
)

type stubUsers struct {
	user *models.User
}

func (s stubUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

type stubSessions struct {
	started []string
	revoked []string
}

func (s *stubSessions) Start(_ context.Context, accessID string) error {
	s.started = append(s.started, accessID)
	return nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "clinic-test",
		ExpirationMinutes: 15,
	}
}

func activeUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           7,
		Email:        "doctor@clinic.com",
		PasswordHash: hash,
		FullName:     "Dr. Reyes",
		Role:         enums.UserRoleDoctor,
		IsActive:     true,
	}
}

func TestLoginIssuesTokenAndStartsSession(t *testing.T) {
	t.Parallel()

	sessions := &stubSessions{}
	svc, err := NewService(stubUsers{user: activeUser(t, "s3cret-pass")}, sessions, testJWTConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{Email: " Doctor@Clinic.com ", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if resp.User.Email != "doctor@clinic.com" || resp.User.Role != "doctor" {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != 7 || claims.Role != enums.UserRoleDoctor {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if len(sessions.started) != 1 || sessions.started[0] != claims.ID {
		t.Fatalf("expected session for jti %q, got %v", claims.ID, sessions.started)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()

	svc, err := NewService(stubUsers{user: activeUser(t, "s3cret-pass")}, &stubSessions{}, testJWTConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "doctor@clinic.com", Password: "wrong"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	t.Parallel()

	svc, err := NewService(stubUsers{}, &stubSessions{}, testJWTConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "nobody@clinic.com", Password: "whatever"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	t.Parallel()

	user := activeUser(t, "s3cret-pass")
	user.IsActive = false
	svc, err := NewService(stubUsers{user: user}, &stubSessions{}, testJWTConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "doctor@clinic.com", Password: "s3cret-pass"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	t.Parallel()

	sessions := &stubSessions{}
	svc, err := NewService(stubUsers{user: activeUser(t, "s3cret-pass")}, sessions, testJWTConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.Logout(context.Background(), "jti-123"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "jti-123" {
		t.Fatalf("expected revoked jti, got %v", sessions.revoked)
	}
}

package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/student-service/internal/auth"
	"github.com/SAP-F-2025/student-service/internal/config"
	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthFixture(t *testing.T) (AuthService, *mockRepository) {
	t.Helper()
	repo := newMockRepository()
	codec := auth.NewTokenCodec("test-secret", 24*time.Hour, 7*24*time.Hour)
	hasher := auth.NewBcryptHasher(4)
	cfg := config.AuthConfig{MinPasswordLength: 8, BcryptCost: 4}
	svc := NewAuthService(repo, codec, hasher, newMockDenylist(), cfg, testLogger(), validator.NewValidator())
	return svc, repo
}

// mockDenylist is an in-memory TokenDenylist.
type mockDenylist struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func newMockDenylist() *mockDenylist {
	return &mockDenylist{revoked: make(map[string]bool)}
}

func (d *mockDenylist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[token] = true
	return nil
}

func (d *mockDenylist) IsRevoked(ctx context.Context, token string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.revoked[token], nil
}

func registerReq(email string) *RegisterRequest {
	return &RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  "correct-horse",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, repo := newAuthFixture(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerReq("ada@example.com"))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected an access token on register")
	}
	if resp.Role != models.RoleStudent {
		t.Errorf("expected role Student, got %s", resp.Role)
	}

	login, err := svc.Login(ctx, &LoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.Token == "" || login.RefreshToken == "" {
		t.Error("expected both tokens on login")
	}
	if login.UserID != resp.UserID {
		t.Errorf("login resolved user %d, registered as %d", login.UserID, resp.UserID)
	}

	// Registration must have created the student profile as well.
	if _, err := repo.Student().GetByID(ctx, resp.UserID); err != nil {
		t.Errorf("student profile missing after register: %v", err)
	}

	user, err := svc.CurrentUser(ctx, login.Token)
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("unexpected identity: %s", user.Email)
	}
	if !svc.HasRole(user, models.RoleStudent) {
		t.Error("expected HasRole(Student) to be true")
	}
	if svc.HasRole(user, models.RoleAdmin) {
		t.Error("expected HasRole(Admin) to be false")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerReq("dup@example.com")); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	// Same address with different casing counts as a duplicate.
	_, err := svc.Register(ctx, registerReq("DUP@Example.com"))
	if !IsCode(err, ErrCodeDuplicateEmail) {
		t.Fatalf("expected DuplicateEmail, got %v", err)
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, repo := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerReq("Ada.Lovelace@Example.COM")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, err := repo.User().GetByEmail(ctx, "ada.lovelace@example.com")
	if err != nil {
		t.Fatalf("lookup by lowercase email failed: %v", err)
	}
	// The stored form must be lowercase: the unique index compares bytes,
	// so two case variants of one address would otherwise both insert.
	if user.Email != "ada.lovelace@example.com" {
		t.Errorf("stored email not normalized: %q", user.Email)
	}

	if _, err := svc.Register(ctx, registerReq("ADA.LOVELACE@example.com")); !IsCode(err, ErrCodeDuplicateEmail) {
		t.Fatalf("expected DuplicateEmail for a case variant, got %v", err)
	}

	// Login accepts any casing of the registered address.
	if _, err := svc.Login(ctx, &LoginRequest{Email: "Ada.Lovelace@example.com", Password: "correct-horse"}); err != nil {
		t.Fatalf("login with mixed-case email failed: %v", err)
	}
}

func TestRegisterShortPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	req := registerReq("short@example.com")
	req.Password = "seven77"
	_, err := svc.Register(context.Background(), req)
	if !IsCode(err, ErrCodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerReq("ada@example.com")); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	tests := []struct {
		name string
		req  *LoginRequest
	}{
		{"wrong password", &LoginRequest{Email: "ada@example.com", Password: "wrong-horse"}},
		{"unknown email", &LoginRequest{Email: "nobody@example.com", Password: "correct-horse"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.req)
			if !IsInvalidCredentials(err) {
				t.Fatalf("expected InvalidCredentials, got %v", err)
			}
		})
	}
}

func TestRefreshRotation(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerReq("ada@example.com")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	login, err := svc.Login(ctx, &LoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	rotated, err := svc.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if rotated.Token == "" || rotated.RefreshToken == "" {
		t.Error("expected a full pair after refresh")
	}
	if rotated.UserID != login.UserID {
		t.Errorf("refresh switched identity: %d != %d", rotated.UserID, login.UserID)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerReq("ada@example.com")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	login, err := svc.Login(ctx, &LoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, err := svc.Refresh(ctx, login.Token); !IsInvalidToken(err) {
		t.Fatalf("expected InvalidToken for an access token, got %v", err)
	}
	if _, err := svc.Refresh(ctx, "not-a-token"); !IsInvalidToken(err) {
		t.Fatalf("expected InvalidToken for garbage, got %v", err)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerReq("ada@example.com")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	login, err := svc.Login(ctx, &LoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(ctx, login.RefreshToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := svc.Refresh(ctx, login.RefreshToken); !IsInvalidToken(err) {
		t.Fatalf("expected InvalidToken after logout, got %v", err)
	}

	// A fresh login is unaffected by the revocation. Move the clock so
	// the new pair cannot be byte-identical to the revoked one.
	svc.(*authService).now = func() time.Time { return time.Now().Add(2 * time.Second) }
	again, err := svc.Login(ctx, &LoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	if _, err := svc.Refresh(ctx, again.RefreshToken); err != nil {
		t.Fatalf("refresh with a new token failed: %v", err)
	}
}

func TestLogoutRejectsInvalidToken(t *testing.T) {
	svc, _ := newAuthFixture(t)

	if err := svc.Logout(context.Background(), "not-a-token"); !IsInvalidToken(err) {
		t.Fatalf("expected InvalidToken, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerReq("ada@example.com"))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, resp.UserID, &ChangePasswordRequest{
			CurrentPassword: "wrong-horse",
			NewPassword:     "battery-staple",
		})
		if !IsInvalidCredentials(err) {
			t.Fatalf("expected InvalidCredentials, got %v", err)
		}
		// Stored hash must be untouched.
		if _, err := svc.Login(ctx, &LoginRequest{Email: "ada@example.com", Password: "correct-horse"}); err != nil {
			t.Errorf("old password no longer works: %v", err)
		}
	})

	t.Run("too short", func(t *testing.T) {
		err := svc.ChangePassword(ctx, resp.UserID, &ChangePasswordRequest{
			CurrentPassword: "correct-horse",
			NewPassword:     "tiny",
		})
		if !IsCode(err, ErrCodeValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		err := svc.ChangePassword(ctx, resp.UserID, &ChangePasswordRequest{
			CurrentPassword: "correct-horse",
			NewPassword:     "battery-staple",
		})
		if err != nil {
			t.Fatalf("ChangePassword failed: %v", err)
		}
		if _, err := svc.Login(ctx, &LoginRequest{Email: "ada@example.com", Password: "battery-staple"}); err != nil {
			t.Errorf("new password rejected: %v", err)
		}
		if _, err := svc.Login(ctx, &LoginRequest{Email: "ada@example.com", Password: "correct-horse"}); !IsInvalidCredentials(err) {
			t.Errorf("old password still accepted: %v", err)
		}
	})
}

func TestChangePasswordUnknownUser(t *testing.T) {
	svc, _ := newAuthFixture(t)

	err := svc.ChangePassword(context.Background(), 999, &ChangePasswordRequest{
		CurrentPassword: "correct-horse",
		NewPassword:     "battery-staple",
	})
	if !IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/recetapp/recetapp/internal/auth"
	"github.com/recetapp/recetapp/internal/metrics"
	"github.com/recetapp/recetapp/internal/repository/memory"
)

func newUserEnv(t *testing.T) (*UserService, *memory.Store, *auth.TokenManager, *metrics.InMemoryRecorder) {
	t.Helper()
	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}
	store := memory.New()
	rec := metrics.NewInMemory()
	return NewUserService(store, tokens, rec), store, tokens, rec
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	svc, _, tokens, rec := newUserEnv(t)

	res, err := svc.Register(context.Background(), "  Ana@Example.COM ", "secreto123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if res.User.EmailOrEmpty() != "ana@example.com" {
		t.Errorf("email not normalized: %q", res.User.EmailOrEmpty())
	}
	if res.User.PasswordHash == "secreto123" || res.User.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}

	ac, err := tokens.Validate(res.Token)
	if err != nil {
		t.Fatalf("issued token invalid: %v", err)
	}
	if ac.Email != "ana@example.com" {
		t.Errorf("token email = %q", ac.Email)
	}
	if rec.Snapshot().Registrations[metrics.OutcomeSuccess] != 1 {
		t.Error("expected successful registration metric")
	}
}

func TestRegister_Duplicate(t *testing.T) {
	t.Parallel()

	svc, store, _, _ := newUserEnv(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ana@example.com", "one"); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if _, err := svc.Register(ctx, "ANA@example.com", "two"); !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
	if store.UserCount() != 1 {
		t.Errorf("duplicate must not create a row, count = %d", store.UserCount())
	}
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newUserEnv(t)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"blank email", "  ", "secret"},
		{"bad email", "not-an-email", "secret"},
		{"blank password", "ana@example.com", "   "},
	}

	for _, tt := range tests {
		if _, err := svc.Register(context.Background(), tt.email, tt.password); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", tt.name, err)
		}
	}
}

func TestLogin_IdenticalFailures(t *testing.T) {
	t.Parallel()

	svc, _, _, rec := newUserEnv(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ana@example.com", "correcta"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, wrongPassword := svc.Login(ctx, "ana@example.com", "incorrecta")
	_, unknownEmail := svc.Login(ctx, "nadie@example.com", "correcta")

	if !errors.Is(wrongPassword, ErrInvalidCredentials) || !errors.Is(unknownEmail, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", wrongPassword, unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Errorf("failures must be indistinguishable: %q vs %q", wrongPassword, unknownEmail)
	}
	if rec.Snapshot().Logins[metrics.OutcomeRejected] != 2 {
		t.Error("expected two rejected logins")
	}
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	svc, _, tokens, _ := newUserEnv(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ana@example.com", "correcta"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	token, err := svc.Login(ctx, " ANA@example.com", "correcta")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := tokens.Validate(token); err != nil {
		t.Errorf("login token invalid: %v", err)
	}
}

func TestRemoveEmail(t *testing.T) {
	t.Parallel()

	svc, store, _, _ := newUserEnv(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ana@example.com", "correcta"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := svc.RemoveEmail(ctx, "ana@example.com"); err != nil {
		t.Fatalf("RemoveEmail failed: %v", err)
	}
	if store.UserCount() != 1 {
		t.Error("the account row must survive")
	}
	if _, err := svc.Login(ctx, "ana@example.com", "correcta"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("login after removal: expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.RemoveEmail(ctx, "ana@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("second removal: expected ErrUserNotFound, got %v", err)
	}
	if err := svc.RemoveEmail(ctx, ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("blank email: expected ErrInvalidInput, got %v", err)
	}
}

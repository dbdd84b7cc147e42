package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/recetapp/recetapp/internal/auth"
	"github.com/recetapp/recetapp/internal/metrics"
	"github.com/recetapp/recetapp/internal/model"
	"github.com/recetapp/recetapp/internal/repository"
)

const maxPasswordLength = 1024

// UserService handles registration, login and email removal.
type UserService struct {
	repo    UserRepository
	tokens  *auth.TokenManager
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(repo UserRepository, tokens *auth.TokenManager, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		repo:    repo,
		tokens:  tokens,
		metrics: recorder,
	}
}

// AuthResult is returned by Register.
type AuthResult struct {
	Token string
	User  *model.User
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if email == "" {
		return invalid("email", "el email es obligatorio")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return invalid("email", "el email no es válido")
	}
	if strings.TrimSpace(password) == "" {
		return invalid("password", "la contraseña es obligatoria")
	}
	if len(password) > maxPasswordLength {
		return invalid("password", "la contraseña es demasiado larga")
	}
	return nil
}

// Register creates an account and returns a session token for it.
func (s *UserService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		s.metrics.IncRegistration(metrics.OutcomeRejected)
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.metrics.IncRegistration(metrics.OutcomeFailed)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           generateULID(),
		Email:        &email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			s.metrics.IncRegistration(metrics.OutcomeRejected)
			return nil, ErrEmailExists
		}
		s.metrics.IncRegistration(metrics.OutcomeFailed)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(email)
	if err != nil {
		s.metrics.IncRegistration(metrics.OutcomeFailed)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncRegistration(metrics.OutcomeSuccess)
	slog.Info("user_registered", "user_id", user.ID)

	return &AuthResult{Token: token, User: user}, nil
}

// Login checks credentials and returns a fresh token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" || len(password) > maxPasswordLength {
		s.metrics.IncLogin(metrics.OutcomeRejected)
		return "", ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			auth.BurnVerify(password)
			s.metrics.IncLogin(metrics.OutcomeRejected)
			return "", ErrInvalidCredentials
		}
		s.metrics.IncLogin(metrics.OutcomeFailed)
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.metrics.IncLogin(metrics.OutcomeFailed)
		return "", fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.metrics.IncLogin(metrics.OutcomeRejected)
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(email)
	if err != nil {
		s.metrics.IncLogin(metrics.OutcomeFailed)
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncLogin(metrics.OutcomeSuccess)
	return token, nil
}

// RemoveEmail clears the email of the matching account. The row and its
// password hash stay behind.
func (s *UserService) RemoveEmail(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return invalid("email", "el email es obligatorio")
	}

	if err := s.repo.RemoveUserEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to remove email: %w", err)
	}

	slog.Info("user_email_removed")
	return nil
}

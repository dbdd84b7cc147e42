// Package session ties the API client to device-local state: the stored
// token and an in-memory mirror of the server's recipe list.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"sync"

	"github.com/recetapp/recetapp/internal/client/api"
	"github.com/recetapp/recetapp/internal/client/localstore"
	"github.com/recetapp/recetapp/internal/handler/dto"
	"github.com/recetapp/recetapp/internal/model"
)

// KeyToken stores the session token.
const KeyToken = "token"

// MinPasswordLength is enforced before a registration is sent.
const MinPasswordLength = 8

// Session errors.
var (
	ErrInvalidEmail     = errors.New("el email no es válido")
	ErrPasswordTooShort = fmt.Errorf("la contraseña debe tener al menos %d caracteres", MinPasswordLength)
	ErrNotLoggedIn      = errors.New("no has iniciado sesión")
)

// Session is one signed-in (or signed-out) client.
type Session struct {
	api *api.Client
	kv  localstore.KV

	mu      sync.RWMutex
	recipes []model.Recipe
}

// New restores a session from kv. A stored token is attached to client.
func New(ctx context.Context, client *api.Client, kv localstore.KV) (*Session, error) {
	token, err := kv.Get(ctx, KeyToken)
	switch {
	case errors.Is(err, localstore.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load token: %w", err)
	default:
		client.SetToken(string(token))
	}
	return &Session{api: client, kv: kv}, nil
}

// LoggedIn reports whether a token is present. The token may have expired.
func (s *Session) LoggedIn() bool {
	return s.api.Token() != ""
}

// Register creates an account and keeps its token.
func (s *Session) Register(ctx context.Context, email, password string) (*dto.UserResponse, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	resp, err := s.api.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.storeToken(ctx, resp.Token); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Login exchanges credentials for a token and keeps it.
func (s *Session) Login(ctx context.Context, email, password string) error {
	token, err := s.api.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return err
	}
	return s.storeToken(ctx, token)
}

// Logout forgets the token and the mirrored recipes.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeyToken); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	s.api.SetToken("")

	s.mu.Lock()
	s.recipes = nil
	s.mu.Unlock()
	return nil
}

// DeleteAccount clears the account's email on the server, then logs out.
func (s *Session) DeleteAccount(ctx context.Context, email string) error {
	if err := s.api.RemoveEmail(ctx, strings.TrimSpace(email)); err != nil {
		return err
	}
	return s.Logout(ctx)
}

// RefreshRecipes replaces the mirror with the server's current list.
// On failure the previous mirror is kept.
func (s *Session) RefreshRecipes(ctx context.Context) ([]model.Recipe, error) {
	if !s.LoggedIn() {
		return nil, ErrNotLoggedIn
	}

	recipes, err := s.api.ListRecipes(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.recipes = recipes
	s.mu.Unlock()
	return slices.Clone(recipes), nil
}

// Recipes returns the last mirrored list.
func (s *Session) Recipes() []model.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.recipes)
}

// DeleteRecipe deletes on the server and reloads the mirror.
// Group snapshots of the recipe are left alone.
func (s *Session) DeleteRecipe(ctx context.Context, id string) ([]model.Recipe, error) {
	if !s.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	if err := s.api.DeleteRecipe(ctx, id); err != nil {
		return nil, err
	}
	return s.RefreshRecipes(ctx)
}

// Client exposes the underlying API client for single-recipe calls.
func (s *Session) Client() *api.Client {
	return s.api
}

func (s *Session) storeToken(ctx context.Context, token string) error {
	if err := s.kv.Set(ctx, KeyToken, []byte(token)); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	s.api.SetToken(token)
	return nil
}

// Package memory is an in-process stand-in for the Postgres repository.
// It mirrors the repository's error contract and is used by service and
// handler tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/recetapp/recetapp/internal/model"
	"github.com/recetapp/recetapp/internal/repository"
)

// Store holds users and recipes in maps guarded by one mutex.
type Store struct {
	mu      sync.RWMutex
	users   map[string]*model.User // by id
	recipes map[string]*model.Recipe

	// Fail, when set, is returned by every write.
	Fail error
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:   make(map[string]*model.User),
		recipes: make(map[string]*model.Recipe),
	}
}

// CreateUser stores a copy of user.
func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Fail != nil {
		return s.Fail
	}
	if user.Email != nil {
		for _, u := range s.users {
			if u.Email != nil && *u.Email == *user.Email {
				return repository.ErrEmailExists
			}
		}
	}
	cp := *user
	if user.Email != nil {
		email := *user.Email
		cp.Email = &email
	}
	s.users[user.ID] = &cp
	return nil
}

// GetUserByEmail finds a user by exact email.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email != nil && *u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// RemoveUserEmail clears the email of the matching user.
func (s *Store) RemoveUserEmail(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Fail != nil {
		return s.Fail
	}
	for _, u := range s.users {
		if u.Email != nil && *u.Email == email {
			u.Email = nil
			return nil
		}
	}
	return repository.ErrUserNotFound
}

// UserCount reports how many user rows exist.
func (s *Store) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// CreateRecipe stores a copy of recipe.
func (s *Store) CreateRecipe(_ context.Context, recipe *model.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Fail != nil {
		return s.Fail
	}
	s.recipes[recipe.ID] = recipe.Clone()
	return nil
}

// GetRecipeByID returns a copy of the stored recipe.
func (s *Store) GetRecipeByID(_ context.Context, id string) (*model.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok {
		return nil, repository.ErrRecipeNotFound
	}
	return r.Clone(), nil
}

// ListRecipes returns copies, newest first.
func (s *Store) ListRecipes(_ context.Context) ([]*model.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Recipe, 0, len(s.recipes))
	for _, r := range s.recipes {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateRecipe replaces an existing recipe.
func (s *Store) UpdateRecipe(_ context.Context, recipe *model.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Fail != nil {
		return s.Fail
	}
	existing, ok := s.recipes[recipe.ID]
	if !ok {
		return repository.ErrRecipeNotFound
	}
	cp := recipe.Clone()
	cp.CreatedAt = existing.CreatedAt
	s.recipes[recipe.ID] = cp
	return nil
}

// DeleteRecipe removes a recipe and reports whether it existed.
func (s *Store) DeleteRecipe(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Fail != nil {
		return false, s.Fail
	}
	_, ok := s.recipes[id]
	delete(s.recipes, id)
	return ok, nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

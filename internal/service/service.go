// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/recetapp/recetapp/internal/model"
	"github.com/recetapp/recetapp/internal/upload"
)

// Service errors.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrRecipeNotFound     = errors.New("recipe not found")
)

// ValidationError names the offending field. It matches ErrInvalidInput.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UserRepository persists accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	RemoveUserEmail(ctx context.Context, email string) error
}

// RecipeRepository persists recipes.
type RecipeRepository interface {
	CreateRecipe(ctx context.Context, recipe *model.Recipe) error
	GetRecipeByID(ctx context.Context, id string) (*model.Recipe, error)
	ListRecipes(ctx context.Context) ([]*model.Recipe, error)
	UpdateRecipe(ctx context.Context, recipe *model.Recipe) error
	DeleteRecipe(ctx context.Context, id string) (bool, error)
}

// RecipeCache is the optional read-through layer in front of RecipeRepository.
// Fills carry the generation read before the database load and are dropped
// when an invalidation happened in between.
type RecipeCache interface {
	Generation(ctx context.Context) (int64, error)
	GetRecipe(ctx context.Context, id string) (*model.Recipe, error)
	SetRecipe(ctx context.Context, recipe *model.Recipe, gen int64) (bool, error)
	GetRecipeList(ctx context.Context) ([]*model.Recipe, error)
	SetRecipeList(ctx context.Context, recipes []*model.Recipe, gen int64) (bool, error)
	InvalidateRecipe(ctx context.Context, id string) error
}

// ImageStore stores validated uploads and releases them again.
type ImageStore interface {
	Put(ctx context.Context, img *upload.Image) (string, error)
	Discard(ctx context.Context, publicPath string) error
}

// generateULID returns a new lexicographically sortable id.
func generateULID() string {
	return ulid.Make().String()
}

// validULID reports whether id could have been produced by generateULID.
func validULID(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/recetapp/recetapp/internal/metrics"
	"github.com/recetapp/recetapp/internal/model"
	"github.com/recetapp/recetapp/internal/repository"
	"github.com/recetapp/recetapp/internal/upload"
)

// RecipeService handles recipe business logic.
type RecipeService struct {
	repo    RecipeRepository
	images  ImageStore
	cache   RecipeCache
	metrics metrics.Recorder
	now     func() time.Time
}

// NewRecipeService creates a new RecipeService. cache may be nil.
func NewRecipeService(repo RecipeRepository, images ImageStore, cache RecipeCache, recorder metrics.Recorder) *RecipeService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RecipeService{
		repo:    repo,
		images:  images,
		cache:   cache,
		metrics: recorder,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateRecipe validates input, stores the optional image and inserts the row.
func (s *RecipeService) CreateRecipe(ctx context.Context, input RecipeInput, img *upload.Image) (*model.Recipe, error) {
	fields, err := input.parse(true)
	if err != nil {
		return nil, err
	}

	recipe := fields.newRecipe()
	recipe.ID = generateULID()
	recipe.CreatedAt = s.now()
	recipe.UpdatedAt = recipe.CreatedAt

	if img != nil {
		path, err := s.putImage(ctx, img)
		if err != nil {
			return nil, err
		}
		recipe.Imagen = &path
	}

	if err := s.repo.CreateRecipe(ctx, recipe); err != nil {
		s.discardImage(ctx, recipe.ImagePath())
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	s.invalidate(ctx, "")
	s.metrics.IncRecipeCreated()
	slog.Info("recipe_created", "recipe_id", recipe.ID)

	return recipe, nil
}

// GetRecipe returns a recipe by ID, consulting the cache first.
func (s *RecipeService) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	if !validULID(id) {
		return nil, ErrRecipeNotFound
	}

	if s.cache != nil {
		cached, err := s.cache.GetRecipe(ctx, id)
		if err == nil {
			s.metrics.IncRecipeCacheHit()
			return cached, nil
		}
		s.metrics.IncRecipeCacheMiss()
	}

	gen, fill := s.cacheGeneration(ctx)
	recipe, err := s.repo.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	if fill {
		if _, err := s.cache.SetRecipe(ctx, recipe, gen); err != nil {
			slog.Warn("recipe_cache_set_failed", "recipe_id", id, "error", err)
		}
	}

	return recipe, nil
}

// ListRecipes returns every recipe, newest first.
func (s *RecipeService) ListRecipes(ctx context.Context) ([]*model.Recipe, error) {
	if s.cache != nil {
		cached, err := s.cache.GetRecipeList(ctx)
		if err == nil {
			s.metrics.IncRecipeCacheHit()
			return cached, nil
		}
		s.metrics.IncRecipeCacheMiss()
	}

	gen, fill := s.cacheGeneration(ctx)
	recipes, err := s.repo.ListRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	if fill {
		if _, err := s.cache.SetRecipeList(ctx, recipes, gen); err != nil {
			slog.Warn("recipe_list_cache_set_failed", "error", err)
		}
	}

	return recipes, nil
}

// UpdateRecipe merges the provided fields into the stored recipe.
// Fields whose keys were not sent keep their stored values. Nothing is
// written when any provided field fails validation.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id string, input RecipeInput, img *upload.Image) (*model.Recipe, error) {
	if !validULID(id) {
		return nil, ErrRecipeNotFound
	}

	fields, err := input.parse(false)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	updated := current.Clone()
	fields.apply(updated)
	updated.UpdatedAt = s.now()

	newImage := ""
	if img != nil {
		newImage, err = s.putImage(ctx, img)
		if err != nil {
			return nil, err
		}
		updated.Imagen = &newImage
	}

	if err := s.repo.UpdateRecipe(ctx, updated); err != nil {
		s.discardImage(ctx, newImage)
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}

	s.invalidate(ctx, id)
	if newImage != "" {
		s.discardImage(ctx, current.ImagePath())
	}

	s.metrics.IncRecipeUpdated()
	slog.Info("recipe_updated", "recipe_id", id)

	return updated, nil
}

// DeleteRecipe removes a recipe. Deleting a missing recipe is not an error.
// The image is released after the row is gone.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id string) error {
	if !validULID(id) {
		return nil
	}

	current, err := s.repo.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			s.invalidate(ctx, id)
			return nil
		}
		return fmt.Errorf("failed to get recipe: %w", err)
	}

	deleted, err := s.repo.DeleteRecipe(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	s.invalidate(ctx, id)
	if !deleted {
		return nil
	}

	s.discardImage(ctx, current.ImagePath())
	s.metrics.IncRecipeDeleted()
	slog.Info("recipe_deleted", "recipe_id", id)

	return nil
}

func (s *RecipeService) putImage(ctx context.Context, img *upload.Image) (string, error) {
	if s.images == nil {
		return "", errors.New("image uploads are not configured")
	}

	path, err := s.images.Put(ctx, img)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrFileTooLarge),
			errors.Is(err, upload.ErrUnsupportedType),
			errors.Is(err, upload.ErrEmptyFile):
			s.metrics.IncImageUpload(metrics.OutcomeRejected)
			return "", err
		default:
			s.metrics.IncImageUpload(metrics.OutcomeFailed)
			return "", fmt.Errorf("failed to store image: %w", err)
		}
	}

	s.metrics.IncImageUpload(metrics.OutcomeSuccess)
	return path, nil
}

// discardImage releases a stored image. Failures leave an orphan file and
// are only logged.
func (s *RecipeService) discardImage(ctx context.Context, path string) {
	if path == "" || s.images == nil {
		return
	}
	if err := s.images.Discard(ctx, path); err != nil {
		slog.Warn("image_discard_failed", "path", path, "error", err)
	}
}

// cacheGeneration reads the write generation before a database load. The
// load result is only cached when this succeeds.
func (s *RecipeService) cacheGeneration(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		slog.Warn("recipe_cache_generation_failed", "error", err)
		return 0, false
	}
	return gen, true
}

// invalidate drops cached entries. Cache errors never fail the request.
func (s *RecipeService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateRecipe(ctx, id); err != nil {
		slog.Warn("recipe_cache_invalidate_failed", "recipe_id", id, "error", err)
	}
}

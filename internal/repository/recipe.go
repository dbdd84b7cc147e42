package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/recetapp/recetapp/internal/model"
)

// ErrRecipeNotFound is returned when no recipe matches the given ID.
var ErrRecipeNotFound = errors.New("recipe not found")

const recipeColumns = `id, nombre, descripcion, comensales, tiempo, ingredientes, pasos, imagen, created_at, updated_at`

// CreateRecipe inserts a new recipe into the database.
func (r *Repository) CreateRecipe(ctx context.Context, recipe *model.Recipe) error {
	query := `
		INSERT INTO recipes (` + recipeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		recipe.ID,
		recipe.Nombre,
		recipe.Descripcion,
		recipe.Comensales,
		recipe.Tiempo,
		nonNil(recipe.Ingredientes),
		nonNil(recipe.Pasos),
		recipe.Imagen,
		recipe.CreatedAt,
		recipe.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}

	return nil
}

// GetRecipeByID retrieves a recipe by its ID.
func (r *Repository) GetRecipeByID(ctx context.Context, id string) (*model.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE id = $1`

	recipe, err := scanRecipe(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	return recipe, nil
}

// ListRecipes returns every recipe, newest first.
func (r *Repository) ListRecipes(ctx context.Context) ([]*model.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	recipes := make([]*model.Recipe, 0)
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}

	return recipes, nil
}

// UpdateRecipe overwrites the mutable fields of an existing recipe.
func (r *Repository) UpdateRecipe(ctx context.Context, recipe *model.Recipe) error {
	query := `
		UPDATE recipes
		SET nombre = $2,
		    descripcion = $3,
		    comensales = $4,
		    tiempo = $5,
		    ingredientes = $6,
		    pasos = $7,
		    imagen = $8,
		    updated_at = $9
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		recipe.ID,
		recipe.Nombre,
		recipe.Descripcion,
		recipe.Comensales,
		recipe.Tiempo,
		nonNil(recipe.Ingredientes),
		nonNil(recipe.Pasos),
		recipe.Imagen,
		recipe.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}

	return nil
}

// DeleteRecipe removes a recipe and reports whether a row existed.
func (r *Repository) DeleteRecipe(ctx context.Context, id string) (bool, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete recipe: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func scanRecipe(row pgx.Row) (*model.Recipe, error) {
	var recipe model.Recipe
	err := row.Scan(
		&recipe.ID,
		&recipe.Nombre,
		&recipe.Descripcion,
		&recipe.Comensales,
		&recipe.Tiempo,
		&recipe.Ingredientes,
		&recipe.Pasos,
		&recipe.Imagen,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	recipe.Ingredientes = nonNil(recipe.Ingredientes)
	recipe.Pasos = nonNil(recipe.Pasos)
	return &recipe, nil
}

// nonNil keeps empty lists as '{}' rather than NULL.
func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

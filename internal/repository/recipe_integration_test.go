//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/recetapp/recetapp/internal/model"
	"github.com/recetapp/recetapp/internal/testutil"
)

// ============================================================================
// Recipe Repository Integration Tests
// ============================================================================

func TestIntegrationRecipeRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	recipe := testutil.NewTestRecipe(t, "Tortilla")
	if err := repo.CreateRecipe(ctx, recipe); err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	got, err := repo.GetRecipeByID(ctx, recipe.ID)
	if err != nil {
		t.Fatalf("GetRecipeByID failed: %v", err)
	}

	if got.Nombre != "Tortilla" {
		t.Errorf("Nombre mismatch: got %q", got.Nombre)
	}
	if len(got.Ingredientes) != len(recipe.Ingredientes) {
		t.Errorf("Ingredientes mismatch: got %v, want %v", got.Ingredientes, recipe.Ingredientes)
	}
	if len(got.Pasos) != len(recipe.Pasos) {
		t.Errorf("Pasos mismatch: got %v, want %v", got.Pasos, recipe.Pasos)
	}
	if got.Imagen != nil {
		t.Errorf("expected no image, got %q", *got.Imagen)
	}
}

func TestIntegrationRecipeRepository_GetNotFound(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	_, err := repo.GetRecipeByID(ctx, testutil.UniqueID("missing"))
	if !errors.Is(err, ErrRecipeNotFound) {
		t.Errorf("expected ErrRecipeNotFound, got %v", err)
	}
}

func TestIntegrationRecipeRepository_ListNewestFirst(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	older := testutil.NewTestRecipe(t, "Older")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := testutil.NewTestRecipe(t, "Newer")

	for _, r := range []*model.Recipe{older, newer} {
		if err := repo.CreateRecipe(ctx, r); err != nil {
			t.Fatalf("CreateRecipe failed: %v", err)
		}
	}

	list, err := repo.ListRecipes(ctx)
	if err != nil {
		t.Fatalf("ListRecipes failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(list))
	}
	if list[0].ID != newer.ID {
		t.Errorf("expected newest recipe first, got %q", list[0].Nombre)
	}
}

func TestIntegrationRecipeRepository_ListEmpty(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	list, err := repo.ListRecipes(ctx)
	if err != nil {
		t.Fatalf("ListRecipes failed: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("expected empty non-nil list, got %v", list)
	}
}

func TestIntegrationRecipeRepository_Update(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	recipe := testutil.NewTestRecipe(t, "Gazpacho")
	if err := repo.CreateRecipe(ctx, recipe); err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	image := "/uploads/1-abc.png"
	recipe.Comensales = 6
	recipe.Pasos = []string{}
	recipe.Imagen = &image
	recipe.UpdatedAt = time.Now().UTC()

	if err := repo.UpdateRecipe(ctx, recipe); err != nil {
		t.Fatalf("UpdateRecipe failed: %v", err)
	}

	got, err := repo.GetRecipeByID(ctx, recipe.ID)
	if err != nil {
		t.Fatalf("GetRecipeByID failed: %v", err)
	}
	if got.Comensales != 6 {
		t.Errorf("Comensales mismatch: got %d", got.Comensales)
	}
	if len(got.Pasos) != 0 {
		t.Errorf("expected empty Pasos, got %v", got.Pasos)
	}
	if got.ImagePath() != image {
		t.Errorf("Imagen mismatch: got %q", got.ImagePath())
	}
}

func TestIntegrationRecipeRepository_UpdateNotFound(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	recipe := testutil.NewTestRecipe(t, "Ghost")
	if err := repo.UpdateRecipe(ctx, recipe); !errors.Is(err, ErrRecipeNotFound) {
		t.Errorf("expected ErrRecipeNotFound, got %v", err)
	}
}

func TestIntegrationRecipeRepository_DeleteIsIdempotent(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	recipe := testutil.NewTestRecipe(t, "Paella")
	if err := repo.CreateRecipe(ctx, recipe); err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	deleted, err := repo.DeleteRecipe(ctx, recipe.ID)
	if err != nil || !deleted {
		t.Fatalf("first delete: deleted=%v err=%v", deleted, err)
	}

	deleted, err = repo.DeleteRecipe(ctx, recipe.ID)
	if err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
	if deleted {
		t.Error("second delete should report no row")
	}
}

// ============================================================================
// User Repository Integration Tests
// ============================================================================

func TestIntegrationUserRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("create"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := repo.GetUserByEmail(ctx, user.EmailOrEmpty())
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("ID mismatch: got %q, want %q", got.ID, user.ID)
	}
	if got.PasswordHash != user.PasswordHash {
		t.Error("PasswordHash mismatch")
	}
}

func TestIntegrationUserRepository_DuplicateEmail(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	email := testutil.UniqueEmail("dup")
	if err := repo.CreateUser(ctx, testutil.NewTestUser(t, email)); err != nil {
		t.Fatalf("CreateUser (first) failed: %v", err)
	}

	err := repo.CreateUser(ctx, testutil.NewTestUser(t, email))
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestIntegrationUserRepository_RemoveEmail(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	email := testutil.UniqueEmail("remove")
	if err := repo.CreateUser(ctx, testutil.NewTestUser(t, email)); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := repo.RemoveUserEmail(ctx, email); err != nil {
		t.Fatalf("RemoveUserEmail failed: %v", err)
	}

	if _, err := repo.GetUserByEmail(ctx, email); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound after removal, got %v", err)
	}

	if err := repo.RemoveUserEmail(ctx, email); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound on second removal, got %v", err)
	}

	// The address is free again.
	if err := repo.CreateUser(ctx, testutil.NewTestUser(t, email)); err != nil {
		t.Errorf("re-register after removal failed: %v", err)
	}
}

// ============================================================================
// Migration Integration Tests
// ============================================================================

func TestIntegrationMigration_TablesExist(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	for _, table := range []string{"users", "recipes"} {
		t.Run(table, func(t *testing.T) {
			var exists bool
			err := repo.Pool().QueryRow(ctx, `
				SELECT EXISTS (
					SELECT 1 FROM information_schema.tables
					WHERE table_schema = 'public' AND table_name = $1
				)`, table).Scan(&exists)
			if err != nil {
				t.Fatalf("query table: %v", err)
			}
			if !exists {
				t.Errorf("table %q should exist after migrations", table)
			}
		})
	}
}

func TestIntegrationMigration_RunTwiceIsNoop(t *testing.T) {
	_, _ = newRepositoryTestEnv(t)
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	if err := RunMigrations(dbURL); err != nil {
		t.Fatalf("second RunMigrations failed: %v", err)
	}
}

// ============================================================================
// Helpers
// ============================================================================

func newRepositoryTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := ResetSchema(dbURL); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}

func TestIntegrationMigration_Version(t *testing.T) {
	_, _ = newRepositoryTestEnv(t)
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	mg, err := NewMigrator(dbURL)
	if err != nil {
		t.Fatalf("NewMigrator failed: %v", err)
	}
	defer mg.Close()

	version, dirty, err := mg.Version()
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if version != 2 || dirty {
		t.Errorf("expected clean version 2, got %d dirty=%v", version, dirty)
	}
}

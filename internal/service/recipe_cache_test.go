package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/recetapp/recetapp/internal/metrics"
	"github.com/recetapp/recetapp/internal/model"
	"github.com/recetapp/recetapp/internal/repository/memory"
)

// interleavingRepo runs a hook once, right after a read has loaded its rows
// and before the service gets to cache them.
type interleavingRepo struct {
	*memory.Store

	mu   sync.Mutex
	hook func()
}

func (r *interleavingRepo) after(hook func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hook = hook
}

func (r *interleavingRepo) runHook() {
	r.mu.Lock()
	hook := r.hook
	r.hook = nil
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
}

func (r *interleavingRepo) GetRecipeByID(ctx context.Context, id string) (*model.Recipe, error) {
	recipe, err := r.Store.GetRecipeByID(ctx, id)
	r.runHook()
	return recipe, err
}

func (r *interleavingRepo) ListRecipes(ctx context.Context) ([]*model.Recipe, error) {
	recipes, err := r.Store.ListRecipes(ctx)
	r.runHook()
	return recipes, err
}

func newInterleavingEnv(t *testing.T) (*RecipeService, *interleavingRepo, *fakeCache) {
	t.Helper()
	repo := &interleavingRepo{Store: memory.New()}
	c := newFakeCache()
	return NewRecipeService(repo, &fakeImages{}, c, metrics.NewInMemory()), repo, c
}

func TestGetRecipe_UpdateDuringReadIsNotCachedStale(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo, c := newInterleavingEnv(t)
	created, err := svc.CreateRecipe(ctx, validInput(), nil)
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	repo.after(func() {
		in := RecipeInput{Nombre: Provided("Nueva")}
		if _, err := svc.UpdateRecipe(ctx, created.ID, in, nil); err != nil {
			t.Errorf("UpdateRecipe failed: %v", err)
		}
	})
	if _, err := svc.GetRecipe(ctx, created.ID); err != nil {
		t.Fatalf("GetRecipe failed: %v", err)
	}
	if c.has(created.ID) {
		t.Error("a read that overlapped an update must not fill the cache")
	}

	got, err := svc.GetRecipe(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetRecipe failed: %v", err)
	}
	if got.Nombre != "Nueva" {
		t.Errorf("Nombre = %q after committed update, want %q", got.Nombre, "Nueva")
	}
}

func TestGetRecipe_DeleteDuringReadThenNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo, _ := newInterleavingEnv(t)
	created, err := svc.CreateRecipe(ctx, validInput(), nil)
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	repo.after(func() {
		if err := svc.DeleteRecipe(ctx, created.ID); err != nil {
			t.Errorf("DeleteRecipe failed: %v", err)
		}
	})
	if _, err := svc.GetRecipe(ctx, created.ID); err != nil {
		t.Fatalf("GetRecipe failed: %v", err)
	}

	if _, err := svc.GetRecipe(ctx, created.ID); !errors.Is(err, ErrRecipeNotFound) {
		t.Errorf("GetRecipe after delete error = %v, want ErrRecipeNotFound", err)
	}
}

func TestListRecipes_CreateDuringListIsVisible(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo, c := newInterleavingEnv(t)
	if _, err := svc.CreateRecipe(ctx, validInput(), nil); err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	var added *model.Recipe
	repo.after(func() {
		in := validInput()
		in.Nombre = Provided("Flan")
		var err error
		if added, err = svc.CreateRecipe(ctx, in, nil); err != nil {
			t.Errorf("CreateRecipe failed: %v", err)
		}
	})
	if _, err := svc.ListRecipes(ctx); err != nil {
		t.Fatalf("ListRecipes failed: %v", err)
	}
	if c.hasList() {
		t.Error("a listing that overlapped a create must not fill the cache")
	}

	list, err := svc.ListRecipes(ctx)
	if err != nil {
		t.Fatalf("ListRecipes failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != added.ID {
		t.Errorf("expected the new recipe first in a list of 2, got %d recipes", len(list))
	}
}

func TestListRecipes_QuietReadFillsCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, c := newInterleavingEnv(t)
	if _, err := svc.CreateRecipe(ctx, validInput(), nil); err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	if _, err := svc.ListRecipes(ctx); err != nil {
		t.Fatalf("ListRecipes failed: %v", err)
	}
	if !c.hasList() {
		t.Error("a listing with no concurrent write should be cached")
	}
}

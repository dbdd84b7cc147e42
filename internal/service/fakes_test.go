package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/recetapp/recetapp/internal/cache"
	"github.com/recetapp/recetapp/internal/model"
	"github.com/recetapp/recetapp/internal/upload"
)

// fakeImages hands out sequential paths and records discards.
type fakeImages struct {
	mu        sync.Mutex
	putErr    error
	puts      int
	discarded []string
}

func (f *fakeImages) Put(_ context.Context, _ *upload.Image) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	f.puts++
	return fmt.Sprintf("/uploads/%d-test.png", f.puts), nil
}

func (f *fakeImages) Discard(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discarded = append(f.discarded, path)
	return nil
}

// fakeCache is a map-backed RecipeCache with the same generation rule as
// the Redis cache. broken makes every call fail.
type fakeCache struct {
	mu      sync.Mutex
	recipes map[string]*model.Recipe
	list    []*model.Recipe
	gen     int64
	broken  bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{recipes: make(map[string]*model.Recipe)}
}

var errCacheDown = errors.New("cache down")

func (c *fakeCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken {
		return 0, errCacheDown
	}
	return c.gen, nil
}

func (c *fakeCache) GetRecipe(_ context.Context, id string) (*model.Recipe, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken {
		return nil, errCacheDown
	}
	r, ok := c.recipes[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return r.Clone(), nil
}

func (c *fakeCache) SetRecipe(_ context.Context, r *model.Recipe, gen int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken {
		return false, errCacheDown
	}
	if gen != c.gen {
		return false, nil
	}
	c.recipes[r.ID] = r.Clone()
	return true, nil
}

func (c *fakeCache) GetRecipeList(context.Context) ([]*model.Recipe, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken {
		return nil, errCacheDown
	}
	if c.list == nil {
		return nil, cache.ErrCacheMiss
	}
	return c.list, nil
}

func (c *fakeCache) SetRecipeList(_ context.Context, recipes []*model.Recipe, gen int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken {
		return false, errCacheDown
	}
	if gen != c.gen {
		return false, nil
	}
	c.list = recipes
	return true, nil
}

func (c *fakeCache) InvalidateRecipe(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken {
		return errCacheDown
	}
	c.gen++
	c.list = nil
	delete(c.recipes, id)
	return nil
}

func (c *fakeCache) hasList() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list != nil
}

func (c *fakeCache) has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.recipes[id]
	return ok
}

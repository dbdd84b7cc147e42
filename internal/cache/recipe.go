package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/recetapp/recetapp/internal/model"
)

// Cache keys and TTLs.
const (
	recipeKeyPrefix = "recipe:"
	recipeListKey   = "recipes:all"
	generationKey   = "recipes:gen"

	// DefaultRecipeTTL bounds how long a cached recipe may be served.
	DefaultRecipeTTL = 10 * time.Minute
)

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// fillScript sets KEYS[2] only while KEYS[1] still holds the generation the
// reader saw. An absent counter is generation 0.
var fillScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

func recipeKey(id string) string {
	return recipeKeyPrefix + id
}

// Generation returns the current write generation. Callers read it before
// loading from the database and pass it to SetRecipe or SetRecipeList.
func (c *Cache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get failed: %w", err)
	}
	return gen, nil
}

// GetRecipe returns a cached recipe or ErrCacheMiss.
func (c *Cache) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	data, err := c.client.Get(ctx, recipeKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var recipe model.Recipe
	if err := json.Unmarshal(data, &recipe); err != nil {
		return nil, fmt.Errorf("decode cached recipe: %w", err)
	}
	return &recipe, nil
}

// SetRecipe caches recipe if no write happened since gen was read.
// It reports whether the entry was stored.
func (c *Cache) SetRecipe(ctx context.Context, recipe *model.Recipe, gen int64) (bool, error) {
	data, err := json.Marshal(recipe)
	if err != nil {
		return false, fmt.Errorf("encode recipe: %w", err)
	}
	return c.fill(ctx, recipeKey(recipe.ID), data, gen)
}

// GetRecipeList returns the cached full listing or ErrCacheMiss.
func (c *Cache) GetRecipeList(ctx context.Context) ([]*model.Recipe, error) {
	data, err := c.client.Get(ctx, recipeListKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var recipes []*model.Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		return nil, fmt.Errorf("decode cached recipe list: %w", err)
	}
	return recipes, nil
}

// SetRecipeList caches the full listing if no write happened since gen was read.
func (c *Cache) SetRecipeList(ctx context.Context, recipes []*model.Recipe, gen int64) (bool, error) {
	data, err := json.Marshal(recipes)
	if err != nil {
		return false, fmt.Errorf("encode recipe list: %w", err)
	}
	return c.fill(ctx, recipeListKey, data, gen)
}

func (c *Cache) fill(ctx context.Context, key string, data []byte, gen int64) (bool, error) {
	stored, err := fillScript.Run(ctx, c.client,
		[]string{generationKey, key},
		strconv.FormatInt(gen, 10), data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to cache %s: %w", key, err)
	}
	return stored == 1, nil
}

// InvalidateRecipe bumps the generation and drops the recipe entry and the
// listing in one transaction. An empty id only drops the listing.
func (c *Cache) InvalidateRecipe(ctx context.Context, id string) error {
	keys := []string{recipeListKey}
	if id != "" {
		keys = append(keys, recipeKey(id))
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate recipe: %w", err)
	}
	return nil
}

package cache

import (
	"testing"
	"time"
)

func TestRecipeKey(t *testing.T) {
	t.Parallel()

	if got := recipeKey("01HX"); got != "recipe:01HX" {
		t.Errorf("recipeKey() = %q", got)
	}
	if recipeKey("a") == recipeListKey {
		t.Error("recipe keys must not collide with the list key")
	}
}

func TestNewCache_DefaultTTL(t *testing.T) {
	t.Parallel()

	if c := newCache(nil, 0); c.ttl != DefaultRecipeTTL {
		t.Errorf("ttl = %s, want %s", c.ttl, DefaultRecipeTTL)
	}
	if c := newCache(nil, time.Minute); c.ttl != time.Minute {
		t.Errorf("ttl = %s, want 1m", c.ttl)
	}
}

func TestGenerationKeyIsSeparate(t *testing.T) {
	t.Parallel()

	if generationKey == recipeListKey || generationKey == recipeKey("gen") {
		t.Error("the generation counter must not share a key with cached data")
	}
}

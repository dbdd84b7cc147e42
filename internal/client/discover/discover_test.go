package discover

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRandom(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/random", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("number"))
		assert.Equal(t, "secret", r.URL.Query().Get("apiKey"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"recipes":[{
			"id": 715538,
			"title": "Bruschetta",
			"image": "https://img.example/715538.jpg",
			"readyInMinutes": 35,
			"servings": 4,
			"extendedIngredients": [{"original": "2 tomates"}, {"original": "pan"}]
		}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), quietLogger(), srv.URL+"/", "secret")
	recipes, err := c.Random(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, recipes, 1)

	r := recipes[0]
	assert.Equal(t, 715538, r.ID)
	assert.Equal(t, "Bruschetta", r.Title)
	assert.Equal(t, 35, r.ReadyInMinutes)
	require.Len(t, r.ExtendedIngredients, 2)
	assert.Equal(t, "2 tomates", r.ExtendedIngredients[0].Original)
}

func TestRandom_DefaultsAndClampsCount(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.URL.Query().Get("number"))
		_, _ = io.WriteString(w, `{"recipes":[]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), quietLogger(), srv.URL, "k")
	for _, n := range []int{0, -5, 500} {
		recipes, err := c.Random(context.Background(), n)
		require.NoError(t, err)
		assert.NotNil(t, recipes)
	}
	assert.Equal(t, []string{"10", "10", "100"}, got)
}

func TestRandom_NoRetryOnError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), quietLogger(), srv.URL, "k")
	_, err := c.Random(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "402")
	assert.Equal(t, int32(1), calls.Load())
}

func TestRandom_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"recipes":`)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), quietLogger(), srv.URL, "k")
	_, err := c.Random(context.Background(), 1)
	assert.Error(t, err)
}

func TestRandom_RequiresKey(t *testing.T) {
	c := NewClient(nil, quietLogger(), "", "")
	_, err := c.Random(context.Background(), 1)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

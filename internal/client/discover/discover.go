// Package discover fetches public recipes from the Spoonacular API.
// Requests are made once; there is no retry and no caching.
package discover

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the public Spoonacular endpoint.
	DefaultBaseURL = "https://api.spoonacular.com"
	// DefaultCount is how many random recipes a call returns by default.
	DefaultCount = 10
	// maxCount is the upper bound Spoonacular accepts for number.
	maxCount = 100
)

// ErrMissingAPIKey is returned when no Spoonacular key is configured.
var ErrMissingAPIKey = errors.New("falta la clave de la API de Spoonacular")

// Ingredient is one line of a public recipe's ingredient list.
type Ingredient struct {
	Original string `json:"original"`
}

// Recipe is a public recipe as returned by Spoonacular.
type Recipe struct {
	ID                  int          `json:"id"`
	Title               string       `json:"title"`
	Image               string       `json:"image"`
	ReadyInMinutes      int          `json:"readyInMinutes"`
	Servings            int          `json:"servings"`
	SourceURL           string       `json:"sourceUrl"`
	Instructions        string       `json:"instructions"`
	ExtendedIngredients []Ingredient `json:"extendedIngredients"`
}

// Client calls the random-recipes endpoint.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	apiKey     string
}

// NewClient creates a Client. An empty baseURL uses DefaultBaseURL.
func NewClient(httpClient *http.Client, logger *slog.Logger, baseURL, apiKey string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// Random returns count random public recipes.
func (c *Client) Random(ctx context.Context, count int) ([]Recipe, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if count <= 0 {
		count = DefaultCount
	}
	if count > maxCount {
		count = maxCount
	}

	reqURL, err := url.Parse(c.baseURL + "/recipes/random")
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	q := reqURL.Query()
	q.Set("number", strconv.Itoa(count))
	q.Set("apiKey", c.apiKey)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL carries the key, so only the cause is logged.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		c.logger.Error("spoonacular_request_failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("spoonacular request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("spoonacular_bad_status", slog.Int("http_status", resp.StatusCode))
		return nil, fmt.Errorf("spoonacular returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var result struct {
		Recipes []Recipe `json:"recipes"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Error("spoonacular_decode_failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if result.Recipes == nil {
		result.Recipes = []Recipe{}
	}
	return result.Recipes, nil
}

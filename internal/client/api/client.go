// Package api is a typed HTTP client for the RecetApp backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/recetapp/recetapp/internal/handler/dto"
	"github.com/recetapp/recetapp/internal/model"
)

// DefaultTimeout bounds every request made with the default HTTP client.
const DefaultTimeout = 15 * time.Second

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.Status)
	}
	return e.Message
}

// IsStatus reports whether err is an *Error with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client calls the backend. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a Client for the server at baseURL. A nil httpClient gets a
// default with DefaultTimeout.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: u, httpClient: httpClient}, nil
}

// SetToken sets the bearer token attached to recipe requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// ImageURL resolves a recipe's imagen path against the server.
func (c *Client) ImageURL(path string) string {
	if path == "" {
		return ""
	}
	return c.baseURL.String() + path
}

// Register creates an account and returns its token and public user.
func (c *Client) Register(ctx context.Context, email, password string) (*dto.RegisterResponse, error) {
	var out dto.RegisterResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", dto.CredentialsRequest{Email: email, Password: password}, false, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out dto.LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", dto.CredentialsRequest{Email: email, Password: password}, false, &out)
	if err != nil {
		return "", err
	}
	return out.Token, nil
}

// RemoveEmail clears the email of an account.
func (c *Client) RemoveEmail(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/users/remove-email", dto.RemoveEmailRequest{Email: email}, false, nil)
}

// ListRecipes returns every recipe, newest first.
func (c *Client) ListRecipes(ctx context.Context) ([]model.Recipe, error) {
	out := []model.Recipe{}
	if err := c.doJSON(ctx, http.MethodGet, "/api/recipes", nil, true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRecipe returns one recipe.
func (c *Client) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	var out model.Recipe
	if err := c.doJSON(ctx, http.MethodGet, "/api/recipes/"+url.PathEscape(id), nil, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRecipe uploads a new recipe.
func (c *Client) CreateRecipe(ctx context.Context, form RecipeForm) (*model.Recipe, error) {
	var out dto.RecipeCreatedResponse
	if err := c.doForm(ctx, http.MethodPost, "/api/recipes", form, &out); err != nil {
		return nil, err
	}
	return out.Recipe, nil
}

// UpdateRecipe sends only the fields set in form.
func (c *Client) UpdateRecipe(ctx context.Context, id string, form RecipeForm) (*model.Recipe, error) {
	var out dto.RecipeUpdatedResponse
	if err := c.doForm(ctx, http.MethodPut, "/api/recipes/"+url.PathEscape(id), form, &out); err != nil {
		return nil, err
	}
	return out.Recipe, nil
}

// DeleteRecipe removes a recipe. The server reports success for unknown ids.
func (c *Client) DeleteRecipe(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/recipes/"+url.PathEscape(id), nil, true, nil)
}

// RecipeForm is a create or update request. Nil members are not sent.
// For Ingredientes and Pasos, nil means "not sent" while an empty non-nil
// slice sends an empty list.
type RecipeForm struct {
	Nombre       *string
	Descripcion  *string
	Comensales   *int
	Tiempo       *string
	Ingredientes []string
	Pasos        []string
	Image        *Image
}

// Image is a file attached to a RecipeForm.
type Image struct {
	Filename string
	Data     io.Reader
}

func (f RecipeForm) encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := []struct {
		name string
		val  *string
	}{
		{"nombre", f.Nombre},
		{"descripcion", f.Descripcion},
		{"tiempo", f.Tiempo},
	}
	for _, fld := range fields {
		if fld.val == nil {
			continue
		}
		if err := mw.WriteField(fld.name, *fld.val); err != nil {
			return nil, "", err
		}
	}
	if f.Comensales != nil {
		if err := mw.WriteField("comensales", strconv.Itoa(*f.Comensales)); err != nil {
			return nil, "", err
		}
	}

	lists := []struct {
		name string
		val  []string
	}{
		{"ingredientes", f.Ingredientes},
		{"pasos", f.Pasos},
	}
	for _, l := range lists {
		if l.val == nil {
			continue
		}
		raw, err := json.Marshal(l.val)
		if err != nil {
			return nil, "", err
		}
		if err := mw.WriteField(l.name, string(raw)); err != nil {
			return nil, "", err
		}
	}

	if f.Image != nil {
		fw, err := mw.CreateFormFile("imagen", f.Image.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(fw, f.Image.Data); err != nil {
			return nil, "", fmt.Errorf("read image: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, authed bool, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, body, authed)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) doForm(ctx context.Context, method, path string, form RecipeForm, out any) error {
	body, contentType, err := form.encode()
	if err != nil {
		return fmt.Errorf("encode form: %w", err)
	}

	req, err := c.newRequest(ctx, method, path, body, true)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, authed bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if authed {
		if token := c.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil {
		var body dto.ErrorResponse
		if json.Unmarshal(raw, &body) == nil {
			apiErr.Code = body.Code
			apiErr.Message = body.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// Package remote talks to the category store service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hammamikhairi/parlons/internal/domain"
	"github.com/hammamikhairi/parlons/internal/logger"
)

// Compile-time interface check.
var _ domain.CategoryStore = (*Client)(nil)

// Option configures the client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// Client is a domain.CategoryStore backed by the HTTP service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a client for the service at baseURL, e.g.
// "http://localhost:3001".
func New(baseURL string, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type saveRequest struct {
	CategoryID string            `json:"categoryId"`
	Questions  []domain.Question `json:"questions"`
}

type renameRequest struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
}

type updateResponse struct {
	Success    bool              `json:"success"`
	Categories []domain.Category `json:"categories"`
}

// Categories fetches every category.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var cats []domain.Category
	if err := c.do(ctx, http.MethodGet, "/api/data", nil, &cats); err != nil {
		return nil, err
	}
	c.log.Debug("remote: fetched %d categories", len(cats))
	return cats, nil
}

// ReplaceQuestions replaces one category's questions on the server.
func (c *Client) ReplaceQuestions(ctx context.Context, categoryID string, questions []domain.Question) ([]domain.Category, error) {
	if questions == nil {
		questions = []domain.Question{}
	}
	var resp updateResponse
	if err := c.do(ctx, http.MethodPost, "/api/save", saveRequest{categoryID, questions}, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

// Rename renames a category on the server.
func (c *Client) Rename(ctx context.Context, categoryID, name string) ([]domain.Category, error) {
	var resp updateResponse
	if err := c.do(ctx, http.MethodPost, "/api/rename", renameRequest{categoryID, name}, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

// do sends body as JSON (when non-nil) and decodes a 2xx reply into out.
// 404 maps to domain.ErrNotFound.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: server returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// Package api is a client for the remote todo HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/devhell/todo/internal/model"
)

const (
	// DefaultBaseURL is the remote todo service.
	DefaultBaseURL = "https://candidate.neversitup.com"

	authPath  = "/todo/users/auth"
	todosPath = "/todo/todos/"
)

// HeaderSource supplies the headers of authenticated calls.
// *session.Session implements it.
type HeaderSource interface {
	Headers() http.Header
}

// Client talks to the todo API. Every method is a single request;
// there are no retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    HeaderSource
	log        *slog.Logger
	timeout    time.Duration
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the underlying HTTP client. It is never modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each call. Zero keeps the timeout of the HTTP
// client, which is none by default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient returns a client that authenticates calls with headers.
func NewClient(headers HeaderSource, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
		headers:    headers,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// Authenticate exchanges credentials for a token.
func (c *Client) Authenticate(ctx context.Context, creds model.Credentials) (string, error) {
	var resp model.TokenResponse
	if err := c.doJSON(ctx, http.MethodPost, authPath, creds, &resp, false, nil); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// ListTodos returns every item in server order.
func (c *Client) ListTodos(ctx context.Context) ([]model.Todo, error) {
	var items []model.Todo
	if err := c.doJSON(ctx, http.MethodGet, todosPath, nil, &items, true, nil); err != nil {
		return nil, err
	}
	return items, nil
}

// GetTodo returns the item with id.
func (c *Client) GetTodo(ctx context.Context, id string) (model.Todo, error) {
	var item model.Todo
	if err := c.doJSON(ctx, http.MethodGet, itemPath(id), nil, &item, true, nil); err != nil {
		return model.Todo{}, err
	}
	return item, nil
}

// CreateTodo creates an item. Only 200 and 204 count as success.
func (c *Client) CreateTodo(ctx context.Context, in model.TodoInput) (model.Todo, error) {
	var item model.Todo
	if err := c.doJSON(ctx, http.MethodPost, todosPath, in, &item, true, mutationOK); err != nil {
		return model.Todo{}, err
	}
	return item, nil
}

// UpdateTodo replaces title and description of id. Only 200 and 204 count as success.
func (c *Client) UpdateTodo(ctx context.Context, id string, in model.TodoInput) (model.Todo, error) {
	var item model.Todo
	if err := c.doJSON(ctx, http.MethodPut, itemPath(id), in, &item, true, mutationOK); err != nil {
		return model.Todo{}, err
	}
	return item, nil
}

// DeleteTodo removes id. Only 200 and 204 count as success.
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, itemPath(id), nil, nil, true, mutationOK)
}

var mutationOK = []int{http.StatusOK, http.StatusNoContent}

func itemPath(id string) string {
	return todosPath + url.PathEscape(id)
}

// doJSON sends body as JSON and decodes the response into out.
// accept lists the success statuses; nil means any 2xx.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any, auth bool, accept []int) error {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if auth && c.headers != nil {
		for k, v := range c.headers.Headers() {
			req.Header[k] = v
		}
	} else {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("api request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.log.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "latency", time.Since(start))

	if !accepted(resp.StatusCode, accept) {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: %w", method, path, newStatusError(resp.StatusCode, b))
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func accepted(code int, accept []int) bool {
	if accept == nil {
		return code >= 200 && code < 300
	}
	return slices.Contains(accept, code)
}

// Package riskapi is the typed client of the fraud-detection backend. Each
// method maps one-to-one to an HTTP verb and path; bodies are decoded from
// the backend envelopes and otherwise passed through untouched.
package riskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"fraud-dashboard/internal/models"
	"fraud-dashboard/internal/resilience"
)

// ErrNotFound is returned when a detail request resolved without data.
var ErrNotFound = eris.New("riskapi: not found")

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string // server-provided message, may be empty
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("riskapi: status %d", e.StatusCode)
	}
	return fmt.Sprintf("riskapi: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err means the requested record does not exist,
// either as a 404 or as an empty detail body.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// ServerMessage returns the message the backend attached to err, or "".
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// Client talks to the backend REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sends a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// New creates a Client for the backend rooted at baseURL, e.g.
// "http://localhost:8080/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// Ping checks that the backend answers. Client errors such as 401 still
// count as up; server errors, timeouts and 429 count as down.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/companies", url.Values{"size": {"1"}}, nil, "")
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "riskapi: ping")
	}
	defer resp.Body.Close()
	if resilience.IsTransientStatus(resp.StatusCode) {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return eris.Wrap(statusError(resp.StatusCode, body), "riskapi: ping")
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, eris.Wrapf(err, "riskapi: create %s %s request", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// send executes req and returns the body of a 2xx response.
func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "riskapi: %s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "riskapi: read response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, body)
	}
	return body, nil
}

func statusError(code int, body []byte) error {
	apiErr := &APIError{StatusCode: code, Message: errorMessage(body)}
	if resilience.IsTransientStatus(code) {
		return resilience.Transient(apiErr, code)
	}
	return apiErr
}

// errorMessage extracts "message" or "error" from a JSON error body.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return eris.Wrap(err, "riskapi: marshal request body")
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}
	raw, err := c.send(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := decodeInto(raw, out); err != nil {
		return eris.Wrapf(err, "riskapi: decode %s %s", method, path)
	}
	return nil
}

// decodeInto unmarshals raw into out. An empty body leaves out untouched.
func decodeInto(raw []byte, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// ── Envelopes ──────────────────────────────────────────────────

func getPage[T any](ctx context.Context, c *Client, path string, query url.Values) (*models.Page[T], error) {
	var page models.Page[T]
	if err := c.doJSON(ctx, http.MethodGet, path, query, nil, &page); err != nil {
		return nil, err
	}
	if page.Content == nil {
		page.Content = []T{}
	}
	return &page, nil
}

func getDetail[T any](ctx context.Context, c *Client, path string) (*T, error) {
	var d models.Detail[T]
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &d); err != nil {
		return nil, err
	}
	if d.Data == nil {
		return nil, eris.Wrap(ErrNotFound, path)
	}
	return d.Data, nil
}

// mutate sends a mutation and decodes the detail body. The result is nil
// when the backend answered without data.
func mutate[T any](ctx context.Context, c *Client, method, path string, in any) (*T, error) {
	var d models.Detail[T]
	if err := c.doJSON(ctx, method, path, nil, in, &d); err != nil {
		return nil, err
	}
	return d.Data, nil
}

func (c *Client) remove(ctx context.Context, path string) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

func pageQuery(page, size int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if size > 0 {
		q.Set("size", fmt.Sprint(size))
	}
	return q
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func seg(id string) string { return url.PathEscape(id) }

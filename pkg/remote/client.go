package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/aurelia-jewels/aurelia-backend/pkg/errors"
)

const (
	defaultBaseURL             = "http://localhost:5000"
	errorBodyReadLimit   int64 = 1024
	defaultClientTimeout       = 5 * time.Second
)

// Client talks to the upstream mock collection API. Every call is
// best-effort from the caller's point of view: services treat a
// CodeDependency result as a signal to fall back to the local store.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient builds an upstream client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultClientTimeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client
}

// Record is an untyped upstream document. Normalization into canonical
// types happens at the service boundary, not here.
type Record = map[string]any

// List fetches a collection, optionally filtered by query parameters.
func (c *Client) List(ctx context.Context, collection string, query url.Values) ([]Record, error) {
	raw, err := c.do(ctx, http.MethodGet, c.collectionURL(collection, "", query), nil)
	if err != nil {
		return nil, err
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		// Some mock deployments wrap collections in an object envelope.
		var envelope map[string][]Record
		if err2 := json.Unmarshal(raw, &envelope); err2 == nil {
			if inner, ok := envelope[collection]; ok {
				return inner, nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode collection response")
	}
	return records, nil
}

// GetByID fetches a single document.
func (c *Client) GetByID(ctx context.Context, collection, id string) (Record, error) {
	raw, err := c.do(ctx, http.MethodGet, c.collectionURL(collection, id, nil), nil)
	if err != nil {
		return nil, err
	}

	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode document response")
	}
	return record, nil
}

// Create posts a new document into a collection.
func (c *Client) Create(ctx context.Context, collection string, body any) (Record, error) {
	return c.write(ctx, http.MethodPost, c.collectionURL(collection, "", nil), body)
}

// Replace overwrites a document in place.
func (c *Client) Replace(ctx context.Context, collection, id string, body any) (Record, error) {
	return c.write(ctx, http.MethodPut, c.collectionURL(collection, id, nil), body)
}

// Patch applies a partial update to a document.
func (c *Client) Patch(ctx context.Context, collection, id string, body any) (Record, error) {
	return c.write(ctx, http.MethodPatch, c.collectionURL(collection, id, nil), body)
}

// Delete removes a document.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	_, err := c.do(ctx, http.MethodDelete, c.collectionURL(collection, id, nil), nil)
	return err
}

func (c *Client) write(ctx context.Context, method, target string, body any) (Record, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal upstream payload")
	}

	raw, err := c.do(ctx, method, target, payload)
	if err != nil {
		return nil, err
	}

	var record Record
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode upstream response")
		}
	}
	return record, nil
}

func (c *Client) do(ctx context.Context, method, target string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build upstream request")
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute upstream request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, pkgerrors.Wrap(
			pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"upstream request failed",
		)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read upstream response")
	}
	return raw, nil
}

// Ping verifies the upstream is reachable. Used by the readiness probe;
// a failure is reported but never fails the service itself.
func (c *Client) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

func (c *Client) collectionURL(collection, id string, query url.Values) string {
	base := strings.TrimRight(c.baseURL, "/")
	path := url.PathEscape(strings.TrimLeft(collection, "/"))
	target := fmt.Sprintf("%s/%s", base, path)
	if id != "" {
		target = fmt.Sprintf("%s/%s", target, url.PathEscape(id))
	}
	if len(query) > 0 {
		target = fmt.Sprintf("%s?%s", target, query.Encode())
	}
	return target
}

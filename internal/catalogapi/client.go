package catalogapi

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

	"github.com/five82/bookshelf/internal/catalog"
	"github.com/five82/bookshelf/internal/fetch"
	"github.com/five82/bookshelf/internal/record"
)

// Ensure Client implements catalog.Source at compile time.
var _ catalog.Source = (*Client)(nil)

var (
	// ErrNotFound is returned when the API answers 404 for a single record.
	ErrNotFound = errors.New("record not found")
	// ErrMalformedResponse wraps every body that could not be decoded.
	ErrMalformedResponse = catalog.ErrMalformedResponse
)

// StatusError reports a non-success HTTP status.
type StatusError struct {
	Path   string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
}

// Client talks to the catalog HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAPIBind   = "127.0.0.1:5000"
	defaultUserAgent = "bookshelf/0.1"
	// DefaultTimeout bounds every request when no timeout is configured.
	DefaultTimeout = 5 * time.Second

	requestIDHeader = "X-Request-ID"
)

// Option adjusts a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient builds a Client using the provided apiBind host:port value.
func NewClient(apiBind string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: DefaultTimeout,
		},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the resolved API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchRecords retrieves the primary collection matching params. Blank
// parameter values are not sent.
func (c *Client) FetchRecords(ctx context.Context, params record.Params) (record.Collection, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	rel := &url.URL{Path: "/api/books", RawQuery: params.Values().Encode()}
	body, err := c.doURL(ctx, http.MethodGet, rel, nil)
	if err != nil {
		return nil, err
	}
	return decodeCollection(body)
}

// FetchLookup retrieves one auxiliary lookup table by name.
func (c *Client) FetchLookup(ctx context.Context, table string) (record.Collection, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, fmt.Errorf("lookup table name required")
	}
	body, err := c.do(ctx, http.MethodGet, "/api/lookup/"+url.PathEscape(table), nil)
	if err != nil {
		return nil, err
	}
	return decodeCollection(body)
}

// FetchRecord retrieves a single record by id.
func (c *Client) FetchRecord(ctx context.Context, id string) (record.Record, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("record id required")
	}
	body, err := c.do(ctx, http.MethodGet, "/api/book/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

// SaveRecord writes rec back to the API. A record with an id under idField
// is updated in place; one without is created. The stored record is returned.
func (c *Client) SaveRecord(ctx context.Context, idField string, rec record.Record) (record.Record, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	method, path := http.MethodPost, "/api/book"
	if id := rec.ID(idField); id != "" {
		method, path = http.MethodPut, "/api/book/"+url.PathEscape(id)
	}
	body, err := c.do(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, payload)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, payload []byte) ([]byte, error) {
	reqURL := c.baseURL.ResolveReference(rel)
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := fetch.RequestID(ctx); id != "" {
		req.Header.Set(requestIDHeader, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound && strings.HasPrefix(rel.Path, "/api/book/") {
		return nil, fmt.Errorf("api %s: %w", rel.Path, ErrNotFound)
	}
	if resp.StatusCode >= 400 {
		return nil, &StatusError{Path: rel.String(), Status: resp.StatusCode}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

func decodeCollection(body []byte) (record.Collection, error) {
	items, err := record.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w: %w", ErrMalformedResponse, err)
	}
	return items, nil
}

func decodeRecord(body []byte) (record.Record, error) {
	rec, err := record.DecodeRecord(body)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w: %w", ErrMalformedResponse, err)
	}
	return rec, nil
}

func parseBaseURL(apiBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBind)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_bind %q: %w", apiBind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

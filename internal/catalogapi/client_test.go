package catalogapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/five82/bookshelf/internal/catalog"
	"github.com/five82/bookshelf/internal/fetch"
	"github.com/five82/bookshelf/internal/record"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}
	if u.Host != defaultAPIBind {
		t.Fatalf("host = %q, want %q", u.Host, defaultAPIBind)
	}

	u, err = parseBaseURL("http://example.com:1234/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestNewClient_Timeout(t *testing.T) {
	c, err := NewClient("", WithTimeout(250*time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if c.http.Timeout != 250*time.Millisecond {
		t.Fatalf("timeout = %v, want 250ms", c.http.Timeout)
	}

	c, err = NewClient("", WithTimeout(0))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if c.http.Timeout != DefaultTimeout {
		t.Fatalf("timeout = %v, want %v", c.http.Timeout, DefaultTimeout)
	}
}

func TestClient_FetchesEndpointsAndEncodesQueries(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	var gotLookupPath string
	var gotUserAgent string
	var gotRequestID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.URL.Path == "/api/books":
			gotQuery = r.URL.Query()
			_, _ = io.WriteString(w, `[{"ID": 1, "Title": "Dune", "Price": 9.5}]`)
		case r.URL.Path == "/api/lookup/Categories":
			gotLookupPath = r.URL.Path
			_, _ = io.WriteString(w, `[{"ID": 2, "Category": "Fiction"}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	items, err := c.FetchRecords(fetch.WithRequestID(ctx, "req-1"), record.Params{"Author": "Herbert", "Category": ""})
	if err != nil {
		t.Fatalf("FetchRecords returned error: %v", err)
	}
	if len(items) != 1 || items[0]["Title"] != "Dune" || items[0]["ID"] != int64(1) {
		t.Fatalf("FetchRecords payload = %#v, want one Dune record", items)
	}
	if gotQuery.Get("Author") != "Herbert" {
		t.Fatalf("Author query = %q, want Herbert", gotQuery.Get("Author"))
	}
	if gotQuery.Has("Category") {
		t.Fatalf("blank Category should not be sent: %v", gotQuery)
	}
	if gotRequestID != "req-1" {
		t.Fatalf("X-Request-ID = %q, want req-1", gotRequestID)
	}
	if gotUserAgent != defaultUserAgent {
		t.Fatalf("User-Agent = %q, want %q", gotUserAgent, defaultUserAgent)
	}

	lookup, err := c.FetchLookup(ctx, "Categories")
	if err != nil {
		t.Fatalf("FetchLookup returned error: %v", err)
	}
	if gotLookupPath != "/api/lookup/Categories" {
		t.Fatalf("lookup path = %q", gotLookupPath)
	}
	if len(lookup) != 1 || lookup[0]["Category"] != "Fiction" {
		t.Fatalf("FetchLookup payload = %#v", lookup)
	}
	if gotRequestID != "" {
		t.Fatalf("X-Request-ID = %q, want none without a request id", gotRequestID)
	}
}

func TestClient_EmptyBodyIsEmptyCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/lookup/Formats" {
			_, _ = io.WriteString(w, "null")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	items, err := c.FetchRecords(context.Background(), nil)
	if err != nil {
		t.Fatalf("FetchRecords returned error: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("FetchRecords = %#v, want empty non-nil collection", items)
	}
	items, err = c.FetchLookup(context.Background(), "Formats")
	if err != nil {
		t.Fatalf("FetchLookup returned error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("FetchLookup = %#v, want empty", items)
	}
}

func TestClient_MalformedBodyWrapsSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>oops</html>`)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.FetchRecords(context.Background(), nil)
	if !errors.Is(err, catalog.ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestClient_StatusErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/books":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchRecords(context.Background(), nil)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusInternalServerError {
		t.Fatalf("err = %v, want StatusError 500", err)
	}
	if errors.Is(err, catalog.ErrMalformedResponse) {
		t.Fatalf("status failure must not be reported as malformed")
	}

	_, err = c.FetchRecord(context.Background(), "9")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestClient_SaveRecordChoosesMethod(t *testing.T) {
	t.Parallel()

	type call struct {
		method string
		path   string
		body   map[string]any
	}
	var calls []call

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		calls = append(calls, call{method: r.Method, path: r.URL.Path, body: body})
		if r.Header.Get("Content-Type") != "application/json" {
			http.Error(w, "content type", http.StatusBadRequest)
			return
		}
		if _, ok := body["ID"]; !ok {
			body["ID"] = 10
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	saved, err := c.SaveRecord(context.Background(), "ID", record.Record{"ID": int64(4), "Title": "Emma"})
	if err != nil {
		t.Fatalf("SaveRecord update returned error: %v", err)
	}
	if saved["Title"] != "Emma" {
		t.Fatalf("saved = %#v", saved)
	}

	created, err := c.SaveRecord(context.Background(), "ID", record.Record{"Title": "Persuasion"})
	if err != nil {
		t.Fatalf("SaveRecord create returned error: %v", err)
	}
	if created["ID"] != int64(10) {
		t.Fatalf("created ID = %#v, want 10", created["ID"])
	}

	if len(calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(calls))
	}
	if calls[0].method != http.MethodPut || calls[0].path != "/api/book/4" {
		t.Fatalf("update call = %s %s, want PUT /api/book/4", calls[0].method, calls[0].path)
	}
	if calls[1].method != http.MethodPost || calls[1].path != "/api/book" {
		t.Fatalf("create call = %s %s, want POST /api/book", calls[1].method, calls[1].path)
	}
}

func TestClient_FetchRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/book/7" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, `{"ID": 7, "Title": "Ulysses"}`)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	rec, err := c.FetchRecord(context.Background(), "7")
	if err != nil {
		t.Fatalf("FetchRecord returned error: %v", err)
	}
	if rec.ID("ID") != "7" || rec["Title"] != "Ulysses" {
		t.Fatalf("FetchRecord = %#v", rec)
	}
	if _, err := c.FetchRecord(context.Background(), " "); err == nil {
		t.Fatalf("expected error for blank id")
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.FetchRecords(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

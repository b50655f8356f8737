package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/five82/bookshelf/internal/catalog"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{envAPIBind, envLogLevel, envLogFile} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != defaultAPIBind {
		t.Fatalf("APIBind = %q, want %q", cfg.APIBind, defaultAPIBind)
	}
	if cfg.RequestTimeout != defaultRequestTimeout {
		t.Fatalf("RequestTimeout = %v, want %v", cfg.RequestTimeout, defaultRequestTimeout)
	}
	if cfg.DefaultSort != "Title" {
		t.Fatalf("DefaultSort = %q, want Title", cfg.DefaultSort)
	}
	if cfg.IDField != "ID" {
		t.Fatalf("IDField = %q, want ID", cfg.IDField)
	}
	if !reflect.DeepEqual(cfg.Columns, defaultColumns) {
		t.Fatalf("Columns = %v, want %v", cfg.Columns, defaultColumns)
	}
	if !reflect.DeepEqual(cfg.Lookups, catalog.DefaultLookupTables()) {
		t.Fatalf("Lookups = %v, want defaults", cfg.Lookups)
	}

	wantLogFile, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLogFile {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLogFile)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_bind = "  10.0.0.5:9999  "
request_timeout = "750ms"
refresh_interval = "30s"
default_sort = " Author "
id_field = "BookID"
sort_locale = "sv"
columns = [" Title ", "", "Price"]
log_level = "debug"
log_file = "  ~/logs/shelf.log  "

[[lookup]]
name = " Shelves "
sort = "Label"
fields = ["ID", "Label"]
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != "10.0.0.5:9999" {
		t.Fatalf("APIBind = %q, want %q", cfg.APIBind, "10.0.0.5:9999")
	}
	if cfg.RequestTimeout != 750*time.Millisecond {
		t.Fatalf("RequestTimeout = %v, want 750ms", cfg.RequestTimeout)
	}
	if cfg.RefreshInterval != 30*time.Second {
		t.Fatalf("RefreshInterval = %v, want 30s", cfg.RefreshInterval)
	}
	if cfg.DefaultSort != "Author" || cfg.IDField != "BookID" || cfg.SortLocale != "sv" {
		t.Fatalf("sort settings = %q/%q/%q", cfg.DefaultSort, cfg.IDField, cfg.SortLocale)
	}
	if !reflect.DeepEqual(cfg.Columns, []string{"Title", "Price"}) {
		t.Fatalf("Columns = %v, want [Title Price]", cfg.Columns)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	want := []catalog.LookupTable{{Name: "Shelves", Sort: "Label", Fields: []string{"ID", "Label"}}}
	if !reflect.DeepEqual(cfg.Lookups, want) {
		t.Fatalf("Lookups = %#v, want %#v", cfg.Lookups, want)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_bind = "   "
request_timeout = ""
default_sort = ""
columns = []
log_file = ""
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != defaultAPIBind {
		t.Fatalf("APIBind = %q, want %q", cfg.APIBind, defaultAPIBind)
	}
	if cfg.RequestTimeout != defaultRequestTimeout {
		t.Fatalf("RequestTimeout = %v, want %v", cfg.RequestTimeout, defaultRequestTimeout)
	}
	if cfg.DefaultSort != defaultSort {
		t.Fatalf("DefaultSort = %q, want %q", cfg.DefaultSort, defaultSort)
	}
	if len(cfg.Columns) != len(defaultColumns) {
		t.Fatalf("Columns = %v, want defaults", cfg.Columns)
	}
	wantLogFile, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLogFile {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLogFile)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(envAPIBind, "192.168.1.9:8000")
	t.Setenv(envLogLevel, "warn")
	t.Setenv(envLogFile, "~/other.log")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_bind = "10.0.0.5:9999"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != "192.168.1.9:8000" {
		t.Fatalf("APIBind = %q, want env override", cfg.APIBind)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.LogFile != filepath.Join(home, "other.log") {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, filepath.Join(home, "other.log"))
	}

	cfg, err = Load(filepath.Join(home, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != "192.168.1.9:8000" {
		t.Fatalf("APIBind = %q, want env override without a file", cfg.APIBind)
	}
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	clearEnv(t)
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{name: "syntax", content: `api_bind = [`, want: "parse config"},
		{name: "timeout", content: `request_timeout = "soon"`, want: "request_timeout"},
		{name: "negative timeout", content: `request_timeout = "-1s"`, want: "must be positive"},
		{name: "negative refresh", content: `refresh_interval = "-5s"`, want: "must not be negative"},
		{name: "lookup name", content: "[[lookup]]\nsort = \"X\"\n", want: "name is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o600); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatalf("Load returned nil error, want %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Load error = %q, want it to mention %q", err.Error(), tc.want)
			}
		})
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/bookshelf/internal/catalog"
)

// Config captures everything bookshelf reads from its config file.
type Config struct {
	APIBind        string
	RequestTimeout time.Duration

	// RefreshInterval re-syncs the browser periodically; zero disables it.
	RefreshInterval time.Duration
	DefaultSort     string
	IDField         string
	SortLocale      string
	Columns         []string
	LogLevel        string
	LogFile         string
	Lookups         []catalog.LookupTable
}

const (
	defaultConfigPath     = "~/.config/bookshelf/config.toml"
	defaultLogFile        = "~/.local/state/bookshelf/bookshelf.log"
	defaultAPIBind        = "127.0.0.1:5000"
	defaultRequestTimeout = 5 * time.Second
	defaultSort           = catalog.DefaultSortKey
	defaultIDField        = "ID"
	defaultLogLevel       = "info"

	envAPIBind  = "BOOKSHELF_API_BIND"
	envLogLevel = "BOOKSHELF_LOG_LEVEL"
	envLogFile  = "BOOKSHELF_LOG_FILE"
)

var defaultColumns = []string{"Title", "Author", "Category", "Publisher", "Format"}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBind:        defaultAPIBind,
		RequestTimeout: defaultRequestTimeout,
		DefaultSort:    defaultSort,
		IDField:        defaultIDField,
		Columns:        append([]string(nil), defaultColumns...),
		LogLevel:       defaultLogLevel,
		LogFile:        mustExpand(defaultLogFile),
		Lookups:        catalog.DefaultLookupTables(),
	}
}

// Load locates and parses the bookshelf config, falling back to defaults when
// missing. Environment overrides are applied last.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBind        string                `toml:"api_bind"`
		RequestTimeout string                `toml:"request_timeout"`
		Refresh        string                `toml:"refresh_interval"`
		DefaultSort    string                `toml:"default_sort"`
		IDField        string                `toml:"id_field"`
		SortLocale     string                `toml:"sort_locale"`
		Columns        []string              `toml:"columns"`
		LogLevel       string                `toml:"log_level"`
		LogFile        string                `toml:"log_file"`
		Lookups        []catalog.LookupTable `toml:"lookup"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.APIBind = orDefault(raw.APIBind, defaultAPIBind)
	cfg.DefaultSort = orDefault(raw.DefaultSort, defaultSort)
	cfg.IDField = orDefault(raw.IDField, defaultIDField)
	cfg.SortLocale = strings.TrimSpace(raw.SortLocale)
	cfg.LogLevel = orDefault(raw.LogLevel, defaultLogLevel)
	cfg.LogFile = mustExpand(orDefault(raw.LogFile, defaultLogFile))

	if timeout := strings.TrimSpace(raw.RequestTimeout); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse request_timeout %q: %w", timeout, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("request_timeout must be positive, got %s", d)
		}
		cfg.RequestTimeout = d
	}

	if refresh := strings.TrimSpace(raw.Refresh); refresh != "" {
		d, err := time.ParseDuration(refresh)
		if err != nil {
			return Config{}, fmt.Errorf("parse refresh_interval %q: %w", refresh, err)
		}
		if d < 0 {
			return Config{}, fmt.Errorf("refresh_interval must not be negative, got %s", d)
		}
		cfg.RefreshInterval = d
	}

	if columns := trimAll(raw.Columns); len(columns) > 0 {
		cfg.Columns = columns
	}

	if len(raw.Lookups) > 0 {
		tables := make([]catalog.LookupTable, 0, len(raw.Lookups))
		for i, t := range raw.Lookups {
			t.Name = strings.TrimSpace(t.Name)
			t.Sort = strings.TrimSpace(t.Sort)
			t.Fields = trimAll(t.Fields)
			if t.Name == "" {
				return Config{}, fmt.Errorf("lookup entry %d: name is required", i+1)
			}
			tables = append(tables, t)
		}
		cfg.Lookups = tables
	}

	applyEnv(&cfg)
	return cfg, nil
}

// DefaultPath returns the expanded default config file location.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(envAPIBind)); v != "" {
		cfg.APIBind = v
	}
	if v := strings.TrimSpace(os.Getenv(envLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(envLogFile)); v != "" {
		cfg.LogFile = mustExpand(v)
	}
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

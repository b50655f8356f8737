package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/five82/bookshelf/internal/catalog"
	"github.com/five82/bookshelf/internal/catalogapi"
	"github.com/five82/bookshelf/internal/config"
	"github.com/five82/bookshelf/internal/prefs"
	"github.com/five82/bookshelf/internal/reactive"
	"github.com/five82/bookshelf/internal/record"
	"github.com/five82/bookshelf/internal/state"
	"github.com/five82/bookshelf/internal/ui"
)

// Options configure the bookshelf application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/bookshelf/prefs.toml
	// LogLevel overrides the configured level when set.
	LogLevel string
	// LogWriter receives logs instead of the configured log file. Headless
	// commands pass stderr; the browser leaves it nil.
	LogWriter io.Writer
}

// Env holds everything built from the configuration: the logger, the API
// client and the sorter shared by every screen.
type Env struct {
	Config config.Config
	Logger *slog.Logger
	Client *catalogapi.Client
	Sorter record.Sorter

	closeLog func() error
}

// Setup loads the configuration and builds the shared dependencies.
func Setup(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	env := &Env{Config: cfg, closeLog: func() error { return nil }}

	writer := opts.LogWriter
	if writer == nil {
		fileWriter, file, err := newLogFileWriter(cfg.LogFile)
		if err != nil {
			// The browser owns the terminal, so a broken log file is not fatal.
			writer = io.Discard
		} else {
			writer = fileWriter
			env.closeLog = file.Close
		}
	}
	env.Logger = slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))

	env.Client, err = catalogapi.NewClient(cfg.APIBind, catalogapi.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		_ = env.Close()
		return nil, fmt.Errorf("init catalog client: %w", err)
	}

	env.Sorter, err = record.NewSorter(cfg.SortLocale)
	if err != nil {
		_ = env.Close()
		return nil, fmt.Errorf("sort_locale: %w", err)
	}

	env.Logger.Debug("environment ready",
		"api", env.Client.BaseURL(),
		"timeout", cfg.RequestTimeout,
		"locale", cfg.SortLocale,
		"tables", catalog.TableNames(cfg.Lookups),
	)
	return env, nil
}

// Close releases the log file.
func (e *Env) Close() error {
	if e == nil || e.closeLog == nil {
		return nil
	}
	return e.closeLog()
}

// ScreenOptions returns catalog options bound to this environment.
func (e *Env) ScreenOptions(d reactive.Dispatcher, store *state.Store, n catalog.Notifier) catalog.Options {
	return catalog.Options{
		Source:     e.Client,
		Dispatcher: d,
		Notifier:   n,
		Store:      store,
		Tables:     e.Config.Lookups,
		SortKey:    e.Config.DefaultSort,
		IDField:    e.Config.IDField,
		Sorter:     e.Sorter,
		Logger:     e.Logger,
	}
}

// Run boots the bookshelf browser until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Setup(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, _ := prefs.Load(prefsPath)

	screenOpts := env.ScreenOptions(nil, &state.Store{}, nil)
	if userPrefs.SortKey != "" {
		screenOpts.SortKey = userPrefs.SortKey
	}

	env.Logger.Info("browser starting", "api", env.Client.BaseURL())
	return ui.Run(ui.Options{
		Context:   ctx,
		Screen:    screenOpts,
		Saver:     env.Client,
		Columns:   env.Config.Columns,
		ThemeName: userPrefs.Theme,
		PrefsPath: prefsPath,
		OnMount: func(mountCtx context.Context, d reactive.Dispatcher, s *catalog.Screen) {
			StartPoller(mountCtx, d, s, env.Config.RefreshInterval, env.Logger)
		},
	})
}

func parseLogLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

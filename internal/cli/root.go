package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/five82/bookshelf/internal/app"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

// appOptions builds app options from the global flags. A nil logWriter
// sends logs to the configured log file.
func (o *RootOptions) appOptions(logWriter io.Writer) app.Options {
	return app.Options{
		ConfigPath: o.ConfigPath,
		LogLevel:   o.LogLevel,
		LogWriter:  logWriter,
	}
}

// NewRootCommand creates the root command for the bookshelf CLI. Without a
// subcommand it opens the browser.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	browse := NewBrowseCommand(opts)

	cmd := &cobra.Command{
		Use:   "bookshelf",
		Short: "Browse and edit a book catalog",
		Long: `bookshelf browses a remote book catalog in the terminal.

The collection is fetched from the catalog API whenever the server-side
filter changes; sorting and the local filter expression work on the data
already loaded.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.LogLevel == "" {
				return nil
			}
			var level slog.Level
			if err := level.UnmarshalText([]byte(opts.LogLevel)); err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid log level %q", opts.LogLevel))
			}
			return nil
		},
		RunE: browse.RunE,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/bookshelf/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level override (debug|info|warn|error)")

	// Add subcommands
	cmd.AddCommand(browse)
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewLookupsCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewLogsCommand(opts))

	return cmd
}

// NewBrowseCommand creates the browse command.
func NewBrowseCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "browse",
		Short:         "Open the catalog browser",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(commandContext(cmd), rootOpts.appOptions(nil))
		},
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

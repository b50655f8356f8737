package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/five82/bookshelf/internal/config"
	"github.com/five82/bookshelf/internal/logtail"
)

// LogsOptions holds flags for the logs command.
type LogsOptions struct {
	*RootOptions
	Lines int
	Level string
	Color bool
}

// NewLogsCommand creates the logs command.
func NewLogsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the tail of the browser log",
		Long: `Print the last lines of the log file written by the browser.

Examples:
  bookshelf logs
  bookshelf logs -n 200 --level warn`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogs(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Lines, "lines", "n", 50, "number of lines to show (0 for all)")
	cmd.Flags().StringVar(&opts.Level, "level", "", "only show records at or above this level")
	cmd.Flags().BoolVar(&opts.Color, "color", false, "color lines by level")

	return cmd
}

func runLogs(opts *LogsOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	var lines []string
	if opts.Level == "" {
		lines, err = logtail.Read(cfg.LogFile, opts.Lines)
	} else {
		var threshold slog.Level
		if err := threshold.UnmarshalText([]byte(opts.Level)); err != nil {
			return NewExitError(ExitCommandError, fmt.Sprintf("invalid level %q", opts.Level))
		}
		lines, err = logtail.Read(cfg.LogFile, 0)
		lines = logtail.FilterLevel(lines, threshold)
		if opts.Lines > 0 && len(lines) > opts.Lines {
			lines = lines[len(lines)-opts.Lines:]
		}
	}
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read log", err)
	}

	out := cmd.OutOrStdout()
	if len(lines) == 0 {
		fmt.Fprintf(out, "No log entries in %s\n", cfg.LogFile)
		return nil
	}
	for _, line := range lines {
		if opts.Color {
			line = logtail.ColorizeLine(line)
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

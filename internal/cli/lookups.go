package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/bookshelf/internal/app"
)

// LookupsOptions holds flags for the lookups command.
type LookupsOptions struct {
	*RootOptions
	Format  string
	Timeout time.Duration
}

// NewLookupsCommand creates the lookups command.
func NewLookupsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LookupsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lookups",
		Short: "Print the reference tables",
		Long: `Fetch every configured lookup table and print them.

A table that cannot be fetched is printed empty.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookups(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "o", "text", "output format (text|json|yaml)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", DefaultTimeout, "how long to wait for the catalog")

	return cmd
}

func runLookups(opts *LookupsOptions, cmd *cobra.Command) error {
	if err := checkFormat(opts.Format); err != nil {
		return err
	}

	env, err := app.Setup(opts.appOptions(cmd.ErrOrStderr()))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	defer env.Close()

	snap, err := env.Lookups(commandContext(cmd), opts.Timeout)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to load lookup tables", err)
	}
	return writeLookups(cmd.OutOrStdout(), opts.Format, env.Config.Lookups, snap.Lookups)
}

package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/bookshelf/internal/app"
	"github.com/five82/bookshelf/internal/record"
)

// DefaultTimeout bounds how long headless commands wait for the catalog.
const DefaultTimeout = 30 * time.Second

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Filters []string
	Sort    string
	Where   string
	Format  string
	Timeout time.Duration
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the catalog collection",
		Long: `Fetch the collection once and print it.

--filter values are sent to the catalog API; --sort and --where are applied
to the fetched records.

Examples:
  bookshelf list
  bookshelf list --filter Category=Fiction --sort Year
  bookshelf list --where 'Year < 1950 && Format == "Paperback"' --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Filters, "filter", "f", nil, "server-side filter as Field=value (repeatable)")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "sort field (default from config)")
	cmd.Flags().StringVar(&opts.Where, "where", "", "local filter expression")
	cmd.Flags().StringVarP(&opts.Format, "format", "o", "text", "output format (text|json|yaml)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", DefaultTimeout, "how long to wait for the catalog")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	if err := checkFormat(opts.Format); err != nil {
		return err
	}
	params, err := record.ParseParams(opts.Filters)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid filter", err)
	}

	env, err := app.Setup(opts.appOptions(cmd.ErrOrStderr()))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	defer env.Close()

	snap, err := env.List(commandContext(cmd), app.Query{
		SortKey: opts.Sort,
		Params:  params,
		Where:   opts.Where,
		Timeout: opts.Timeout,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list records", err)
	}
	return writeRecords(cmd.OutOrStdout(), opts.Format, env.Config.Columns, snap.Visible)
}

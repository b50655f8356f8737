package cli

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/bookshelf/internal/app"
	"github.com/five82/bookshelf/internal/devserver"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Database string
	Addr     string
	Seed     bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local catalog API backed by SQLite",
		Long: `Serve the catalog API from a SQLite database.

The listen address defaults to api_bind from the config file, so the browser
finds the server without extra flags.

Examples:
  bookshelf serve --seed
  bookshelf serve --db :memory: --seed --addr 127.0.0.1:5050`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "bookshelf.db", "path to SQLite database (:memory: for a throwaway catalog)")
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default api_bind from config)")
	cmd.Flags().BoolVar(&opts.Seed, "seed", false, "insert sample data into an empty catalog")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)

	env, err := app.Setup(opts.appOptions(cmd.ErrOrStderr()))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	defer env.Close()

	addr := opts.Addr
	if addr == "" {
		addr = env.Config.APIBind
	}
	host, err := listenAddr(addr)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid listen address", err)
	}

	db, err := devserver.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to migrate database", err)
	}
	if opts.Seed {
		if err := db.Seed(ctx); err != nil {
			return WrapExitError(ExitCommandError, "failed to seed database", err)
		}
	}

	handler := devserver.NewHandler(devserver.NewStore(db), env.Logger)
	err = devserver.Serve(ctx, host, handler, env.Logger, func(a net.Addr) {
		fmt.Fprintf(cmd.OutOrStdout(), "Serving catalog on http://%s (database %s)\n", a, opts.Database)
	})
	if err != nil {
		return WrapExitError(ExitFailure, "server failed", err)
	}
	return nil
}

// listenAddr accepts host:port or an http URL and returns host:port.
func listenAddr(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("no host in %q", addr)
	}
	return u.Host, nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Gauravv801/QA-Eval/internal/server"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis HTTP API",
		Long: `Run the analysis HTTP API.

Endpoints:

  POST   /api/analyze     analyze a flow description
  GET    /api/runs        list saved runs
  GET    /api/runs/{id}   fetch one saved run
  DELETE /api/runs/{id}   delete a saved run
  GET    /healthz         liveness probe

The server uses the same cache and history backends as the CLI, configured
via ~/.config/qaeval/config.toml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			store, err := c.newHistoryStore(cmd)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close(cmd.Context())

			srv := server.New(runner, store, c.Logger)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

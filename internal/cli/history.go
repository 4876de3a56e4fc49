package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// historyCommand creates the history command for managing saved runs.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage saved analysis runs",
	}

	cmd.AddCommand(c.historyListCommand())
	cmd.AddCommand(c.historyShowCommand())
	cmd.AddCommand(c.historyDeleteCommand())

	return cmd
}

// historyListCommand creates the "history list" subcommand.
func (c *CLI) historyListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.newHistoryStore(cmd)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close(cmd.Context())

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if len(runs) == 0 {
				printInfo("No saved runs")
				return nil
			}

			for _, run := range runs {
				fmt.Println(StyleValue.Render(run.ID))
				printDetail("%s  P0=%d P1=%d P2=%d P3=%d  hash %.12s",
					run.CreatedAt.Format("2006-01-02 15:04:05"),
					run.Stats.P0, run.Stats.P1, run.Stats.P2, run.Stats.P3,
					run.GraphHash)
				if run.Notes != "" {
					printDetail("notes: %s", run.Notes)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of runs to list (0 = all)")
	return cmd
}

// historyShowCommand creates the "history show" subcommand.
func (c *CLI) historyShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run-id]",
		Short: "Print the full report of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.newHistoryStore(cmd)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close(cmd.Context())

			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get run %s: %w", args[0], err)
			}

			printKeyValue("Run", run.ID)
			printKeyValue("Created", run.CreatedAt.Format("2006-01-02 15:04:05"))
			printKeyValue("Graph", run.GraphHash)
			if run.Notes != "" {
				printKeyValue("Notes", run.Notes)
			}
			printNewline()
			fmt.Print(run.Report)
			return nil
		},
	}
}

// historyDeleteCommand creates the "history delete" subcommand.
func (c *CLI) historyDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [run-id]",
		Short: "Delete a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.newHistoryStore(cmd)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close(cmd.Context())

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete run %s: %w", args[0], err)
			}
			printSuccess("Deleted run %s", args[0])
			return nil
		},
	}
}

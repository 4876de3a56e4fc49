package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Gauravv801/QA-Eval/pkg/report"
)

// reportCommand creates the report command for working with saved text reports.
func (c *CLI) reportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Inspect saved text reports",
	}

	cmd.AddCommand(c.reportSummaryCommand())
	cmd.AddCommand(c.reportBrowseCommand())

	return cmd
}

// reportSummaryCommand creates the "report summary" subcommand.
func (c *CLI) reportSummaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary [report.txt]",
		Short: "Print priority counts and coverage from a saved report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readReport(args[0])
			if err != nil {
				return err
			}

			printKeyValue("Raw paths", fmt.Sprintf("%d", doc.TotalRawPaths))
			printKeyValue("P0", fmt.Sprintf("%d", len(doc.P0)))
			printKeyValue("P1", fmt.Sprintf("%d", len(doc.P1)))
			printKeyValue("P2", fmt.Sprintf("%d", len(doc.P2)))
			printKeyValue("P3", fmt.Sprintf("%d", len(doc.P3)))
			if doc.Truncated {
				printWarning("Report was produced under a truncated enumeration")
			}
			if len(doc.SkippedEdges) > 0 || len(doc.SkippedLoops) > 0 {
				printWarning("%d transitions and %d loops were unreachable",
					len(doc.SkippedEdges), len(doc.SkippedLoops))
			}
			return nil
		},
	}
}

// reportBrowseCommand creates the "report browse" subcommand.
func (c *CLI) reportBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [report.txt]",
		Short: "Browse a saved report interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readReport(args[0])
			if err != nil {
				return err
			}
			model := newReportModel(doc)
			if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("interactive browser: %w", err)
			}
			return nil
		},
	}
}

// readReport parses a saved text report back into a document.
func readReport(path string) (*report.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report %s: %w", path, err)
	}
	defer f.Close()

	doc, err := report.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return doc, nil
}

// joinLabels renders a path's labels for compact display.
func joinLabels(rec report.PathRecord) string {
	return strings.Join(rec.Labels(), " → ")
}

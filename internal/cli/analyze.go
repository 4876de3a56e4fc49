package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Gauravv801/QA-Eval/pkg/fsm"
	"github.com/Gauravv801/QA-Eval/pkg/graphio"
	"github.com/Gauravv801/QA-Eval/pkg/history"
	"github.com/Gauravv801/QA-Eval/pkg/observability"
	"github.com/Gauravv801/QA-Eval/pkg/pipeline"
)

// analyzeOpts holds the command-line flags for the analyze command.
type analyzeOpts struct {
	output      string // output file path (single format) or base path (multiple)
	formatsStr  string // comma-separated output formats
	noCache     bool   // disable caching
	refresh     bool   // recompute even on cache hit
	save        bool   // persist the run to history
	notes       string // free-form notes attached to a saved run
	interactive bool   // open the result in the interactive browser
}

// analyzeCommand creates the analyze command, the main entry point of the tool.
func (c *CLI) analyzeCommand() *cobra.Command {
	var flags analyzeOpts
	opts := pipeline.Options{
		IdenticalThreshold: c.Config.Analysis.IdenticalThreshold,
		VariationThreshold: c.Config.Analysis.VariationThreshold,
		MaxPaths:           c.Config.Analysis.MaxPaths,
		MaxDepth:           c.Config.Analysis.MaxDepth,
	}

	cmd := &cobra.Command{
		Use:   "analyze [flow.json|flow.dot]",
		Short: "Enumerate, cluster, and prioritize test paths through a conversation flow",
		Long: `Analyze a conversational agent state machine.

The analyze command loads a flow description (JSON or Graphviz DOT), walks
every distinct path from the entry state to the exit states, clusters similar
paths into archetypes, and assigns each path a test priority:

  P0  golden paths - one representative per archetype
  P1  required variations - paths that exercise transitions P0 missed
  P2  loop stress tests - shortest paths covering each self-loop
  P3  redundant paths - everything else, kept for the archive

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(flags.formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			opts.Refresh = flags.refresh
			return c.runAnalyze(cmd, args[0], opts, &flags)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&flags.formatsStr, "format", "f", "", "output format(s): report (default), json, dot, svg, png (comma-separated)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "recompute even if a cached result exists")

	// Graph flags
	cmd.Flags().StringVar(&opts.EntryState, "entry", "", "entry state id (default: the flow's initial state)")
	cmd.Flags().StringVar(&opts.ExitState, "exit", "", "exit state id (default: the flow's terminal states)")

	// Analysis flags
	cmd.Flags().IntVar(&opts.MaxPaths, "max-paths", opts.MaxPaths, "maximum number of paths to enumerate (0 = default)")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", opts.MaxDepth, "maximum path depth (0 = default)")
	cmd.Flags().Float64Var(&opts.IdenticalThreshold, "identical-threshold", opts.IdenticalThreshold, "similarity above which paths are near-identical (0 = default)")
	cmd.Flags().Float64Var(&opts.VariationThreshold, "variation-threshold", opts.VariationThreshold, "similarity above which clusters merge as variations (0 = default)")

	// Result flags
	cmd.Flags().BoolVar(&flags.save, "save", false, "save the run to history")
	cmd.Flags().StringVar(&flags.notes, "notes", "", "notes to attach to the saved run")
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "browse the result interactively")

	return cmd
}

// runAnalyze loads the graph, executes the pipeline, and writes outputs.
func (c *CLI) runAnalyze(cmd *cobra.Command, input string, opts pipeline.Options, flags *analyzeOpts) error {
	ctx := cmd.Context()

	g, err := loadGraph(input, opts.EntryState, opts.ExitState)
	if err != nil {
		return fmt.Errorf("load flow %s: %w", input, err)
	}

	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Analyzing flow...")
	observability.SetAnalysisHooks(stageHooks{spinner: spinner})
	defer observability.Reset()
	spinner.Start()

	result, err := runner.Execute(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Analysis failed")
		return fmt.Errorf("analyze: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if result.Document.Truncated {
		printWarning("Path enumeration hit the safety budget; results are partial")
	}

	if err := writeArtifacts(result.Artifacts, opts.Formats, input, flags.output); err != nil {
		return err
	}

	printSuccess("Analysis complete")
	printStats(result.Stats.StateCount, result.Stats.TransitionCount, result.Stats.UniquePaths, result.CacheInfo.AnalysisHit)
	stats := result.Document.Stats
	printBuckets(stats.P0, stats.P1, stats.P2, stats.P3)

	if flags.save {
		if err := c.saveRun(ctx, cmd, result, opts, flags.notes); err != nil {
			return err
		}
	}

	if flags.interactive {
		model := newReportModel(result.Document)
		if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("interactive browser: %w", err)
		}
	}

	return nil
}

// saveRun persists the pipeline result to the configured history store.
func (c *CLI) saveRun(ctx context.Context, cmd *cobra.Command, result *pipeline.Result, opts pipeline.Options, notes string) error {
	store, err := c.newHistoryStore(cmd)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close(ctx)

	run := history.NewRun(result.GraphHash, opts.EntryState, opts.ExitState)
	run.Truncated = result.Document.Truncated
	run.Stats = result.Document.Stats
	run.Report = result.ReportText
	run.Notes = notes

	if err := store.Save(ctx, run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	printInfo("Saved run %s", run.ID)
	printNextStep("Show", "qaeval history show "+run.ID)
	return nil
}

// loadGraph reads a flow description from a JSON or DOT file.
func loadGraph(path, entry, exit string) (*fsm.Graph, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dot", ".gv":
		return graphio.ReadDOT(path, entry, exit)
	default:
		desc, err := graphio.Read(path)
		if err != nil {
			return nil, err
		}
		g, dropped, err := graphio.ToGraph(desc, graphio.Options{Entry: entry, Exit: exit})
		if err != nil {
			return nil, err
		}
		if dropped > 0 {
			printWarning("Dropped %d malformed transitions", dropped)
		}
		return g, nil
	}
}

// writeArtifacts writes each requested artifact to disk.
//
// With a single format, output (or <input base>.<format>) names the file
// directly. With multiple formats, output acts as a base path and each
// artifact gets its format as extension.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) error {
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	}

	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}

		path := base + "." + artifactExt(format)
		if len(formats) == 1 && output != "" {
			path = output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// artifactExt maps a format name to its file extension.
func artifactExt(format string) string {
	if format == pipeline.FormatReport {
		return "txt"
	}
	return format
}

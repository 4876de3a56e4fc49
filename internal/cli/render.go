package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Gauravv801/QA-Eval/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string // output file path (or base path for multiple formats)
	formatsStr string // comma-separated output formats
	entry      string // entry state override
	exit       string // exit state override
	detailed   bool   // include agent actions in edge labels
	title      string // diagram title
}

// renderCommand creates the render command for drawing flow diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [flow.json|flow.dot]",
		Short: "Render a conversation flow as a diagram",
		Long: `Render a conversation flow as a Graphviz diagram.

The render command loads a flow description and draws it as a state diagram.
Initial states get a double border, terminal states are shaded green, and
edges are labeled with their trigger intents.

Supported formats: dot, svg, png.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseRenderFormats(opts.formatsStr)
			if err := validateRenderFormats(formats); err != nil {
				return err
			}
			return runRender(cmd.Context(), args[0], formats, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formatsStr, "format", "f", "", "output format(s): svg (default), dot, png (comma-separated)")
	cmd.Flags().StringVar(&opts.entry, "entry", "", "entry state id")
	cmd.Flags().StringVar(&opts.exit, "exit", "", "exit state id")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include agent actions in edge labels")
	cmd.Flags().StringVar(&opts.title, "title", "", "diagram title")

	return cmd
}

// parseRenderFormats parses the --format flag, defaulting to svg.
func parseRenderFormats(s string) []string {
	if s == "" {
		return []string{"svg"}
	}
	return strings.Split(s, ",")
}

// validRenderFormats is the set of formats the render command supports.
var validRenderFormats = map[string]bool{"dot": true, "svg": true, "png": true}

func validateRenderFormats(formats []string) error {
	for _, f := range formats {
		if !validRenderFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'dot', 'svg', or 'png')", f)
		}
	}
	return nil
}

// runRender loads the flow and draws it in every requested format.
func runRender(ctx context.Context, input string, formats []string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	g, err := loadGraph(input, opts.entry, opts.exit)
	if err != nil {
		return fmt.Errorf("load flow %s: %w", input, err)
	}
	logger.Infof("Loaded flow: %d states, %d transitions", g.StateCount(), g.TransitionCount())

	dot := render.ToDOT(g, render.Options{Detailed: opts.detailed, Title: opts.title})

	base := opts.output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	}

	for _, format := range formats {
		data, err := renderFlow(ctx, dot, format)
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}

		path := base + "." + format
		if len(formats) == 1 && opts.output != "" {
			path = opts.output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	printSuccess("Render complete")
	return nil
}

// renderFlow produces the diagram bytes for a single format.
func renderFlow(ctx context.Context, dot, format string) ([]byte, error) {
	switch format {
	case "dot":
		return []byte(dot), nil
	case "svg":
		return render.RenderSVG(ctx, dot)
	case "png":
		return render.RenderPNG(ctx, dot)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

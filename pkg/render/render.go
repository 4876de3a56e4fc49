// Package render draws FSM graphs as Graphviz diagrams.
//
// ToDOT produces the DOT source; RenderSVG and RenderPNG rasterize it with
// the embedded Graphviz engine, so no external binary is needed.
package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/Gauravv801/QA-Eval/pkg/fsm"
)

// Options configures DOT generation.
type Options struct {
	// Detailed appends agent actions to edge labels when present.
	Detailed bool

	// Title sets the graph comment line. Empty means no comment.
	Title string
}

// ToDOT converts an FSM graph to Graphviz DOT source. The resulting string
// can be rendered with [RenderSVG] or [RenderPNG], or re-imported through
// graphio.
//
// The initial state gets a double border and terminal states a darker fill
// so the flow's endpoints stand out.
func ToDOT(g *fsm.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  // %s\n", opts.Title)
	}
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=\"#E3F2FD\"];\n")
	buf.WriteString("\n")

	for i := 0; i < g.StateCount(); i++ {
		s := g.State(i)
		switch {
		case s.IsInitial:
			fmt.Fprintf(&buf, "  %q [peripheries=2];\n", s.ID)
		case s.IsTerminal:
			fmt.Fprintf(&buf, "  %q [fillcolor=\"#C8E6C9\"];\n", s.ID)
		default:
			fmt.Fprintf(&buf, "  %q;\n", s.ID)
		}
	}

	buf.WriteString("\n")
	for i := 0; i < g.TransitionCount(); i++ {
		tr := g.Transition(i)
		label := tr.Label
		if opts.Detailed && tr.Action != "" {
			label += "\n" + tr.Action
		}
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", g.StateID(tr.From), g.StateID(tr.To), label)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.SVG)
}

// RenderPNG renders DOT source to PNG.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

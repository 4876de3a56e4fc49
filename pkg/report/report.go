// Package report renders prioritization results as the delimited text
// report consumed by downstream QA tooling, and parses that text form back
// into a structured document.
//
// The text layout is stable and versioned by its section markers: a header
// with raw-path and bucket counts, four uniquely marked sections (P0 golden
// paths, P1 required variations, P2 loop stress tests, P3 archive), and an
// optional trailing warning block listing unreachable edges and loops.
// Identical analysis results always render byte-identical reports.
package report

import (
	"fmt"
	"strings"

	"github.com/Gauravv801/QA-Eval/pkg/cover"
	"github.com/Gauravv801/QA-Eval/pkg/fsm"
	"github.com/Gauravv801/QA-Eval/pkg/paths"
)

// DefaultStepsPerLine is how many transitions are printed before the path
// formatter wraps to an indented continuation line.
const DefaultStepsPerLine = 3

// Section marker lines. Parsers key on these exact strings.
const (
	MarkerP0      = "=== [P0] GOLDEN PATHS (Unique Archetypes) ==="
	MarkerP1      = "=== [P1] REQUIRED VARIATIONS (New Logic Discovery) ==="
	MarkerP2      = "=== [P2] LOOP STRESS TESTS (Self-Loops) ==="
	MarkerP3      = "=== [P3] REDUNDANT PATHS (Archive) ==="
	MarkerWarning = "WARNING: SKIPPED LOGIC (Unreachable/Orphaned)"
)

// Segment is one rendered transition of a path.
type Segment struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Label  string `json:"label"`
	Action string `json:"action,omitempty"`
}

// PathRecord is a path with resolved state names, ready for rendering or
// serialization.
type PathRecord struct {
	ID       string    `json:"id"` // e.g. "P0.1"
	Length   int       `json:"length"`
	Start    string    `json:"start"`
	Segments []Segment `json:"segments"`
}

// Labels returns the record's transition labels in order.
func (r PathRecord) Labels() []string {
	out := make([]string, len(r.Segments))
	for i, s := range r.Segments {
		out[i] = s.Label
	}
	return out
}

// EdgeRecord mirrors cover.Edge in serializable form.
type EdgeRecord struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// Document is the machine-readable form of one analysis run.
type Document struct {
	TotalRawPaths int          `json:"total_raw_paths"`
	Truncated     bool         `json:"truncated"`
	P0            []PathRecord `json:"p0"`
	P1            []PathRecord `json:"p1"`
	P2            []PathRecord `json:"p2"`
	P3            []PathRecord `json:"p3"`
	SkippedEdges  []EdgeRecord `json:"skipped_edges,omitempty"`
	SkippedLoops  []EdgeRecord `json:"skipped_loops,omitempty"`
	Stats         cover.Stats  `json:"stats"`
}

// Buckets returns the four record slices in priority order.
func (d *Document) Buckets() [4][]PathRecord {
	return [4][]PathRecord{d.P0, d.P1, d.P2, d.P3}
}

// Build resolves a prioritization result into a Document. The graph supplies
// state names and actions for each transition index. entry names the state
// enumeration started from; empty means the graph's initial state. It only
// matters for zero-length paths, where no segment carries the start state.
func Build(g *fsm.Graph, enum *paths.Result, cov *cover.Result, entry string) *Document {
	doc := &Document{
		TotalRawPaths: enum.Raw,
		Truncated:     enum.Truncated,
		Stats:         cov.Stats,
	}
	start := entry
	if start == "" {
		start = g.StateID(g.Initial())
	}
	buckets := [4]*[]PathRecord{&doc.P0, &doc.P1, &doc.P2, &doc.P3}
	for p := cover.P0; p <= cover.P3; p++ {
		for i, path := range cov.Bucket(p) {
			rec := PathRecord{
				ID:     fmt.Sprintf("%s.%d", p, i+1),
				Length: path.Len(),
				Start:  start,
			}
			for _, ti := range path.Transitions {
				tr := g.Transition(ti)
				rec.Segments = append(rec.Segments, Segment{
					From:   g.StateID(tr.From),
					To:     g.StateID(tr.To),
					Label:  tr.Label,
					Action: tr.Action,
				})
			}
			if len(rec.Segments) > 0 {
				rec.Start = rec.Segments[0].From
			}
			*buckets[p] = append(*buckets[p], rec)
		}
	}
	for _, e := range cov.SkippedEdges {
		doc.SkippedEdges = append(doc.SkippedEdges, EdgeRecord(e))
	}
	for _, e := range cov.SkippedLoops {
		doc.SkippedLoops = append(doc.SkippedLoops, EdgeRecord(e))
	}
	return doc
}

// Emitter renders a Document as the text report.
type Emitter struct {
	// StepsPerLine controls path wrapping; zero means DefaultStepsPerLine.
	StepsPerLine int
}

// Emit renders the full report.
func (e Emitter) Emit(doc *Document) string {
	steps := e.StepsPerLine
	if steps <= 0 {
		steps = DefaultStepsPerLine
	}
	rule := strings.Repeat("=", 80)
	dash := strings.Repeat("-", 80)

	var b strings.Builder
	b.WriteString("CLUSTERING REPORT (Prioritized)\n")
	fmt.Fprintf(&b, "Total Raw Paths: %d\n", doc.TotalRawPaths)
	fmt.Fprintf(&b, "Final Counts: P0=%d | P1=%d | P2=%d | P3=%d\n",
		len(doc.P0), len(doc.P1), len(doc.P2), len(doc.P3))
	if doc.Truncated {
		b.WriteString("WARNING: Path enumeration truncated by safety budget\n")
	}
	b.WriteString(rule + "\n\n")

	b.WriteString(MarkerP0 + "\n")
	for _, rec := range doc.P0 {
		fmt.Fprintf(&b, "%s (Length: %d):\n%s\n\n", rec.ID, rec.Length, formatPath(rec, steps))
	}
	b.WriteString(dash + "\n\n")

	b.WriteString(MarkerP1 + "\n")
	if len(doc.P1) > 0 {
		for _, rec := range doc.P1 {
			fmt.Fprintf(&b, "%s (Length: %d):\n%s\n\n", rec.ID, rec.Length, formatPath(rec, steps))
		}
	} else {
		b.WriteString("No additional logic paths found beyond P0.\n\n")
	}
	b.WriteString(dash + "\n\n")

	b.WriteString(MarkerP2 + "\n")
	if len(doc.P2) > 0 {
		for _, rec := range doc.P2 {
			fmt.Fprintf(&b, "%s (Length: %d):\n%s\n\n", rec.ID, rec.Length, formatPath(rec, steps))
		}
	} else {
		b.WriteString("All loops covered by P0/P1 or none exist.\n\n")
	}
	b.WriteString(dash + "\n\n")

	b.WriteString(MarkerP3 + "\n")
	fmt.Fprintf(&b, "Total: %d\n", len(doc.P3))
	for _, rec := range doc.P3 {
		fmt.Fprintf(&b, "%s (Length: %d):\n%s\n\n", rec.ID, rec.Length, formatPath(rec, steps))
	}

	if len(doc.SkippedEdges) > 0 || len(doc.SkippedLoops) > 0 {
		b.WriteString("\n" + rule + "\n")
		b.WriteString(MarkerWarning + "\n")
		if len(doc.SkippedEdges) > 0 {
			fmt.Fprintf(&b, "Skipped Edges: %s\n", formatEdges(doc.SkippedEdges))
		}
		if len(doc.SkippedLoops) > 0 {
			fmt.Fprintf(&b, "Skipped Loops: %s\n", formatEdges(doc.SkippedLoops))
		}
	}
	return b.String()
}

// formatPath renders "(A) --[x]--> (B) --[y]--> (C)" wrapping to an
// indented continuation line every steps transitions.
func formatPath(rec PathRecord, steps int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(%s)", rec.Start)
	for i, s := range rec.Segments {
		fmt.Fprintf(&b, " --[%s]--> (%s)", s.Label, s.To)
		if (i+1)%steps == 0 && i+1 < len(rec.Segments) {
			b.WriteString("\n        ")
		}
	}
	return b.String()
}

func formatEdges(edges []EdgeRecord) string {
	parts := make([]string, len(edges))
	for i, e := range edges {
		parts[i] = fmt.Sprintf("(%s --[%s]--> %s)", e.From, e.Label, e.To)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

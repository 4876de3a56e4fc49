package graphio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/Gauravv801/QA-Eval/pkg/fsm"
)

// ===== DOT import =====

// dotEdgeRE matches one edge statement per line: source, arrow, target,
// and an optional label attribute. Node identifiers and labels may or may
// not be quoted.
var dotEdgeRE = regexp.MustCompile(`"?(\w+)"?\s*->\s*"?(\w+)"?(?:.*label="?([^"\]]+)"?)?`)

// ParseDOT extracts the edge list from DOT source, one edge per line.
// Edges without a label attribute get AutoProceedLabel. Node statements,
// attribute lines and comments simply fail the pattern and are skipped.
func ParseDOT(r io.Reader) ([]fsm.Arc, error) {
	var arcs []fsm.Arc
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		m := dotEdgeRE.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		label := m[3]
		if label == "" {
			label = AutoProceedLabel
		}
		arcs = append(arcs, fsm.Arc{From: m[1], To: m[2], Label: label})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning dot source: %w", err)
	}
	return arcs, nil
}

// ReadDOT parses a DOT file into a validated graph. Entry and exit name
// the initial and terminal states; the state set is inferred from the
// edge endpoints.
func ReadDOT(path, entry, exit string) (*fsm.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dot file: %w", err)
	}
	defer f.Close()
	return DOTGraph(f, entry, exit)
}

// DOTGraph parses DOT source from r into a validated graph.
func DOTGraph(r io.Reader, entry, exit string) (*fsm.Graph, error) {
	arcs, err := ParseDOT(r)
	if err != nil {
		return nil, err
	}
	desc := &Description{}
	for _, a := range arcs {
		desc.WorkflowLogic.Transitions = append(desc.WorkflowLogic.Transitions, TransitionDesc{
			FromState:     a.From,
			ToState:       a.To,
			TriggerIntent: a.Label,
		})
	}
	g, _, err := ToGraph(desc, Options{Entry: entry, Exit: exit})
	return g, err
}

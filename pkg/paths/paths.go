// Package paths enumerates entry-to-exit paths through an FSM graph.
//
// The walk is a depth-first traversal in which every transition, linear or
// self-loop, is taken at most once per path. Linear edges therefore follow
// the simple-path rule and each self-loop contributes at most one extra hop,
// so path counts stay finite on cyclic graphs. A configurable budget bounds
// the search on pathological graphs; hitting it sets Truncated on the result
// rather than failing.
//
// Enumeration order is fixed by the graph's transition insertion order, so
// two runs over the same graph produce identical results.
package paths

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Gauravv801/QA-Eval/pkg/fsm"
)

// Default budget values applied by ValidateAndSetDefaults.
const (
	DefaultMaxPaths = 10000
	DefaultMaxDepth = 64
)

// signatureSep joins labels into a signature key. Unit separator keeps
// labels containing commas or pipes from colliding.
const signatureSep = "\x1f"

// ErrNoPaths reports a degenerate graph: the entry and exit states are
// valid but no transition sequence connects them.
var ErrNoPaths = errors.New("no paths exist between entry and exit states")

// Path is one enumerated walk from the entry state to an exit state.
type Path struct {
	// Transitions holds graph transition indices in traversal order.
	Transitions []int

	// Labels holds the transition labels in traversal order. This is the
	// path's signature material: two paths with equal label sequences are
	// considered duplicates.
	Labels []string

	// Index is the discovery position among the deduplicated paths,
	// starting at 0. Downstream stages use it as the final tie-breaker.
	Index int
}

// Len returns the number of transitions in the path. A zero-length path
// means the entry state already satisfied the exit condition.
func (p Path) Len() int { return len(p.Transitions) }

// Signature returns the dedup key: the ordered label sequence joined by a
// non-printing separator.
func (p Path) Signature() string { return strings.Join(p.Labels, signatureSep) }

// LoopCount returns how many of the path's transitions are self-loops.
func (p Path) LoopCount(g *fsm.Graph) int {
	n := 0
	for _, ti := range p.Transitions {
		if g.Transition(ti).SelfLoop() {
			n++
		}
	}
	return n
}

// Budget bounds the depth-first search.
type Budget struct {
	MaxPaths int // stop after emitting this many raw paths
	MaxDepth int // abandon branches longer than this many transitions
}

// Options configures an enumeration run.
type Options struct {
	// Entry overrides the graph's initial state. Empty means use the
	// graph's initial state.
	Entry string

	// Exits overrides the graph's terminal set. Empty means use the
	// graph's terminal states.
	Exits []string

	Budget Budget
}

// ValidateAndSetDefaults fills zero budget fields and rejects negative ones.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Budget.MaxPaths < 0 {
		return fmt.Errorf("max paths must be non-negative, got %d", o.Budget.MaxPaths)
	}
	if o.Budget.MaxDepth < 0 {
		return fmt.Errorf("max depth must be non-negative, got %d", o.Budget.MaxDepth)
	}
	if o.Budget.MaxPaths == 0 {
		o.Budget.MaxPaths = DefaultMaxPaths
	}
	if o.Budget.MaxDepth == 0 {
		o.Budget.MaxDepth = DefaultMaxDepth
	}
	return nil
}

// Result is the outcome of one enumeration run.
type Result struct {
	// Paths holds the deduplicated paths in discovery order.
	Paths []Path

	// Truncated is true when the budget pruned branches that might have
	// produced more paths. It is always surfaced, never swallowed.
	Truncated bool

	// Raw counts paths emitted before signature dedup.
	Raw int
}

// Enumerate walks the graph and returns every distinct entry-to-exit path.
//
// It returns ErrNoPaths when the search finishes without emitting a single
// path. The context is checked between emitted paths so long enumerations
// can be cancelled.
func Enumerate(ctx context.Context, g *fsm.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	entry := g.Initial()
	if opts.Entry != "" {
		i, ok := g.StateIndex(opts.Entry)
		if !ok {
			return nil, fmt.Errorf("entry state %q not in graph", opts.Entry)
		}
		entry = i
	}

	exits := make(map[int]bool)
	if len(opts.Exits) == 0 {
		for _, t := range g.Terminals() {
			exits[t] = true
		}
	} else {
		for _, id := range opts.Exits {
			i, ok := g.StateIndex(id)
			if !ok {
				return nil, fmt.Errorf("exit state %q not in graph", id)
			}
			exits[i] = true
		}
	}

	e := &enumerator{
		g:      g,
		exits:  exits,
		budget: opts.Budget,
		used:   make([]bool, g.TransitionCount()),
		seen:   make(map[string]bool),
	}
	if err := e.walk(ctx, entry, nil); err != nil && !errors.Is(err, errBudget) {
		return nil, err
	}

	res := &Result{Paths: e.paths, Truncated: e.truncated, Raw: e.raw}
	if len(res.Paths) == 0 {
		return nil, ErrNoPaths
	}
	return res, nil
}

// errBudget unwinds the recursion once MaxPaths is reached.
var errBudget = errors.New("path budget exhausted")

type enumerator struct {
	g      *fsm.Graph
	exits  map[int]bool
	budget Budget

	used      []bool // transition index -> taken on current stack
	trail     []int  // current transition stack
	paths     []Path
	seen      map[string]bool
	raw       int
	truncated bool
}

func (e *enumerator) walk(ctx context.Context, state int, labels []string) error {
	if e.exits[state] {
		if err := e.emit(ctx, labels); err != nil {
			return err
		}
		// Exit states end the path even when they have outgoing edges.
		return nil
	}

	if len(e.trail) >= e.budget.MaxDepth {
		// Only a live branch counts as truncation; a dead end at the
		// depth limit would have been abandoned anyway.
		for _, ti := range e.g.Outgoing(state) {
			if !e.used[ti] {
				e.truncated = true
				break
			}
		}
		return nil
	}

	for _, ti := range e.g.Outgoing(state) {
		if e.used[ti] {
			continue
		}
		tr := e.g.Transition(ti)
		e.used[ti] = true
		e.trail = append(e.trail, ti)
		err := e.walk(ctx, tr.To, append(labels, tr.Label))
		e.trail = e.trail[:len(e.trail)-1]
		e.used[ti] = false
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *enumerator) emit(ctx context.Context, labels []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.raw++
	sig := strings.Join(labels, signatureSep)
	if !e.seen[sig] {
		e.seen[sig] = true
		p := Path{
			Transitions: append([]int(nil), e.trail...),
			Labels:      append([]string(nil), labels...),
			Index:       len(e.paths),
		}
		e.paths = append(e.paths, p)
	}
	if e.raw >= e.budget.MaxPaths {
		e.truncated = true
		return errBudget
	}
	return nil
}

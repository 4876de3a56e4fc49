// Package fsm provides the in-memory model for conversational state
// machines: states, labeled transitions, and a validated immutable graph.
//
// States and transitions are stored in index-addressed arenas and referenced
// by integer id everywhere downstream. Parallel edges (same endpoints,
// different labels) are first-class and never collapsed; a transition whose
// endpoints coincide is a self-loop.
//
// A Graph is built once with [New] and never mutated afterwards. Validation
// happens at construction time and reports a [*ValidationError] carrying a
// machine-readable [Kind] instead of silently dropping data.
package fsm

import (
	"fmt"
)

// Kind identifies a class of graph validation failure.
type Kind string

// Validation failure kinds.
const (
	// KindMissingInitial means no state is flagged as the entry state.
	KindMissingInitial Kind = "missing-initial"

	// KindMultipleInitial means more than one state is flagged as initial.
	KindMultipleInitial Kind = "multiple-initial"

	// KindMissingTerminal means no state is flagged as terminal.
	KindMissingTerminal Kind = "missing-terminal"

	// KindUnreachableTerminal means a terminal state cannot be reached from
	// the initial state by any transition sequence.
	KindUnreachableTerminal Kind = "unreachable-terminal"

	// KindMalformedTransition means a transition references an undefined
	// state or is otherwise structurally invalid.
	KindMalformedTransition Kind = "malformed-transition"

	// KindDuplicateState means two states share the same identifier.
	KindDuplicateState Kind = "duplicate-state"
)

// ValidationError reports a malformed or unusable graph description.
// It is fatal: callers must not run path analysis on a graph that failed
// validation.
type ValidationError struct {
	Kind   Kind
	Detail string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid graph (%s): %s", e.Kind, e.Detail)
}

// IsValidation reports whether err is a *ValidationError with the given kind.
func IsValidation(err error, kind Kind) bool {
	ve, ok := err.(*ValidationError)
	return ok && ve.Kind == kind
}

// State is a node in the conversational flow graph.
type State struct {
	ID         string // unique identifier, e.g. "STATE_GREETING"
	IsInitial  bool   // exactly one state per graph
	IsTerminal bool   // at least one state per graph
}

// Arc describes a transition by state identifier. It is the construction
// form of a [Transition], before names are resolved to arena indices.
type Arc struct {
	From   string // source state id
	To     string // target state id
	Label  string // trigger label, e.g. a user intent
	Action string // free-text agent action
}

// Transition is a labeled directed edge between two states, addressed by
// arena index. From == To marks a self-loop.
type Transition struct {
	From   int
	To     int
	Label  string
	Action string
}

// SelfLoop reports whether the transition starts and ends on the same state.
func (t Transition) SelfLoop() bool { return t.From == t.To }

// Graph is a validated, immutable conversational state machine.
// It permits parallel edges and self-loops; it is not a DAG.
//
// Graph is safe for concurrent readers since nothing mutates it after New.
type Graph struct {
	states      []State
	transitions []Transition
	index       map[string]int // state id -> arena index
	outgoing    [][]int        // state index -> transition indices, insertion order
	initial     int
	terminals   []int
}

// New builds and validates a graph from a state list and a transition list.
//
// Validation enforces, in order: unique state ids, exactly one initial
// state, at least one terminal state, transitions referencing only defined
// states with non-empty labels, and reachability of every terminal from the
// initial state. The first violation is returned as a *ValidationError.
func New(states []State, arcs []Arc) (*Graph, error) {
	g := &Graph{
		states:   make([]State, len(states)),
		index:    make(map[string]int, len(states)),
		outgoing: make([][]int, len(states)),
		initial:  -1,
	}
	copy(g.states, states)

	for i, s := range g.states {
		if s.ID == "" {
			return nil, &ValidationError{Kind: KindMalformedTransition, Detail: fmt.Sprintf("state %d has empty id", i)}
		}
		if _, dup := g.index[s.ID]; dup {
			return nil, &ValidationError{Kind: KindDuplicateState, Detail: fmt.Sprintf("state %q defined twice", s.ID)}
		}
		g.index[s.ID] = i
		if s.IsInitial {
			if g.initial >= 0 {
				return nil, &ValidationError{
					Kind:   KindMultipleInitial,
					Detail: fmt.Sprintf("states %q and %q are both flagged initial", g.states[g.initial].ID, s.ID),
				}
			}
			g.initial = i
		}
		if s.IsTerminal {
			g.terminals = append(g.terminals, i)
		}
	}

	if g.initial < 0 {
		return nil, &ValidationError{Kind: KindMissingInitial, Detail: "no state is flagged initial"}
	}
	if len(g.terminals) == 0 {
		return nil, &ValidationError{Kind: KindMissingTerminal, Detail: "no state is flagged terminal"}
	}

	g.transitions = make([]Transition, 0, len(arcs))
	for _, a := range arcs {
		from, ok := g.index[a.From]
		if !ok {
			return nil, &ValidationError{Kind: KindMalformedTransition, Detail: fmt.Sprintf("transition references undefined state %q", a.From)}
		}
		to, ok := g.index[a.To]
		if !ok {
			return nil, &ValidationError{Kind: KindMalformedTransition, Detail: fmt.Sprintf("transition references undefined state %q", a.To)}
		}
		if a.Label == "" {
			return nil, &ValidationError{Kind: KindMalformedTransition, Detail: fmt.Sprintf("transition %s→%s has empty label", a.From, a.To)}
		}
		ti := len(g.transitions)
		g.transitions = append(g.transitions, Transition{From: from, To: to, Label: a.Label, Action: a.Action})
		g.outgoing[from] = append(g.outgoing[from], ti)
	}

	if err := g.checkReachability(); err != nil {
		return nil, err
	}
	return g, nil
}

// checkReachability verifies every terminal is reachable from the initial
// state. Runs a breadth-first sweep in O(N+E).
func (g *Graph) checkReachability() error {
	seen := make([]bool, len(g.states))
	queue := []int{g.initial}
	seen[g.initial] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, ti := range g.outgoing[cur] {
			next := g.transitions[ti].To
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	for _, t := range g.terminals {
		if !seen[t] {
			return &ValidationError{
				Kind:   KindUnreachableTerminal,
				Detail: fmt.Sprintf("terminal state %q is unreachable from %q", g.states[t].ID, g.states[g.initial].ID),
			}
		}
	}
	return nil
}

// StateCount returns the number of states.
func (g *Graph) StateCount() int { return len(g.states) }

// TransitionCount returns the number of transitions, counting parallel
// edges individually.
func (g *Graph) TransitionCount() int { return len(g.transitions) }

// State returns the state at the given arena index.
func (g *Graph) State(i int) State { return g.states[i] }

// Transition returns the transition at the given arena index.
func (g *Graph) Transition(i int) Transition { return g.transitions[i] }

// StateIndex resolves a state id to its arena index.
func (g *Graph) StateIndex(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Outgoing returns the transition indices leaving the given state, in
// insertion order. The returned slice is a read-only view.
func (g *Graph) Outgoing(state int) []int { return g.outgoing[state] }

// Initial returns the arena index of the initial state.
func (g *Graph) Initial() int { return g.initial }

// Terminals returns the arena indices of all terminal states, in
// declaration order. The returned slice is a read-only view.
func (g *Graph) Terminals() []int { return g.terminals }

// IsTerminal reports whether the state at the given index is terminal.
func (g *Graph) IsTerminal(state int) bool { return g.states[state].IsTerminal }

// StateID returns the identifier of the state at the given index.
func (g *Graph) StateID(state int) string { return g.states[state].ID }

// LoopCount returns the number of self-loop transitions.
func (g *Graph) LoopCount() int {
	n := 0
	for _, t := range g.transitions {
		if t.SelfLoop() {
			n++
		}
	}
	return n
}

// Package graphio reads and writes FSM graph descriptions.
//
// Two input forms are supported: the JSON workflow description produced by
// the upstream flow-extraction step (a workflow_logic.transitions list,
// optionally with an explicit state list), and Graphviz DOT files, from
// which edges are recovered line by line. Both forms resolve to a validated
// fsm.Graph. JSON output is deterministic so serialized descriptions can be
// hashed and cached.
package graphio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	qaerrors "github.com/Gauravv801/QA-Eval/pkg/errors"
	"github.com/Gauravv801/QA-Eval/pkg/fsm"
)

// AutoProceedLabel is substituted for transitions with no trigger intent,
// e.g. unconditional hops and unlabeled DOT edges.
const AutoProceedLabel = "AUTO_PROCEED"

// StateDesc describes one state in a JSON graph description.
type StateDesc struct {
	ID          string `json:"id"`
	IsInitial   bool   `json:"is_initial,omitempty"`
	IsTerminal  bool   `json:"is_terminal,omitempty"`
	Description string `json:"description,omitempty"`
}

// TransitionDesc describes one transition. Field names follow the upstream
// extraction output.
type TransitionDesc struct {
	FromState     string `json:"from_state"`
	ToState       string `json:"to_state"`
	TriggerIntent string `json:"trigger_intent,omitempty"`
	AgentAction   string `json:"agent_action,omitempty"`
}

// WorkflowLogic wraps the transition list under its upstream key.
type WorkflowLogic struct {
	Transitions []TransitionDesc `json:"transitions"`
}

// Description is the JSON graph description document.
//
// States is optional: when absent, the state set is inferred from the
// transition endpoints and the entry/exit options mark the initial and
// terminal states.
type Description struct {
	States        []StateDesc   `json:"states,omitempty"`
	WorkflowLogic WorkflowLogic `json:"workflow_logic"`
}

// Options resolves a description into a graph.
type Options struct {
	// Entry names the initial state. Required when the description has no
	// explicit state list; otherwise it overrides the is_initial flags.
	Entry string

	// Exit names the terminal state, with the same rules as Entry.
	Exit string
}

// ToGraph resolves a description into a validated graph.
//
// Transitions missing either endpoint are dropped, mirroring the upstream
// extraction step which emits partial rows; the count of dropped rows is
// returned so callers can warn. Empty trigger intents become
// AutoProceedLabel. State ids pass through ValidateStateID because they end
// up in cache file names, DOT source and report text.
func ToGraph(desc *Description, opts Options) (*fsm.Graph, int, error) {
	var arcs []fsm.Arc
	dropped := 0
	endpoint := make(map[string]bool)
	for _, t := range desc.WorkflowLogic.Transitions {
		if t.FromState == "" || t.ToState == "" {
			dropped++
			continue
		}
		label := t.TriggerIntent
		if label == "" {
			label = AutoProceedLabel
		}
		endpoint[t.FromState] = true
		endpoint[t.ToState] = true
		arcs = append(arcs, fsm.Arc{From: t.FromState, To: t.ToState, Label: label, Action: t.AgentAction})
	}

	var states []fsm.State
	if len(desc.States) > 0 {
		for _, s := range desc.States {
			if err := qaerrors.ValidateStateID(s.ID); err != nil {
				return nil, dropped, err
			}
			st := fsm.State{ID: s.ID, IsInitial: s.IsInitial, IsTerminal: s.IsTerminal}
			if opts.Entry != "" {
				st.IsInitial = s.ID == opts.Entry
			}
			if opts.Exit != "" {
				st.IsTerminal = s.ID == opts.Exit
			}
			states = append(states, st)
		}
	} else {
		if opts.Entry == "" || opts.Exit == "" {
			return nil, dropped, fmt.Errorf("description has no state list: entry and exit states are required")
		}
		ids := make([]string, 0, len(endpoint))
		for id := range endpoint {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if err := qaerrors.ValidateStateID(id); err != nil {
				return nil, dropped, err
			}
			states = append(states, fsm.State{
				ID:         id,
				IsInitial:  id == opts.Entry,
				IsTerminal: id == opts.Exit,
			})
		}
		if !endpoint[opts.Entry] {
			return nil, dropped, fmt.Errorf("entry state %q appears in no transition", opts.Entry)
		}
		if !endpoint[opts.Exit] {
			return nil, dropped, fmt.Errorf("exit state %q appears in no transition", opts.Exit)
		}
	}

	g, err := fsm.New(states, arcs)
	if err != nil {
		return nil, dropped, err
	}
	return g, dropped, nil
}

// FromGraph converts a graph back into a description with an explicit,
// sorted state list.
func FromGraph(g *fsm.Graph) *Description {
	desc := &Description{}
	ids := make([]string, 0, g.StateCount())
	for i := 0; i < g.StateCount(); i++ {
		ids = append(ids, g.StateID(i))
	}
	sort.Strings(ids)
	for _, id := range ids {
		i, _ := g.StateIndex(id)
		s := g.State(i)
		desc.States = append(desc.States, StateDesc{ID: s.ID, IsInitial: s.IsInitial, IsTerminal: s.IsTerminal})
	}
	for i := 0; i < g.TransitionCount(); i++ {
		tr := g.Transition(i)
		desc.WorkflowLogic.Transitions = append(desc.WorkflowLogic.Transitions, TransitionDesc{
			FromState:     g.StateID(tr.From),
			ToState:       g.StateID(tr.To),
			TriggerIntent: tr.Label,
			AgentAction:   tr.Action,
		})
	}
	return desc
}

// Decode reads a JSON description from r.
func Decode(r io.Reader) (*Description, error) {
	var desc Description
	dec := json.NewDecoder(r)
	if err := dec.Decode(&desc); err != nil {
		return nil, fmt.Errorf("decoding graph description: %w", err)
	}
	if len(desc.WorkflowLogic.Transitions) == 0 && len(desc.States) == 0 {
		return nil, fmt.Errorf("graph description is empty")
	}
	return &desc, nil
}

// Read loads a JSON description from a file.
func Read(path string) (*Description, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening graph description: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes the description as indented JSON.
func Encode(w io.Writer, desc *Description) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(desc); err != nil {
		return fmt.Errorf("encoding graph description: %w", err)
	}
	return nil
}

// Write saves the description to a file as indented JSON.
func Write(path string, desc *Description) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating graph description file: %w", err)
	}
	if err := Encode(f, desc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

package graphio

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Gauravv801/QA-Eval/pkg/fsm"
)

const exampleJSON = `{
  "states": [
    {"id": "STATE_GREETING", "is_initial": true},
    {"id": "STATE_ASK"},
    {"id": "STATE_END", "is_terminal": true}
  ],
  "workflow_logic": {
    "transitions": [
      {"from_state": "STATE_GREETING", "to_state": "STATE_ASK", "trigger_intent": "greet", "agent_action": "say hello"},
      {"from_state": "STATE_ASK", "to_state": "STATE_ASK", "trigger_intent": "clarify"},
      {"from_state": "STATE_ASK", "to_state": "STATE_END", "trigger_intent": "done"}
    ]
  }
}`

func TestDecodeAndToGraph(t *testing.T) {
	desc, err := Decode(strings.NewReader(exampleJSON))
	if err != nil {
		t.Fatalf("Decode() unexpected error: %v", err)
	}
	g, dropped, err := ToGraph(desc, Options{})
	if err != nil {
		t.Fatalf("ToGraph() unexpected error: %v", err)
	}
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	if g.StateCount() != 3 || g.TransitionCount() != 3 {
		t.Errorf("graph = %d states, %d transitions", g.StateCount(), g.TransitionCount())
	}
	if got := g.StateID(g.Initial()); got != "STATE_GREETING" {
		t.Errorf("initial = %s", got)
	}
	if tr := g.Transition(0); tr.Action != "say hello" {
		t.Errorf("action not carried: %+v", tr)
	}
}

func TestToGraph(t *testing.T) {
	tests := []struct {
		name        string
		desc        *Description
		opts        Options
		wantErr     bool
		wantDropped int
		check       func(*testing.T, *fsm.Graph)
	}{
		{
			name: "states inferred from endpoints",
			desc: &Description{WorkflowLogic: WorkflowLogic{Transitions: []TransitionDesc{
				{FromState: "A", ToState: "B", TriggerIntent: "x"},
				{FromState: "B", ToState: "C", TriggerIntent: "y"},
			}}},
			opts: Options{Entry: "A", Exit: "C"},
			check: func(t *testing.T, g *fsm.Graph) {
				if g.StateCount() != 3 {
					t.Errorf("StateCount() = %d, want 3", g.StateCount())
				}
			},
		},
		{
			name: "empty trigger becomes auto proceed",
			desc: &Description{WorkflowLogic: WorkflowLogic{Transitions: []TransitionDesc{
				{FromState: "A", ToState: "B"},
			}}},
			opts: Options{Entry: "A", Exit: "B"},
			check: func(t *testing.T, g *fsm.Graph) {
				if got := g.Transition(0).Label; got != AutoProceedLabel {
					t.Errorf("label = %q, want %q", got, AutoProceedLabel)
				}
			},
		},
		{
			name: "partial transitions dropped",
			desc: &Description{WorkflowLogic: WorkflowLogic{Transitions: []TransitionDesc{
				{FromState: "A", ToState: "B", TriggerIntent: "x"},
				{FromState: "A", TriggerIntent: "orphan"},
				{ToState: "B"},
			}}},
			opts:        Options{Entry: "A", Exit: "B"},
			wantDropped: 2,
		},
		{
			name: "inferred states require entry and exit",
			desc: &Description{WorkflowLogic: WorkflowLogic{Transitions: []TransitionDesc{
				{FromState: "A", ToState: "B", TriggerIntent: "x"},
			}}},
			wantErr: true,
		},
		{
			name: "entry not in any transition",
			desc: &Description{WorkflowLogic: WorkflowLogic{Transitions: []TransitionDesc{
				{FromState: "A", ToState: "B", TriggerIntent: "x"},
			}}},
			opts:    Options{Entry: "GHOST", Exit: "B"},
			wantErr: true,
		},
		{
			name: "explicit state id with path traversal rejected",
			desc: &Description{
				States: []StateDesc{
					{ID: "A", IsInitial: true},
					{ID: "../etc", IsTerminal: true},
				},
				WorkflowLogic: WorkflowLogic{Transitions: []TransitionDesc{
					{FromState: "A", ToState: "../etc", TriggerIntent: "x"},
				}},
			},
			wantErr: true,
		},
		{
			name: "inferred state id with control character rejected",
			desc: &Description{WorkflowLogic: WorkflowLogic{Transitions: []TransitionDesc{
				{FromState: "A", ToState: "B\x07", TriggerIntent: "x"},
			}}},
			opts:    Options{Entry: "A", Exit: "B\x07"},
			wantErr: true,
		},
		{
			name: "entry override on explicit states",
			desc: &Description{
				States: []StateDesc{
					{ID: "A", IsInitial: true},
					{ID: "B"},
					{ID: "C", IsTerminal: true},
				},
				WorkflowLogic: WorkflowLogic{Transitions: []TransitionDesc{
					{FromState: "A", ToState: "B", TriggerIntent: "x"},
					{FromState: "B", ToState: "C", TriggerIntent: "y"},
				}},
			},
			opts: Options{Entry: "B", Exit: "C"},
			check: func(t *testing.T, g *fsm.Graph) {
				if got := g.StateID(g.Initial()); got != "B" {
					t.Errorf("initial = %s, want B", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, dropped, err := ToGraph(tt.desc, tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ToGraph() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ToGraph() unexpected error: %v", err)
			}
			if dropped != tt.wantDropped {
				t.Errorf("dropped = %d, want %d", dropped, tt.wantDropped)
			}
			if tt.check != nil {
				tt.check(t, g)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	desc, err := Decode(strings.NewReader(exampleJSON))
	if err != nil {
		t.Fatalf("Decode() unexpected error: %v", err)
	}
	g, _, err := ToGraph(desc, Options{})
	if err != nil {
		t.Fatalf("ToGraph() unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, FromGraph(g)); err != nil {
		t.Fatalf("Encode() unexpected error: %v", err)
	}
	again, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() round trip error: %v", err)
	}
	g2, _, err := ToGraph(again, Options{})
	if err != nil {
		t.Fatalf("ToGraph() round trip error: %v", err)
	}
	if g2.StateCount() != g.StateCount() || g2.TransitionCount() != g.TransitionCount() {
		t.Errorf("round trip changed shape: %d/%d vs %d/%d",
			g2.StateCount(), g2.TransitionCount(), g.StateCount(), g.TransitionCount())
	}
}

func TestEncodeDeterministic(t *testing.T) {
	desc, err := Decode(strings.NewReader(exampleJSON))
	if err != nil {
		t.Fatalf("Decode() unexpected error: %v", err)
	}
	g, _, err := ToGraph(desc, Options{})
	if err != nil {
		t.Fatalf("ToGraph() unexpected error: %v", err)
	}
	var first bytes.Buffer
	if err := Encode(&first, FromGraph(g)); err != nil {
		t.Fatalf("Encode() unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		var buf bytes.Buffer
		if err := Encode(&buf, FromGraph(g)); err != nil {
			t.Fatalf("Encode() unexpected error: %v", err)
		}
		if buf.String() != first.String() {
			t.Fatalf("run %d produced different JSON", i)
		}
	}
}

func TestReadWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")

	desc, err := Decode(strings.NewReader(exampleJSON))
	if err != nil {
		t.Fatalf("Decode() unexpected error: %v", err)
	}
	if err := Write(path, desc); err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}
	loaded, err := Read(path)
	if err != nil {
		t.Fatalf("Read() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(loaded, desc) {
		t.Errorf("Read() = %+v, want %+v", loaded, desc)
	}

	if _, err := Read(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Read() succeeded on missing file")
	}
}

func TestParseDOT(t *testing.T) {
	src := `digraph {
    rankdir=TB;
    STATE_GREETING -> STATE_ASK [label="greet"];
    STATE_ASK -> STATE_ASK [label="clarify"];
    STATE_ASK -> STATE_END
}`
	arcs, err := ParseDOT(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseDOT() unexpected error: %v", err)
	}
	want := []fsm.Arc{
		{From: "STATE_GREETING", To: "STATE_ASK", Label: "greet"},
		{From: "STATE_ASK", To: "STATE_ASK", Label: "clarify"},
		{From: "STATE_ASK", To: "STATE_END", Label: AutoProceedLabel},
	}
	if !reflect.DeepEqual(arcs, want) {
		t.Errorf("ParseDOT() = %v, want %v", arcs, want)
	}
}

func TestDOTGraph(t *testing.T) {
	src := `digraph {
    A -> B [label="go"];
    B -> C [label="finish"];
}`
	g, err := DOTGraph(strings.NewReader(src), "A", "C")
	if err != nil {
		t.Fatalf("DOTGraph() unexpected error: %v", err)
	}
	if g.StateCount() != 3 || g.TransitionCount() != 2 {
		t.Errorf("graph = %d states, %d transitions", g.StateCount(), g.TransitionCount())
	}
	if got := g.StateID(g.Initial()); got != "A" {
		t.Errorf("initial = %s", got)
	}
}

func TestDecodeRejectsEmpty(t *testing.T) {
	if _, err := Decode(strings.NewReader(`{}`)); err == nil {
		t.Error("Decode() accepted empty document")
	}
	if _, err := Decode(strings.NewReader(`not json`)); err == nil {
		t.Error("Decode() accepted invalid JSON")
	}
}

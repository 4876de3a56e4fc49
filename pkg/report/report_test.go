package report

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/Gauravv801/QA-Eval/pkg/cluster"
	"github.com/Gauravv801/QA-Eval/pkg/cover"
	"github.com/Gauravv801/QA-Eval/pkg/fsm"
	"github.com/Gauravv801/QA-Eval/pkg/paths"
)

func buildDoc(t *testing.T, states []fsm.State, arcs []fsm.Arc) *Document {
	t.Helper()
	g, err := fsm.New(states, arcs)
	if err != nil {
		t.Fatalf("fsm.New() unexpected error: %v", err)
	}
	enum, err := paths.Enumerate(context.Background(), g, paths.Options{})
	if err != nil {
		t.Fatalf("Enumerate() unexpected error: %v", err)
	}
	clusters, err := cluster.Cluster(enum.Paths, cluster.Config{})
	if err != nil {
		t.Fatalf("Cluster() unexpected error: %v", err)
	}
	cov, err := cover.Prioritize(g, enum.Paths, clusters)
	if err != nil {
		t.Fatalf("Prioritize() unexpected error: %v", err)
	}
	return Build(g, enum, cov, "")
}

func exampleDoc(t *testing.T) *Document {
	t.Helper()
	return buildDoc(t,
		[]fsm.State{
			{ID: "STATE_GREETING", IsInitial: true},
			{ID: "STATE_ASK"},
			{ID: "STATE_CONFIRM"},
			{ID: "STATE_END", IsTerminal: true},
		},
		[]fsm.Arc{
			{From: "STATE_GREETING", To: "STATE_ASK", Label: "greet", Action: "say hello"},
			{From: "STATE_ASK", To: "STATE_ASK", Label: "clarify"},
			{From: "STATE_ASK", To: "STATE_CONFIRM", Label: "provide_info"},
			{From: "STATE_CONFIRM", To: "STATE_END", Label: "confirm"},
		},
	)
}

func TestBuild(t *testing.T) {
	doc := exampleDoc(t)
	if doc.TotalRawPaths != 2 {
		t.Errorf("TotalRawPaths = %d, want 2", doc.TotalRawPaths)
	}
	if len(doc.P0) != 1 || len(doc.P2) != 1 || len(doc.P1)+len(doc.P3) != 0 {
		t.Fatalf("bucket sizes = %d/%d/%d/%d", len(doc.P0), len(doc.P1), len(doc.P2), len(doc.P3))
	}
	p0 := doc.P0[0]
	if p0.ID != "P0.1" || p0.Length != 3 || p0.Start != "STATE_GREETING" {
		t.Errorf("P0 record = %+v", p0)
	}
	if got := p0.Labels(); !reflect.DeepEqual(got, []string{"greet", "provide_info", "confirm"}) {
		t.Errorf("P0 labels = %v", got)
	}
	if p0.Segments[0].Action != "say hello" {
		t.Errorf("Action not carried: %+v", p0.Segments[0])
	}
	if doc.P2[0].ID != "P2.1" {
		t.Errorf("P2 record id = %s", doc.P2[0].ID)
	}
}

func TestBuildEntryOverride(t *testing.T) {
	// Enumerating from the terminal state yields a single zero-length path.
	// With no segments, the record's start state must come from the
	// override, not from the graph's initial state.
	g, err := fsm.New(
		[]fsm.State{
			{ID: "A", IsInitial: true},
			{ID: "B", IsTerminal: true},
		},
		[]fsm.Arc{{From: "A", To: "B", Label: "go"}},
	)
	if err != nil {
		t.Fatalf("fsm.New() unexpected error: %v", err)
	}
	enum, err := paths.Enumerate(context.Background(), g, paths.Options{Entry: "B"})
	if err != nil {
		t.Fatalf("Enumerate() unexpected error: %v", err)
	}
	clusters, err := cluster.Cluster(enum.Paths, cluster.Config{})
	if err != nil {
		t.Fatalf("Cluster() unexpected error: %v", err)
	}
	cov, err := cover.Prioritize(g, enum.Paths, clusters)
	if err != nil {
		t.Fatalf("Prioritize() unexpected error: %v", err)
	}

	doc := Build(g, enum, cov, "B")
	if len(doc.P0) != 1 || doc.P0[0].Length != 0 {
		t.Fatalf("buckets = %d/%d/%d/%d, want single zero-length P0 path",
			len(doc.P0), len(doc.P1), len(doc.P2), len(doc.P3))
	}
	if got := doc.P0[0].Start; got != "B" {
		t.Errorf("Start = %q, want %q", got, "B")
	}
}

func TestEmit(t *testing.T) {
	doc := exampleDoc(t)
	text := Emitter{}.Emit(doc)

	for _, want := range []string{
		"CLUSTERING REPORT (Prioritized)\n",
		"Total Raw Paths: 2\n",
		"Final Counts: P0=1 | P1=0 | P2=1 | P3=0\n",
		MarkerP0 + "\n",
		MarkerP1 + "\n",
		MarkerP2 + "\n",
		MarkerP3 + "\n",
		"P0.1 (Length: 3):\n",
		"(STATE_GREETING) --[greet]--> (STATE_ASK) --[provide_info]--> (STATE_CONFIRM) --[confirm]--> (STATE_END)",
		"No additional logic paths found beyond P0.\n",
		"Total: 0\n",
		strings.Repeat("=", 80) + "\n",
		strings.Repeat("-", 80) + "\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(text, MarkerWarning) {
		t.Error("warning block present with nothing skipped")
	}
	if strings.Contains(text, "truncated") {
		t.Error("truncation warning present on complete enumeration")
	}
}

func TestEmitWrapsLongPaths(t *testing.T) {
	doc := &Document{
		P0: []PathRecord{{
			ID: "P0.1", Length: 4, Start: "A",
			Segments: []Segment{
				{From: "A", To: "B", Label: "w"},
				{From: "B", To: "C", Label: "x"},
				{From: "C", To: "D", Label: "y"},
				{From: "D", To: "E", Label: "z"},
			},
		}},
	}
	text := Emitter{}.Emit(doc)
	want := "(A) --[w]--> (B) --[x]--> (C) --[y]--> (D)\n         --[z]--> (E)"
	if !strings.Contains(text, want) {
		t.Errorf("wrapped path not found in:\n%s", text)
	}
}

func TestEmitSkippedAndTruncated(t *testing.T) {
	doc := &Document{
		Truncated:    true,
		P0:           []PathRecord{{ID: "P0.1", Start: "A"}},
		SkippedEdges: []EdgeRecord{{From: "X", To: "Y", Label: "ghost"}},
		SkippedLoops: []EdgeRecord{{From: "Z", To: "Z", Label: "spin"}},
	}
	text := Emitter{}.Emit(doc)
	for _, want := range []string{
		"WARNING: Path enumeration truncated by safety budget\n",
		MarkerWarning + "\n",
		"Skipped Edges: [(X --[ghost]--> Y)]\n",
		"Skipped Loops: [(Z --[spin]--> Z)]\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestEmitDeterministic(t *testing.T) {
	first := Emitter{}.Emit(exampleDoc(t))
	for i := 0; i < 5; i++ {
		if got := (Emitter{}).Emit(exampleDoc(t)); got != first {
			t.Fatalf("run %d produced a different report", i)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	doc := exampleDoc(t)
	doc.Truncated = true
	doc.SkippedEdges = []EdgeRecord{{From: "X", To: "Y", Label: "ghost"}}
	text := Emitter{}.Emit(doc)

	parsed, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if parsed.TotalRawPaths != doc.TotalRawPaths {
		t.Errorf("TotalRawPaths = %d, want %d", parsed.TotalRawPaths, doc.TotalRawPaths)
	}
	if !parsed.Truncated {
		t.Error("Truncated not recovered")
	}
	if parsed.Stats.P0 != 1 || parsed.Stats.P2 != 1 {
		t.Errorf("Stats = %+v", parsed.Stats)
	}
	if len(parsed.P0) != 1 || len(parsed.P2) != 1 {
		t.Fatalf("bucket sizes = %d/%d/%d/%d",
			len(parsed.P0), len(parsed.P1), len(parsed.P2), len(parsed.P3))
	}
	p0 := parsed.P0[0]
	if p0.ID != "P0.1" || p0.Length != 3 || p0.Start != "STATE_GREETING" {
		t.Errorf("P0 record = %+v", p0)
	}
	if !reflect.DeepEqual(p0.Labels(), doc.P0[0].Labels()) {
		t.Errorf("P0 labels = %v, want %v", p0.Labels(), doc.P0[0].Labels())
	}
	for i, s := range p0.Segments {
		if s.From != doc.P0[0].Segments[i].From || s.To != doc.P0[0].Segments[i].To {
			t.Errorf("segment %d = %+v, want %+v", i, s, doc.P0[0].Segments[i])
		}
	}
	if !reflect.DeepEqual(parsed.SkippedEdges, doc.SkippedEdges) {
		t.Errorf("SkippedEdges = %v, want %v", parsed.SkippedEdges, doc.SkippedEdges)
	}
}

func TestParseWrappedPath(t *testing.T) {
	doc := &Document{
		P0: []PathRecord{{
			ID: "P0.1", Length: 5, Start: "A",
			Segments: []Segment{
				{From: "A", To: "B", Label: "s1"},
				{From: "B", To: "C", Label: "s2"},
				{From: "C", To: "D", Label: "s3"},
				{From: "D", To: "E", Label: "s4"},
				{From: "E", To: "F", Label: "s5"},
			},
		}},
	}
	parsed, err := Parse(strings.NewReader(Emitter{}.Emit(doc)))
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if len(parsed.P0) != 1 {
		t.Fatalf("P0 size = %d", len(parsed.P0))
	}
	if got := parsed.P0[0].Labels(); !reflect.DeepEqual(got, []string{"s1", "s2", "s3", "s4", "s5"}) {
		t.Errorf("labels across wrap = %v", got)
	}
}

func TestParseRejectsForeignText(t *testing.T) {
	if _, err := Parse(strings.NewReader("not a report at all")); err == nil {
		t.Error("Parse() accepted arbitrary text")
	}
}

package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/Gauravv801/QA-Eval/pkg/cache"
	"github.com/Gauravv801/QA-Eval/pkg/fsm"
)

func testGraph(t *testing.T) *fsm.Graph {
	t.Helper()
	g, err := fsm.New(
		[]fsm.State{
			{ID: "STATE_GREETING", IsInitial: true},
			{ID: "STATE_ASK"},
			{ID: "STATE_CONFIRM"},
			{ID: "STATE_END", IsTerminal: true},
		},
		[]fsm.Arc{
			{From: "STATE_GREETING", To: "STATE_ASK", Label: "greet"},
			{From: "STATE_ASK", To: "STATE_ASK", Label: "clarify"},
			{From: "STATE_ASK", To: "STATE_CONFIRM", Label: "provide_info"},
			{From: "STATE_CONFIRM", To: "STATE_END", Label: "confirm"},
		},
	)
	if err != nil {
		t.Fatalf("fsm.New() unexpected error: %v", err)
	}
	return g
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() unexpected error: %v", err)
	}
	if opts.MaxPaths == 0 || opts.MaxDepth == 0 {
		t.Error("budget defaults not applied")
	}
	if opts.IdenticalThreshold == 0 || opts.VariationThreshold == 0 {
		t.Error("threshold defaults not applied")
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatReport {
		t.Errorf("Formats = %v, want [report]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("logger default not applied")
	}

	// Idempotent
	before := opts.Formats
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second ValidateAndSetDefaults() error: %v", err)
	}
	if &before[0] != &opts.Formats[0] {
		t.Error("second validation rebuilt formats")
	}
}

func TestOptionsValidateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "negative budget", opts: Options{MaxPaths: -1}},
		{name: "unknown format", opts: Options{Formats: []string{"pdf95"}}},
		{name: "inverted thresholds", opts: Options{IdenticalThreshold: 0.5, VariationThreshold: 0.9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("ValidateAndSetDefaults() accepted invalid options")
			}
		})
	}
}

func TestRunnerExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	res, err := runner.Execute(context.Background(), testGraph(t), Options{
		Formats: []string{FormatReport, FormatJSON, FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}

	if res.GraphHash == "" {
		t.Error("GraphHash empty")
	}
	if res.Document == nil || res.Document.Stats.TotalPaths != 2 {
		t.Fatalf("Document = %+v", res.Document)
	}
	if !strings.Contains(res.ReportText, "CLUSTERING REPORT (Prioritized)") {
		t.Error("ReportText missing header")
	}
	if string(res.Artifacts[FormatReport]) != res.ReportText {
		t.Error("report artifact differs from ReportText")
	}
	if !strings.Contains(string(res.Artifacts[FormatJSON]), `"total_raw_paths"`) {
		t.Error("json artifact missing document fields")
	}
	if !strings.Contains(string(res.Artifacts[FormatDOT]), "digraph G {") {
		t.Error("dot artifact missing graph")
	}
	if res.Stats.StateCount != 4 || res.Stats.TransitionCount != 4 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if res.CacheInfo.AnalysisHit {
		t.Error("first run reported analysis cache hit")
	}
}

func TestRunnerAnalysisCaching(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() unexpected error: %v", err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	g := testGraph(t)

	first, err := runner.Execute(ctx, g, Options{})
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if first.CacheInfo.AnalysisHit {
		t.Error("first run hit the cache")
	}

	second, err := runner.Execute(ctx, g, Options{})
	if err != nil {
		t.Fatalf("Execute() second run error: %v", err)
	}
	if !second.CacheInfo.AnalysisHit {
		t.Error("second run missed the cache")
	}
	if second.ReportText != first.ReportText {
		t.Error("cached run produced different report")
	}

	// Different options miss
	other, err := runner.Execute(ctx, g, Options{MaxDepth: 5})
	if err != nil {
		t.Fatalf("Execute() with other options error: %v", err)
	}
	if other.CacheInfo.AnalysisHit {
		t.Error("different options hit the same cache entry")
	}

	// Refresh bypasses the cache
	refreshed, err := runner.Execute(ctx, g, Options{Refresh: true})
	if err != nil {
		t.Fatalf("Execute() refresh error: %v", err)
	}
	if refreshed.CacheInfo.AnalysisHit {
		t.Error("refresh run hit the cache")
	}
}

func TestRunnerDeterministicAcrossRuns(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil)
	first, err := runner.Execute(ctx, testGraph(t), Options{})
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		res, err := runner.Execute(ctx, testGraph(t), Options{})
		if err != nil {
			t.Fatalf("Execute() run %d error: %v", i, err)
		}
		if res.ReportText != first.ReportText {
			t.Fatalf("run %d produced a different report", i)
		}
		if res.GraphHash != first.GraphHash {
			t.Fatalf("run %d produced a different graph hash", i)
		}
	}
}

func TestGraphHashSensitivity(t *testing.T) {
	g1 := testGraph(t)
	g2, err := fsm.New(
		[]fsm.State{
			{ID: "STATE_GREETING", IsInitial: true},
			{ID: "STATE_END", IsTerminal: true},
		},
		[]fsm.Arc{{From: "STATE_GREETING", To: "STATE_END", Label: "bye"}},
	)
	if err != nil {
		t.Fatalf("fsm.New() unexpected error: %v", err)
	}
	if GraphHash(g1) == GraphHash(g2) {
		t.Error("different graphs share a hash")
	}
	if GraphHash(g1) != GraphHash(testGraph(t)) {
		t.Error("identical graphs hash differently")
	}
}

func TestRunnerDegenerateGraph(t *testing.T) {
	// B is terminal and reachable, but enumeration is rooted at an entry
	// override that cannot reach it.
	g, err := fsm.New(
		[]fsm.State{
			{ID: "A", IsInitial: true},
			{ID: "B", IsTerminal: true},
			{ID: "C"},
		},
		[]fsm.Arc{
			{From: "A", To: "B", Label: "x"},
			{From: "A", To: "C", Label: "y"},
		},
	)
	if err != nil {
		t.Fatalf("fsm.New() unexpected error: %v", err)
	}
	runner := NewRunner(nil, nil, nil)
	if _, err := runner.Execute(context.Background(), g, Options{EntryState: "C"}); err == nil {
		t.Error("Execute() succeeded on degenerate graph")
	}
}

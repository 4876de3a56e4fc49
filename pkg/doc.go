// Package pkg provides the core libraries for QA-Eval path analysis.
//
// # Overview
//
// QA-Eval turns a conversational agent's state machine into a prioritized
// test plan. The pkg directory is organized around the analysis pipeline:
//
//	Flow Description (JSON/DOT)
//	         ↓
//	    [graphio] package (decode + validate)
//	         ↓
//	    [fsm] package (immutable graph)
//	         ↓
//	    [paths] package (exhaustive enumeration)
//	         ↓
//	    [cluster] package (archetype grouping)
//	         ↓
//	    [cover] package (P0-P3 prioritization)
//	         ↓
//	    [report] package (text report + document)
//
// # Quick Start
//
// Run the complete pipeline through a Runner:
//
//	import (
//	    "context"
//	    "github.com/Gauravv801/QA-Eval/pkg/graphio"
//	    "github.com/Gauravv801/QA-Eval/pkg/pipeline"
//	)
//
//	desc, _ := graphio.Read("flow.json")
//	g, _, _ := graphio.ToGraph(desc, graphio.Options{})
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, _ := runner.Execute(context.Background(), g, pipeline.Options{})
//	fmt.Print(result.ReportText)
//
// # Main Packages
//
// ## Analysis
//
// [fsm] - Validated, immutable state machine graph. Exactly one initial
// state, at least one terminal state, every terminal reachable.
//
// [paths] - Depth-first path enumeration with a one-use-per-transition
// policy and a safety budget against combinatorial explosion.
//
// [cluster] - LCS-ratio similarity clustering of paths into archetypes.
//
// [cover] - Greedy set-cover prioritization into P0 (golden paths),
// P1 (required variations), P2 (loop stress tests), and P3 (archive).
//
// ## Output
//
// [report] - Sectioned text report emitter and parser, plus the
// machine-readable document form.
//
// [render] - Graphviz DOT export and SVG/PNG diagram rendering.
//
// [graphio] - JSON and DOT flow description input and output.
//
// ## Infrastructure
//
// [pipeline] - Complete analyze → render pipeline with caching, used by
// both the CLI and the HTTP API.
//
// [cache] - TTL byte cache with file, Redis, and null backends.
//
// [history] - Saved analysis runs with file and MongoDB backends.
//
// [errors] - Structured error codes shared across CLI and API.
//
// [observability] - Pluggable lifecycle hooks for analysis, cache, and
// history events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...        # All tests
//	go test ./pkg/paths/...  # Specific package
package pkg

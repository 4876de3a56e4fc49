// Package pipeline provides the core analysis pipeline for QA-Eval.
//
// This package implements the complete enumerate → cluster → prioritize →
// emit pipeline that can be used by CLI and API components. By centralizing
// this logic, we ensure consistent behavior across all entry points and
// avoid code duplication.
//
// # Architecture
//
// The pipeline consists of two cached stages:
//
//  1. Analyze: enumerate paths, cluster them into archetypes, run the
//     set-cover prioritization and build the report document
//  2. Render: produce the requested artifacts (text report, JSON document,
//     DOT source, SVG/PNG diagrams)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    EntryState: "STATE_GREETING",
//	    ExitState:  "STATE_END",
//	    Formats:    []string{"report", "svg"},
//	}
//	result, err := runner.Execute(ctx, g, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	text := result.ReportText
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Gauravv801/QA-Eval/pkg/cluster"
	"github.com/Gauravv801/QA-Eval/pkg/paths"
	"github.com/Gauravv801/QA-Eval/pkg/report"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// Format constants for output artifacts.
const (
	FormatReport = "report"
	FormatJSON   = "json"
	FormatDOT    = "dot"
	FormatSVG    = "svg"
	FormatPNG    = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatReport: true,
	FormatJSON:   true,
	FormatDOT:    true,
	FormatSVG:    true,
	FormatPNG:    true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the analysis pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Graph options
	EntryState string `json:"entry_state,omitempty"`
	ExitState  string `json:"exit_state,omitempty"`

	// Enumeration options
	MaxPaths int `json:"max_paths,omitempty"`
	MaxDepth int `json:"max_depth,omitempty"`

	// Clustering options
	IdenticalThreshold float64 `json:"identical_threshold,omitempty"`
	VariationThreshold float64 `json:"variation_threshold,omitempty"`

	// Output options
	Formats      []string `json:"formats,omitempty"`
	StepsPerLine int      `json:"steps_per_line,omitempty"`
	Refresh      bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// GraphHash is the content hash of the analyzed graph.
	GraphHash string

	// Document is the structured analysis result.
	Document *report.Document

	// ReportText is the rendered text report.
	ReportText string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	StateCount      int
	TransitionCount int
	RawPaths        int
	UniquePaths     int
	AnalyzeTime     time.Duration
	RenderTime      time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	AnalysisHit bool // Whether the analysis document came from cache
	RenderHit   bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: report, json, dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.MaxPaths == 0 {
		o.MaxPaths = paths.DefaultMaxPaths
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = paths.DefaultMaxDepth
	}
	if o.MaxPaths < 0 || o.MaxDepth < 0 {
		return fmt.Errorf("enumeration budget must be non-negative")
	}

	if o.IdenticalThreshold == 0 {
		o.IdenticalThreshold = cluster.DefaultIdenticalThreshold
	}
	if o.VariationThreshold == 0 {
		o.VariationThreshold = cluster.DefaultVariationThreshold
	}
	cfg := cluster.Config{
		IdenticalThreshold: o.IdenticalThreshold,
		VariationThreshold: o.VariationThreshold,
	}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return err
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatReport}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.StepsPerLine == 0 {
		o.StepsPerLine = report.DefaultStepsPerLine
	}
	if o.StepsPerLine < 0 {
		return fmt.Errorf("steps per line must be non-negative")
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// EnumerateOptions converts the pipeline options to enumerator options.
func (o *Options) EnumerateOptions() paths.Options {
	opts := paths.Options{
		Entry:  o.EntryState,
		Budget: paths.Budget{MaxPaths: o.MaxPaths, MaxDepth: o.MaxDepth},
	}
	if o.ExitState != "" {
		opts.Exits = []string{o.ExitState}
	}
	return opts
}

// ClusterConfig converts the pipeline options to clusterer config.
func (o *Options) ClusterConfig() cluster.Config {
	return cluster.Config{
		IdenticalThreshold: o.IdenticalThreshold,
		VariationThreshold: o.VariationThreshold,
	}
}

// fingerprint summarizes every option that changes the analysis output.
// Used as cache key material: same graph + same fingerprint = same result.
func (o *Options) fingerprint() string {
	return strings.Join([]string{
		"entry=" + o.EntryState,
		"exit=" + o.ExitState,
		fmt.Sprintf("maxpaths=%d", o.MaxPaths),
		fmt.Sprintf("maxdepth=%d", o.MaxDepth),
		fmt.Sprintf("identical=%g", o.IdenticalThreshold),
		fmt.Sprintf("variation=%g", o.VariationThreshold),
		fmt.Sprintf("steps=%d", o.StepsPerLine),
	}, "|")
}

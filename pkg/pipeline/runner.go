package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Gauravv801/QA-Eval/pkg/cache"
	"github.com/Gauravv801/QA-Eval/pkg/cluster"
	"github.com/Gauravv801/QA-Eval/pkg/cover"
	"github.com/Gauravv801/QA-Eval/pkg/fsm"
	"github.com/Gauravv801/QA-Eval/pkg/graphio"
	"github.com/Gauravv801/QA-Eval/pkg/observability"
	"github.com/Gauravv801/QA-Eval/pkg/paths"
	"github.com/Gauravv801/QA-Eval/pkg/render"
	"github.com/Gauravv801/QA-Eval/pkg/report"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// GraphHash computes the content hash of a graph from its canonical JSON
// description.
func GraphHash(g *fsm.Graph) string {
	var buf bytes.Buffer
	if err := graphio.Encode(&buf, graphio.FromGraph(g)); err != nil {
		return ""
	}
	return cache.Hash(buf.Bytes())
}

// Execute runs the complete analyze → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, g *fsm.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		GraphHash: GraphHash(g),
		Artifacts: make(map[string][]byte),
	}
	result.Stats.StateCount = g.StateCount()
	result.Stats.TransitionCount = g.TransitionCount()

	// Stage 1: Analyze
	analyzeStart := time.Now()
	doc, analysisHit, err := r.AnalyzeWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	result.Document = doc
	result.ReportText = report.Emitter{StepsPerLine: opts.StepsPerLine}.Emit(doc)
	result.Stats.AnalyzeTime = time.Since(analyzeStart)
	result.Stats.RawPaths = doc.TotalRawPaths
	result.Stats.UniquePaths = doc.Stats.TotalPaths
	result.CacheInfo.AnalysisHit = analysisHit

	opts.Logger.Info("analyzed graph",
		"states", g.StateCount(),
		"transitions", g.TransitionCount(),
		"paths", doc.Stats.TotalPaths,
		"truncated", doc.Truncated,
		"duration", result.Stats.AnalyzeTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, g, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// AnalyzeWithCacheInfo runs enumeration, clustering and prioritization with
// caching and returns cache hit info.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, g *fsm.Graph, opts Options) (*report.Document, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.AnalysisKey(GraphHash(g), cache.Hash([]byte(opts.fingerprint())))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var doc report.Document
			if err := json.Unmarshal(data, &doc); err == nil {
				return &doc, true, nil // Cache hit
			}
		}
	}

	doc, err := r.analyze(ctx, g, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := json.Marshal(doc); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.AnalysisTTL)
	}

	return doc, false, nil // Cache miss
}

// Analyze is a convenience wrapper that calls AnalyzeWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Analyze(ctx context.Context, g *fsm.Graph, opts Options) (*report.Document, error) {
	doc, _, err := r.AnalyzeWithCacheInfo(ctx, g, opts)
	return doc, err
}

// analyze runs the three analysis stages without caching.
func (r *Runner) analyze(ctx context.Context, g *fsm.Graph, opts Options) (*report.Document, error) {
	hooks := observability.Analysis()

	hooks.OnEnumerateStart(ctx, g.StateCount(), g.TransitionCount())
	start := time.Now()
	enum, err := paths.Enumerate(ctx, g, opts.EnumerateOptions())
	if err != nil {
		hooks.OnEnumerateComplete(ctx, 0, false, time.Since(start), err)
		return nil, fmt.Errorf("enumerate: %w", err)
	}
	hooks.OnEnumerateComplete(ctx, len(enum.Paths), enum.Truncated, time.Since(start), nil)
	if enum.Truncated {
		opts.Logger.Warn("path enumeration truncated by safety budget",
			"max_paths", opts.MaxPaths, "max_depth", opts.MaxDepth)
	}

	hooks.OnClusterStart(ctx, len(enum.Paths))
	start = time.Now()
	clusters, err := cluster.Cluster(enum.Paths, opts.ClusterConfig())
	if err != nil {
		hooks.OnClusterComplete(ctx, 0, time.Since(start), err)
		return nil, fmt.Errorf("cluster: %w", err)
	}
	hooks.OnClusterComplete(ctx, len(clusters.Archetypes), time.Since(start), nil)

	hooks.OnPrioritizeStart(ctx, len(enum.Paths))
	start = time.Now()
	cov, err := cover.Prioritize(g, enum.Paths, clusters)
	if err != nil {
		hooks.OnPrioritizeComplete(ctx, 0, 0, 0, 0, time.Since(start), err)
		return nil, fmt.Errorf("prioritize: %w", err)
	}
	hooks.OnPrioritizeComplete(ctx,
		cov.Stats.P0, cov.Stats.P1, cov.Stats.P2, cov.Stats.P3,
		time.Since(start), nil)

	return report.Build(g, enum, cov, opts.EntryState), nil
}

// RenderWithCacheInfo produces the requested artifacts with caching and
// returns cache hit info. Graph-derived artifacts (dot, svg, png) are
// cached per format; report and json are cheap to rebuild and are not.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *fsm.Graph, doc *report.Document, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	hooks := observability.Analysis()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	graphHash := GraphHash(g)
	artifacts := make(map[string][]byte)
	allCached := true
	sawCacheable := false

	for _, format := range opts.Formats {
		switch format {
		case FormatReport:
			artifacts[format] = []byte(report.Emitter{StepsPerLine: opts.StepsPerLine}.Emit(doc))
			continue
		case FormatJSON:
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
				return nil, false, fmt.Errorf("encoding document: %w", err)
			}
			artifacts[format] = data
			continue
		}

		sawCacheable = true
		cacheKey := r.Keyer.ArtifactKey(graphHash, format)
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
				continue
			}
		}
		allCached = false

		data, err := r.renderGraphArtifact(ctx, g, format)
		if err != nil {
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, false, err
		}
		artifacts[format] = data
		_ = r.Cache.Set(ctx, cacheKey, data, cache.ArtifactTTL)
	}

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, sawCacheable && allCached, nil
}

func (r *Runner) renderGraphArtifact(ctx context.Context, g *fsm.Graph, format string) ([]byte, error) {
	dot := render.ToDOT(g, render.Options{})
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		data, err := render.RenderSVG(ctx, dot)
		if err != nil {
			return nil, fmt.Errorf("rendering svg: %w", err)
		}
		return data, nil
	case FormatPNG:
		data, err := render.RenderPNG(ctx, dot)
		if err != nil {
			return nil, fmt.Errorf("rendering png: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("invalid format: %q", format)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// Package cover assigns enumerated paths to priority buckets with a
// four-phase greedy set-cover pass.
//
// The universe is the set of graph transitions keyed by (from, to, label),
// split into linear edges and self-loop edges. Phase one places the cluster
// archetypes in P0. Phase two greedily promotes remaining paths to P1 while
// they still cover uncovered linear edges. Phase three picks, for each
// still-uncovered self-loop, the shortest remaining path exercising it (P2).
// Everything left is redundant and lands in P3. Edges no enumerated path can
// reach are reported as skipped, never silently dropped.
//
// Every input path lands in exactly one bucket, and identical input always
// produces identical buckets in identical order.
package cover

import (
	"fmt"
	"sort"

	"github.com/Gauravv801/QA-Eval/pkg/cluster"
	"github.com/Gauravv801/QA-Eval/pkg/fsm"
	"github.com/Gauravv801/QA-Eval/pkg/paths"
)

// Priority identifies a bucket.
type Priority int

// Bucket priorities, highest first.
const (
	P0 Priority = iota // golden paths, one per archetype
	P1                 // required variations covering new linear edges
	P2                 // loop stress tests
	P3                 // redundant archive
)

// String returns the bucket name, e.g. "P0".
func (p Priority) String() string { return fmt.Sprintf("P%d", int(p)) }

// Edge is a transition keyed by endpoint ids and label. Parallel edges have
// distinct keys because their labels differ.
type Edge struct {
	From  string
	To    string
	Label string
}

func (e Edge) key() string { return e.From + "\x1f" + e.To + "\x1f" + e.Label }

// Stats summarizes one prioritization run.
type Stats struct {
	TotalPaths   int
	P0, P1       int
	P2, P3       int
	LinearEdges  int // universe size, self-loops excluded
	LoopEdges    int // self-loop universe size
	CoveredEdges int // linear edges traversed by at least one path
	CoveredLoops int // loop edges traversed by at least one path
}

// Result is the bucket assignment produced by Prioritize.
type Result struct {
	Buckets [4][]paths.Path

	// SkippedEdges are linear edges no enumerated path traverses,
	// sorted by (from, to, label).
	SkippedEdges []Edge

	// SkippedLoops are self-loop edges no enumerated path traverses,
	// sorted by (from, to, label).
	SkippedLoops []Edge

	Stats Stats
}

// Bucket returns the paths assigned to the given priority.
func (r *Result) Bucket(p Priority) []paths.Path { return r.Buckets[p] }

// Prioritize distributes the enumerated paths over the four buckets.
//
// Ties in the phase-two greedy choice break by uncovered-edge count
// descending, then path length ascending, then discovery index ascending.
// Phase three visits uncovered loops in sorted key order so the P2 bucket
// is stable across runs.
func Prioritize(g *fsm.Graph, ps []paths.Path, clusters *cluster.Result) (*Result, error) {
	if len(ps) == 0 {
		return nil, fmt.Errorf("no paths to prioritize")
	}

	res := &Result{}

	// Phase zero: edge universe from the graph itself, so transitions no
	// path reaches still show up as skipped.
	linear := make(map[string]Edge)
	loops := make(map[string]Edge)
	for i := 0; i < g.TransitionCount(); i++ {
		tr := g.Transition(i)
		e := Edge{From: g.StateID(tr.From), To: g.StateID(tr.To), Label: tr.Label}
		if tr.SelfLoop() {
			loops[e.key()] = e
		} else {
			linear[e.key()] = e
		}
	}

	pathLinear := make([]map[string]bool, len(ps))
	pathLoops := make([]map[string]bool, len(ps))
	for i, p := range ps {
		pathLinear[i] = make(map[string]bool)
		pathLoops[i] = make(map[string]bool)
		for _, ti := range p.Transitions {
			tr := g.Transition(ti)
			e := Edge{From: g.StateID(tr.From), To: g.StateID(tr.To), Label: tr.Label}
			if tr.SelfLoop() {
				pathLoops[i][e.key()] = true
			} else {
				pathLinear[i][e.key()] = true
			}
		}
	}

	assigned := make([]bool, len(ps))
	coveredLinear := make(map[string]bool)
	coveredLoops := make(map[string]bool)
	take := func(bucket Priority, pi int) {
		assigned[pi] = true
		res.Buckets[bucket] = append(res.Buckets[bucket], ps[pi])
		for k := range pathLinear[pi] {
			coveredLinear[k] = true
		}
		for k := range pathLoops[pi] {
			coveredLoops[k] = true
		}
	}

	// Phase one: archetypes are golden paths.
	if clusters == nil || len(clusters.Archetypes) == 0 {
		return nil, fmt.Errorf("no archetypes to seed golden paths")
	}
	for _, pi := range clusters.Archetypes {
		if pi < 0 || pi >= len(ps) {
			return nil, fmt.Errorf("archetype index %d out of range", pi)
		}
		take(P0, pi)
	}

	// Phase two: greedily cover the remaining linear edges.
	for {
		best, bestScore := -1, 0
		for pi := range ps {
			if assigned[pi] {
				continue
			}
			score := 0
			for k := range pathLinear[pi] {
				if !coveredLinear[k] {
					score++
				}
			}
			if score == 0 {
				continue
			}
			switch {
			case score > bestScore:
				best, bestScore = pi, score
			case score == bestScore:
				if ps[pi].Len() < ps[best].Len() ||
					(ps[pi].Len() == ps[best].Len() && ps[pi].Index < ps[best].Index) {
					best = pi
				}
			}
		}
		if best < 0 {
			break
		}
		take(P1, best)
	}

	// Phase three: one stress path per still-uncovered self-loop.
	for _, k := range sortedKeys(loops) {
		if coveredLoops[k] {
			continue
		}
		best := -1
		for pi := range ps {
			if assigned[pi] || !pathLoops[pi][k] {
				continue
			}
			if best < 0 || ps[pi].Len() < ps[best].Len() ||
				(ps[pi].Len() == ps[best].Len() && ps[pi].Index < ps[best].Index) {
				best = pi
			}
		}
		if best < 0 {
			res.SkippedLoops = append(res.SkippedLoops, loops[k])
			continue
		}
		take(P2, best)
	}

	// Phase four: the remainder is redundant.
	for pi := range ps {
		if !assigned[pi] {
			take(P3, pi)
		}
	}

	for _, k := range sortedKeys(linear) {
		if !coveredLinear[k] {
			res.SkippedEdges = append(res.SkippedEdges, linear[k])
		}
	}

	res.Stats = Stats{
		TotalPaths:   len(ps),
		P0:           len(res.Buckets[P0]),
		P1:           len(res.Buckets[P1]),
		P2:           len(res.Buckets[P2]),
		P3:           len(res.Buckets[P3]),
		LinearEdges:  len(linear),
		LoopEdges:    len(loops),
		CoveredEdges: countCovered(linear, coveredLinear),
		CoveredLoops: countCovered(loops, coveredLoops),
	}
	return res, nil
}

func countCovered(universe map[string]Edge, covered map[string]bool) int {
	n := 0
	for k := range universe {
		if covered[k] {
			n++
		}
	}
	return n
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package cluster groups enumerated paths into archetypes by label-sequence
// similarity.
//
// Similarity between two paths is the matching-ratio of their label
// sequences, 2·LCS/(len1+len2), where LCS is the longest common subsequence
// length. Two empty sequences score 1.0. Clustering runs in two passes over
// paths ordered shortest-first: pass one folds near-identical paths into
// minor groups, pass two merges minor representatives into major groups
// whose representatives are the archetypes. Both passes use best-fit
// assignment against existing representatives, so results do not depend on
// map iteration order.
package cluster

import (
	"fmt"
	"sort"

	"github.com/Gauravv801/QA-Eval/pkg/paths"
)

// Default thresholds, matching the engine's tuned values.
const (
	// DefaultIdenticalThreshold folds paths into the same minor group.
	DefaultIdenticalThreshold = 0.95

	// DefaultVariationThreshold merges minor groups into the same major
	// group. Paths below it against every archetype seed a new archetype.
	DefaultVariationThreshold = 0.70
)

// Config holds the two clustering thresholds.
type Config struct {
	IdenticalThreshold float64
	VariationThreshold float64
}

// ValidateAndSetDefaults fills zero thresholds and checks ordering: both
// must sit in (0,1] and Identical must not be below Variation.
func (c *Config) ValidateAndSetDefaults() error {
	if c.IdenticalThreshold == 0 {
		c.IdenticalThreshold = DefaultIdenticalThreshold
	}
	if c.VariationThreshold == 0 {
		c.VariationThreshold = DefaultVariationThreshold
	}
	if c.IdenticalThreshold <= 0 || c.IdenticalThreshold > 1 {
		return fmt.Errorf("identical threshold %v out of range (0,1]", c.IdenticalThreshold)
	}
	if c.VariationThreshold <= 0 || c.VariationThreshold > 1 {
		return fmt.Errorf("variation threshold %v out of range (0,1]", c.VariationThreshold)
	}
	if c.IdenticalThreshold < c.VariationThreshold {
		return fmt.Errorf("identical threshold %v below variation threshold %v",
			c.IdenticalThreshold, c.VariationThreshold)
	}
	return nil
}

// Group is a set of paths represented by one of its members. Rep and
// Members hold indices into the path slice given to Cluster; Members
// includes Rep.
type Group struct {
	Rep     int
	Members []int
}

// Result is the clustering outcome.
type Result struct {
	// Minors are the near-identical groups from pass one, in creation order.
	Minors []Group

	// Majors are the merged groups from pass two, in creation order.
	Majors []Group

	// Archetypes lists the representative path index of each major group.
	Archetypes []int
}

// Similarity returns the matching ratio of two label sequences:
// 2·LCS/(len(a)+len(b)). Identical sequences score 1.0, disjoint ones 0.0,
// and two empty sequences score 1.0.
func Similarity(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	// Single-row LCS table.
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	lcs := prev[len(b)]
	return 2.0 * float64(lcs) / float64(len(a)+len(b))
}

// Cluster groups the given paths into minor and major groups.
//
// Paths are processed shortest-first with discovery index as tie-break, so
// every group's representative is the shortest, earliest-discovered member.
func Cluster(ps []paths.Path, cfg Config) (*Result, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	order := make([]int, len(ps))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := ps[order[a]], ps[order[b]]
		if pa.Len() != pb.Len() {
			return pa.Len() < pb.Len()
		}
		return pa.Index < pb.Index
	})

	res := &Result{}

	// Pass one: fold near-identical paths into minor groups.
	for _, pi := range order {
		best, score := -1, -1.0
		for gi, g := range res.Minors {
			s := Similarity(ps[pi].Labels, ps[g.Rep].Labels)
			if s > score {
				best, score = gi, s
			}
		}
		if best >= 0 && score >= cfg.IdenticalThreshold {
			res.Minors[best].Members = append(res.Minors[best].Members, pi)
			continue
		}
		res.Minors = append(res.Minors, Group{Rep: pi, Members: []int{pi}})
	}

	// Pass two: merge minor representatives into major groups.
	for _, minor := range res.Minors {
		best, score := -1, -1.0
		for gi, g := range res.Majors {
			s := Similarity(ps[minor.Rep].Labels, ps[g.Rep].Labels)
			if s > score {
				best, score = gi, s
			}
		}
		if best >= 0 && score >= cfg.VariationThreshold {
			res.Majors[best].Members = append(res.Majors[best].Members, minor.Members...)
			continue
		}
		res.Majors = append(res.Majors, Group{
			Rep:     minor.Rep,
			Members: append([]int(nil), minor.Members...),
		})
		res.Archetypes = append(res.Archetypes, minor.Rep)
	}

	return res, nil
}

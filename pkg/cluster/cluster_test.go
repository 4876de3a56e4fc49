package cluster

import (
	"reflect"
	"testing"

	"github.com/Gauravv801/QA-Eval/pkg/paths"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{name: "both empty", a: nil, b: nil, want: 1.0},
		{name: "one empty", a: []string{"x"}, b: nil, want: 0.0},
		{name: "identical", a: []string{"a", "b", "c"}, b: []string{"a", "b", "c"}, want: 1.0},
		{name: "disjoint", a: []string{"a", "b"}, b: []string{"c", "d"}, want: 0.0},
		{name: "one extra label", a: []string{"a", "b", "c"}, b: []string{"a", "b", "x", "c"}, want: 6.0 / 7.0},
		{name: "order matters", a: []string{"a", "b"}, b: []string{"b", "a"}, want: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Similarity(tt.a, tt.b); got != tt.want {
				t.Errorf("Similarity() = %v, want %v", got, tt.want)
			}
			if sym := Similarity(tt.b, tt.a); sym != tt.want {
				t.Errorf("Similarity() not symmetric: %v vs %v", sym, tt.want)
			}
		})
	}
}

func mkPaths(labelSets ...[]string) []paths.Path {
	out := make([]paths.Path, len(labelSets))
	for i, ls := range labelSets {
		out[i] = paths.Path{Labels: ls, Index: i, Transitions: make([]int, len(ls))}
	}
	return out
}

func TestCluster(t *testing.T) {
	long := func(extra string) []string {
		base := []string{"greet", "ask", "provide", "verify", "confirm", "pay", "receipt", "bye"}
		if extra == "" {
			return base
		}
		out := append([]string{}, base[:4]...)
		out = append(out, extra)
		return append(out, base[4:]...)
	}

	tests := []struct {
		name           string
		paths          []paths.Path
		cfg            Config
		wantMinors     int
		wantMajors     int
		wantArchetypes []int
	}{
		{
			name:           "near identical paths collapse to one archetype",
			paths:          mkPaths(long(""), long("clarify")),
			wantMinors:     2, // 16/17 ≈ 0.94 < 0.95 so separate minors
			wantMajors:     1, // but 0.94 ≥ 0.70 merges the majors
			wantArchetypes: []int{0},
		},
		{
			name: "dissimilar paths seed separate archetypes",
			paths: mkPaths(
				[]string{"a", "b", "c"},
				[]string{"x", "y", "z"},
			),
			wantMinors:     2,
			wantMajors:     2,
			wantArchetypes: []int{0, 1},
		},
		{
			name: "exact duplicates share a minor group",
			paths: mkPaths(
				[]string{"a", "b"},
				[]string{"a", "b"},
			),
			wantMinors:     1,
			wantMajors:     1,
			wantArchetypes: []int{0},
		},
		{
			name: "shortest path becomes representative",
			paths: mkPaths(
				long("clarify"), // index 0, longer
				long(""),        // index 1, shorter
			),
			wantMinors:     2,
			wantMajors:     1,
			wantArchetypes: []int{1},
		},
		{
			name:           "single empty path",
			paths:          mkPaths([]string{}),
			wantMinors:     1,
			wantMajors:     1,
			wantArchetypes: []int{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Cluster(tt.paths, tt.cfg)
			if err != nil {
				t.Fatalf("Cluster() unexpected error: %v", err)
			}
			if len(res.Minors) != tt.wantMinors {
				t.Errorf("Minors = %d, want %d", len(res.Minors), tt.wantMinors)
			}
			if len(res.Majors) != tt.wantMajors {
				t.Errorf("Majors = %d, want %d", len(res.Majors), tt.wantMajors)
			}
			if !reflect.DeepEqual(res.Archetypes, tt.wantArchetypes) {
				t.Errorf("Archetypes = %v, want %v", res.Archetypes, tt.wantArchetypes)
			}

			// Every path belongs to exactly one major group.
			seen := map[int]int{}
			for _, g := range res.Majors {
				for _, m := range g.Members {
					seen[m]++
				}
			}
			for i := range tt.paths {
				if seen[i] != 1 {
					t.Errorf("path %d appears in %d major groups", i, seen[i])
				}
			}
		})
	}
}

func TestClusterDeterministic(t *testing.T) {
	ps := mkPaths(
		[]string{"a", "b", "c", "d"},
		[]string{"a", "b", "x", "d"},
		[]string{"q", "r"},
		[]string{"a", "b", "c", "d", "e"},
		[]string{"q", "r", "s"},
	)
	first, err := Cluster(ps, Config{})
	if err != nil {
		t.Fatalf("Cluster() unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		res, err := Cluster(ps, Config{})
		if err != nil {
			t.Fatalf("Cluster() run %d unexpected error: %v", i, err)
		}
		if !reflect.DeepEqual(res, first) {
			t.Fatalf("Cluster() run %d differs", i)
		}
	}
}

func TestConfigValidateAndSetDefaults(t *testing.T) {
	var c Config
	if err := c.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() unexpected error: %v", err)
	}
	if c.IdenticalThreshold != DefaultIdenticalThreshold || c.VariationThreshold != DefaultVariationThreshold {
		t.Errorf("defaults = %+v", c)
	}

	for _, bad := range []Config{
		{IdenticalThreshold: 1.5, VariationThreshold: 0.7},
		{IdenticalThreshold: 0.95, VariationThreshold: -0.1},
		{IdenticalThreshold: 0.5, VariationThreshold: 0.9},
	} {
		if err := bad.ValidateAndSetDefaults(); err == nil {
			t.Errorf("ValidateAndSetDefaults() accepted %+v", bad)
		}
	}
}

// Package cache provides caching for analysis results and rendered
// artifacts.
//
// A Cache is a byte store with TTL expiry; file, Redis and null backends
// are provided. A Keyer builds namespaced keys from graph content hashes so
// that re-analyzing an unchanged graph with unchanged options is a cache
// hit, and any change to either produces a different key.
package cache

import (
	"context"
	"time"
)

// TTL values for the different key classes.
const (
	// AnalysisTTL covers enumerated/prioritized results. Analysis is pure,
	// so entries only need to expire to bound disk usage.
	AnalysisTTL = 7 * 24 * time.Hour

	// ArtifactTTL covers rendered SVG/PNG artifacts.
	ArtifactTTL = 24 * time.Hour
)

// Cache stores serialized values with expiry.
type Cache interface {
	// Get returns the value for key. The second return is false on a miss
	// or expired entry; error is reserved for backend failures.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores the value with the given TTL. Zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys for the analysis pipeline.
type Keyer interface {
	// AnalysisKey keys a full analysis result by graph hash and the
	// options fingerprint.
	AnalysisKey(graphHash, optsHash string) string

	// ArtifactKey keys one rendered artifact by graph hash and format.
	ArtifactKey(graphHash, format string) string
}

// DefaultKeyer is the standard key layout: "class:hash" with the class
// doubling as the hook key type.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// AnalysisKey implements Keyer.
func (DefaultKeyer) AnalysisKey(graphHash, optsHash string) string {
	return hashKey("analysis", graphHash+"|"+optsHash)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(graphHash, format string) string {
	return hashKey("artifact", graphHash+"|"+format)
}

// KeyType extracts the class prefix of a key for observability hooks.
// Keys without a prefix report as "unknown".
func KeyType(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i]
		}
	}
	return "unknown"
}

package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, e.g. to
// keep results from different engine versions apart in a shared Redis.
type ScopedKeyer struct {
	inner Keyer
	scope string
}

// NewScopedKeyer wraps keyer so every key carries the given scope.
func NewScopedKeyer(keyer Keyer, scope string) *ScopedKeyer {
	return &ScopedKeyer{inner: keyer, scope: scope}
}

// AnalysisKey implements Keyer.
func (k *ScopedKeyer) AnalysisKey(graphHash, optsHash string) string {
	return k.scope + ":" + k.inner.AnalysisKey(graphHash, optsHash)
}

// ArtifactKey implements Keyer.
func (k *ScopedKeyer) ArtifactKey(graphHash, format string) string {
	return k.scope + ":" + k.inner.ArtifactKey(graphHash, format)
}

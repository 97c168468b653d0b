package cache

// ScopedKeyer wraps a Keyer with a prefix so several tenants can share one
// backend, e.g. one prefix per diagram workspace on a shared Redis.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "workspace:abc123:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ReplayKey generates a prefixed replay key.
func (k *ScopedKeyer) ReplayKey(documentHash string, opts ReplayKeyOpts) string {
	return k.prefix + k.inner.ReplayKey(documentHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(documentHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(documentHash, opts)
}

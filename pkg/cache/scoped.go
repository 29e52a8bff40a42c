package cache

// ScopedKeyer wraps a Keyer with a prefix, so several deployments can share
// one Redis instance without colliding:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k *ScopedKeyer) BlockKey(source string, height int64) string {
	return k.prefix + k.inner.BlockKey(source, height)
}

func (k *ScopedKeyer) LayoutKey(valuesHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(valuesHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}

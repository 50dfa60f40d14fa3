package cache

// ScopedKeyer wraps a Keyer with a prefix. The pipeline scopes keys by build
// version so results from an older binary are never reused:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1.2.0:")
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

// ClosureKey generates a prefixed closure key.
func (k *ScopedKeyer) ClosureKey(input []byte, opts ClosureKeyOpts) string {
	return k.prefix + k.inner.ClosureKey(input, opts)
}

package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tenants, or
// several projects, can share one backend without seeing each other's
// entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "workshop:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) NetsKey(sourceHash string, opts NetsKeyOpts) string {
	return k.prefix + k.inner.NetsKey(sourceHash, opts)
}

func (k *ScopedKeyer) RouteKey(inputHash string, opts RouteKeyOpts) string {
	return k.prefix + k.inner.RouteKey(inputHash, opts)
}

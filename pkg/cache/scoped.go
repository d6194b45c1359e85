package cache

// ScopedKeyer wraps a Keyer with a prefix, so several datasets or tenants
// can share one backend without colliding.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "mapdraw:")
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

// PlanKey generates a prefixed plan key.
func (k *ScopedKeyer) PlanKey(graphHash string, opts PlanKeyOpts) string {
	return k.prefix + k.inner.PlanKey(graphHash, opts)
}

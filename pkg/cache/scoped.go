package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation. Server
// instances pointed at different graph sources can share one Redis and
// still be flushed independently, each under its own prefix.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every generated
// key. A nil inner keyer falls back to the default SHA-256 keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GraphKey generates a prefixed key for an imported graph.
func (k *ScopedKeyer) GraphKey(sourceHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(sourceHash, opts)
}

// LayoutKey generates a prefixed key for a computed layout.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

// ExportKey generates a prefixed key for a rendered export.
func (k *ScopedKeyer) ExportKey(layoutHash string, opts ExportKeyOpts) string {
	return k.prefix + k.inner.ExportKey(layoutHash, opts)
}

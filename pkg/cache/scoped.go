package cache

// ScopedKeyer prefixes every key of an inner Keyer. The CLI scopes keys by
// release version so results computed by different engine builds never
// share an entry:
//
//	k := cache.NewScopedKeyer(nil, "v0.4.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or a DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// EmbedKey returns the prefixed inner key.
func (k *ScopedKeyer) EmbedKey(graphHash string, opts EmbedKeyOpts) string {
	return k.prefix + k.inner.EmbedKey(graphHash, opts)
}

// SeedsKey returns the prefixed inner key.
func (k *ScopedKeyer) SeedsKey(graphHash string, opts SeedsKeyOpts) string {
	return k.prefix + k.inner.SeedsKey(graphHash, opts)
}

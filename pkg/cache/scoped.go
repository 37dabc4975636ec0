package cache

import "strings"

// ScopedKeyer namespaces the keys of another Keyer. The scope is inserted
// after the key kind, so "layout:<hash>" becomes "layout:<scope>:<hash>"
// and per-kind statistics and clearing keep working.
//
// The HTTP service scopes its entries so they can be told apart from the
// ones the CLI writes to a shared backend:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "http")
type ScopedKeyer struct {
	inner Keyer
	scope string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, scope string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return ScopedKeyer{inner: inner, scope: strings.Trim(scope, ":")}
}

func (k ScopedKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return k.scoped(k.inner.LayoutKey(docHash, opts))
}

func (k ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.scoped(k.inner.ArtifactKey(layoutHash, opts))
}

func (k ScopedKeyer) scoped(key string) string {
	if k.scope == "" {
		return key
	}
	kind, rest, ok := strings.Cut(key, ":")
	if !ok {
		return k.scope + ":" + key
	}
	return kind + ":" + k.scope + ":" + rest
}

package rdf

import (
	"sort"
	"strings"
	"sync"
)

// Namespace is a prefix binding.
type Namespace struct {
	Prefix string
	URI    string
}

// NamespaceManager maps prefixes to namespace IRIs and shortens IRIs into
// prefixed names. Bindings are normally made once at startup; lookups are
// safe for concurrent use.
type NamespaceManager struct {
	mu       sync.RWMutex
	byPrefix map[string]string
	byURI    map[string]string
}

// NewNamespaceManager returns a manager with the rdf, rdfs, xsd and owl
// prefixes bound.
func NewNamespaceManager() *NamespaceManager {
	m := &NamespaceManager{
		byPrefix: make(map[string]string),
		byURI:    make(map[string]string),
	}
	m.Bind("rdf", NSRDF, true)
	m.Bind("rdfs", NSRDFS, true)
	m.Bind("xsd", NSXSD, true)
	m.Bind("owl", NSOWL, true)
	return m
}

// Bind associates prefix with the namespace IRI ns.
//
// With override set, any existing binding of the prefix or of the
// namespace is replaced. Without it, the call is a no-op when either the
// prefix or the namespace is already bound.
func (m *NamespaceManager) Bind(prefix, ns string, override bool) {
	if ns == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	oldURI, prefixBound := m.byPrefix[prefix]
	oldPrefix, uriBound := m.byURI[ns]
	if !override && (prefixBound || uriBound) {
		return
	}
	if prefixBound {
		delete(m.byURI, oldURI)
	}
	if uriBound {
		delete(m.byPrefix, oldPrefix)
	}
	m.byPrefix[prefix] = ns
	m.byURI[ns] = prefix
}

// Expand returns the namespace IRI bound to prefix.
func (m *NamespaceManager) Expand(prefix string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ns, ok := m.byPrefix[prefix]
	return ns, ok
}

// QName shortens iri to "prefix:local" using the longest bound namespace
// that is a proper prefix of iri. The local part must not contain '/',
// '#' or ':'.
func (m *NamespaceManager) QName(iri string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	best := ""
	for ns := range m.byURI {
		if len(ns) > len(best) && len(iri) > len(ns) && strings.HasPrefix(iri, ns) {
			best = ns
		}
	}
	if best == "" {
		return "", false
	}
	local := iri[len(best):]
	if strings.ContainsAny(local, "/#:?") {
		return "", false
	}
	return m.byURI[best] + ":" + local, true
}

// Namespaces returns all bindings sorted by prefix.
func (m *NamespaceManager) Namespaces() []Namespace {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Namespace, 0, len(m.byPrefix))
	for p, ns := range m.byPrefix {
		out = append(out, Namespace{Prefix: p, URI: ns})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Prefix < out[j].Prefix })
	return out
}

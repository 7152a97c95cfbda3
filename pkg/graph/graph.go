package graph

import (
	"context"

	"github.com/JervenBolleman/rdflib-web/pkg/rdf"
)

// Graph is a set of RDF triples with prefix bindings.
type Graph interface {
	// Add inserts triples. Triples already present are ignored.
	Add(ctx context.Context, triples ...rdf.Triple) error

	// Match returns the triples matching the pattern. A zero rdf.Term in
	// any position is a wildcard. Results come back in a stable order
	// for a given store state.
	Match(ctx context.Context, s, p, o rdf.Term) ([]rdf.Triple, error)

	// Len returns the number of triples.
	Len(ctx context.Context) (int, error)

	// Bind records a prefix binding, replacing any previous binding of
	// the same prefix.
	Bind(ctx context.Context, prefix, uri string) error

	// Namespaces returns the prefix bindings declared for this graph,
	// sorted by prefix.
	Namespaces(ctx context.Context) ([]rdf.Namespace, error)

	// HealthCheck verifies the backing store is usable.
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

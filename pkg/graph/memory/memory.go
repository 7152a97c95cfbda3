// Package memory provides an in-memory implementation of graph.Graph for
// tests and lightweight deployments. Triples are lost when the process
// exits.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/JervenBolleman/rdflib-web/pkg/graph"
	"github.com/JervenBolleman/rdflib-web/pkg/rdf"
)

// Store is an in-memory Graph. Triples keep their insertion order; the
// per-position indexes hold offsets into that slice.
type Store struct {
	mu          sync.RWMutex
	triples     []rdf.Triple
	seen        map[rdf.Triple]struct{}
	bySubject   map[rdf.Term][]int
	byPredicate map[rdf.Term][]int
	byObject    map[rdf.Term][]int
	namespaces  map[string]string
}

// Ensure Store implements graph.Graph at compile time.
var _ graph.Graph = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		seen:        make(map[rdf.Triple]struct{}),
		bySubject:   make(map[rdf.Term][]int),
		byPredicate: make(map[rdf.Term][]int),
		byObject:    make(map[rdf.Term][]int),
		namespaces:  make(map[string]string),
	}
}

// Add inserts triples, skipping duplicates.
func (s *Store) Add(_ context.Context, triples ...rdf.Triple) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range triples {
		if _, ok := s.seen[t]; ok {
			continue
		}
		idx := len(s.triples)
		s.triples = append(s.triples, t)
		s.seen[t] = struct{}{}
		s.bySubject[t.S] = append(s.bySubject[t.S], idx)
		s.byPredicate[t.P] = append(s.byPredicate[t.P], idx)
		s.byObject[t.O] = append(s.byObject[t.O], idx)
	}
	return nil
}

// Match returns matching triples in insertion order.
func (s *Store) Match(ctx context.Context, subj, pred, obj rdf.Term) ([]rdf.Triple, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !subj.IsZero() && !pred.IsZero() && !obj.IsZero() {
		t := rdf.T(subj, pred, obj)
		if _, ok := s.seen[t]; ok {
			return []rdf.Triple{t}, nil
		}
		return nil, nil
	}

	// Scan the shortest candidate list among the bound positions.
	var candidates []int
	scanAll := true
	pick := func(idx map[rdf.Term][]int, term rdf.Term) {
		if term.IsZero() {
			return
		}
		list := idx[term]
		if scanAll || len(list) < len(candidates) {
			candidates = list
			scanAll = false
		}
	}
	pick(s.bySubject, subj)
	pick(s.byPredicate, pred)
	pick(s.byObject, obj)

	var out []rdf.Triple
	if scanAll {
		out = append(out, s.triples...)
		return out, ctx.Err()
	}
	for _, i := range candidates {
		t := s.triples[i]
		if matches(t, subj, pred, obj) {
			out = append(out, t)
		}
	}
	return out, ctx.Err()
}

func matches(t rdf.Triple, s, p, o rdf.Term) bool {
	return (s.IsZero() || t.S == s) &&
		(p.IsZero() || t.P == p) &&
		(o.IsZero() || t.O == o)
}

// Len returns the number of stored triples.
func (s *Store) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.triples), nil
}

// Bind records a prefix binding.
func (s *Store) Bind(_ context.Context, prefix, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.namespaces[prefix] = uri
	return nil
}

// Namespaces returns the bindings sorted by prefix.
func (s *Store) Namespaces(_ context.Context) ([]rdf.Namespace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]rdf.Namespace, 0, len(s.namespaces))
	for p, u := range s.namespaces {
		out = append(out, rdf.Namespace{Prefix: p, URI: u})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Prefix < out[j].Prefix })
	return out, nil
}

// HealthCheck always returns nil for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

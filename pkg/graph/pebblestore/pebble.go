// Package pebblestore provides a persistent graph.Graph backed by a
// Pebble key-value database.
//
// Each triple is written under three index keys so that any pattern with
// at least one bound position becomes a prefix scan:
//
//	spo\x00<s>\x00<p>\x00<o>
//	pos\x00<p>\x00<o>\x00<s>
//	osp\x00<o>\x00<s>\x00<p>
//
// Terms are stored in their N-Triples encoding, which never contains a
// raw NUL byte. Prefix bindings live under ns\x00<prefix>.
package pebblestore

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"

	"github.com/JervenBolleman/rdflib-web/pkg/graph"
	"github.com/JervenBolleman/rdflib-web/pkg/rdf"
)

const sep = "\x00"

const (
	idxSPO = "spo"
	idxPOS = "pos"
	idxOSP = "osp"
	nsKey  = "ns"
)

// Config holds Pebble store settings.
type Config struct {
	// Path is the database directory; created if missing.
	Path string

	// NoSync skips fsync on writes. Useful for bulk loads and tests.
	NoSync bool
}

// Store is a Pebble-backed Graph.
type Store struct {
	db        *pebble.DB
	writeOpts *pebble.WriteOptions
}

// Ensure Store implements graph.Graph at compile time.
var _ graph.Graph = (*Store)(nil)

// Open opens (or creates) a Pebble database at cfg.Path.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("pebble store path is required")
	}
	db, err := pebble.Open(cfg.Path, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "opening pebble store at %s", cfg.Path)
	}
	slog.Info("pebble store opened", "path", cfg.Path)

	wo := pebble.Sync
	if cfg.NoSync {
		wo = pebble.NoSync
	}
	return &Store{db: db, writeOpts: wo}, nil
}

func key(index string, a, b, c rdf.Term) []byte {
	return []byte(index + sep + a.NTriples() + sep + b.NTriples() + sep + c.NTriples())
}

// Add writes the three index entries of each triple in one batch.
func (s *Store) Add(ctx context.Context, triples ...rdf.Triple) error {
	if len(triples) == 0 {
		return nil
	}
	b := s.db.NewBatch()
	defer b.Close()

	for _, t := range triples {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, k := range [][]byte{
			key(idxSPO, t.S, t.P, t.O),
			key(idxPOS, t.P, t.O, t.S),
			key(idxOSP, t.O, t.S, t.P),
		} {
			if err := b.Set(k, nil, nil); err != nil {
				return errors.Wrap(err, "staging triple")
			}
		}
	}
	if err := b.Commit(s.writeOpts); err != nil {
		return errors.Wrap(err, "committing triples")
	}
	return nil
}

// Match chooses the index whose leading positions are bound and scans
// the corresponding key prefix.
func (s *Store) Match(ctx context.Context, subj, pred, obj rdf.Term) ([]rdf.Triple, error) {
	index, prefix := scanPrefix(subj, pred, obj)

	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating iterator")
	}
	defer iter.Close()

	var out []rdf.Triple
	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := decodeKey(index, iter.Key())
		if err != nil {
			return nil, err
		}
		if (subj.IsZero() || t.S == subj) && (pred.IsZero() || t.P == pred) && (obj.IsZero() || t.O == obj) {
			out = append(out, t)
		}
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "iterating triples")
	}
	return out, nil
}

// scanPrefix returns the index and key prefix covering the bound
// positions of a pattern.
func scanPrefix(subj, pred, obj rdf.Term) (string, []byte) {
	var parts []string
	var index string
	switch {
	case !subj.IsZero():
		index = idxSPO
		parts = append(parts, subj.NTriples())
		if !pred.IsZero() {
			parts = append(parts, pred.NTriples())
			if !obj.IsZero() {
				parts = append(parts, obj.NTriples())
			}
		} else if !obj.IsZero() {
			index = idxOSP
			parts = []string{obj.NTriples(), subj.NTriples()}
		}
	case !pred.IsZero():
		index = idxPOS
		parts = append(parts, pred.NTriples())
		if !obj.IsZero() {
			parts = append(parts, obj.NTriples())
		}
	case !obj.IsZero():
		index = idxOSP
		parts = append(parts, obj.NTriples())
	default:
		index = idxSPO
	}

	prefix := index + sep
	if len(parts) > 0 {
		prefix += strings.Join(parts, sep)
		if len(parts) < 3 {
			prefix += sep
		}
	}
	return index, []byte(prefix)
}

// upperBound returns the smallest key greater than every key starting
// with prefix.
func upperBound(prefix []byte) []byte {
	end := bytes.Clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

func decodeKey(index string, k []byte) (rdf.Triple, error) {
	parts := strings.Split(string(k), sep)
	if len(parts) != 4 || parts[0] != index {
		return rdf.Triple{}, errors.Newf("malformed index key %q", k)
	}
	terms := make([]rdf.Term, 3)
	for i, p := range parts[1:] {
		t, err := rdf.ParseNTriplesTerm(p)
		if err != nil {
			return rdf.Triple{}, err
		}
		terms[i] = t
	}
	switch index {
	case idxPOS:
		return rdf.T(terms[2], terms[0], terms[1]), nil
	case idxOSP:
		return rdf.T(terms[1], terms[2], terms[0]), nil
	default:
		return rdf.T(terms[0], terms[1], terms[2]), nil
	}
}

// Len counts the entries of the spo index.
func (s *Store) Len(ctx context.Context) (int, error) {
	prefix := []byte(idxSPO + sep)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	if err != nil {
		return 0, errors.Wrap(err, "creating iterator")
	}
	defer iter.Close()

	n := 0
	for iter.First(); iter.Valid(); iter.Next() {
		n++
	}
	return n, iter.Error()
}

// Bind stores a prefix binding.
func (s *Store) Bind(_ context.Context, prefix, uri string) error {
	if err := s.db.Set([]byte(nsKey+sep+prefix), []byte(uri), s.writeOpts); err != nil {
		return errors.Wrapf(err, "binding prefix %q", prefix)
	}
	return nil
}

// Namespaces returns the stored bindings; key order is prefix order.
func (s *Store) Namespaces(_ context.Context) ([]rdf.Namespace, error) {
	prefix := []byte(nsKey + sep)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating iterator")
	}
	defer iter.Close()

	var out []rdf.Namespace
	for iter.First(); iter.Valid(); iter.Next() {
		out = append(out, rdf.Namespace{
			Prefix: string(iter.Key()[len(prefix):]),
			URI:    string(iter.Value()),
		})
	}
	return out, iter.Error()
}

// HealthCheck reports an error if the database has been closed.
func (s *Store) HealthCheck(_ context.Context) error {
	if s.db == nil {
		return errors.New("pebble store closed")
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	slog.Info("pebble store closed")
	return err
}

// Package postgres provides a graph.Graph backed by PostgreSQL.
//
// Terms are stored as their N-Triples encoding in a single triples
// table with a uniqueness constraint on (subject, predicate, object),
// so adding a triple twice is a no-op.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JervenBolleman/rdflib-web/pkg/graph"
	"github.com/JervenBolleman/rdflib-web/pkg/rdf"
)

// Store is a PostgreSQL-backed Graph.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements graph.Graph at compile time.
var _ graph.Graph = (*Store)(nil)

// New creates a Store connected to the database described by cfg.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "parsing postgres DSN")
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, "creating postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "connecting to postgres")
	}

	s := &Store{pool: pool}
	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}

	slog.Info("postgres graph store connected", "max_conns", cfg.MaxConns)
	return s, nil
}

// Add inserts the triples in one batch round trip.
func (s *Store) Add(ctx context.Context, triples ...rdf.Triple) error {
	if len(triples) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, t := range triples {
		batch.Queue(
			`INSERT INTO triples (subject, predicate, object) VALUES ($1, $2, $3)
			 ON CONFLICT (subject, predicate, object) DO NOTHING`,
			t.S.NTriples(), t.P.NTriples(), t.O.NTriples(),
		)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrap(err, "inserting triples")
	}
	return nil
}

// Match selects the rows whose bound columns equal the pattern, in
// insertion order.
func (s *Store) Match(ctx context.Context, subj, pred, obj rdf.Term) ([]rdf.Triple, error) {
	var (
		where []string
		args  []any
	)
	for _, c := range []struct {
		column string
		term   rdf.Term
	}{
		{"subject", subj},
		{"predicate", pred},
		{"object", obj},
	} {
		if c.term.IsZero() {
			continue
		}
		args = append(args, c.term.NTriples())
		where = append(where, fmt.Sprintf("%s = $%d", c.column, len(args)))
	}

	query := "SELECT subject, predicate, object FROM triples"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying triples")
	}
	defer rows.Close()

	var out []rdf.Triple
	for rows.Next() {
		var sv, pv, ov string
		if err := rows.Scan(&sv, &pv, &ov); err != nil {
			return nil, errors.Wrap(err, "scanning triple")
		}
		t, err := decodeRow(sv, pv, ov)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating triples")
	}
	return out, nil
}

func decodeRow(sv, pv, ov string) (rdf.Triple, error) {
	var t rdf.Triple
	var err error
	if t.S, err = rdf.ParseNTriplesTerm(sv); err != nil {
		return t, errors.Wrapf(err, "decoding subject %q", sv)
	}
	if t.P, err = rdf.ParseNTriplesTerm(pv); err != nil {
		return t, errors.Wrapf(err, "decoding predicate %q", pv)
	}
	if t.O, err = rdf.ParseNTriplesTerm(ov); err != nil {
		return t, errors.Wrapf(err, "decoding object %q", ov)
	}
	return t, nil
}

// Len returns the row count of the triples table.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM triples").Scan(&n); err != nil {
		return 0, errors.Wrap(err, "counting triples")
	}
	return n, nil
}

// Bind upserts a prefix binding.
func (s *Store) Bind(ctx context.Context, prefix, uri string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO namespaces (prefix, uri) VALUES ($1, $2)
		 ON CONFLICT (prefix) DO UPDATE SET uri = EXCLUDED.uri`,
		prefix, uri)
	if err != nil {
		return errors.Wrapf(err, "binding prefix %q", prefix)
	}
	return nil
}

// Namespaces returns the stored prefix bindings sorted by prefix.
func (s *Store) Namespaces(ctx context.Context) ([]rdf.Namespace, error) {
	rows, err := s.pool.Query(ctx, "SELECT prefix, uri FROM namespaces ORDER BY prefix")
	if err != nil {
		return nil, errors.Wrap(err, "querying namespaces")
	}
	ns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (rdf.Namespace, error) {
		var n rdf.Namespace
		err := row.Scan(&n.Prefix, &n.URI)
		return n, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "scanning namespaces")
	}
	return ns, nil
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
